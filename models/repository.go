package models

import "time"

// Repository is a tracked GitHub repository.
type Repository struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	GithubID  int64     `gorm:"uniqueIndex" json:"githubId"`
	Name      string    `json:"name"`
	FullName  string    `json:"fullName"`
	Owner     string    `json:"owner"`
	Private   bool      `json:"private"`
	IsActive  bool      `json:"isActive"`
	UserID    string    `json:"userId"`
	User      User      `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
