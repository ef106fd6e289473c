package models

import "time"

// User is a GitHub account seen on a webhook event. Created on first sight,
// never deleted.
type User struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	GithubID  *string   `gorm:"uniqueIndex" json:"githubId"`
	Name      string    `json:"name"`
	Email     string    `gorm:"uniqueIndex" json:"email"`
	AvatarURL string    `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
