package models

import "time"

// PullRequest is a change proposal within a Repository. The GitHub id is
// globally unique; the PR number is unique only within its repository.
type PullRequest struct {
	ID           string     `gorm:"primaryKey" json:"id"`
	GithubID     int64      `gorm:"uniqueIndex" json:"githubId"`
	Number       int        `gorm:"index:idx_repo_pr_number,unique" json:"number"`
	Title        string     `json:"title"`
	State        string     `json:"state"`
	RepositoryID string     `gorm:"index:idx_repo_pr_number,unique" json:"repositoryId"`
	Repository   Repository `json:"repository"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
