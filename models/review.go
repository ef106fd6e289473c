package models

import "time"

// Review statuses. Pending and processing are transient; completed and
// failed are terminal.
const (
	ReviewStatusPending    = "pending"
	ReviewStatusProcessing = "processing"
	ReviewStatusCompleted  = "completed"
	ReviewStatusFailed     = "failed"
)

// Review is one analysis attempt over a PullRequest. A pull request can
// carry any number of reviews, one per triggering webhook delivery.
type Review struct {
	ID            string      `gorm:"primaryKey" json:"id"`
	Status        string      `json:"status"`
	Summary       *string     `json:"summary"`
	Score         *int        `json:"score"`
	PullRequestID string      `json:"pullRequestId"`
	UserID        string      `json:"userId"`
	PullRequest   PullRequest `json:"pullRequest"`
	Findings      []Finding   `json:"comments"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}
