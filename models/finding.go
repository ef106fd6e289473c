package models

import "time"

// Finding categories.
const (
	FindingTypeSecurity     = "security"
	FindingTypePerformance  = "performance"
	FindingTypeStyle        = "style"
	FindingTypeLogic        = "logic"
	FindingTypeBestPractice = "best-practice"
)

// Finding severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Finding is one review observation, optionally scoped to a file and line.
// Immutable once created. Serialized as "comment" in the read API.
type Finding struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	Content    string    `json:"content"`
	Type       string    `json:"type"`
	Severity   string    `json:"severity"`
	FilePath   *string   `json:"filePath"`
	LineNumber *int      `json:"lineNumber"`
	ReviewID   string    `json:"reviewId"`
	CreatedAt  time.Time `json:"createdAt"`
}
