package services

import (
	"fmt"
	"log"

	"github.com/slack-go/slack"

	"devflow-review/models"
)

// SlackNotifier posts a short message to a Slack channel when a review
// reaches a terminal status. Notification failures are logged and swallowed;
// they never touch the review.
type SlackNotifier struct {
	client  *slack.Client
	channel string
}

func NewSlackNotifier(token, channel string) *SlackNotifier {
	return &SlackNotifier{
		client:  slack.New(token),
		channel: channel,
	}
}

func (n *SlackNotifier) NotifyReviewFinished(review *models.Review, repo *models.Repository, pr *models.PullRequest) {
	var text string
	switch review.Status {
	case models.ReviewStatusCompleted:
		score := 0
		if review.Score != nil {
			score = *review.Score
		}
		summary := ""
		if review.Summary != nil {
			summary = *review.Summary
		}
		text = fmt.Sprintf("✅ *Review completed for %s#%d*\n*Title*: %s\n*Score*: %d/100\n%s",
			repo.FullName, pr.Number, pr.Title, score, summary)
	case models.ReviewStatusFailed:
		summary := ""
		if review.Summary != nil {
			summary = *review.Summary
		}
		text = fmt.Sprintf("⚠️ *Review failed for %s#%d*\n*Title*: %s\n%s",
			repo.FullName, pr.Number, pr.Title, summary)
	default:
		return
	}

	_, _, err := n.client.PostMessage(n.channel,
		slack.MsgOptionBlocks(
			slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType, text, false, false),
				nil, nil,
			),
		),
	)
	if err != nil {
		log.Printf("slack notification error (channel: %s): %v", n.channel, err)
		return
	}

	log.Printf("slack notification sent for review %s (channel: %s)", review.ID, n.channel)
}
