package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v71/github"

	"devflow-review/services"
)

// WebhookHandler is the event ingestion boundary. It reads the raw request
// body before any parsing so signature verification sees the exact bytes the
// sender signed, then routes the event by its X-GitHub-Event header.
type WebhookHandler struct {
	queue            *services.EventQueue
	secret           string
	requireSignature bool
}

func NewWebhookHandler(queue *services.EventQueue, secret string, requireSignature bool) *WebhookHandler {
	return &WebhookHandler{
		queue:            queue,
		secret:           secret,
		requireSignature: requireSignature,
	}
}

func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read body"})
		return
	}

	eventType := c.GetHeader("X-GitHub-Event")
	deliveryID := c.GetHeader("X-GitHub-Delivery")
	log.Printf("received github webhook: event=%s delivery=%s", eventType, deliveryID)

	if h.requireSignature {
		if !services.VerifySignature(body, c.GetHeader("X-Hub-Signature-256"), h.secret) {
			log.Printf("invalid webhook signature (delivery: %s)", deliveryID)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
			return
		}
	}

	switch eventType {
	case "pull_request":
		h.handlePullRequestEvent(c, body, deliveryID)

	case "ping":
		var payload struct {
			Zen string `json:"zen"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		log.Println("received ping event, webhook is connected")
		c.JSON(http.StatusOK, gin.H{
			"message": "DevFlow webhook is active",
			"zen":     payload.Zen,
		})

	default:
		log.Printf("unsupported event type: %s", eventType)
		c.JSON(http.StatusOK, gin.H{"message": "Event type not supported"})
	}
}

func (h *WebhookHandler) handlePullRequestEvent(c *gin.Context, body []byte, deliveryID string) {
	var event github.PullRequestEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	pr := event.GetPullRequest()
	repo := event.GetRepo()
	sender := event.GetSender()
	if pr == nil || repo == nil || sender == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	action := event.GetAction()
	log.Printf("received pr %s event: repo=%s pr=%d title=%s",
		action, repo.GetFullName(), pr.GetNumber(), pr.GetTitle())

	// only opened and synchronize trigger a pipeline run
	if action != "opened" && action != "synchronize" {
		c.JSON(http.StatusOK, gin.H{"message": "Action ignored", "action": action})
		return
	}

	fullName := repo.GetFullName()
	if !strings.Contains(fullName, "/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid repository format"})
		return
	}

	ev := services.ReviewEvent{
		Action:          action,
		DeliveryID:      deliveryID,
		SenderGithubID:  strconv.FormatInt(sender.GetID(), 10),
		SenderLogin:     sender.GetLogin(),
		SenderAvatarURL: sender.GetAvatarURL(),
		RepoGithubID:    repo.GetID(),
		RepoName:        repo.GetName(),
		RepoFullName:    fullName,
		RepoOwner:       repo.GetOwner().GetLogin(),
		RepoPrivate:     repo.GetPrivate(),
		PRGithubID:      pr.GetID(),
		PRNumber:        pr.GetNumber(),
		PRTitle:         pr.GetTitle(),
		PRState:         pr.GetState(),
	}

	if err := h.queue.Enqueue(ev); err != nil {
		log.Printf("event queue rejected delivery %s: %v", deliveryID, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event queue is full"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Webhook processed successfully",
		"event":      "pull_request",
		"deliveryId": deliveryID,
	})
}

// HandleHealth reports the webhook endpoint status and the events it
// understands.
func (h *WebhookHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":         "Webhook endpoint is healthy",
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
		"supportedEvents": []string{"pull_request", "ping"},
	})
}
