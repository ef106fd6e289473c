package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"devflow-review/models"
)

// ReviewHandler serves the read-only review API consumed by the dashboard.
type ReviewHandler struct {
	db *gorm.DB
}

func NewReviewHandler(db *gorm.DB) *ReviewHandler {
	return &ReviewHandler{db: db}
}

// ListReviews returns all reviews, newest first, with their pull request,
// repository and findings nested.
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	var reviews []models.Review
	err := h.db.
		Preload("PullRequest.Repository").
		Preload("Findings").
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		log.Printf("failed to fetch reviews: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// GetReview returns one review by internal id, 404 when absent.
func (h *ReviewHandler) GetReview(c *gin.Context) {
	id := c.Param("id")

	var review models.Review
	err := h.db.
		Preload("PullRequest.Repository").
		Preload("Findings").
		First(&review, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return
		}
		log.Printf("failed to fetch review %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"review": review})
}
