package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"devflow-review/config"
	"devflow-review/handlers"
	"devflow-review/models"
	"devflow-review/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}
	cfg := config.Load()

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatal(err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Repository{},
		&models.PullRequest{},
		&models.Review{},
		&models.Finding{},
	); err != nil {
		log.Fatal(err)
	}

	resolver := services.NewResolver(db)
	fetcher := services.NewGitHubService(cfg.GithubToken)
	analyzer := services.NewAnalyzer(cfg.OpenAIAPIKey, cfg.OpenAIModel)

	var notifier services.ReviewNotifier
	if cfg.SlackBotToken != "" && cfg.SlackChannelID != "" {
		notifier = services.NewSlackNotifier(cfg.SlackBotToken, cfg.SlackChannelID)
	}

	orchestrator := services.NewOrchestrator(db, resolver, fetcher, analyzer, notifier, cfg.FetchTimeout, cfg.AnalyzeTimeout)

	queue := services.NewEventQueue(orchestrator, cfg.QueueSize, cfg.QueueWorkers)
	queue.Start()
	defer queue.Close()

	webhookHandler := handlers.NewWebhookHandler(queue, cfg.GithubWebhookSecret, cfg.RequireSignature())
	reviewHandler := handlers.NewReviewHandler(db)

	r := gin.Default()
	r.GET("/health", handlers.HandleHealth(db))
	r.POST("/api/webhooks/github", webhookHandler.HandleWebhook)
	r.GET("/api/webhooks/health", webhookHandler.HandleHealth)
	r.GET("/api/reviews", reviewHandler.ListReviews)
	r.GET("/api/reviews/:id", reviewHandler.GetReview)

	log.Printf("listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
