package config

import (
	"os"
	"strconv"
	"time"
)

// Config aggregates the environment-driven settings of the service.
type Config struct {
	Port         string
	DatabasePath string
	AppEnv       string

	GithubWebhookSecret string
	GithubToken         string

	OpenAIAPIKey string
	OpenAIModel  string

	SlackBotToken  string
	SlackChannelID string

	QueueSize    int
	QueueWorkers int

	FetchTimeout   time.Duration
	AnalyzeTimeout time.Duration
}

// Load reads the configuration from environment variables.
func Load() Config {
	return Config{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "reviews.db"),
		AppEnv:       getEnv("APP_ENV", "development"),

		GithubWebhookSecret: getEnv("GITHUB_WEBHOOK_SECRET", "dev-secret-key"),
		GithubToken:         os.Getenv("GITHUB_TOKEN"),

		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		SlackBotToken:  os.Getenv("SLACK_BOT_TOKEN"),
		SlackChannelID: os.Getenv("SLACK_CHANNEL_ID"),

		QueueSize:    getIntEnv("EVENT_QUEUE_SIZE", 100),
		QueueWorkers: getIntEnv("EVENT_QUEUE_WORKERS", 4),

		FetchTimeout:   getDurationEnv("GITHUB_FETCH_TIMEOUT", 30*time.Second),
		AnalyzeTimeout: getDurationEnv("AI_ANALYZE_TIMEOUT", 2*time.Minute),
	}
}

// RequireSignature reports whether webhook signature verification is
// mandatory. Relaxed outside production so local deliveries can be replayed
// without the shared secret.
func (c Config) RequireSignature() bool {
	return c.AppEnv == "production"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
