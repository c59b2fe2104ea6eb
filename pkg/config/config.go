package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                string
	DatabaseURL         string
	MailerBaseURL       string
	MailerAPIKey        string
	MailerFrom          string
	MailerWebhookSecret string
	MailerMaxAttempts   int
	MailerDryRun        bool
	SchedulePolicy      string // "local" or "stagger"
	BillingEnabled      bool
	SequencesFile       string
	DigestBatchSize     int
	SyncConnectionDelay time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	syncDelay := 2 * time.Second
	if d := os.Getenv("SYNC_CONNECTION_DELAY"); d != "" {
		if parsed, err := time.ParseDuration(d); err == nil {
			syncDelay = parsed
		}
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		DatabaseURL:         getEnv("DATABASE_URL", "host=localhost user=resurface password=resurface dbname=resurface port=5432 sslmode=disable"),
		MailerBaseURL:       getEnv("MAILER_BASE_URL", "https://api.resend.com"),
		MailerAPIKey:        getEnv("MAILER_API_KEY", ""),
		MailerFrom:          getEnv("MAILER_FROM", "Resurface <digest@resurface.app>"),
		MailerWebhookSecret: getEnv("MAILER_WEBHOOK_SECRET", ""),
		MailerMaxAttempts:   getEnvInt("MAILER_MAX_ATTEMPTS", 3),
		MailerDryRun:        getEnvBool("MAILER_DRY_RUN", false),
		SchedulePolicy:      getEnv("SCHEDULE_POLICY", "local"),
		BillingEnabled:      getEnvBool("BILLING_ENABLED", true),
		SequencesFile:       getEnv("SEQUENCES_FILE", ""),
		DigestBatchSize:     getEnvInt("DIGEST_BATCH_SIZE", 5),
		SyncConnectionDelay: syncDelay,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
