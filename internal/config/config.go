package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	WaitlistTable  string

	ResendAPIKey     string
	VerifyFromAddr   string // sender for verification emails
	WelcomeFromAddr  string // sender for welcome emails
	OwnerNotifyAddr  string // destination for owner alerts
	OwnerNotifyPhone string // optional SMS destination for owner alerts

	BaseURL         string // public host used to build verification links
	TokenSigningKey string
	VerificationTTL time.Duration

	RecaptchaSecret   string
	BotScoreThreshold float64

	SNSRegion      string
	AdminKey       string
	AllowedOrigins []string // CORS allowed origins
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		WaitlistTable:  getEnv("DYNAMO_TABLE_WAITLIST", "waitlist"),

		ResendAPIKey:     getEnv("RESEND_API_KEY", ""),
		VerifyFromAddr:   getEnv("VERIFY_FROM_ADDR", "waitlist@example.com"),
		WelcomeFromAddr:  getEnv("WELCOME_FROM_ADDR", "hello@example.com"),
		OwnerNotifyAddr:  getEnv("OWNER_NOTIFY_ADDR", ""),
		OwnerNotifyPhone: getEnv("OWNER_NOTIFY_PHONE", ""),

		BaseURL:         strings.TrimSuffix(getEnv("BASE_URL", "http://localhost:3000"), "/"),
		TokenSigningKey: getEnv("TOKEN_SIGNING_KEY", ""),
		VerificationTTL: time.Duration(getEnvInt("VERIFICATION_TTL_HOURS", 24)) * time.Hour,

		RecaptchaSecret:   getEnv("RECAPTCHA_SECRET", ""),
		BotScoreThreshold: getEnvFloat("BOT_SCORE_THRESHOLD", 0.5),

		SNSRegion:      getEnv("SNS_REGION", "us-east-1"),
		AdminKey:       getEnv("ADMIN_KEY", ""),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
