package utils

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings read from the environment
type Config struct {
	Port string

	MongoURI string
	MongoDB  string

	JWTSecret    string
	JWTExpiresIn time.Duration

	RedisURL      string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	KafkaBrokers    []string
	KafkaOrderTopic string

	EmailProvider    string
	PostmarkAPIToken string
	SendGridAPIKey   string
	EmailSender      string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	ClientURL          string

	LogLevel slog.Level
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found. Proceeding with environment variables.")
	}
	return configFromEnv()
}

func configFromEnv() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8000"),
		MongoURI:           getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:            getEnv("MONGODB_DB", "phonestore"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTExpiresIn:       getEnvAsDuration("JWT_EXPIRES_IN", 15*time.Minute),
		RedisURL:           os.Getenv("REDIS_URL"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            getEnvAsInt("REDIS_DB", 0),
		CacheTTL:           getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		KafkaBrokers:       getEnvAsList("KAFKA_BROKERS"),
		KafkaOrderTopic:    getEnv("KAFKA_ORDER_TOPIC", "phonestore.orders"),
		EmailProvider:      strings.ToLower(getEnv("EMAIL_PROVIDER", "none")),
		PostmarkAPIToken:   os.Getenv("POSTMARK_API_TOKEN"),
		SendGridAPIKey:     os.Getenv("SENDGRID_API_KEY"),
		EmailSender:        getEnv("EMAIL_SENDER", "no-reply@phonestore.com"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8000/api/auth/google/callback"),
		ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
		LogLevel:           getEnvAsLevel("LOG_LEVEL", slog.LevelInfo),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set in environment variables")
	}
	switch cfg.EmailProvider {
	case "none", "postmark", "sendgrid":
	default:
		return nil, errors.New("EMAIL_PROVIDER must be none, postmark or sendgrid")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsLevel(key string, defaultValue slog.Level) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv(key))); err != nil {
		return defaultValue
	}
	return level
}
