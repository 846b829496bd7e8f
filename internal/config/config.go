package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"csacademy/interview/internal/models"
)

// token cell backends
const (
	TokenStoreMemory = "memory"
	TokenStoreRedis  = "redis"
)

// history database drivers
const (
	HistoryDriverNone     = "none"
	HistoryDriverSQLite   = "sqlite"
	HistoryDriverPostgres = "postgres"
)

// app config: where the interview backend lives and how local state is kept
type Config struct {
	APIBaseURL        string
	InterviewType     string
	DefaultDifficulty string
	TotalQuestions    int
	ClientTimeout     time.Duration

	JWTSecret  string
	TokenStore string
	RedisAddr  string
	TokenKey   string
	TokenTTL   time.Duration

	HistoryDriver        string
	HistoryDSN           string
	HistoryRetention     time.Duration
	HistoryPruneSchedule string

	Port           string
	AllowedOrigins []string
}

// loads configuration from environment variables
func LoadConfig() (*Config, error) {
	totalQuestions, err := getEnvInt("INTERVIEW_TOTAL_QUESTIONS", models.DefaultTotalQuestions)
	if err != nil {
		return nil, err
	}
	timeout, err := getEnvDuration("HTTP_CLIENT_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	tokenTTL, err := getEnvDuration("AUTH_TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	retention, err := getEnvDuration("HISTORY_RETENTION", 720*time.Hour)
	if err != nil {
		return nil, err
	}

	config := &Config{
		APIBaseURL:        strings.TrimRight(getEnvOrDefault("INTERVIEW_API_URL", "http://localhost:8000"), "/"),
		InterviewType:     getEnvOrDefault("INTERVIEW_TYPE", models.DefaultInterviewType),
		DefaultDifficulty: strings.ToLower(getEnvOrDefault("INTERVIEW_DEFAULT_DIFFICULTY", string(models.DefaultDifficulty))),
		TotalQuestions:    totalQuestions,
		ClientTimeout:     timeout,

		JWTSecret:  os.Getenv("JWT_SECRET"),
		TokenStore: strings.ToLower(getEnvOrDefault("TOKEN_STORE", TokenStoreMemory)),
		RedisAddr:  getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		TokenKey:   getEnvOrDefault("AUTH_TOKEN_KEY", "ai_interview_token"),
		TokenTTL:   tokenTTL,

		HistoryDriver:        strings.ToLower(getEnvOrDefault("HISTORY_DRIVER", HistoryDriverSQLite)),
		HistoryDSN:           getEnvOrDefault("HISTORY_DSN", "file:interview_history.db"),
		HistoryRetention:     retention,
		HistoryPruneSchedule: getEnvOrDefault("HISTORY_PRUNE_SCHEDULE", "0 3 * * *"),

		Port:           getEnvOrDefault("PORT", "8080"),
		AllowedOrigins: splitList(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	u, err := url.Parse(config.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid INTERVIEW_API_URL: %q", config.APIBaseURL)
	}
	if !models.ValidDifficulties[models.Difficulty(config.DefaultDifficulty)] {
		return fmt.Errorf("invalid INTERVIEW_DEFAULT_DIFFICULTY: %s. Must be one of: %s",
			config.DefaultDifficulty, strings.Join(models.ValidDifficultiesList(), ", "))
	}
	if config.TotalQuestions <= 0 {
		return errors.New("INTERVIEW_TOTAL_QUESTIONS must be positive")
	}
	if config.ClientTimeout <= 0 {
		return errors.New("HTTP_CLIENT_TIMEOUT must be positive")
	}
	// the local API and history routes trust the token subject
	if strings.TrimSpace(config.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}

	switch config.TokenStore {
	case TokenStoreMemory:
	case TokenStoreRedis:
		if config.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required when TOKEN_STORE=redis")
		}
	default:
		return errors.New("unsupported TOKEN_STORE: " + config.TokenStore + ". Currently supported: memory, redis")
	}

	switch config.HistoryDriver {
	case HistoryDriverNone:
	case HistoryDriverSQLite, HistoryDriverPostgres:
		if config.HistoryDSN == "" {
			return errors.New("HISTORY_DSN is required when history is enabled")
		}
		if _, err := cron.ParseStandard(config.HistoryPruneSchedule); err != nil {
			return fmt.Errorf("invalid HISTORY_PRUNE_SCHEDULE: %w", err)
		}
	default:
		return errors.New("unsupported HISTORY_DRIVER: " + config.HistoryDriver + ". Currently supported: sqlite, postgres, none")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return i, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
