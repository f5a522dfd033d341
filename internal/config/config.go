package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Record source backends
const (
	SourceGoogle   = "google"
	SourceWorkbook = "xlsx"
	SourcePostgres = "postgres"
)

type Config struct {
	Env string

	// Discord
	DiscordToken   string `validate:"required"`
	DiscordGuildID string

	// Record source
	SourceKind            string `validate:"oneof=google xlsx postgres"`
	GoogleCredentialsJSON []byte `validate:"required_if=SourceKind google"`
	SpreadsheetID         string
	SpreadsheetName       string `validate:"required_if=SourceKind google"`
	SheetConcurrency      int    `validate:"min=1"`
	WorkbookPath          string `validate:"required_if=SourceKind xlsx"`
	PostgresURL           string `validate:"required_if=SourceKind postgres"`

	// Snapshot cache
	RedisURL    string
	SnapshotTTL time.Duration `validate:"min=0"`

	// Worker pool
	WorkerCount    int           `validate:"min=1"`
	QueueSize      int           `validate:"min=1"`
	CommandTimeout time.Duration `validate:"gt=0"`

	// Pagination
	PageSize    int           `validate:"min=1"`
	PageTimeout time.Duration `validate:"gt=0"`

	// Ops HTTP server; 0 disables it
	HTTPPort       int `validate:"min=0,max=65535"`
	AllowedOrigins []string
}

// Load loads configuration from environment variables.
// It returns an error if critical configuration is missing or malformed.
func Load() (*Config, error) {
	var malformed []error
	cfg := &Config{
		Env: getEnv("ENV", "development"),

		DiscordGuildID: getEnv("DISCORD_GUILD_ID", ""),

		SourceKind:       strings.ToLower(getEnv("SOURCE_KIND", SourceGoogle)),
		SpreadsheetID:    getEnv("SPREADSHEET_ID", ""),
		SpreadsheetName:  getEnv("SPREADSHEET_NAME", "전적"),
		SheetConcurrency: getEnvInt("SHEET_CONCURRENCY", 4, &malformed),
		WorkbookPath:     getEnv("WORKBOOK_PATH", ""),
		PostgresURL:      getEnv("POSTGRES_URL", ""),

		RedisURL:    getEnv("REDIS_URL", ""),
		SnapshotTTL: getEnvDuration("SNAPSHOT_TTL", 0, &malformed),

		WorkerCount:    getEnvInt("WORKER_COUNT", 4, &malformed),
		QueueSize:      getEnvInt("QUEUE_SIZE", 100, &malformed),
		CommandTimeout: getEnvDuration("COMMAND_TIMEOUT", 30*time.Second, &malformed),

		PageSize:    getEnvInt("PAGE_SIZE", 10, &malformed),
		PageTimeout: getEnvDuration("PAGE_TIMEOUT", 60*time.Second, &malformed),

		HTTPPort: getEnvInt("HTTP_PORT", 8080, &malformed),
	}

	// CORS
	origins := getEnv("ALLOWED_ORIGINS", "*")
	for _, o := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	if len(malformed) > 0 {
		return nil, errors.Join(malformed...)
	}

	// Critical configuration - fail if missing
	var err error
	if cfg.DiscordToken, err = getEnvRequired("DISCORD_TOKEN"); err != nil {
		return nil, err
	}

	if cfg.SourceKind == SourceGoogle {
		encoded, err := getEnvRequired("GOOGLE_SERVICE_ACCOUNT_BASE64")
		if err != nil {
			return nil, err
		}
		if cfg.GoogleCredentialsJSON, err = base64.StdEncoding.DecodeString(strings.TrimSpace(encoded)); err != nil {
			return nil, fmt.Errorf("invalid GOOGLE_SERVICE_ACCOUNT_BASE64: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct constraints on an already populated config
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}

// getEnvInt returns fallback for an unset key. A set but unparsable value is
// appended to errs.
func getEnvInt(key string, fallback int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s %q: want an integer", key, value))
		return fallback
	}
	return i
}

func getEnvDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s %q: want a duration like 60s", key, value))
		return fallback
	}
	return d
}
