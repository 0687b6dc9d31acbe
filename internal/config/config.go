// Package config reads the service settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/01moynul/closetline/internal/database"
)

// Config holds every setting the API server needs.
type Config struct {
	Env      string
	Port     int
	LogLevel string

	DBDriver      string
	DBDSN         string
	MongoURI      string
	MongoDatabase string

	UploadBackend  string
	UploadDir      string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	EmailService string
	EmailHost    string
	EmailPort    int
	EmailUser    string
	EmailPass    string
	StoreEmail   string

	RedisAddr              string
	RedisPassword          string
	EnquiryRateLimitPerMin int
	CORSAllowedOrigin      string
}

// Development reports whether error responses may include internal detail.
func (c *Config) Development() bool {
	return c.Env == "development"
}

// EmailConfigured reports whether outbound mail can be attempted. The log
// transport needs no credentials.
func (c *Config) EmailConfigured() bool {
	if c.EmailService == "log" {
		return true
	}
	return c.EmailUser != "" && c.EmailPass != ""
}

// LoadDotEnv loads a .env file if one exists. A missing file only logs a warning.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("could not load .env file, relying on system environment variables")
	}
}

// Load builds a Config from the process environment.
func Load() (*Config, error) {
	cfg := &Config{
		Env:      firstNonEmpty(os.Getenv("APP_ENV"), os.Getenv("NODE_ENV"), "development"),
		LogLevel: envOr("LOG_LEVEL", "info"),

		DBDriver:      strings.ToLower(envOr("DB_DRIVER", "mysql")),
		DBDSN:         envOr("DB_DSN", database.DefaultDSN),
		MongoURI:      envOr("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: envOr("MONGODB_DATABASE", "clothing-inventory"),

		UploadBackend:  strings.ToLower(envOr("UPLOAD_BACKEND", "disk")),
		UploadDir:      envOr("UPLOAD_DIR", "./uploads"),
		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    envOr("MINIO_BUCKET", "closetline-uploads"),

		EmailService: strings.ToLower(envOr("EMAIL_SERVICE", "gmail")),
		EmailHost:    os.Getenv("EMAIL_HOST"),
		EmailUser:    os.Getenv("EMAIL_USER"),
		EmailPass:    os.Getenv("EMAIL_PASS"),

		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		CORSAllowedOrigin: envOr("CORS_ALLOWED_ORIGIN", "*"),
	}
	cfg.StoreEmail = envOr("STORE_EMAIL", cfg.EmailUser)

	var err error
	if cfg.Port, err = intEnv("PORT", 5000); err != nil {
		return nil, err
	}
	if cfg.EmailPort, err = intEnv("EMAIL_PORT", 0); err != nil {
		return nil, err
	}
	if cfg.EnquiryRateLimitPerMin, err = intEnv("ENQUIRY_RATE_LIMIT_PER_MINUTE", 5); err != nil {
		return nil, err
	}
	if cfg.MinioUseSSL, err = boolEnv("MINIO_USE_SSL", false); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "mysql", "mongo", "memory":
	default:
		return fmt.Errorf("unknown DB_DRIVER %q (want mysql, mongo or memory)", c.DBDriver)
	}
	switch c.UploadBackend {
	case "disk":
	case "minio":
		if c.MinioEndpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required when UPLOAD_BACKEND=minio")
		}
	default:
		return fmt.Errorf("unknown UPLOAD_BACKEND %q (want disk or minio)", c.UploadBackend)
	}
	switch c.EmailService {
	case "gmail", "outlook", "hotmail", "yahoo", "log":
	case "smtp":
		if c.EmailHost == "" {
			return fmt.Errorf("EMAIL_HOST is required when EMAIL_SERVICE=smtp")
		}
	default:
		return fmt.Errorf("unknown EMAIL_SERVICE %q", c.EmailService)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.EnquiryRateLimitPerMin <= 0 {
		return fmt.Errorf("ENQUIRY_RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func intEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}
