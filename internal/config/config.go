package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Data store backends.
const (
	DataStoreMongo  = "mongo"
	DataStoreMemory = "memory"
)

// JWTConfig defines the HS256 secret and claims checked on every bearer token
// and stamped on tokens issued at login.
type JWTConfig struct {
	Issuer   string
	Audience string
	Secret   []byte
	TTL      time.Duration
}

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr              string
	DataStore         string
	MongoURI          string
	MongoDatabase     string
	MessCollection    string
	ReviewCollection  string
	AccountCollection string
	Timeout           time.Duration
	AllowedOrigins    []string
	JWT               JWTConfig
	AdminEmail        string
	AdminPassword     string
	Logger            *logrus.Logger
}

// Load reads .env (when present) and environment variables and returns a fully
// populated Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	logger := NewLogger(envOrDefault("LOG_LEVEL", "info"), envOrDefault("LOG_FORMAT", "text"))

	timeout := 10 * time.Second
	if v := os.Getenv("MONGO_CONNECT_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			timeout = parsed
		} else {
			logger.WithError(err).Warn("MONGO_CONNECT_TIMEOUT is not a duration; using default")
		}
	}

	ttl := 24 * time.Hour
	if v := os.Getenv("JWT_TTL"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil || parsed <= 0 {
			return Config{}, fmt.Errorf("JWT_TTL must be a positive duration: %q", v)
		}
		ttl = parsed
	}

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		return Config{}, errors.New("JWT_SECRET must be configured")
	}

	dataStore := strings.ToLower(envOrDefault("DATA_STORE", DataStoreMongo))
	if dataStore != DataStoreMongo && dataStore != DataStoreMemory {
		return Config{}, fmt.Errorf("DATA_STORE must be %q or %q: %q", DataStoreMongo, DataStoreMemory, dataStore)
	}

	cfg := Config{
		Addr:              envOrDefault("HTTP_ADDR", ":8080"),
		DataStore:         dataStore,
		MongoURI:          envOrDefault("MONGO_URI", "mongodb://mongo:27017"),
		MongoDatabase:     envOrDefault("MONGO_DB", "mess-finder"),
		MessCollection:    envOrDefault("MESS_COLLECTION", "messes"),
		ReviewCollection:  envOrDefault("REVIEW_COLLECTION", "reviews"),
		AccountCollection: envOrDefault("ACCOUNT_COLLECTION", "accounts"),
		Timeout:           timeout,
		AllowedOrigins:    parseList("API_ALLOWED_ORIGINS", []string{"*"}),
		JWT: JWTConfig{
			Issuer:   envOrDefault("JWT_ISSUER", "mess-finder"),
			Audience: strings.TrimSpace(os.Getenv("JWT_AUDIENCE")),
			Secret:   []byte(secret),
			TTL:      ttl,
		},
		AdminEmail:    strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		Logger:        logger,
	}

	logger.WithFields(logrus.Fields{
		"addr":       cfg.Addr,
		"data_store": cfg.DataStore,
		"mongo_db":   cfg.MongoDatabase,
	}).Info("loaded config")

	return cfg, nil
}

// NewLogger builds the process logger. Unknown levels fall back to info.
func NewLogger(level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{TimestampFormat: time.RFC3339, FullTimestamp: true})
	}
	return logger
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
