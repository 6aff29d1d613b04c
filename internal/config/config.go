package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port            string
	Environment     string
	LogLevel        string
	MongoDBURI      string
	MongoDBPassword string
	MongoDBName     string
	RedisURL        string
	CloudinaryURL   string
	JWTSecret       string
	TokenTTL        time.Duration
	AdminUsername   string
	AdminPassword   string
	Timezone        string
	NotifySchedule  string
	AllowOrigins    []string
}

func LoadConfig() (*Config, error) {
	ttlHours, err := strconv.Atoi(getEnvWithDefault("TOKEN_TTL_HOURS", "24"))
	if err != nil || ttlHours <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL_HOURS must be a positive integer")
	}

	cfg := &Config{
		Port:            getEnvWithDefault("PORT", "8080"),
		Environment:     getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:        os.Getenv("LOG_LEVEL"),
		MongoDBURI:      os.Getenv("MONGODB_URI"),
		MongoDBPassword: os.Getenv("MONGODB_PASSWORD"),
		MongoDBName:     getEnvWithDefault("MONGODB_DB", "eventhub"),
		RedisURL:        os.Getenv("REDIS_URL"),
		CloudinaryURL:   os.Getenv("CLOUDINARY_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		TokenTTL:        time.Duration(ttlHours) * time.Hour,
		AdminUsername:   getEnvWithDefault("ADMIN_USER", "admin"),
		AdminPassword:   os.Getenv("ADMIN_PASS"),
		Timezone:        getEnvWithDefault("TIMEZONE", "Local"),
		NotifySchedule:  getEnvWithDefault("NOTIFY_SCHEDULE", "@every 1m"),
		AllowOrigins:    splitList(getEnvWithDefault("CORS_ORIGINS", "http://localhost:3000")),
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.IsProduction() && cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required in production")
	}
	if _, err := cfg.SlogLevel(); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %v", cfg.LogLevel, err)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %v", cfg.Timezone, err)
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Location is the zone event dates and times are interpreted in.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// SlogLevel parses LOG_LEVEL. Unset means debug in development and info elsewhere.
func (c *Config) SlogLevel() (slog.Level, error) {
	if c.LogLevel == "" {
		if c.IsDevelopment() {
			return slog.LevelDebug, nil
		}
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
