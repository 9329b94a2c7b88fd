// Package config gathers process configuration from environment variables
// and loads the reference-data catalog.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// minJWTSecretLength は HS256 の鍵として最低限必要なバイト数
const minJWTSecretLength = 32

// App is the complete runtime configuration of the API process.
type App struct {
	Addr            string
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64

	LogFormat string
	LogLevel  string

	StorageDriver     string
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	// JWTSecret enables signed tokens instead of opaque session tokens.
	JWTSecret  string
	SessionTTL time.Duration
	BcryptCost int

	// Admin* seed an administrator on start-up when AdminPassword is set.
	AdminUsername string
	AdminPassword string
	AdminEmail    string

	SlackWebhookURL     string
	DiscordWebhookURL   string
	NotifySchedule      string
	NotifyTimeout       time.Duration
	NotifyMaxConcurrent int
	SessionPurgeEvery   string
	ScheduleTimezone    string

	CatalogPath       string
	CatalogCountries  []string
	CatalogCategories []string
}

// Load reads the environment and validates the result.
func Load() (App, error) {
	cfg := App{
		Addr:            GetEnvString("ADDR", ":8080"),
		ShutdownTimeout: GetEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxBodyBytes:    int64(GetEnvInt("MAX_BODY_BYTES", 1<<20)),

		LogFormat: GetEnvString("LOG_FORMAT", "json"),
		LogLevel:  GetEnvString("LOG_LEVEL", "info"),

		StorageDriver:     GetEnvString("STORAGE_DRIVER", StorageMemory),
		DatabaseURL:       GetEnvString("DATABASE_URL", ""),
		DBMaxOpenConns:    GetEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    GetEnvInt("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxLifetime: GetEnvDuration("DB_CONN_MAX_LIFETIME", time.Hour),

		JWTSecret:  GetEnvString("JWT_SECRET", ""),
		SessionTTL: GetEnvDuration("SESSION_TTL", 24*time.Hour),
		BcryptCost: GetEnvInt("BCRYPT_COST", bcrypt.DefaultCost),

		AdminUsername: GetEnvString("ADMIN_USERNAME", "admin"),
		AdminPassword: GetEnvString("ADMIN_PASSWORD", ""),
		AdminEmail:    GetEnvString("ADMIN_EMAIL", "admin@example.com"),

		SlackWebhookURL:     GetEnvString("SLACK_WEBHOOK_URL", ""),
		DiscordWebhookURL:   GetEnvString("DISCORD_WEBHOOK_URL", ""),
		NotifySchedule:      GetEnvString("NOTIFY_SCHEDULE", "@every 1m"),
		NotifyTimeout:       GetEnvDuration("NOTIFY_TIMEOUT", 30*time.Second),
		NotifyMaxConcurrent: GetEnvInt("NOTIFY_MAX_CONCURRENT", 10),
		SessionPurgeEvery:   GetEnvString("SESSION_PURGE_SCHEDULE", "@every 10m"),
		ScheduleTimezone:    GetEnvString("SCHEDULE_TIMEZONE", "UTC"),

		CatalogPath:       GetEnvString("CATALOG_PATH", ""),
		CatalogCountries:  GetEnvStringList("CATALOG_COUNTRIES", nil),
		CatalogCategories: GetEnvStringList("CATALOG_CATEGORIES", nil),
	}
	// 空文字は「即時配信」を意味するため、未設定と区別する
	if v, ok := os.LookupEnv("NOTIFY_SCHEDULE"); ok && v == "" {
		cfg.NotifySchedule = ""
	}

	if err := cfg.Validate(); err != nil {
		return App{}, err
	}
	loadTimestamp.SetToCurrentTime()
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c App) Validate() error {
	var errs []error
	fail := func(field string, err error) {
		validationErrors.WithLabelValues(field).Inc()
		errs = append(errs, fmt.Errorf("%s: %w", field, err))
	}

	if c.Addr == "" {
		fail("addr", errors.New("must not be empty"))
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		fail("log_format", fmt.Errorf("unknown format %q", c.LogFormat))
	}
	switch c.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			fail("database_url", errors.New("required when STORAGE_DRIVER=postgres"))
		}
	default:
		fail("storage_driver", fmt.Errorf("unknown driver %q", c.StorageDriver))
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < minJWTSecretLength {
		fail("jwt_secret", fmt.Errorf("must be at least %d bytes", minJWTSecretLength))
	}
	if err := ValidatePositiveDuration(c.SessionTTL); err != nil {
		fail("session_ttl", err)
	}
	if err := ValidateIntRange(c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost); err != nil {
		fail("bcrypt_cost", err)
	}
	if c.NotifySchedule != "" {
		if err := ValidateCronSchedule(c.NotifySchedule); err != nil {
			fail("notify_schedule", err)
		}
	}
	if err := ValidateCronSchedule(c.SessionPurgeEvery); err != nil {
		fail("session_purge_schedule", err)
	}
	if err := ValidateTimezone(c.ScheduleTimezone); err != nil {
		fail("schedule_timezone", err)
	}
	if err := ValidatePositiveDuration(c.NotifyTimeout); err != nil {
		fail("notify_timeout", err)
	}
	if err := ValidateIntRange(c.NotifyMaxConcurrent, 1, 1000); err != nil {
		fail("notify_max_concurrent", err)
	}
	if c.MaxBodyBytes <= 0 {
		fail("max_body_bytes", errors.New("must be positive"))
	}
	return errors.Join(errs...)
}
