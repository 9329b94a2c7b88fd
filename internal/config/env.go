package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvString returns the trimmed value of key, or def when it is blank.
func GetEnvString(key, def string) string {
	if raw, ok := lookupEnv(key); ok {
		return raw
	}
	return def
}

// GetEnvInt reads key as a decimal integer, e.g. NOTIFY_MAX_CONCURRENT=10.
func GetEnvInt(key string, def int) int {
	return parseEnv(key, def, strconv.Atoi)
}

// GetEnvDuration reads key in time.ParseDuration form ("30s", "1h30m").
func GetEnvDuration(key string, def time.Duration) time.Duration {
	return parseEnv(key, def, time.ParseDuration)
}

// GetEnvStringList reads a comma-separated list such as
// CATALOG_COUNTRIES="US, JP ,, DE". Blank items are dropped and a list with
// nothing left in it yields def.
func GetEnvStringList(key string, def []string) []string {
	raw, ok := lookupEnv(key)
	if !ok {
		return def
	}
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return def
	}
	return items
}

// parseEnv applies parse to the value of key. A malformed value is logged,
// counted in newsdesk_config_fallbacks_total and replaced by def; Validate
// then sees the default rather than a half-parsed value.
func parseEnv[T any](key string, def T, parse func(string) (T, error)) T {
	raw, ok := lookupEnv(key)
	if !ok {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		slog.Warn("ignoring malformed environment variable",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Any("default", def),
			slog.Any("error", err))
		fallbacks.WithLabelValues(key).Inc()
		return def
	}
	return v
}

func lookupEnv(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}
