package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Scanner
	ScanInterval        time.Duration // interval between inactivity scans (default: 5m)
	InactivityThreshold time.Duration // inactivity before a tab qualifies for auto-close (default: 2h)

	// Auth relay
	AllowedOrigins []string // origins allowed to post relay messages (exact or "*.suffix")
	ConfigFile     string   // optional YAML overlay (origins, scanner tuning)

	// Browser
	CDPURL string // DevTools websocket/HTTP URL of the browser to attach to (optional)

	// Account store
	AccountDBPath string // path to the sqlite accounts database

	// Notifications
	NotifyCommand string // external notifier binary (empty = log only)

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("TABKEEP_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("TABKEEP_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("TABKEEP_LOG_LEVEL", "info"),
		PrettyLog: mustBool("TABKEEP_PRETTY_LOG", true),

		// Scanner
		ScanInterval:        mustDuration("TABKEEP_SCAN_INTERVAL", 5*time.Minute),
		InactivityThreshold: mustDuration("TABKEEP_INACTIVITY_THRESHOLD", 2*time.Hour),

		// Auth relay
		AllowedOrigins: requireEnvSlice("TABKEEP_ALLOWED_ORIGINS"),
		ConfigFile:     getenv("TABKEEP_CONFIG_FILE", ""),

		// Browser
		CDPURL: getenv("TABKEEP_CDP_URL", ""),

		// Account store
		AccountDBPath: getenv("TABKEEP_ACCOUNT_DB", "tabkeep.db"),

		// Notifications
		NotifyCommand: getenv("TABKEEP_NOTIFY_COMMAND", ""),

		// Redis settings
		RedisAddr:             requireEnv("TABKEEP_REDIS_ADDR"),
		RedisUser:             getenv("TABKEEP_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("TABKEEP_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("TABKEEP_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("TABKEEP_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: TABKEEP_REDIS_PASSWORD is required when TABKEEP_REDIS_PASSWORD_REQUIRED=true")
	}

	// Optional YAML overlay (origin allow-list, scanner tuning)
	if cfg.ConfigFile != "" {
		if err := applyFile(cfg, cfg.ConfigFile); err != nil {
			panic(fmt.Sprintf("❌ FATAL: failed to load config file %s: %v", cfg.ConfigFile, err))
		}
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func requireEnvSlice(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return splitAndTrim(v)
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
