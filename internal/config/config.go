// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, the LegiScan upstream credentials, quota
// limits, cache backends and TTLs, bulk-operation pacing, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "legis-gateway")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// UpstreamConfig holds LegiScan connection settings.
type UpstreamConfig struct {
	APIKey  string        // LEGISCAN_API_KEY (required)
	BaseURL string        // LEGISCAN_BASE_URL
	Timeout time.Duration // UPSTREAM_TIMEOUT (bounds every upstream HTTP call)
	State   string        // LEGISCAN_STATE (two-letter jurisdiction, default "VA")
}

// QuotaConfig holds the monthly call-budget settings.
type QuotaConfig struct {
	MonthlyLimit   int           // QUOTA_MONTHLY_LIMIT (hard cap per calendar month)
	AlertThreshold int           // QUOTA_ALERT_THRESHOLD (one-shot warning, < limit)
	AlertWebhook   string        // QUOTA_ALERT_WEBHOOK (optional outbound POST)
	PeriodExpiry   time.Duration // QUOTA_PERIOD_EXPIRY (counter key TTL, >= 32 days)
}

// BulkConfig controls admission of quota-expensive bulk operations.
type BulkConfig struct {
	PerWindow int           // BULK_PER_WINDOW (admissions per window)
	Window    time.Duration // BULK_WINDOW (rolling window length)
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging
	LogLevel    string // debug|info|warn|error|fatal|panic
	LogPretty   bool   // pretty console logs in dev
	APIBasePath string // base path for API routes

	// Upstream / quota / bulk pacing
	Upstream UpstreamConfig
	Quota    QuotaConfig
	Bulk     BulkConfig

	// Cache
	RedisAddr     string // REDIS_ADDR; empty selects the in-process store
	RedisPassword string // REDIS_PASSWORD
	RedisDB       int    // REDIS_DB
	CachePrefix   string // CACHE_PREFIX for all gateway keys

	// Change-detection snapshot store (SQLite)
	DBPath string // DB_PATH

	// Edge rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:    strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:   getbool("LOG_PRETTY", false),
		APIBasePath: normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Upstream
		Upstream: UpstreamConfig{
			APIKey:  getenv("LEGISCAN_API_KEY", ""),
			BaseURL: getenv("LEGISCAN_BASE_URL", "https://api.legiscan.com/"),
			Timeout: getdur("UPSTREAM_TIMEOUT", 15*time.Second),
			State:   strings.ToUpper(getenv("LEGISCAN_STATE", "VA")),
		},

		// Quota
		Quota: QuotaConfig{
			MonthlyLimit:   getint("QUOTA_MONTHLY_LIMIT", 30000),
			AlertThreshold: getint("QUOTA_ALERT_THRESHOLD", 25000),
			AlertWebhook:   getenv("QUOTA_ALERT_WEBHOOK", ""),
			PeriodExpiry:   getdur("QUOTA_PERIOD_EXPIRY", 32*24*time.Hour),
		},

		// Bulk admission
		Bulk: BulkConfig{
			PerWindow: getint("BULK_PER_WINDOW", 2),
			Window:    getdur("BULK_WINDOW", time.Hour),
		},

		// Cache
		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),
		CachePrefix:   getenv("CACHE_PREFIX", "legis"),

		// Snapshot store
		DBPath: getenv("DB_PATH", "gateway.db"),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "legis-gateway"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.Upstream.APIKey) == "" {
		return cfg, errors.New("LEGISCAN_API_KEY must not be empty")
	}
	if strings.TrimSpace(cfg.Upstream.BaseURL) == "" {
		return cfg, errors.New("LEGISCAN_BASE_URL must not be empty")
	}
	if cfg.Upstream.Timeout <= 0 {
		return cfg, errors.New("UPSTREAM_TIMEOUT must be > 0")
	}
	if len(cfg.Upstream.State) != 2 {
		return cfg, errors.New("LEGISCAN_STATE must be a two-letter jurisdiction code")
	}
	if cfg.Quota.MonthlyLimit <= 0 {
		return cfg, errors.New("QUOTA_MONTHLY_LIMIT must be > 0")
	}
	if cfg.Quota.AlertThreshold <= 0 || cfg.Quota.AlertThreshold >= cfg.Quota.MonthlyLimit {
		return cfg, errors.New("QUOTA_ALERT_THRESHOLD must be > 0 and below QUOTA_MONTHLY_LIMIT")
	}
	if cfg.Quota.PeriodExpiry < 32*24*time.Hour {
		return cfg, errors.New("QUOTA_PERIOD_EXPIRY must cover at least 32 days")
	}
	if cfg.Bulk.PerWindow < 1 {
		return cfg, errors.New("BULK_PER_WINDOW must be >= 1")
	}
	if cfg.Bulk.Window <= 0 {
		return cfg, errors.New("BULK_WINDOW must be > 0")
	}
	if strings.TrimSpace(cfg.CachePrefix) == "" {
		return cfg, errors.New("CACHE_PREFIX must not be empty")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
