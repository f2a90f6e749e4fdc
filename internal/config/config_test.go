package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// setValidBase sets the minimum env required for Load() to succeed.
func setValidBase(t *testing.T) {
	t.Helper()
	t.Setenv("LEGISCAN_API_KEY", "test-key")
}

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	setValidBase(t)
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_DefaultsAndOverrides(t *testing.T) {
	setValidBase(t)

	// Server timeouts / sizes (valid)
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	// Logging
	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("API_BASE_PATH", "api/v1/") // no leading slash + trailing slash -> "/api/v1"

	// Upstream
	t.Setenv("LEGISCAN_BASE_URL", "https://api.example.test/")
	t.Setenv("UPSTREAM_TIMEOUT", "9s")
	t.Setenv("LEGISCAN_STATE", "va") // uppercased

	// Quota
	t.Setenv("QUOTA_MONTHLY_LIMIT", "1000")
	t.Setenv("QUOTA_ALERT_THRESHOLD", "800")
	t.Setenv("QUOTA_ALERT_WEBHOOK", "https://hooks.example.test/q")
	t.Setenv("QUOTA_PERIOD_EXPIRY", "800h")

	// Bulk admission
	t.Setenv("BULK_PER_WINDOW", "3")
	t.Setenv("BULK_WINDOW", "30m")

	// Cache / snapshot store
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CACHE_PREFIX", "vbc")
	t.Setenv("DB_PATH", "db.sqlite")

	// Rate limiting (use invalids for parse to fall back to defaults)
	t.Setenv("RATE_RPS", "x")      // -> default 5.0
	t.Setenv("RATE_BURST", "nope") // -> default 10

	// Web protection
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	// OTEL
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Server
	if cfg.Port != "8088" ||
		cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != 1*time.Second ||
		cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second ||
		cfg.MaxHeaderBytes != 8192 ||
		cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}

	// Logging
	if cfg.LogLevel != "warn" || !cfg.LogPretty || cfg.APIBasePath != "/api/v1" {
		t.Fatalf("logging fields unexpected: %+v", cfg)
	}

	// Upstream
	if cfg.Upstream.APIKey != "test-key" ||
		cfg.Upstream.BaseURL != "https://api.example.test/" ||
		cfg.Upstream.Timeout != 9*time.Second ||
		cfg.Upstream.State != "VA" {
		t.Fatalf("upstream fields unexpected: %+v", cfg.Upstream)
	}

	// Quota
	if cfg.Quota.MonthlyLimit != 1000 ||
		cfg.Quota.AlertThreshold != 800 ||
		cfg.Quota.AlertWebhook != "https://hooks.example.test/q" ||
		cfg.Quota.PeriodExpiry != 800*time.Hour {
		t.Fatalf("quota fields unexpected: %+v", cfg.Quota)
	}

	// Bulk
	if cfg.Bulk.PerWindow != 3 || cfg.Bulk.Window != 30*time.Minute {
		t.Fatalf("bulk fields unexpected: %+v", cfg.Bulk)
	}

	// Cache / snapshot store
	if cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 2 || cfg.CachePrefix != "vbc" || cfg.DBPath != "db.sqlite" {
		t.Fatalf("cache fields unexpected: %+v", cfg)
	}

	// Rate limiting (parse fallback to defaults)
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Fatalf("rate limiting unexpected: %+v", cfg)
	}

	// Web protection
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors origins unexpected: %#v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security unexpected: %+v", cfg.Security)
	}

	// OTEL
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure || cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel unexpected: %+v", cfg.OTEL)
	}
}

// --- Load validations (each case triggers exactly one validation error) ---

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"invalid LOG_LEVEL", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"missing API key", map[string]string{"LEGISCAN_API_KEY": " "}, "LEGISCAN_API_KEY"},
		{"bad upstream timeout", map[string]string{"UPSTREAM_TIMEOUT": "-1s"}, "UPSTREAM_TIMEOUT"},
		{"bad state code", map[string]string{"LEGISCAN_STATE": "VIR"}, "LEGISCAN_STATE"},
		{"threshold above limit", map[string]string{"QUOTA_MONTHLY_LIMIT": "100", "QUOTA_ALERT_THRESHOLD": "200"}, "QUOTA_ALERT_THRESHOLD"},
		{"period expiry too short", map[string]string{"QUOTA_PERIOD_EXPIRY": "24h"}, "QUOTA_PERIOD_EXPIRY"},
		{"zero bulk window", map[string]string{"BULK_WINDOW": "-5m"}, "BULK_WINDOW"},
		{"blank cache prefix", map[string]string{"CACHE_PREFIX": " "}, "CACHE_PREFIX"},
		{"blank db path", map[string]string{"DB_PATH": " "}, "DB_PATH"},
		{"negative rate rps", map[string]string{"RATE_RPS": "-1"}, "RATE_RPS"},
		{"sampler out of range", map[string]string{"OTEL_TRACES_SAMPLER_ARG": "1.5"}, "OTEL_TRACES_SAMPLER_ARG"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setValidBase(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %s", err, tc.want)
			}
		})
	}
}

// --- helpers ---

func TestNormalizeBasePath(t *testing.T) {
	cases := map[string]string{
		"":         "/",
		"/":        "/",
		"api":      "/api",
		"/api/":    "/api",
		" /api/v1": "/api/v1",
		"api/v1/":  "/api/v1",
	}
	for in, want := range cases {
		if got := normalizeBasePath(in); got != want {
			t.Errorf("normalizeBasePath(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestGetBool_Parsing(t *testing.T) {
	t.Setenv("X_BOOL", "ON")
	if !getbool("X_BOOL", false) {
		t.Fatalf("ON should parse true")
	}
	t.Setenv("X_BOOL", "off")
	if getbool("X_BOOL", true) {
		t.Fatalf("off should parse false")
	}
	t.Setenv("X_BOOL", "banana")
	if !getbool("X_BOOL", true) {
		t.Fatalf("unparseable should fall back to default")
	}
}
