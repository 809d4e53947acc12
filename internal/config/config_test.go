package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/nba-advisor/internal/platform/logging"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CACHE_BACKEND", "")
	t.Setenv("SEASON", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := load(time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ServiceName != "nba-advisor" {
		t.Fatalf("unexpected ServiceName: %q", cfg.ServiceName)
	}
	if cfg.CacheBackend != CacheBackendFile || cfg.CacheDir != "./cache" {
		t.Fatalf("unexpected cache defaults: backend=%q dir=%q", cfg.CacheBackend, cfg.CacheDir)
	}
	if cfg.BalldontlieMaxPages != 50 || cfg.BalldontliePerPage != 100 || cfg.BalldontlieTimeout != 10*time.Second {
		t.Fatalf("unexpected balldontlie defaults: %+v", cfg)
	}
	if !cfg.CircuitEnabled || cfg.CircuitFailureCount != 5 || cfg.CircuitOpenTimeout != 15*time.Second {
		t.Fatalf("unexpected circuit defaults: %+v", cfg)
	}
	if cfg.CompletionEnabled || cfg.CompletionMaxTokens != 2048 || cfg.CompletionTimeout != time.Minute {
		t.Fatalf("unexpected completion defaults: %+v", cfg)
	}
	if cfg.Season != 2025 {
		t.Fatalf("expected season derived from date, got %d", cfg.Season)
	}
	if cfg.AnalysisWorkers != 4 || cfg.WarmSchedule != "0 */10 * * * *" {
		t.Fatalf("unexpected analysis defaults: %+v", cfg)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected LogLevel: %v", cfg.LogLevel)
	}
}

func TestSeasonFor(t *testing.T) {
	cases := []struct {
		date time.Time
		want int
	}{
		{date: time.Date(2025, time.September, 30, 23, 0, 0, 0, time.UTC), want: 2024},
		{date: time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), want: 2025},
		{date: time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC), want: 2025},
		{date: time.Date(2026, time.December, 25, 0, 0, 0, 0, time.UTC), want: 2026},
	}
	for _, tc := range cases {
		if got := SeasonFor(tc.date); got != tc.want {
			t.Fatalf("SeasonFor(%s)=%d want %d", tc.date.Format("2006-01-02"), got, tc.want)
		}
	}
}

func TestLoad_SeasonOverride(t *testing.T) {
	t.Setenv("SEASON", "2023")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Season != 2023 {
		t.Fatalf("unexpected Season: %d", cfg.Season)
	}

	t.Setenv("SEASON", "1900")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for season before 1946")
	}
}

func TestLoad_CacheBackendValidation(t *testing.T) {
	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("CACHE_BACKEND", "sqlite")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown CACHE_BACKEND")
		}
	})

	t.Run("redis requires address", func(t *testing.T) {
		t.Setenv("CACHE_BACKEND", "redis")
		t.Setenv("REDIS_ADDR", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when CACHE_BACKEND=redis without REDIS_ADDR")
		}
	})

	t.Run("redis parses db", func(t *testing.T) {
		t.Setenv("CACHE_BACKEND", "Redis")
		t.Setenv("REDIS_ADDR", "localhost:6379")
		t.Setenv("REDIS_DB", "3")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.CacheBackend != CacheBackendRedis || cfg.RedisDB != 3 {
			t.Fatalf("unexpected redis config: backend=%q db=%d", cfg.CacheBackend, cfg.RedisDB)
		}
	})

	t.Run("postgres requires db url", func(t *testing.T) {
		t.Setenv("CACHE_BACKEND", "postgres")
		t.Setenv("DB_URL", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when CACHE_BACKEND=postgres without DB_URL")
		}
	})
}

func TestLoad_CompletionRequiresModelWhenEnabled(t *testing.T) {
	t.Setenv("COMPLETION_ENABLED", "true")
	t.Setenv("COMPLETION_MODEL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when COMPLETION_ENABLED=true without COMPLETION_MODEL")
	}

	t.Setenv("COMPLETION_MODEL", "some-model")
	t.Setenv("COMPLETION_TIMEOUT", "90s")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.CompletionEnabled || cfg.CompletionModel != "some-model" || cfg.CompletionTimeout != 90*time.Second {
		t.Fatalf("unexpected completion config: %+v", cfg)
	}
}

func TestLoad_RangeValidation(t *testing.T) {
	cases := []struct {
		key   string
		value string
	}{
		{key: "BALLDONTLIE_TIMEOUT", value: "0s"},
		{key: "BALLDONTLIE_TIMEOUT", value: "soon"},
		{key: "BALLDONTLIE_MAX_RETRIES", value: "-1"},
		{key: "BALLDONTLIE_MAX_PAGES", value: "0"},
		{key: "BALLDONTLIE_PER_PAGE", value: "101"},
		{key: "CIRCUIT_BREAKER_ENABLED", value: "maybe"},
		{key: "CIRCUIT_BREAKER_FAILURE_THRESHOLD", value: "0"},
		{key: "COMPLETION_MAX_TOKENS", value: "0"},
		{key: "ANALYSIS_WORKERS", value: "0"},
		{key: "PYROSCOPE_UPLOAD_RATE", value: "-1s"},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-other=1, uptrace-dsn='https://token@api.uptrace.dev?grpc=4317'")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("SERVICE_NAME", "advisor-worker")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://pyroscope:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "advisor-worker" {
		t.Fatalf("unexpected PyroscopeAppName: %q", cfg.PyroscopeAppName)
	}
}

func TestParseLogLevel(t *testing.T) {
	if parseLogLevel("WARNING") != logging.LevelWarn {
		t.Fatalf("expected warn level")
	}
	if parseLogLevel("verbose") != logging.LevelInfo {
		t.Fatalf("expected info fallback")
	}
}
