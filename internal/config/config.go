package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/nba-advisor/internal/platform/logging"
)

const (
	CacheBackendMemory   = "memory"
	CacheBackendFile     = "file"
	CacheBackendRedis    = "redis"
	CacheBackendPostgres = "postgres"
)

// Config stores runtime configuration for the advisor.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level

	BalldontlieAPIKey        string
	BalldontlieV1URL         string
	BalldontlieV2URL         string
	BalldontlieTimeout       time.Duration
	BalldontlieMaxRetries    int
	BalldontlieMaxPages      int
	BalldontliePerPage       int
	BalldontlieRatePerMinute int

	CircuitEnabled        bool
	CircuitFailureCount   int
	CircuitOpenTimeout    time.Duration
	CircuitHalfOpenMaxReq int

	CacheBackend    string
	CacheDir        string
	CachePolicyFile string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	DBURL           string

	CompletionEnabled   bool
	CompletionURL       string
	CompletionAPIKey    string
	CompletionModel     string
	CompletionMaxTokens int
	CompletionTimeout   time.Duration

	AnalysisWorkers int
	Season          int
	WarmSchedule    string

	UptraceEnabled         bool
	UptraceDSN             string
	UptraceLogsEnabled     bool
	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
	PyroscopeUploadRate    time.Duration
}

func Load() (Config, error) {
	return load(time.Now())
}

func load(now time.Time) (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:            appEnv,
		ServiceName:       getEnv("SERVICE_NAME", "nba-advisor"),
		ServiceVersion:    getEnv("SERVICE_VERSION", "dev"),
		LogLevel:          parseLogLevel(getEnv("LOG_LEVEL", "info")),
		BalldontlieAPIKey: strings.TrimSpace(getEnv("BALLDONTLIE_API_KEY", "")),
		BalldontlieV1URL:  strings.TrimSpace(getEnv("BALLDONTLIE_V1_URL", "https://api.balldontlie.io/v1")),
		BalldontlieV2URL:  strings.TrimSpace(getEnv("BALLDONTLIE_V2_URL", "https://api.balldontlie.io/v2")),
		CacheBackend:      strings.ToLower(strings.TrimSpace(getEnv("CACHE_BACKEND", CacheBackendFile))),
		CacheDir:          strings.TrimSpace(getEnv("CACHE_DIR", "./cache")),
		CachePolicyFile:   strings.TrimSpace(getEnv("CACHE_POLICY_FILE", "")),
		RedisAddr:         strings.TrimSpace(getEnv("REDIS_ADDR", "")),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		DBURL:             strings.TrimSpace(getEnv("DB_URL", "")),
		CompletionURL:     strings.TrimSpace(getEnv("COMPLETION_URL", "https://api.anthropic.com/v1/messages")),
		CompletionAPIKey:  strings.TrimSpace(getEnv("COMPLETION_API_KEY", "")),
		CompletionModel:   strings.TrimSpace(getEnv("COMPLETION_MODEL", "")),
		WarmSchedule:      strings.TrimSpace(getEnv("WARM_SCHEDULE", "0 */10 * * * *")),
	}

	if cfg.BalldontlieTimeout, err = getEnvAsDuration("BALLDONTLIE_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.BalldontlieTimeout <= 0 {
		return Config{}, fmt.Errorf("BALLDONTLIE_TIMEOUT must be > 0")
	}
	if cfg.BalldontlieMaxRetries, err = getEnvAsInt("BALLDONTLIE_MAX_RETRIES", 2); err != nil {
		return Config{}, fmt.Errorf("parse BALLDONTLIE_MAX_RETRIES: %w", err)
	}
	if cfg.BalldontlieMaxRetries < 0 {
		return Config{}, fmt.Errorf("BALLDONTLIE_MAX_RETRIES must be >= 0")
	}
	if cfg.BalldontlieMaxPages, err = getEnvAsInt("BALLDONTLIE_MAX_PAGES", 50); err != nil {
		return Config{}, fmt.Errorf("parse BALLDONTLIE_MAX_PAGES: %w", err)
	}
	if cfg.BalldontlieMaxPages < 1 {
		return Config{}, fmt.Errorf("BALLDONTLIE_MAX_PAGES must be >= 1")
	}
	if cfg.BalldontliePerPage, err = getEnvAsInt("BALLDONTLIE_PER_PAGE", 100); err != nil {
		return Config{}, fmt.Errorf("parse BALLDONTLIE_PER_PAGE: %w", err)
	}
	if cfg.BalldontliePerPage < 1 || cfg.BalldontliePerPage > 100 {
		return Config{}, fmt.Errorf("BALLDONTLIE_PER_PAGE must be between 1 and 100")
	}
	if cfg.BalldontlieRatePerMinute, err = getEnvAsInt("BALLDONTLIE_RATE_PER_MINUTE", 60); err != nil {
		return Config{}, fmt.Errorf("parse BALLDONTLIE_RATE_PER_MINUTE: %w", err)
	}
	if cfg.BalldontlieRatePerMinute < 0 {
		return Config{}, fmt.Errorf("BALLDONTLIE_RATE_PER_MINUTE must be >= 0")
	}

	if cfg.CircuitEnabled, err = getEnvAsBool("CIRCUIT_BREAKER_ENABLED", true); err != nil {
		return Config{}, err
	}
	if cfg.CircuitFailureCount, err = getEnvAsInt("CIRCUIT_BREAKER_FAILURE_THRESHOLD", 5); err != nil {
		return Config{}, fmt.Errorf("parse CIRCUIT_BREAKER_FAILURE_THRESHOLD: %w", err)
	}
	if cfg.CircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("CIRCUIT_BREAKER_FAILURE_THRESHOLD must be >= 1")
	}
	if cfg.CircuitOpenTimeout, err = getEnvAsDuration("CIRCUIT_BREAKER_OPEN_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.CircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("CIRCUIT_BREAKER_OPEN_TIMEOUT must be > 0")
	}
	if cfg.CircuitHalfOpenMaxReq, err = getEnvAsInt("CIRCUIT_BREAKER_HALF_OPEN_MAX_REQ", 2); err != nil {
		return Config{}, fmt.Errorf("parse CIRCUIT_BREAKER_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.CircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("CIRCUIT_BREAKER_HALF_OPEN_MAX_REQ must be >= 1")
	}

	if err := validateCacheBackend(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.CompletionEnabled, err = getEnvAsBool("COMPLETION_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.CompletionMaxTokens, err = getEnvAsInt("COMPLETION_MAX_TOKENS", 2048); err != nil {
		return Config{}, fmt.Errorf("parse COMPLETION_MAX_TOKENS: %w", err)
	}
	if cfg.CompletionMaxTokens < 1 {
		return Config{}, fmt.Errorf("COMPLETION_MAX_TOKENS must be >= 1")
	}
	if cfg.CompletionTimeout, err = getEnvAsDuration("COMPLETION_TIMEOUT", 60*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.CompletionTimeout <= 0 {
		return Config{}, fmt.Errorf("COMPLETION_TIMEOUT must be > 0")
	}
	if cfg.CompletionEnabled {
		if cfg.CompletionURL == "" {
			return Config{}, fmt.Errorf("COMPLETION_URL is required when COMPLETION_ENABLED=true")
		}
		if cfg.CompletionModel == "" {
			return Config{}, fmt.Errorf("COMPLETION_MODEL is required when COMPLETION_ENABLED=true")
		}
	}

	if cfg.AnalysisWorkers, err = getEnvAsInt("ANALYSIS_WORKERS", 4); err != nil {
		return Config{}, fmt.Errorf("parse ANALYSIS_WORKERS: %w", err)
	}
	if cfg.AnalysisWorkers < 1 {
		return Config{}, fmt.Errorf("ANALYSIS_WORKERS must be >= 1")
	}
	if cfg.Season, err = getEnvAsInt("SEASON", SeasonFor(now)); err != nil {
		return Config{}, fmt.Errorf("parse SEASON: %w", err)
	}
	if cfg.Season < 1946 {
		return Config{}, fmt.Errorf("SEASON must be >= 1946")
	}
	if cfg.WarmSchedule == "" {
		return Config{}, fmt.Errorf("WARM_SCHEDULE cannot be empty")
	}

	if cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", false); err != nil {
		return Config{}, err
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if cfg.UptraceLogsEnabled, err = getEnvAsBool("UPTRACE_LOGS_ENABLED", true); err != nil {
		return Config{}, err
	}

	if cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", false); err != nil {
		return Config{}, err
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	if cfg.PyroscopeUploadRate, err = getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	return cfg, nil
}

func validateCacheBackend(cfg *Config) error {
	var err error
	switch cfg.CacheBackend {
	case CacheBackendMemory:
	case CacheBackendFile:
		if cfg.CacheDir == "" {
			return fmt.Errorf("CACHE_DIR is required when CACHE_BACKEND=file")
		}
	case CacheBackendRedis:
		if cfg.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when CACHE_BACKEND=redis")
		}
		if cfg.RedisDB, err = getEnvAsInt("REDIS_DB", 0); err != nil {
			return fmt.Errorf("parse REDIS_DB: %w", err)
		}
		if cfg.RedisDB < 0 {
			return fmt.Errorf("REDIS_DB must be >= 0")
		}
	case CacheBackendPostgres:
		if cfg.DBURL == "" {
			return fmt.Errorf("DB_URL is required when CACHE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("invalid CACHE_BACKEND %q: valid values are %s, %s, %s, %s",
			cfg.CacheBackend, CacheBackendMemory, CacheBackendFile, CacheBackendRedis, CacheBackendPostgres)
	}
	return nil
}

// SeasonFor returns the starting year of the NBA season in progress at now.
// Seasons start in October.
func SeasonFor(now time.Time) int {
	if now.Month() >= time.October {
		return now.Year()
	}
	return now.Year() - 1
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
