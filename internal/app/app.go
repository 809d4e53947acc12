package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/nba-advisor/external/balldontlie"
	"github.com/riskibarqy/nba-advisor/internal/config"
	"github.com/riskibarqy/nba-advisor/internal/infrastructure/cachestore/filestore"
	"github.com/riskibarqy/nba-advisor/internal/infrastructure/cachestore/pgstore"
	"github.com/riskibarqy/nba-advisor/internal/infrastructure/cachestore/redisstore"
	"github.com/riskibarqy/nba-advisor/internal/infrastructure/completion"
	cacherepo "github.com/riskibarqy/nba-advisor/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/nba-advisor/internal/platform/cache"
	"github.com/riskibarqy/nba-advisor/internal/platform/logging"
	"github.com/riskibarqy/nba-advisor/internal/platform/resilience"
	"github.com/riskibarqy/nba-advisor/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

// App holds the services the commands run against.
type App struct {
	Analysis *usecase.AnalysisService
	Advisor  *usecase.AdvisorService
	Warm     *usecase.WarmService
	Store    *cache.Store

	closers []func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	policies, err := loadPolicies(cfg.CachePolicyFile)
	if err != nil {
		return nil, err
	}

	breaker := resilience.CircuitBreakerConfig{
		Enabled:          cfg.CircuitEnabled,
		FailureThreshold: cfg.CircuitFailureCount,
		OpenTimeout:      cfg.CircuitOpenTimeout,
		HalfOpenMaxReq:   cfg.CircuitHalfOpenMaxReq,
	}

	client, err := balldontlie.NewClient(balldontlie.ClientConfig{
		V1BaseURL:      cfg.BalldontlieV1URL,
		V2BaseURL:      cfg.BalldontlieV2URL,
		APIKey:         cfg.BalldontlieAPIKey,
		Timeout:        cfg.BalldontlieTimeout,
		MaxRetries:     cfg.BalldontlieMaxRetries,
		MaxPages:       cfg.BalldontlieMaxPages,
		PerPage:        cfg.BalldontliePerPage,
		RatePerMinute:  cfg.BalldontlieRatePerMinute,
		Logger:         logger,
		CircuitBreaker: breaker,
	})
	if err != nil {
		return nil, err
	}

	a := &App{}
	backend, err := a.newCacheBackend(ctx, cfg, policies, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	// A shared load drains at most MaxPages requests.
	loadTimeout := cfg.BalldontlieTimeout * time.Duration(cfg.BalldontlieMaxPages)
	a.Store = cache.NewStore(backend, cache.WithLogger(logger), cache.WithLoadTimeout(loadTimeout))

	raw := balldontlie.NewRepositories(client)
	repos := usecase.AnalysisRepositories{
		Teams:    cacherepo.NewTeamRepository(raw.Teams, a.Store, policies),
		Players:  cacherepo.NewPlayerRepository(raw.Players, a.Store, policies),
		Stats:    cacherepo.NewStatsRepository(raw.Stats, a.Store, policies),
		Injuries: cacherepo.NewInjuryRepository(raw.Injuries, a.Store, policies),
		Games:    cacherepo.NewGameRepository(raw.Games, a.Store, policies),
		Lineups:  cacherepo.NewLineupRepository(raw.Lineups, a.Store, policies),
		Odds:     cacherepo.NewOddsRepository(raw.Odds, a.Store, policies),
	}
	analysisCfg := usecase.AnalysisConfig{
		Season:  cfg.Season,
		Workers: cfg.AnalysisWorkers,
	}

	var completer usecase.Completer
	if cfg.CompletionEnabled {
		completionClient, err := completion.NewClient(completion.Config{
			URL:            cfg.CompletionURL,
			APIKey:         cfg.CompletionAPIKey,
			Model:          cfg.CompletionModel,
			MaxTokens:      cfg.CompletionMaxTokens,
			Timeout:        cfg.CompletionTimeout,
			Logger:         logger,
			CircuitBreaker: breaker,
		})
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("build completion client: %w", err)
		}
		completer = completionClient
	}

	a.Analysis = usecase.NewAnalysisService(repos, policies, analysisCfg, logger)
	a.Advisor = usecase.NewAdvisorService(a.Analysis, completer, logger)
	a.Warm = usecase.NewWarmService(repos, analysisCfg, logger)

	logger.Info("advisor wired",
		"cache_backend", cfg.CacheBackend,
		"season", cfg.Season,
		"completion_enabled", cfg.CompletionEnabled,
	)
	return a, nil
}

// Close releases backend connections in reverse order of acquisition.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

func (a *App) newCacheBackend(ctx context.Context, cfg config.Config, policies usecase.Policies, logger *logging.Logger) (cache.Backend, error) {
	switch cfg.CacheBackend {
	case config.CacheBackendMemory:
		return cache.NewMemoryBackend(), nil
	case config.CacheBackendFile, "":
		return filestore.New(cfg.CacheDir, logger)
	case config.CacheBackendRedis:
		backend, err := redisstore.Dial(ctx, redisstore.Config{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			Retention: policies.MaxTTL(),
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, backend.Close)
		return backend, nil
	case config.CacheBackendPostgres:
		db, err := openDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return pgstore.New(db, logger), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.CacheBackend)
	}
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.ServiceName)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func loadPolicies(path string) (usecase.Policies, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return usecase.DefaultPolicies(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cache policy file %s: %w", path, err)
	}
	policies, err := usecase.LoadPolicies(raw)
	if err != nil {
		return nil, fmt.Errorf("load cache policy file %s: %w", path, err)
	}
	return policies, nil
}
