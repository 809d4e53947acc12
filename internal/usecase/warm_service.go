package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/nba-advisor/internal/domain/game"
	"github.com/riskibarqy/nba-advisor/internal/domain/player"
	"github.com/riskibarqy/nba-advisor/internal/domain/stats"
	"github.com/riskibarqy/nba-advisor/internal/domain/team"
	"github.com/riskibarqy/nba-advisor/internal/platform/logging"
	"github.com/robfig/cron/v3"
)

// WarmReport summarizes one warm run.
type WarmReport struct {
	Date   string
	Games  int
	Tasks  int
	Failed int
}

// WarmService prefetches a day's entities through the cache-backed repositories so
// later analyses are served from cache.
type WarmService struct {
	repos  AnalysisRepositories
	cfg    AnalysisConfig
	logger *logging.Logger
	now    func() time.Time
}

func NewWarmService(repos AnalysisRepositories, cfg AnalysisConfig, logger *logging.Logger) *WarmService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.SeasonType == "" {
		cfg.SeasonType = stats.SeasonTypeRegular
	}
	if cfg.RecentGames <= 0 {
		cfg.RecentGames = defaultRecentGames
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultSlateWorkers
	}
	return &WarmService{
		repos:  repos,
		cfg:    cfg,
		logger: logger.Named("warm"),
		now:    time.Now,
	}
}

type warmTask struct {
	name string
	run  func(ctx context.Context) error
}

// Warm loads teams and the day's games, then every unfinished game's rosters, averages,
// recent games, odds and props. Per-task failures are counted, not returned.
func (s *WarmService) Warm(ctx context.Context, day time.Time) (WarmReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WarmService.Warm")
	defer span.End()

	date := day.Format(game.DateLayout)
	out := WarmReport{Date: date}

	if _, err := s.repos.Teams.List(ctx); err != nil {
		return out, &FetchError{Kind: KindTeams, Key: fetchKey(KindTeams, "all"), Err: err}
	}
	games, err := s.repos.Games.ListByDate(ctx, date)
	if err != nil {
		return out, &FetchError{Kind: KindGames, Key: fetchKey(KindGames, "date=%s", date), Err: err}
	}
	games = game.Upcoming(games)
	out.Games = len(games)

	tasks := make([]warmTask, 0, len(games)*3)
	for _, g := range games {
		season := g.Season
		if season <= 0 {
			season = s.cfg.Season
		}
		if season <= 0 {
			season = game.SeasonFor(day)
		}
		tasks = append(tasks,
			s.sideTask(g.HomeTeam, season),
			s.sideTask(g.VisitorTeam, season),
			s.marketTask(g.ID),
		)
	}
	out.Tasks = len(tasks)
	if len(tasks) == 0 {
		return out, nil
	}

	pool, err := ants.NewPool(s.cfg.Workers)
	if err != nil {
		return out, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var failed atomic.Int32
	var workers sync.WaitGroup
	for _, task := range tasks {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			if err := task.run(ctx); err != nil {
				failed.Add(1)
				s.logger.WarnContext(ctx, "warm task failed", "task", task.name, "error", err)
			}
		}); err != nil {
			workers.Done()
			failed.Add(1)
			s.logger.WarnContext(ctx, "submit warm task failed", "task", task.name, "error", err)
		}
	}
	workers.Wait()

	out.Failed = int(failed.Load())
	s.logger.InfoContext(ctx, "cache warm finished",
		"date", date,
		"games", out.Games,
		"tasks", out.Tasks,
		"failed", out.Failed,
	)
	return out, nil
}

func (s *WarmService) sideTask(t team.Team, season int) warmTask {
	return warmTask{
		name: fmt.Sprintf("team=%d", t.ID),
		run: func(ctx context.Context) error {
			roster, err := s.repos.Players.ListByTeam(ctx, t.ID)
			if err != nil {
				return fmt.Errorf("roster: %w", err)
			}
			if len(roster) > 0 {
				if _, err := s.repos.Stats.ListPlayerAverages(ctx, stats.PlayerQuery{
					TeamID: t.ID, PlayerIDs: player.IDs(roster), Season: season, SeasonType: s.cfg.SeasonType,
				}); err != nil {
					return fmt.Errorf("player averages: %w", err)
				}
			}
			if _, _, err := s.repos.Stats.GetTeamAverage(ctx, stats.TeamQuery{
				TeamID: t.ID, Season: season, SeasonType: s.cfg.SeasonType,
			}); err != nil {
				return fmt.Errorf("team average: %w", err)
			}
			if _, err := s.repos.Games.ListRecentFinal(ctx, t.ID, season, s.cfg.RecentGames); err != nil {
				return fmt.Errorf("recent games: %w", err)
			}
			return nil
		},
	}
}

func (s *WarmService) marketTask(gameID int64) warmTask {
	return warmTask{
		name: fmt.Sprintf("game=%d", gameID),
		run: func(ctx context.Context) error {
			if _, err := s.repos.Odds.ListGameOdds(ctx, gameID); err != nil {
				return fmt.Errorf("odds: %w", err)
			}
			if _, err := s.repos.Odds.ListPlayerProps(ctx, gameID); err != nil {
				return fmt.Errorf("player props: %w", err)
			}
			return nil
		},
	}
}

// Schedule runs Warm for the current day on a six-field cron schedule until ctx is done.
// A run still in progress when the next tick fires causes that tick to be skipped.
func (s *WarmService) Schedule(ctx context.Context, spec string) error {
	scheduler := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := scheduler.AddFunc(spec, func() {
		if _, err := s.Warm(ctx, s.now()); err != nil {
			s.logger.ErrorContext(ctx, "scheduled cache warm failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("%w: warm schedule %q: %v", ErrInvalidInput, spec, err)
	}

	s.logger.InfoContext(ctx, "cache warm scheduled", "schedule", spec)
	scheduler.Start()
	<-ctx.Done()
	<-scheduler.Stop().Done()
	return nil
}
