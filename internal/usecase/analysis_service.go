package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/nba-advisor/internal/domain/analysis"
	"github.com/riskibarqy/nba-advisor/internal/domain/game"
	"github.com/riskibarqy/nba-advisor/internal/domain/injury"
	"github.com/riskibarqy/nba-advisor/internal/domain/lineup"
	"github.com/riskibarqy/nba-advisor/internal/domain/odds"
	"github.com/riskibarqy/nba-advisor/internal/domain/player"
	"github.com/riskibarqy/nba-advisor/internal/domain/stats"
	"github.com/riskibarqy/nba-advisor/internal/domain/team"
	"github.com/riskibarqy/nba-advisor/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultRecentGames    = 5
	defaultSlateWorkers   = 4
	defaultStatsSeasonTyp = stats.SeasonTypeRegular
)

var queryValidator = validator.New()

// MatchupQuery names two teams by free text and the game date (YYYY-MM-DD).
// Season zero means the season of Date.
type MatchupQuery struct {
	TeamA  string `validate:"required"`
	TeamB  string `validate:"required"`
	Date   string `validate:"required,datetime=2006-01-02"`
	Season int    `validate:"omitempty,gte=1946"`
}

type AnalysisRepositories struct {
	Teams    team.Repository
	Players  player.Repository
	Stats    stats.Repository
	Injuries injury.Repository
	Games    game.Repository
	Lineups  lineup.Repository
	Odds     odds.Repository
}

type AnalysisConfig struct {
	Season      int
	SeasonType  string
	RecentGames int
	Workers     int
}

type AnalysisService struct {
	repos    AnalysisRepositories
	resolver fetchResolver
	cfg      AnalysisConfig
	logger   *logging.Logger
	now      func() time.Time
}

func NewAnalysisService(repos AnalysisRepositories, policies Policies, cfg AnalysisConfig, logger *logging.Logger) *AnalysisService {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("analysis")
	if policies == nil {
		policies = DefaultPolicies()
	}
	if cfg.SeasonType == "" {
		cfg.SeasonType = defaultStatsSeasonTyp
	}
	if cfg.RecentGames <= 0 {
		cfg.RecentGames = defaultRecentGames
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultSlateWorkers
	}

	return &AnalysisService{
		repos:    repos,
		resolver: fetchResolver{policies: policies, logger: logger},
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

func fetchKey(kind Kind, format string, args ...any) string {
	return string(kind) + ":" + fmt.Sprintf(format, args...)
}

// BuildGameAnalysis analyses both sides and the game markets concurrently. Only a
// mandatory kind (team identity, roster) fails the whole analysis.
func (s *AnalysisService) BuildGameAnalysis(ctx context.Context, g game.Game) (analysis.GameAnalysis, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.BuildGameAnalysis", attribute.Int64("game_id", g.ID))
	defer span.End()

	g, err := s.hydrateGame(ctx, g)
	if err != nil {
		return analysis.GameAnalysis{}, err
	}

	season := s.seasonOf(g)
	out := analysis.GameAnalysis{
		Game:        g,
		Season:      season,
		SeasonType:  s.cfg.SeasonType,
		GeneratedAt: s.now().UTC(),
	}

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		side, err := s.buildTeamAnalysis(ctx, g.HomeTeam, g, season)
		if err != nil {
			return err
		}
		out.Home = side
		return nil
	})
	p.Go(func(ctx context.Context) error {
		side, err := s.buildTeamAnalysis(ctx, g.VisitorTeam, g, season)
		if err != nil {
			return err
		}
		out.Visitor = side
		return nil
	})
	p.Go(func(ctx context.Context) error {
		section, err := resolve(ctx, s.resolver, KindOdds, fetchKey(KindOdds, "game=%d", g.ID), func(ctx context.Context) ([]odds.GameOdds, error) {
			quotes, err := s.repos.Odds.ListGameOdds(ctx, g.ID)
			if err != nil {
				return nil, err
			}
			return odds.LatestByVendor(quotes), nil
		})
		out.Odds = section
		return err
	})
	p.Go(func(ctx context.Context) error {
		section, err := resolve(ctx, s.resolver, KindPlayerProps, fetchKey(KindPlayerProps, "game=%d", g.ID), func(ctx context.Context) ([]odds.PlayerProp, error) {
			props, err := s.repos.Odds.ListPlayerProps(ctx, g.ID)
			if err != nil {
				return nil, err
			}
			return odds.LatestByPlayerProp(props), nil
		})
		out.Props = section
		return err
	})

	if err := p.Wait(); err != nil {
		return analysis.GameAnalysis{}, err
	}
	return out, nil
}

// buildTeamAnalysis resolves the roster first; every other section depends on it
// only for player ids and runs concurrently.
func (s *AnalysisService) buildTeamAnalysis(ctx context.Context, t team.Team, g game.Game, season int) (analysis.TeamAnalysis, error) {
	roster, err := resolve(ctx, s.resolver, KindRoster, fetchKey(KindRoster, "team=%d", t.ID), func(ctx context.Context) ([]player.Player, error) {
		return s.repos.Players.ListByTeam(ctx, t.ID)
	})
	if err != nil {
		return analysis.TeamAnalysis{}, err
	}

	side := analysis.TeamAnalysis{Team: t, Roster: roster.Value}
	seasonComposite := fmt.Sprintf("team=%d:season=%d:type=%s", t.ID, season, s.cfg.SeasonType)

	p := pool.New().WithContext(ctx).WithFirstError()
	p.Go(func(ctx context.Context) error {
		section, err := resolve(ctx, s.resolver, KindInjuries, fetchKey(KindInjuries, "team=%d", t.ID), func(ctx context.Context) ([]injury.Injury, error) {
			return s.repos.Injuries.ListByTeam(ctx, t.ID)
		})
		side.Injuries = section
		return err
	})
	p.Go(func(ctx context.Context) error {
		section, err := resolve(ctx, s.resolver, KindSeasonAverages, fetchKey(KindSeasonAverages, "%s", seasonComposite), func(ctx context.Context) ([]stats.SeasonAverage, error) {
			if len(side.Roster) == 0 {
				return []stats.SeasonAverage{}, nil
			}
			return s.repos.Stats.ListPlayerAverages(ctx, stats.PlayerQuery{
				TeamID:     t.ID,
				PlayerIDs:  player.IDs(side.Roster),
				Season:     season,
				SeasonType: s.cfg.SeasonType,
			})
		})
		side.PlayerAverages = section
		return err
	})
	p.Go(func(ctx context.Context) error {
		section, err := resolve(ctx, s.resolver, KindTeamSeasonAverages, fetchKey(KindTeamSeasonAverages, "%s", seasonComposite), func(ctx context.Context) (*stats.TeamSeasonAverage, error) {
			avg, exists, err := s.repos.Stats.GetTeamAverage(ctx, stats.TeamQuery{
				TeamID:     t.ID,
				Season:     season,
				SeasonType: s.cfg.SeasonType,
			})
			if err != nil || !exists {
				return nil, err
			}
			return &avg, nil
		})
		side.TeamAverage = section
		return err
	})
	p.Go(func(ctx context.Context) error {
		section, err := resolve(ctx, s.resolver, KindLineups, fetchKey(KindLineups, "team=%d:games=%d", t.ID, g.ID), func(ctx context.Context) ([]lineup.Entry, error) {
			if g.ID <= 0 {
				return []lineup.Entry{}, nil
			}
			return s.repos.Lineups.ListByGames(ctx, t.ID, []int64{g.ID})
		})
		side.Lineup = section
		return err
	})
	p.Go(func(ctx context.Context) error {
		section, err := s.recentForm(ctx, t, season)
		side.RecentForm = section
		return err
	})

	if err := p.Wait(); err != nil {
		return analysis.TeamAnalysis{}, err
	}
	return side, nil
}

// recentForm is the team's latest finished games with their starters. Starters stay
// empty when the lineup fetch for those games is unavailable.
func (s *AnalysisService) recentForm(ctx context.Context, t team.Team, season int) (analysis.Section[[]analysis.RecentGame], error) {
	var lineupErr error
	section, err := resolve(ctx, s.resolver, KindRecentGames, fetchKey(KindRecentGames, "team=%d:season=%d:n=%d", t.ID, season, s.cfg.RecentGames), func(ctx context.Context) ([]analysis.RecentGame, error) {
		games, err := s.repos.Games.ListRecentFinal(ctx, t.ID, season, s.cfg.RecentGames)
		if err != nil {
			return nil, err
		}
		games = game.MostRecent(game.FinalOnly(games), s.cfg.RecentGames)

		ids := game.IDs(games)
		starters, err := resolve(ctx, s.resolver, KindLineups, fetchKey(KindLineups, "team=%d:games=%s", t.ID, lineup.GameSetKey(ids)), func(ctx context.Context) ([]lineup.Entry, error) {
			return s.repos.Lineups.ListByGames(ctx, t.ID, ids)
		})
		if err != nil {
			lineupErr = err
			return nil, err
		}

		byGame := lineup.ByGame(lineup.Starters(lineup.ForTeam(starters.Value, t.ID)))
		out := make([]analysis.RecentGame, 0, len(games))
		for _, g := range games {
			out = append(out, analysis.RecentGame{Game: g, Starters: byGame[g.ID]})
		}
		return out, nil
	})
	if lineupErr != nil {
		return analysis.None[[]analysis.RecentGame](), lineupErr
	}
	return section, err
}

// BuildSlate analyses every unfinished game from the given day, in schedule order.
// A game whose analysis fails is logged and left out; the slate fails only when every
// game failed.
func (s *AnalysisService) BuildSlate(ctx context.Context, from time.Time) ([]analysis.GameAnalysis, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.BuildSlate")
	defer span.End()

	date := from.Format(game.DateLayout)
	schedule, err := resolve(ctx, s.resolver, KindUpcomingGames, fetchKey(KindUpcomingGames, "from=%s", date), func(ctx context.Context) ([]game.Game, error) {
		return s.repos.Games.ListFrom(ctx, date)
	})
	if err != nil {
		return nil, err
	}

	upcoming := game.Chronological(game.Upcoming(schedule.Value))
	if len(upcoming) == 0 {
		return []analysis.GameAnalysis{}, nil
	}

	results := make([]analysis.GameAnalysis, len(upcoming))
	errs := make([]error, len(upcoming))

	workers, err := ants.NewPool(s.cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer workers.Release()

	var wg sync.WaitGroup
	var submitErr error
	for i, g := range upcoming {
		wg.Add(1)
		if err := workers.Submit(func() {
			defer wg.Done()
			results[i], errs[i] = s.BuildGameAnalysis(ctx, g)
		}); err != nil {
			wg.Done()
			submitErr = fmt.Errorf("submit slate game=%d: %w", g.ID, err)
			break
		}
	}
	wg.Wait()
	if submitErr != nil {
		return nil, submitErr
	}

	out := make([]analysis.GameAnalysis, 0, len(upcoming))
	var firstErr error
	for i, err := range errs {
		if err != nil {
			s.logger.WarnContext(ctx, "skip slate game", "game_id", upcoming[i].ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out = append(out, results[i])
	}
	if len(out) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// ResolveTeam prefers an exact abbreviation match, then the first team by id whose
// city, name or full name contains the query.
func (s *AnalysisService) ResolveTeam(ctx context.Context, query string) (team.Team, bool, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return team.Team{}, false, nil
	}

	teams, err := s.listTeams(ctx)
	if err != nil {
		return team.Team{}, false, err
	}
	for _, t := range teams {
		if t.MatchesAbbreviation(query) {
			return t, true, nil
		}
	}
	for _, t := range teams {
		if t.Matches(query) {
			return t, true, nil
		}
	}
	return team.Team{}, false, nil
}

// FindMatchup matches both queries against each game's own teams on the date, with
// either team at home. Not finding a game is reported through Matchup.Found.
func (s *AnalysisService) FindMatchup(ctx context.Context, q MatchupQuery) (analysis.Matchup, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.FindMatchup", attribute.String("date", q.Date))
	defer span.End()

	if err := queryValidator.StructCtx(ctx, q); err != nil {
		return analysis.Matchup{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	out := analysis.Matchup{Date: q.Date}
	teamA, okA, err := s.ResolveTeam(ctx, q.TeamA)
	if err != nil {
		return analysis.Matchup{}, err
	}
	teamB, okB, err := s.ResolveTeam(ctx, q.TeamB)
	if err != nil {
		return analysis.Matchup{}, err
	}
	out.TeamA, out.TeamB = teamA, teamB
	if !okA || !okB {
		return out, nil
	}

	games, err := resolve(ctx, s.resolver, KindGames, fetchKey(KindGames, "date=%s", q.Date), func(ctx context.Context) ([]game.Game, error) {
		return s.repos.Games.ListByDate(ctx, q.Date)
	})
	if err != nil {
		return analysis.Matchup{}, err
	}
	teams, err := s.listTeams(ctx)
	if err != nil {
		return analysis.Matchup{}, err
	}
	for _, g := range games.Value {
		g = g.WithTeams(teams)
		matchedA, matchedB, ok := g.MatchTeams(q.TeamA, q.TeamB)
		if !ok {
			continue
		}
		if q.Season > 0 {
			g.Season = q.Season
		}
		out.Found = true
		out.TeamA, out.TeamB = matchedA, matchedB
		out.Game = g
		return out, nil
	}
	return out, nil
}

func (s *AnalysisService) listTeams(ctx context.Context) ([]team.Team, error) {
	section, err := resolve(ctx, s.resolver, KindTeams, fetchKey(KindTeams, "all"), s.repos.Teams.List)
	if err != nil {
		return nil, err
	}
	teams := append([]team.Team(nil), section.Value...)
	sort.SliceStable(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams, nil
}

// hydrateGame fills team names when the schedule only carried team ids.
func (s *AnalysisService) hydrateGame(ctx context.Context, g game.Game) (game.Game, error) {
	if g.HomeTeam.Abbreviation != "" && g.VisitorTeam.Abbreviation != "" {
		return g, nil
	}
	teams, err := s.listTeams(ctx)
	if err != nil {
		return game.Game{}, err
	}
	return g.WithTeams(teams), nil
}

func (s *AnalysisService) seasonOf(g game.Game) int {
	if g.Season > 0 {
		return g.Season
	}
	if s.cfg.Season > 0 {
		return s.cfg.Season
	}
	if parsed, err := time.Parse(game.DateLayout, g.Date); err == nil {
		return game.SeasonFor(parsed)
	}
	return game.SeasonFor(s.now())
}
