package cache

import (
	"context"
	"fmt"
	"strconv"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nba-advisor/internal/domain/game"
	"github.com/riskibarqy/nba-advisor/internal/domain/injury"
	"github.com/riskibarqy/nba-advisor/internal/domain/lineup"
	"github.com/riskibarqy/nba-advisor/internal/domain/odds"
	"github.com/riskibarqy/nba-advisor/internal/domain/player"
	"github.com/riskibarqy/nba-advisor/internal/domain/stats"
	"github.com/riskibarqy/nba-advisor/internal/domain/team"
	basecache "github.com/riskibarqy/nba-advisor/internal/platform/cache"
	"github.com/riskibarqy/nba-advisor/internal/usecase"
)

func key(kind usecase.Kind, composite string) string {
	return basecache.Key(string(kind), composite)
}

func teamKey(teamID int64) string {
	return "team=" + strconv.FormatInt(teamID, 10)
}

func seasonKey(teamID int64, season int, seasonType, category string) string {
	composite := fmt.Sprintf("%s:season=%d:type=%s", teamKey(teamID), season, seasonType)
	if category != "" && category != stats.CategoryGeneral {
		composite += ":category=" + category
	}
	return composite
}

func gameKey(gameID int64) string {
	return "game=" + strconv.FormatInt(gameID, 10)
}

type TeamRepository struct {
	next     team.Repository
	cache    *basecache.Store
	policies usecase.Policies
}

func NewTeamRepository(next team.Repository, cache *basecache.Store, policies usecase.Policies) *TeamRepository {
	return &TeamRepository{next: next, cache: cache, policies: policies}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	items, err := basecache.Fetch(ctx, r.cache, key(usecase.KindTeams, "all"), r.policies.TTL(usecase.KindTeams), r.next.List)
	if err != nil {
		return nil, err
	}
	return append([]team.Team(nil), items...), nil
}

type PlayerRepository struct {
	next     player.Repository
	cache    *basecache.Store
	policies usecase.Policies
}

func NewPlayerRepository(next player.Repository, cache *basecache.Store, policies usecase.Policies) *PlayerRepository {
	return &PlayerRepository{next: next, cache: cache, policies: policies}
}

func (r *PlayerRepository) ListByTeam(ctx context.Context, teamID int64) ([]player.Player, error) {
	items, err := basecache.Fetch(ctx, r.cache, key(usecase.KindRoster, teamKey(teamID)), r.policies.TTL(usecase.KindRoster), func(ctx context.Context) ([]player.Player, error) {
		return r.next.ListByTeam(ctx, teamID)
	})
	if err != nil {
		return nil, err
	}
	return append([]player.Player(nil), items...), nil
}

type StatsRepository struct {
	next     stats.Repository
	cache    *basecache.Store
	policies usecase.Policies
}

func NewStatsRepository(next stats.Repository, cache *basecache.Store, policies usecase.Policies) *StatsRepository {
	return &StatsRepository{next: next, cache: cache, policies: policies}
}

// ListPlayerAverages is keyed by team and season, not by the player id list.
func (r *StatsRepository) ListPlayerAverages(ctx context.Context, query stats.PlayerQuery) ([]stats.SeasonAverage, error) {
	query = query.Normalize()
	cacheKey := key(usecase.KindSeasonAverages, seasonKey(query.TeamID, query.Season, query.SeasonType, query.Category))
	items, err := basecache.Fetch(ctx, r.cache, cacheKey, r.policies.TTL(usecase.KindSeasonAverages), func(ctx context.Context) ([]stats.SeasonAverage, error) {
		return r.next.ListPlayerAverages(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	return append([]stats.SeasonAverage(nil), items...), nil
}

var errNoTeamAverage = crerr.New("no team season average")

// GetTeamAverage caches found rows only; a missing row is asked for again next time.
func (r *StatsRepository) GetTeamAverage(ctx context.Context, query stats.TeamQuery) (stats.TeamSeasonAverage, bool, error) {
	query = query.Normalize()
	cacheKey := key(usecase.KindTeamSeasonAverages, seasonKey(query.TeamID, query.Season, query.SeasonType, query.Category))
	item, err := basecache.Fetch(ctx, r.cache, cacheKey, r.policies.TTL(usecase.KindTeamSeasonAverages), func(ctx context.Context) (stats.TeamSeasonAverage, error) {
		item, exists, err := r.next.GetTeamAverage(ctx, query)
		if err != nil {
			return stats.TeamSeasonAverage{}, err
		}
		if !exists {
			return stats.TeamSeasonAverage{}, errNoTeamAverage
		}
		return item, nil
	})
	if crerr.Is(err, errNoTeamAverage) {
		return stats.TeamSeasonAverage{}, false, nil
	}
	if err != nil {
		return stats.TeamSeasonAverage{}, false, err
	}
	return item, true, nil
}

type InjuryRepository struct {
	next     injury.Repository
	cache    *basecache.Store
	policies usecase.Policies
}

func NewInjuryRepository(next injury.Repository, cache *basecache.Store, policies usecase.Policies) *InjuryRepository {
	return &InjuryRepository{next: next, cache: cache, policies: policies}
}

func (r *InjuryRepository) ListByTeam(ctx context.Context, teamID int64) ([]injury.Injury, error) {
	items, err := basecache.Fetch(ctx, r.cache, key(usecase.KindInjuries, teamKey(teamID)), r.policies.TTL(usecase.KindInjuries), func(ctx context.Context) ([]injury.Injury, error) {
		return r.next.ListByTeam(ctx, teamID)
	})
	if err != nil {
		return nil, err
	}
	return append([]injury.Injury(nil), items...), nil
}

type GameRepository struct {
	next     game.Repository
	cache    *basecache.Store
	policies usecase.Policies
}

func NewGameRepository(next game.Repository, cache *basecache.Store, policies usecase.Policies) *GameRepository {
	return &GameRepository{next: next, cache: cache, policies: policies}
}

func (r *GameRepository) ListByDate(ctx context.Context, date string) ([]game.Game, error) {
	items, err := basecache.Fetch(ctx, r.cache, key(usecase.KindGames, "date="+date), r.policies.TTL(usecase.KindGames), func(ctx context.Context) ([]game.Game, error) {
		return r.next.ListByDate(ctx, date)
	})
	if err != nil {
		return nil, err
	}
	return append([]game.Game(nil), items...), nil
}

func (r *GameRepository) ListRecentFinal(ctx context.Context, teamID int64, season, limit int) ([]game.Game, error) {
	composite := fmt.Sprintf("%s:season=%d:n=%d", teamKey(teamID), season, limit)
	items, err := basecache.Fetch(ctx, r.cache, key(usecase.KindRecentGames, composite), r.policies.TTL(usecase.KindRecentGames), func(ctx context.Context) ([]game.Game, error) {
		return r.next.ListRecentFinal(ctx, teamID, season, limit)
	})
	if err != nil {
		return nil, err
	}
	return append([]game.Game(nil), items...), nil
}

func (r *GameRepository) ListFrom(ctx context.Context, startDate string) ([]game.Game, error) {
	items, err := basecache.Fetch(ctx, r.cache, key(usecase.KindUpcomingGames, "from="+startDate), r.policies.TTL(usecase.KindUpcomingGames), func(ctx context.Context) ([]game.Game, error) {
		return r.next.ListFrom(ctx, startDate)
	})
	if err != nil {
		return nil, err
	}
	return append([]game.Game(nil), items...), nil
}

type LineupRepository struct {
	next     lineup.Repository
	cache    *basecache.Store
	policies usecase.Policies
}

func NewLineupRepository(next lineup.Repository, cache *basecache.Store, policies usecase.Policies) *LineupRepository {
	return &LineupRepository{next: next, cache: cache, policies: policies}
}

// ListByGames is keyed by team and the sorted game id set.
func (r *LineupRepository) ListByGames(ctx context.Context, teamID int64, gameIDs []int64) ([]lineup.Entry, error) {
	if len(gameIDs) == 0 {
		return []lineup.Entry{}, nil
	}
	composite := teamKey(teamID) + ":games=" + lineup.GameSetKey(gameIDs)
	items, err := basecache.Fetch(ctx, r.cache, key(usecase.KindLineups, composite), r.policies.TTL(usecase.KindLineups), func(ctx context.Context) ([]lineup.Entry, error) {
		return r.next.ListByGames(ctx, teamID, gameIDs)
	})
	if err != nil {
		return nil, err
	}
	return append([]lineup.Entry(nil), items...), nil
}

type OddsRepository struct {
	next     odds.Repository
	cache    *basecache.Store
	policies usecase.Policies
}

func NewOddsRepository(next odds.Repository, cache *basecache.Store, policies usecase.Policies) *OddsRepository {
	return &OddsRepository{next: next, cache: cache, policies: policies}
}

func (r *OddsRepository) ListGameOdds(ctx context.Context, gameID int64) ([]odds.GameOdds, error) {
	items, err := basecache.Fetch(ctx, r.cache, key(usecase.KindOdds, gameKey(gameID)), r.policies.TTL(usecase.KindOdds), func(ctx context.Context) ([]odds.GameOdds, error) {
		return r.next.ListGameOdds(ctx, gameID)
	})
	if err != nil {
		return nil, err
	}
	return append([]odds.GameOdds(nil), items...), nil
}

func (r *OddsRepository) ListPlayerProps(ctx context.Context, gameID int64) ([]odds.PlayerProp, error) {
	items, err := basecache.Fetch(ctx, r.cache, key(usecase.KindPlayerProps, gameKey(gameID)), r.policies.TTL(usecase.KindPlayerProps), func(ctx context.Context) ([]odds.PlayerProp, error) {
		return r.next.ListPlayerProps(ctx, gameID)
	})
	if err != nil {
		return nil, err
	}
	return append([]odds.PlayerProp(nil), items...), nil
}
