package balldontlie

import (
	"context"

	"github.com/riskibarqy/nba-advisor/internal/domain/game"
	"github.com/riskibarqy/nba-advisor/internal/domain/injury"
	"github.com/riskibarqy/nba-advisor/internal/domain/lineup"
	"github.com/riskibarqy/nba-advisor/internal/domain/odds"
	"github.com/riskibarqy/nba-advisor/internal/domain/player"
	"github.com/riskibarqy/nba-advisor/internal/domain/stats"
	"github.com/riskibarqy/nba-advisor/internal/domain/team"
)

// Repositories exposes the client through the domain repository interfaces. These are
// the uncached sources the cache decorators wrap.
type Repositories struct {
	Teams    team.Repository
	Players  player.Repository
	Stats    stats.Repository
	Injuries injury.Repository
	Games    game.Repository
	Lineups  lineup.Repository
	Odds     odds.Repository
}

func NewRepositories(c *Client) Repositories {
	return Repositories{
		Teams:    &TeamRepository{client: c},
		Players:  &PlayerRepository{client: c},
		Stats:    &StatsRepository{client: c},
		Injuries: &InjuryRepository{client: c},
		Games:    &GameRepository{client: c},
		Lineups:  &LineupRepository{client: c},
		Odds:     &OddsRepository{client: c},
	}
}

type TeamRepository struct {
	client *Client
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	return r.client.ListTeams(ctx)
}

type PlayerRepository struct {
	client *Client
}

func (r *PlayerRepository) ListByTeam(ctx context.Context, teamID int64) ([]player.Player, error) {
	return r.client.ListPlayersByTeam(ctx, teamID)
}

type StatsRepository struct {
	client *Client
}

func (r *StatsRepository) ListPlayerAverages(ctx context.Context, query stats.PlayerQuery) ([]stats.SeasonAverage, error) {
	return r.client.ListSeasonAverages(ctx, query)
}

func (r *StatsRepository) GetTeamAverage(ctx context.Context, query stats.TeamQuery) (stats.TeamSeasonAverage, bool, error) {
	return r.client.GetTeamSeasonAverage(ctx, query)
}

type InjuryRepository struct {
	client *Client
}

func (r *InjuryRepository) ListByTeam(ctx context.Context, teamID int64) ([]injury.Injury, error) {
	return r.client.ListInjuriesByTeam(ctx, teamID)
}

type GameRepository struct {
	client *Client
}

func (r *GameRepository) ListByDate(ctx context.Context, date string) ([]game.Game, error) {
	return r.client.ListGamesByDate(ctx, date)
}

// ListRecentFinal keeps finished games, newest first, at most limit.
func (r *GameRepository) ListRecentFinal(ctx context.Context, teamID int64, season, limit int) ([]game.Game, error) {
	games, err := r.client.ListGamesByTeamSeason(ctx, teamID, season)
	if err != nil {
		return nil, err
	}
	return game.MostRecent(game.FinalOnly(games), limit), nil
}

func (r *GameRepository) ListFrom(ctx context.Context, startDate string) ([]game.Game, error) {
	return r.client.ListGamesFrom(ctx, startDate)
}

type LineupRepository struct {
	client *Client
}

// ListByGames drops entries for the opponent.
func (r *LineupRepository) ListByGames(ctx context.Context, teamID int64, gameIDs []int64) ([]lineup.Entry, error) {
	entries, err := r.client.ListLineups(ctx, gameIDs)
	if err != nil {
		return nil, err
	}
	return lineup.ForTeam(entries, teamID), nil
}

type OddsRepository struct {
	client *Client
}

func (r *OddsRepository) ListGameOdds(ctx context.Context, gameID int64) ([]odds.GameOdds, error) {
	return r.client.ListOdds(ctx, gameID)
}

func (r *OddsRepository) ListPlayerProps(ctx context.Context, gameID int64) ([]odds.PlayerProp, error) {
	return r.client.ListPlayerProps(ctx, gameID)
}
