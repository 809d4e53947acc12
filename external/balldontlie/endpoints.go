package balldontlie

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/riskibarqy/nba-advisor/internal/domain/game"
	"github.com/riskibarqy/nba-advisor/internal/domain/injury"
	"github.com/riskibarqy/nba-advisor/internal/domain/lineup"
	"github.com/riskibarqy/nba-advisor/internal/domain/odds"
	"github.com/riskibarqy/nba-advisor/internal/domain/player"
	"github.com/riskibarqy/nba-advisor/internal/domain/stats"
	"github.com/riskibarqy/nba-advisor/internal/domain/team"
)

// upcomingWindow bounds ListGamesFrom to a week of schedule.
const upcomingWindow = 6 * 24 * time.Hour

func (c *Client) ListTeams(ctx context.Context) ([]team.Team, error) {
	records, err := drain[teamRecord](ctx, c, V1, "/teams", nil)
	if err != nil {
		return nil, err
	}
	return mapSlice(records, mapTeam), nil
}

// ListPlayersByTeam returns the team's current roster: players whose current team
// is teamID, one row per player id.
func (c *Client) ListPlayersByTeam(ctx context.Context, teamID int64) ([]player.Player, error) {
	query := c.pagedQuery()
	query.Add("team_ids[]", formatID(teamID))

	records, err := drain[playerRecord](ctx, c, V1, "/players", query)
	if err != nil {
		return nil, err
	}
	return player.CurrentRoster(mapSlice(records, mapPlayer), teamID), nil
}

func (c *Client) ListInjuriesByTeam(ctx context.Context, teamID int64) ([]injury.Injury, error) {
	query := c.pagedQuery()
	query.Add("team_ids[]", formatID(teamID))

	records, err := drain[injuryRecord](ctx, c, V1, "/player_injuries", query)
	if err != nil {
		return nil, err
	}
	return mapSlice(records, mapInjury), nil
}

// ListSeasonAverages requests player ids in chunks of at most 100.
func (c *Client) ListSeasonAverages(ctx context.Context, q stats.PlayerQuery) ([]stats.SeasonAverage, error) {
	q = q.Normalize()
	out := make([]stats.SeasonAverage, 0, len(q.PlayerIDs))
	for start := 0; start < len(q.PlayerIDs); start += maxPlayerIDs {
		end := start + maxPlayerIDs
		if end > len(q.PlayerIDs) {
			end = len(q.PlayerIDs)
		}

		query := seasonQuery(q.Season, q.SeasonType, q.Category)
		for _, id := range q.PlayerIDs[start:end] {
			query.Add("player_ids[]", formatID(id))
		}

		records, err := drain[seasonAverageRecord](ctx, c, V1, "/season_averages/"+q.Category, query)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			out = append(out, mapSeasonAverage(r, q.TeamID))
		}
	}
	return out, nil
}

// GetTeamSeasonAverage reports false when the provider has no row for the team and season.
func (c *Client) GetTeamSeasonAverage(ctx context.Context, q stats.TeamQuery) (stats.TeamSeasonAverage, bool, error) {
	q = q.Normalize()
	query := seasonQuery(q.Season, q.SeasonType, q.Category)
	query.Add("team_ids[]", formatID(q.TeamID))

	records, err := single[teamSeasonAverageRecord](ctx, c, V1, "/team_season_averages/"+q.Category, query)
	if err != nil {
		return stats.TeamSeasonAverage{}, false, err
	}
	for _, r := range records {
		if r.Team.ID == q.TeamID || r.Team.ID == 0 {
			avg := mapTeamSeasonAverage(r)
			avg.Team.ID = q.TeamID
			return avg, true, nil
		}
	}
	return stats.TeamSeasonAverage{}, false, nil
}

func (c *Client) ListGamesByDate(ctx context.Context, date string) ([]game.Game, error) {
	if _, err := time.Parse(game.DateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid game date %q: %w", date, err)
	}
	query := c.pagedQuery()
	query.Add("dates[]", date)

	records, err := drain[gameRecord](ctx, c, V1, "/games", query)
	if err != nil {
		return nil, err
	}
	return mapSlice(records, mapGame), nil
}

func (c *Client) ListGamesByTeamSeason(ctx context.Context, teamID int64, season int) ([]game.Game, error) {
	query := c.pagedQuery()
	query.Add("team_ids[]", formatID(teamID))
	query.Add("seasons[]", strconv.Itoa(season))

	records, err := drain[gameRecord](ctx, c, V1, "/games", query)
	if err != nil {
		return nil, err
	}
	return mapSlice(records, mapGame), nil
}

// ListGamesFrom returns the schedule from startDate through the following six days.
func (c *Client) ListGamesFrom(ctx context.Context, startDate string) ([]game.Game, error) {
	start, err := time.Parse(game.DateLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	query := c.pagedQuery()
	query.Set("start_date", startDate)
	query.Set("end_date", start.Add(upcomingWindow).Format(game.DateLayout))

	records, err := drain[gameRecord](ctx, c, V1, "/games", query)
	if err != nil {
		return nil, err
	}
	return game.Chronological(mapSlice(records, mapGame)), nil
}

func (c *Client) ListLineups(ctx context.Context, gameIDs []int64) ([]lineup.Entry, error) {
	if len(gameIDs) == 0 {
		return []lineup.Entry{}, nil
	}
	query := c.pagedQuery()
	for _, id := range gameIDs {
		query.Add("game_ids[]", formatID(id))
	}

	records, err := drain[lineupRecord](ctx, c, V1, "/lineups", query)
	if err != nil {
		return nil, err
	}
	return mapSlice(records, mapLineup), nil
}

func (c *Client) ListOdds(ctx context.Context, gameID int64) ([]odds.GameOdds, error) {
	query := c.pagedQuery()
	query.Set("game_id", formatID(gameID))

	records, err := drain[oddsRecord](ctx, c, V2, "/odds", query)
	if err != nil {
		return nil, err
	}
	return mapSlice(records, mapOdds), nil
}

func (c *Client) ListPlayerProps(ctx context.Context, gameID int64) ([]odds.PlayerProp, error) {
	query := url.Values{}
	query.Set("game_id", formatID(gameID))

	records, err := drain[playerPropRecord](ctx, c, V2, "/odds/player_props", query)
	if err != nil {
		return nil, err
	}
	return mapSlice(records, mapPlayerProp), nil
}

func (c *Client) pagedQuery() url.Values {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(c.perPage))
	return query
}

// seasonQuery omits type=base for the hustle category, which rejects it.
func seasonQuery(season int, seasonType, category string) url.Values {
	query := url.Values{}
	query.Set("season", strconv.Itoa(season))
	query.Set("season_type", seasonType)
	if category != stats.CategoryHustle {
		query.Set("type", stats.TypeBase)
	}
	return query
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
