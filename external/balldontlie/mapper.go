package balldontlie

import (
	"strings"
	"time"

	"github.com/riskibarqy/nba-advisor/internal/domain/game"
	"github.com/riskibarqy/nba-advisor/internal/domain/injury"
	"github.com/riskibarqy/nba-advisor/internal/domain/lineup"
	"github.com/riskibarqy/nba-advisor/internal/domain/odds"
	"github.com/riskibarqy/nba-advisor/internal/domain/player"
	"github.com/riskibarqy/nba-advisor/internal/domain/stats"
	"github.com/riskibarqy/nba-advisor/internal/domain/team"
)

func mapTeam(r teamRecord) team.Team {
	return team.Team{
		ID:           r.ID,
		Conference:   strings.TrimSpace(r.Conference),
		Division:     strings.TrimSpace(r.Division),
		City:         strings.TrimSpace(r.City),
		Name:         strings.TrimSpace(r.Name),
		FullName:     strings.TrimSpace(r.FullName),
		Abbreviation: strings.ToUpper(strings.TrimSpace(r.Abbreviation)),
	}
}

// mapPlayer prefers the nested team object over team_id; the nested object is the
// player's current team.
func mapPlayer(r playerRecord) player.Player {
	teamID := r.TeamID
	if r.Team != nil && r.Team.ID > 0 {
		teamID = r.Team.ID
	}
	return player.Player{
		ID:        r.ID,
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
		Position:  strings.TrimSpace(r.Position),
		TeamID:    teamID,
	}
}

func mapInjury(r injuryRecord) injury.Injury {
	return injury.Injury{
		Player:      mapPlayer(r.Player),
		Status:      strings.TrimSpace(r.Status),
		ReturnDate:  strings.TrimSpace(r.ReturnDate),
		Description: strings.TrimSpace(r.Description),
	}
}

func mapSeasonAverage(r seasonAverageRecord, teamID int64) stats.SeasonAverage {
	p := mapPlayer(r.Player)
	if p.TeamID == 0 {
		p.TeamID = teamID
	}
	return stats.SeasonAverage{
		Player:     p,
		Season:     r.Season,
		SeasonType: r.SeasonType,
		Stats:      stats.FromRaw(r.Stats),
	}
}

func mapTeamSeasonAverage(r teamSeasonAverageRecord) stats.TeamSeasonAverage {
	return stats.TeamSeasonAverage{
		Team:       mapTeam(r.Team),
		Season:     r.Season,
		SeasonType: r.SeasonType,
		Stats:      stats.FromRaw(r.Stats),
	}
}

func mapGame(r gameRecord) game.Game {
	home := mapTeam(r.HomeTeam)
	if home.ID == 0 {
		home.ID = r.HomeTeamID
	}
	visitor := mapTeam(r.VisitorTeam)
	if visitor.ID == 0 {
		visitor.ID = r.VisitorTeamID
	}
	return game.Game{
		ID:           r.ID,
		Date:         normalizeDate(r.Date),
		Season:       r.Season,
		Status:       strings.TrimSpace(r.Status),
		Period:       r.Period,
		Time:         strings.TrimSpace(r.Time),
		Postseason:   r.Postseason,
		HomeTeam:     home,
		VisitorTeam:  visitor,
		HomeScore:    r.HomeTeamScore,
		VisitorScore: r.VisitorTeamScore,
	}
}

func mapLineup(r lineupRecord) lineup.Entry {
	teamID := r.Team.ID
	if teamID == 0 {
		teamID = r.Player.TeamID
	}
	return lineup.Entry{
		GameID:   r.GameID,
		TeamID:   teamID,
		Player:   mapPlayer(r.Player),
		Starter:  r.Starter,
		Position: strings.TrimSpace(r.Position),
	}
}

func mapOdds(r oddsRecord) odds.GameOdds {
	return odds.GameOdds{
		GameID:          r.GameID,
		Vendor:          strings.TrimSpace(r.Vendor),
		SpreadHomeValue: float64(r.SpreadHomeValue),
		SpreadHomeOdds:  r.SpreadHomeOdds,
		SpreadAwayValue: float64(r.SpreadAwayValue),
		SpreadAwayOdds:  r.SpreadAwayOdds,
		MoneylineHome:   r.MoneylineHomeOdds,
		MoneylineAway:   r.MoneylineAwayOdds,
		TotalValue:      float64(r.TotalValue),
		TotalOverOdds:   r.TotalOverOdds,
		TotalUnderOdds:  r.TotalUnderOdds,
		UpdatedAt:       parseTimestamp(r.UpdatedAt),
	}
}

func mapPlayerProp(r playerPropRecord) odds.PlayerProp {
	return odds.PlayerProp{
		GameID:    r.GameID,
		PlayerID:  r.PlayerID,
		Vendor:    strings.TrimSpace(r.Vendor),
		PropType:  strings.TrimSpace(r.PropType),
		LineValue: float64(r.LineValue),
		Market: odds.Market{
			Type:      strings.TrimSpace(r.Market.Type),
			OverOdds:  r.Market.OverOdds,
			UnderOdds: r.Market.UnderOdds,
			Odds:      r.Market.Odds,
		},
		UpdatedAt: parseTimestamp(r.UpdatedAt),
	}
}

// normalizeDate keeps the calendar day of "2026-01-15" or "2026-01-15T00:00:00.000Z".
func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) >= len(game.DateLayout) {
		return raw[:len(game.DateLayout)]
	}
	return raw
}

func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

func mapSlice[R, T any](records []R, fn func(R) T) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		out = append(out, fn(r))
	}
	return out
}
