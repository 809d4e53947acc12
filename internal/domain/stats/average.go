package stats

import (
	"github.com/riskibarqy/nba-advisor/internal/domain/player"
	"github.com/riskibarqy/nba-advisor/internal/domain/team"
)

const (
	SeasonTypeRegular  = "regular"
	SeasonTypePlayoffs = "playoffs"

	CategoryGeneral = "general"
	CategoryHustle  = "hustle"
	TypeBase        = "base"
)

// SeasonAverage is one player's averages for a season and season type.
type SeasonAverage struct {
	Player     player.Player
	Season     int
	SeasonType string
	Stats      Line
}

// TeamSeasonAverage is the team-level equivalent; at most one per team and season.
type TeamSeasonAverage struct {
	Team       team.Team
	Season     int
	SeasonType string
	Stats      Line
}

// PlayerQuery selects season averages for a set of roster players.
type PlayerQuery struct {
	TeamID     int64
	PlayerIDs  []int64
	Season     int
	SeasonType string
	Category   string
}

type TeamQuery struct {
	TeamID     int64
	Season     int
	SeasonType string
	Category   string
}

// Normalize fills the default season type and category.
func (q PlayerQuery) Normalize() PlayerQuery {
	if q.SeasonType == "" {
		q.SeasonType = SeasonTypeRegular
	}
	if q.Category == "" {
		q.Category = CategoryGeneral
	}
	return q
}

func (q TeamQuery) Normalize() TeamQuery {
	if q.SeasonType == "" {
		q.SeasonType = SeasonTypeRegular
	}
	if q.Category == "" {
		q.Category = CategoryGeneral
	}
	return q
}
