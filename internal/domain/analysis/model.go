package analysis

import (
	"time"

	"github.com/riskibarqy/nba-advisor/internal/domain/game"
	"github.com/riskibarqy/nba-advisor/internal/domain/injury"
	"github.com/riskibarqy/nba-advisor/internal/domain/lineup"
	"github.com/riskibarqy/nba-advisor/internal/domain/odds"
	"github.com/riskibarqy/nba-advisor/internal/domain/player"
	"github.com/riskibarqy/nba-advisor/internal/domain/stats"
	"github.com/riskibarqy/nba-advisor/internal/domain/team"
)

// Section holds optional data. Available=false means the fetch failed and the
// section renders as not available; an available section may still be empty.
type Section[T any] struct {
	Value     T
	Available bool
}

func Some[T any](value T) Section[T] {
	return Section[T]{Value: value, Available: true}
}

func None[T any]() Section[T] {
	return Section[T]{}
}

// RecentGame is a finished game with the team's starters for it.
type RecentGame struct {
	Game     game.Game
	Starters []lineup.Entry
}

type TeamAnalysis struct {
	Team           team.Team
	Roster         []player.Player
	Injuries       Section[[]injury.Injury]
	PlayerAverages Section[[]stats.SeasonAverage]
	// TeamAverage.Value is nil when the provider has no row for the season.
	TeamAverage Section[*stats.TeamSeasonAverage]
	Lineup      Section[[]lineup.Entry]
	RecentForm  Section[[]RecentGame]
}

type GameAnalysis struct {
	Game        game.Game
	Season      int
	SeasonType  string
	Home        TeamAnalysis
	Visitor     TeamAnalysis
	Odds        Section[[]odds.GameOdds]
	Props       Section[[]odds.PlayerProp]
	GeneratedAt time.Time
}

// PlayerName looks a player up on either roster.
func (g GameAnalysis) PlayerName(playerID int64) (string, bool) {
	for _, side := range []TeamAnalysis{g.Home, g.Visitor} {
		for _, p := range side.Roster {
			if p.ID == playerID {
				return p.FullName(), true
			}
		}
	}
	return "", false
}

// Matchup is the result of resolving two team queries on a date. Found=false is a
// normal outcome: one of the teams is unknown or they do not play that day.
type Matchup struct {
	Found bool
	Date  string
	TeamA team.Team
	TeamB team.Team
	Game  game.Game
}
