package game

import (
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/nba-advisor/internal/domain/team"
)

const (
	StatusFinal     = "Final"
	StatusCompleted = "Completed"
)

// DateLayout is the provider's calendar date format.
const DateLayout = "2006-01-02"

// Game is one scheduled, live or finished game. Status is the provider's free text:
// a tip-off time before the game, a period/clock while live, "Final" when done.
type Game struct {
	ID           int64
	Date         string
	Season       int
	Status       string
	Period       int
	Time         string
	Postseason   bool
	HomeTeam     team.Team
	VisitorTeam  team.Team
	HomeScore    int
	VisitorScore int
}

func (g Game) IsFinal() bool {
	status := strings.TrimSpace(g.Status)
	return strings.EqualFold(status, StatusFinal) || strings.EqualFold(status, StatusCompleted)
}

// MatchTeams reports whether the two free-text queries name this game's teams, in
// either home/visitor order. The teams come back in query order.
func (g Game) MatchTeams(queryA, queryB string) (team.Team, team.Team, bool) {
	switch {
	case g.HomeTeam.Matches(queryA) && g.VisitorTeam.Matches(queryB):
		return g.HomeTeam, g.VisitorTeam, true
	case g.VisitorTeam.Matches(queryA) && g.HomeTeam.Matches(queryB):
		return g.VisitorTeam, g.HomeTeam, true
	}
	return team.Team{}, team.Team{}, false
}

// WithTeams fills home and visitor details from teams when the schedule only
// carried team ids.
func (g Game) WithTeams(teams []team.Team) Game {
	for _, t := range teams {
		if t.ID == g.HomeTeam.ID && g.HomeTeam.Abbreviation == "" {
			g.HomeTeam = t
		}
		if t.ID == g.VisitorTeam.ID && g.VisitorTeam.Abbreviation == "" {
			g.VisitorTeam = t
		}
	}
	return g
}

// FinalOnly keeps finished games.
func FinalOnly(games []Game) []Game {
	out := make([]Game, 0, len(games))
	for _, g := range games {
		if g.IsFinal() {
			out = append(out, g)
		}
	}
	return out
}

// Upcoming keeps games that are not finished yet.
func Upcoming(games []Game) []Game {
	out := make([]Game, 0, len(games))
	for _, g := range games {
		if !g.IsFinal() {
			out = append(out, g)
		}
	}
	return out
}

// MostRecent sorts newest first (date, then id) and keeps at most limit games.
func MostRecent(games []Game, limit int) []Game {
	out := append([]Game(nil), games...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Chronological sorts oldest first (date, then id).
func Chronological(games []Game) []Game {
	out := append([]Game(nil), games...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func IDs(games []Game) []int64 {
	out := make([]int64, 0, len(games))
	for _, g := range games {
		out = append(out, g.ID)
	}
	return out
}

// SeasonFor returns the season a date belongs to. Seasons start in October and are
// named by their starting year.
func SeasonFor(t time.Time) int {
	if t.Month() >= time.October {
		return t.Year()
	}
	return t.Year() - 1
}
