package player

import "strings"

// Player is a roster entry. TeamID is the player's team at fetch time.
type Player struct {
	ID        int64
	FirstName string
	LastName  string
	Position  string
	TeamID    int64
}

func (p Player) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// CurrentRoster keeps players currently on teamID, first occurrence per id.
// Historical pages can list a traded player under the query team with a different current team.
func CurrentRoster(players []Player, teamID int64) []Player {
	out := make([]Player, 0, len(players))
	seen := make(map[int64]struct{}, len(players))
	for _, p := range players {
		if p.TeamID != teamID {
			continue
		}
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

func IDs(players []Player) []int64 {
	out := make([]int64, 0, len(players))
	for _, p := range players {
		out = append(out, p.ID)
	}
	return out
}
