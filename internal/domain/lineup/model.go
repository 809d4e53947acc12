package lineup

import (
	"sort"
	"strconv"
	"strings"

	"github.com/riskibarqy/nba-advisor/internal/domain/player"
)

// Entry is one player's slot in a game lineup.
type Entry struct {
	GameID   int64
	TeamID   int64
	Player   player.Player
	Starter  bool
	Position string
}

// ForTeam keeps entries for teamID.
func ForTeam(entries []Entry, teamID int64) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.TeamID == teamID {
			out = append(out, e)
		}
	}
	return out
}

func Starters(entries []Entry) []Entry {
	out := make([]Entry, 0, 5)
	for _, e := range entries {
		if e.Starter {
			out = append(out, e)
		}
	}
	return out
}

// ByGame groups entries per game id, keeping input order inside each group.
func ByGame(entries []Entry) map[int64][]Entry {
	out := make(map[int64][]Entry)
	for _, e := range entries {
		out[e.GameID] = append(out[e.GameID], e)
	}
	return out
}

// GameSetKey renders game ids sorted ascending and comma joined, so the same set
// always maps to the same key regardless of input order.
func GameSetKey(gameIDs []int64) string {
	ids := append([]int64(nil), gameIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	parts := make([]string, 0, len(ids))
	for i, id := range ids {
		if i > 0 && id == ids[i-1] {
			continue
		}
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}
