package odds

import (
	"math"
	"sort"
	"time"
)

const (
	MarketOverUnder = "over_under"
	MarketMilestone = "milestone"
)

// GameOdds is one vendor's quote for a game. Odds are American; zero means not quoted.
type GameOdds struct {
	GameID          int64
	Vendor          string
	SpreadHomeValue float64
	SpreadHomeOdds  int
	SpreadAwayValue float64
	SpreadAwayOdds  int
	MoneylineHome   int
	MoneylineAway   int
	TotalValue      float64
	TotalOverOdds   int
	TotalUnderOdds  int
	UpdatedAt       time.Time
}

// Market is either an over/under pair or a single milestone price.
type Market struct {
	Type      string
	OverOdds  int
	UnderOdds int
	Odds      int
}

func (m Market) IsOverUnder() bool {
	return m.Type != MarketMilestone
}

type PlayerProp struct {
	GameID    int64
	PlayerID  int64
	Vendor    string
	PropType  string
	LineValue float64
	Market    Market
	UpdatedAt time.Time
}

// LatestByVendor keeps the most recently updated quote per vendor, sorted by vendor.
// On equal timestamps the later input row wins.
func LatestByVendor(quotes []GameOdds) []GameOdds {
	latest := make(map[string]GameOdds, len(quotes))
	for _, q := range quotes {
		current, ok := latest[q.Vendor]
		if !ok || !q.UpdatedAt.Before(current.UpdatedAt) {
			latest[q.Vendor] = q
		}
	}

	out := make([]GameOdds, 0, len(latest))
	for _, q := range latest {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Vendor < out[j].Vendor })
	return out
}

type propKey struct {
	playerID int64
	propType string
}

// LatestByPlayerProp keeps the most recently updated prop per (player, prop type),
// sorted by player id then prop type.
func LatestByPlayerProp(props []PlayerProp) []PlayerProp {
	latest := make(map[propKey]PlayerProp, len(props))
	for _, p := range props {
		k := propKey{playerID: p.PlayerID, propType: p.PropType}
		current, ok := latest[k]
		if !ok || !p.UpdatedAt.Before(current.UpdatedAt) {
			latest[k] = p
		}
	}

	out := make([]PlayerProp, 0, len(latest))
	for _, p := range latest {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlayerID != out[j].PlayerID {
			return out[i].PlayerID < out[j].PlayerID
		}
		return out[i].PropType < out[j].PropType
	})
	return out
}

// ImpliedProbability converts American odds to a probability rounded to 4 decimals.
// Zero is not a valid price and maps to 0.
func ImpliedProbability(american float64) float64 {
	var p float64
	switch {
	case american == 0:
		return 0
	case american < 0:
		p = -american / (-american + 100)
	default:
		p = 100 / (american + 100)
	}
	return math.Round(p*10000) / 10000
}
