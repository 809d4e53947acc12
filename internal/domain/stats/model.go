package stats

import (
	"sort"
	"strconv"
	"strings"
)

// Key is a stat name the analysis layer knows about. Anything else the provider
// sends is kept in Line.Extra.
type Key string

const (
	Points          Key = "pts"
	Assists         Key = "ast"
	Rebounds        Key = "reb"
	OffRebounds     Key = "oreb"
	DefRebounds     Key = "dreb"
	Steals          Key = "stl"
	Blocks          Key = "blk"
	Turnovers       Key = "turnover"
	FieldGoalPct    Key = "fg_pct"
	ThreePointPct   Key = "fg3_pct"
	FreeThrowPct    Key = "ft_pct"
	FieldGoalsMade  Key = "fgm"
	FieldGoalsTried Key = "fga"
	ThreesMade      Key = "fg3m"
	ThreesTried     Key = "fg3a"
	FreeThrowsMade  Key = "ftm"
	FreeThrowsTried Key = "fta"
	Minutes         Key = "min"
	GamesPlayed     Key = "gp"
	Wins            Key = "w"
	Losses          Key = "l"
	PlusMinus       Key = "plus_minus"
	OpponentPoints  Key = "opp_pts"
	Pace            Key = "pace"
	OffRating       Key = "off_rating"
	DefRating       Key = "def_rating"
	NetRating       Key = "net_rating"
)

var knownKeys = map[Key]struct{}{
	Points: {}, Assists: {}, Rebounds: {}, OffRebounds: {}, DefRebounds: {}, Steals: {}, Blocks: {},
	Turnovers: {}, FieldGoalPct: {}, ThreePointPct: {}, FreeThrowPct: {}, FieldGoalsMade: {},
	FieldGoalsTried: {}, ThreesMade: {}, ThreesTried: {}, FreeThrowsMade: {}, FreeThrowsTried: {},
	Minutes: {}, GamesPlayed: {}, Wins: {}, Losses: {}, PlusMinus: {}, OpponentPoints: {}, Pace: {},
	OffRating: {}, DefRating: {}, NetRating: {},
}

// Key order used when rendering player and team stat lines.
var (
	PlayerKeys = []Key{Points, Assists, Rebounds, Steals, Blocks, FieldGoalPct, ThreePointPct, Turnovers}
	TeamKeys   = []Key{Points, Assists, Rebounds, Steals, Blocks, FieldGoalPct, ThreePointPct, OpponentPoints, Pace}
)

func ParseKey(raw string) (Key, bool) {
	key := Key(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := knownKeys[key]
	return key, ok
}

// Value is either a number or a provider string such as a minutes clock "34:12".
type Value struct {
	Num    float64
	Text   string
	IsText bool
}

func Number(v float64) Value { return Value{Num: v} }

func Text(v string) Value { return Value{Text: v, IsText: true} }

func (v Value) String() string {
	if v.IsText {
		return v.Text
	}
	return strconv.FormatFloat(v.Num, 'f', -1, 64)
}

// Line holds one stat record.
type Line struct {
	Known map[Key]Value
	// Extra carries provider-specific fields outside the known key set.
	Extra map[string]Value
}

// FromRaw splits a decoded provider map into known and extension fields.
// Values that are neither numbers nor strings are dropped.
func FromRaw(raw map[string]any) Line {
	line := Line{Known: make(map[Key]Value, len(raw))}
	for name, rawValue := range raw {
		var value Value
		switch v := rawValue.(type) {
		case float64:
			value = Number(v)
		case float32:
			value = Number(float64(v))
		case int:
			value = Number(float64(v))
		case int64:
			value = Number(float64(v))
		case string:
			value = Text(v)
		default:
			continue
		}
		if key, ok := ParseKey(name); ok {
			line.Known[key] = value
			continue
		}
		if line.Extra == nil {
			line.Extra = make(map[string]Value)
		}
		line.Extra[name] = value
	}
	return line
}

func (l Line) Get(key Key) (Value, bool) {
	v, ok := l.Known[key]
	return v, ok
}

func (l Line) Empty() bool {
	return len(l.Known) == 0 && len(l.Extra) == 0
}

// ExtraNames returns extension field names in lexical order.
func (l Line) ExtraNames() []string {
	names := make([]string, 0, len(l.Extra))
	for name := range l.Extra {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
