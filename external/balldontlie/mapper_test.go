package balldontlie

import (
	"testing"

	sonic "github.com/bytedance/sonic"
)

func TestNumberString_AcceptsStringAndNumber(t *testing.T) {
	t.Parallel()

	var rec struct {
		A numberString `json:"a"`
		B numberString `json:"b"`
		C numberString `json:"c"`
	}
	if err := sonic.Unmarshal([]byte(`{"a":"-5.5","b":224.5,"c":null}`), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.A != -5.5 || rec.B != 224.5 || rec.C != 0 {
		t.Fatalf("unexpected values: %+v", rec)
	}
}

func TestMapGame_FallsBackToTeamIDs(t *testing.T) {
	t.Parallel()

	g := mapGame(gameRecord{
		ID:            9,
		Date:          "2026-01-15T00:00:00.000Z",
		Status:        " Final ",
		HomeTeamID:    2,
		VisitorTeamID: 14,
	})
	if g.Date != "2026-01-15" || !g.IsFinal() {
		t.Fatalf("unexpected game: %+v", g)
	}
	if g.HomeTeam.ID != 2 || g.VisitorTeam.ID != 14 {
		t.Fatalf("expected id fallback, got home=%d visitor=%d", g.HomeTeam.ID, g.VisitorTeam.ID)
	}
}

func TestMapPlayer_PrefersNestedTeam(t *testing.T) {
	t.Parallel()

	p := mapPlayer(playerRecord{ID: 1, TeamID: 5, Team: &teamRecord{ID: 7}})
	if p.TeamID != 7 {
		t.Fatalf("expected nested team to win, got %d", p.TeamID)
	}
	if p := mapPlayer(playerRecord{ID: 1, TeamID: 5}); p.TeamID != 5 {
		t.Fatalf("expected team_id fallback, got %d", p.TeamID)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	if ts := parseTimestamp("2026-01-15T18:00:00.123Z"); ts.IsZero() || ts.Nanosecond() != 123000000 {
		t.Fatalf("unexpected timestamp %s", ts)
	}
	if ts := parseTimestamp("garbage"); !ts.IsZero() {
		t.Fatalf("expected zero time for garbage, got %s", ts)
	}
}
