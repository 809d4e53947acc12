package game

import (
	"testing"
	"time"

	"github.com/riskibarqy/nba-advisor/internal/domain/team"
)

func TestGame_MatchTeamsEitherOrder(t *testing.T) {
	t.Parallel()

	celtics := team.Team{ID: 2, City: "Boston", Name: "Celtics", FullName: "Boston Celtics", Abbreviation: "BOS"}
	lakers := team.Team{ID: 14, City: "Los Angeles", Name: "Lakers", FullName: "Los Angeles Lakers", Abbreviation: "LAL"}
	g := Game{HomeTeam: celtics, VisitorTeam: lakers}

	cases := []struct {
		a, b  string
		ok    bool
		wantA int64
		wantB int64
	}{
		{a: "bos", b: "lakers", ok: true, wantA: 2, wantB: 14},
		{a: "Los Angeles", b: "Boston", ok: true, wantA: 14, wantB: 2},
		{a: "lakers", b: "knicks", ok: false},
		{a: "celtics", b: "celtics", ok: false},
	}
	for _, tc := range cases {
		a, b, ok := g.MatchTeams(tc.a, tc.b)
		if ok != tc.ok || a.ID != tc.wantA || b.ID != tc.wantB {
			t.Fatalf("MatchTeams(%q, %q) = %d, %d, %v", tc.a, tc.b, a.ID, b.ID, ok)
		}
	}
}

func TestGame_WithTeamsFillsMissingDetails(t *testing.T) {
	t.Parallel()

	teams := []team.Team{
		{ID: 2, Abbreviation: "BOS", City: "Boston"},
		{ID: 14, Abbreviation: "LAL", City: "Los Angeles"},
	}
	g := Game{HomeTeam: team.Team{ID: 14}, VisitorTeam: team.Team{ID: 2, Abbreviation: "BOS", City: "Boston (schedule)"}}.WithTeams(teams)
	if g.HomeTeam.Abbreviation != "LAL" {
		t.Fatalf("home team must be filled, got %+v", g.HomeTeam)
	}
	if g.VisitorTeam.City != "Boston (schedule)" {
		t.Fatalf("complete team must be kept, got %+v", g.VisitorTeam)
	}
}

func TestFinalOnlyAndMostRecent(t *testing.T) {
	t.Parallel()

	games := []Game{
		{ID: 1, Date: "2026-01-01", Status: "Final"},
		{ID: 2, Date: "2026-01-03", Status: "7:30 pm ET"},
		{ID: 3, Date: "2026-01-05", Status: "final"},
		{ID: 4, Date: "2026-01-04", Status: "Final"},
		{ID: 5, Date: "2026-01-02", Status: "Completed"},
	}

	finals := FinalOnly(games)
	if len(finals) != 4 {
		t.Fatalf("expected 4 final games, got=%d", len(finals))
	}
	recent := MostRecent(finals, 2)
	if len(recent) != 2 || recent[0].ID != 3 || recent[1].ID != 4 {
		t.Fatalf("unexpected recent order: %+v", IDs(recent))
	}
	if up := Upcoming(games); len(up) != 1 || up[0].ID != 2 {
		t.Fatalf("unexpected upcoming: %+v", IDs(up))
	}
	chrono := Chronological(recent)
	if chrono[0].ID != 4 || chrono[1].ID != 3 {
		t.Fatalf("unexpected chronological order: %+v", IDs(chrono))
	}
}

func TestSeasonFor(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		"2025-10-21": 2025,
		"2026-01-15": 2025,
		"2026-06-10": 2025,
		"2026-09-30": 2025,
		"2026-10-01": 2026,
	}
	for date, want := range cases {
		parsed, err := time.Parse(DateLayout, date)
		if err != nil {
			t.Fatalf("parse %s: %v", date, err)
		}
		if got := SeasonFor(parsed); got != want {
			t.Fatalf("SeasonFor(%s)=%d want %d", date, got, want)
		}
	}
}
