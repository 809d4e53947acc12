package lineup

import "testing"

func TestGameSetKey_SortedAndDeduped(t *testing.T) {
	t.Parallel()

	if got := GameSetKey([]int64{30, 4, 12, 4}); got != "4,12,30" {
		t.Fatalf("unexpected key %q", got)
	}
	if GameSetKey([]int64{1, 2}) != GameSetKey([]int64{2, 1}) {
		t.Fatalf("key must not depend on order")
	}
}

func TestForTeamStartersByGame(t *testing.T) {
	t.Parallel()

	entries := []Entry{
		{GameID: 1, TeamID: 5, Starter: true},
		{GameID: 1, TeamID: 7, Starter: true},
		{GameID: 2, TeamID: 5, Starter: false},
		{GameID: 2, TeamID: 5, Starter: true},
	}
	mine := ForTeam(entries, 5)
	if len(mine) != 3 {
		t.Fatalf("expected 3 entries, got=%d", len(mine))
	}
	if len(Starters(mine)) != 2 {
		t.Fatalf("expected 2 starters")
	}
	grouped := ByGame(mine)
	if len(grouped[1]) != 1 || len(grouped[2]) != 2 {
		t.Fatalf("unexpected grouping: %+v", grouped)
	}
}
