package player

import "testing"

func TestCurrentRoster_FiltersTradedAndDuplicatePlayers(t *testing.T) {
	t.Parallel()

	players := []Player{
		{ID: 1, TeamID: 5, FirstName: "Keep"},
		{ID: 1, TeamID: 7, FirstName: "Traded"},
		{ID: 2, TeamID: 5},
		{ID: 1, TeamID: 5, FirstName: "Duplicate"},
	}

	got := CurrentRoster(players, 5)
	if len(got) != 2 {
		t.Fatalf("expected 2 players, got=%d", len(got))
	}
	if got[0].ID != 1 || got[0].FirstName != "Keep" || got[0].TeamID != 5 {
		t.Fatalf("unexpected first player: %+v", got[0])
	}
	if got[1].ID != 2 {
		t.Fatalf("unexpected second player: %+v", got[1])
	}

	again := CurrentRoster(append(got, got...), 5)
	if len(again) != 2 {
		t.Fatalf("filter must be idempotent, got=%d", len(again))
	}
}

func TestIDsAndFullName(t *testing.T) {
	t.Parallel()

	ids := IDs([]Player{{ID: 3}, {ID: 9}})
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 9 {
		t.Fatalf("unexpected ids: %v", ids)
	}
	if name := (Player{FirstName: "Jayson", LastName: "Tatum"}).FullName(); name != "Jayson Tatum" {
		t.Fatalf("unexpected name %q", name)
	}
}
