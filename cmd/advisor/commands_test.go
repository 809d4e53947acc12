package main

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/nba-advisor/internal/usecase"
)

func TestParseDate(t *testing.T) {
	day, err := parseDate("2026-01-15")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if !day.Equal(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day %s", day)
	}

	if _, err := parseDate("15/01/2026"); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	today, err := parseDate("")
	if err != nil || today.Hour() != 0 || today.Location() != time.UTC {
		t.Fatalf("expected today at midnight UTC, got %s err=%v", today, err)
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	root, rt := newRootCommand()
	for _, name := range []string{"matchup", "slate", "warm"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("missing %s command: %v", name, err)
		}
	}

	matchup, _, _ := root.Find([]string{"matchup"})
	for _, flag := range []string{"team-a", "team-b", "date", "season"} {
		if matchup.Flags().Lookup(flag) == nil {
			t.Fatalf("matchup is missing --%s", flag)
		}
	}
	warm, _, _ := root.Find([]string{"warm"})
	if warm.Flags().Lookup("once") == nil {
		t.Fatalf("warm is missing --once")
	}

	if err := rt.stop(); err != nil {
		t.Fatalf("stop before start: %v", err)
	}
}
