package main

import (
	"fmt"
	"time"

	"github.com/riskibarqy/nba-advisor/internal/report"
	"github.com/riskibarqy/nba-advisor/internal/usecase"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

func newMatchupCommand(rt *runtime) *cobra.Command {
	var q usecase.MatchupQuery

	cmd := &cobra.Command{
		Use:   "matchup",
		Short: "Analyse one game and ask for a recommendation",
		Example: "  advisor matchup --team-a lakers --team-b BOS --date 2026-01-15\n" +
			"  advisor matchup --team-a Denver --team-b Phoenix --date 2026-03-02 --season 2025",
		RunE: func(cmd *cobra.Command, _ []string) error {
			advice, err := rt.app.Advisor.Advise(cmd.Context(), q)
			out := cmd.OutOrStdout()
			if !advice.Matchup.Found {
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "No game found for %s vs %s on %s.\n", q.TeamA, q.TeamB, q.Date)
				return nil
			}

			fmt.Fprintln(out, advice.Report)
			if advice.Recommendation != "" {
				fmt.Fprintln(out, "===== RECOMMENDATION =====")
				fmt.Fprintln(out, advice.Recommendation)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&q.TeamA, "team-a", "", "first team (name, city or abbreviation)")
	flags.StringVar(&q.TeamB, "team-b", "", "second team (name, city or abbreviation)")
	flags.StringVar(&q.Date, "date", time.Now().Format(dateLayout), "game date (YYYY-MM-DD)")
	flags.IntVar(&q.Season, "season", 0, "season start year; defaults to the season of --date")
	_ = cmd.MarkFlagRequired("team-a")
	_ = cmd.MarkFlagRequired("team-b")
	return cmd
}

func newSlateCommand(rt *runtime) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "slate",
		Short: "Analyse every upcoming game from a date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, err := parseDate(from)
			if err != nil {
				return err
			}
			games, err := rt.app.Analysis.BuildSlate(cmd.Context(), start)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.FormatSlate(games))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first date of the slate (YYYY-MM-DD); defaults to today")
	return cmd
}

func newWarmCommand(rt *runtime) *cobra.Command {
	var (
		once     bool
		date     string
		schedule string
	)

	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Prefetch the day's games into the cache, once or on a cron schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !once {
				spec := schedule
				if spec == "" {
					spec = rt.cfg.WarmSchedule
				}
				return rt.app.Warm.Schedule(cmd.Context(), spec)
			}

			day, err := parseDate(date)
			if err != nil {
				return err
			}
			result, err := rt.app.Warm.Warm(cmd.Context(), day)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "warmed %s: %d game(s), %d task(s), %d failed\n",
				result.Date, result.Games, result.Tasks, result.Failed)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&once, "once", false, "run a single warm pass and exit")
	flags.StringVar(&date, "date", "", "day to warm with --once (YYYY-MM-DD); defaults to today")
	flags.StringVar(&schedule, "schedule", "", "six-field cron spec; defaults to WARM_SCHEDULE")
	return cmd
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	day, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: expected YYYY-MM-DD", usecase.ErrInvalidInput, raw)
	}
	return day, nil
}
