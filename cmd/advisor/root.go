package main

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/nba-advisor/internal/app"
	"github.com/riskibarqy/nba-advisor/internal/config"
	"github.com/riskibarqy/nba-advisor/internal/observability"
	"github.com/riskibarqy/nba-advisor/internal/platform/logging"
	"github.com/spf13/cobra"
)

type runtime struct {
	cfg    config.Config
	logger *logging.Logger
	app    *app.App

	shutdown []func(context.Context) error
}

func newRootCommand() (*cobra.Command, *runtime) {
	rt := &runtime{}
	var envFile string

	root := &cobra.Command{
		Use:           "advisor",
		Short:         "NBA matchup analysis backed by balldontlie",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.start(cmd.Context(), envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(
		newMatchupCommand(rt),
		newSlateCommand(rt),
		newWarmCommand(rt),
	)
	return root, rt
}

func (rt *runtime) start(ctx context.Context, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	rt.cfg = cfg
	rt.logger = logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(rt.logger)

	shutdownTracing, err := observability.InitUptrace(cfg, rt.logger)
	if err != nil {
		return err
	}
	rt.shutdown = append(rt.shutdown, shutdownTracing)

	stopProfiler, err := observability.InitPyroscope(cfg, rt.logger)
	if err != nil {
		return err
	}
	rt.shutdown = append(rt.shutdown, func(context.Context) error { return stopProfiler() })

	rt.app, err = app.New(ctx, cfg, rt.logger)
	return err
}

// stop is safe to call after a failed or skipped start.
func (rt *runtime) stop() error {
	var firstErr error
	if rt.app != nil {
		firstErr = rt.app.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(rt.shutdown) - 1; i >= 0; i-- {
		if err := rt.shutdown[i](ctx); err != nil {
			rt.logger.Warn("observability shutdown failed", "error", err)
		}
	}
	if rt.logger != nil {
		_ = rt.logger.Sync()
	}
	return firstErr
}
