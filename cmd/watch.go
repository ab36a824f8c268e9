package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhinayb/pubwatch/internal/api"
	"github.com/abhinayb/pubwatch/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the page on an interval and serve status over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		m, cleanup, err := buildMonitor(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		watcher := watch.New(m, cfg.Watch.Interval, cfg.Watch.ExitWhenDone, logger)
		server := api.New(cfg.Server.Port, watcher, logger)

		serverCtx, cancelServer := context.WithCancel(ctx)
		defer cancelServer()

		serverErr := make(chan error, 1)
		go func() {
			serverErr <- server.Start(serverCtx)
		}()

		watchErr := watcher.Run(ctx)
		cancelServer()
		if err := <-serverErr; err != nil {
			logger.Warn("status server stopped with error", zap.Error(err))
		}

		if watchErr != nil && !errors.Is(watchErr, context.Canceled) {
			return watchErr
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
