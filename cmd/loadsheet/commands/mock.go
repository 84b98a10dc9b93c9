package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/loadsheet/loadsheet/internal/mock"
	"github.com/spf13/cobra"
)

// MockCmd serves the yaml-defined mock routes until interrupted.
var MockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Serve the configured mock routes for local test development",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		err = mock.Serve(ctx, cfg.Mock, logger)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}
