// Package cmd defines and implements the CLI commands for the pressharvest
// executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newsroomlab/pressharvest/internal/app"
	"github.com/newsroomlab/pressharvest/internal/config"
	"github.com/newsroomlab/pressharvest/internal/ingest"
	"github.com/newsroomlab/pressharvest/internal/report"
)

var cfgFile string

// appKeyType is the key for storing the Services in the context.
type appKeyType string

const appKey appKeyType = "app"

// Services is the application surface commands consume. An interface so tests
// can inject a stub.
type Services interface {
	Close()
	Config() config.Config
	Logger() *zap.Logger
	Runner() *ingest.Runner
	Reports() *report.Generator
}

// newApp is the application factory. A variable so tests can replace it.
var newApp = func(ctx context.Context) (Services, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg)
}

// newRootCmd creates and configures the root command. The app is built in
// PersistentPreRunE, stored on the context for subcommands, and closed in
// PersistentPostRun.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pressharvest",
		Short: "Harvests article metadata from a WordPress-style site into Postgres.",
		Long: `pressharvest ingests posts, authors, categories and tags from a content
site's public JSON API and HTML search endpoint, normalizes them and stores
them idempotently in Postgres. Re-running a harvest updates rows in place
rather than duplicating them.`,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, svc))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if svc, ok := cmd.Context().Value(appKey).(Services); ok && svc != nil {
				svc.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional; env vars and defaults apply without one)")

	cmd.AddCommand(newHarvestCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newReportCmd())

	return cmd
}

func resolveServices(ctx context.Context) (Services, error) {
	svc, ok := ctx.Value(appKey).(Services)
	if !ok || svc == nil {
		return nil, errors.New("application services not initialized")
	}
	return svc, nil
}

// finishRun maps an interrupt to a clean exit; progress already persisted is
// kept.
func finishRun(svc Services, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		svc.Logger().Info("interrupted; stopping gracefully, persisted progress is kept")
		return nil
	}
	return err
}

// Execute is the main entry point.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
