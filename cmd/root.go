// Package cmd defines and implements the CLI commands for the harvester
// executable.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/leadgrid/harvester/internal/app"
	"github.com/leadgrid/harvester/internal/config"
	"github.com/leadgrid/harvester/internal/harvest"
)

var cfgFile string

// appKeyType is the key for storing the App in the command context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application surface commands use. An interface so tests
// can inject a mock container.
type App interface {
	Close()
	Config() config.Config
	GetLogger() *zap.Logger
	GetStore() harvest.Store
}

// newApp is the application factory, replaceable in tests.
var newApp = func(ctx context.Context, cfg config.Config) (App, error) {
	return app.NewApp(ctx, cfg)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvester",
		Short: "Contact email harvester for business listings.",
		Long: `harvester walks the backlog of URLs discovered by earlier pipeline
stages, fetches each one through a headless browser, extracts contact
emails, and records them against the owning place.`,

		// Runs after flags are parsed but before the subcommand's RunE:
		// load configuration, build the service container, inject it.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(viper.GetViper(), cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			appInstance, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}
			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cmd.SetContext(ctx)
			return nil
		},

		// Shuts services down on every exit path.
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml keys via HARVEST_* env)")

	cmd.AddCommand(newCrossrefCmd())

	return cmd
}

// Execute is the main entry point. The process exit status reflects whether
// the run could start, not per-URL outcomes.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application services not initialized")
	}
	return appInstance, nil
}
