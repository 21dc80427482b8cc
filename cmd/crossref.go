package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/leadgrid/harvester/internal/clock/system"
	"github.com/leadgrid/harvester/internal/fetcher/headless"
	"github.com/leadgrid/harvester/internal/harvest"
	"github.com/leadgrid/harvester/internal/id/uuid"
)

// newCrossrefCmd creates the 'crossref' subcommand: process the backlog of
// discovered URLs and harvest contact emails from them.
func newCrossrefCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crossref",
		Short: "Process discovered URLs and harvest contact emails",
		Long: `Pulls discovered URLs still marked NEW, fetches each through a
headless browser (websites directly, social profiles via their About
sub-page), extracts and validates contact emails, and records them
against the owning place. Each URL finalizes as DONE or FAILED.`,

		RunE: runCrossrefCommand,
	}

	flags := cmd.Flags()
	flags.String("db", "pipeline.db", "path to the SQLite pipeline database")
	flags.Int("limit", 0, "maximum number of URLs to process (0 = all)")
	flags.BoolP("verbose", "v", false, "verbose, human-readable output")

	v := viper.GetViper()
	cobra.CheckErr(v.BindPFlag("store.sqlite.path", flags.Lookup("db")))
	cobra.CheckErr(v.BindPFlag("run.limit", flags.Lookup("limit")))
	cobra.CheckErr(v.BindPFlag("logging.development", flags.Lookup("verbose")))

	return cmd
}

func runCrossrefCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	cfg := appInstance.Config()
	logger := appInstance.GetLogger()

	runID, err := uuid.NewGenerator().NewID()
	if err != nil {
		return fmt.Errorf("generate run id: %w", err)
	}

	factory := headless.NewFactory(headless.Config{
		UserAgent:    cfg.Browser.UserAgent,
		NavTimeout:   cfg.Browser.NavTimeout(),
		Settle:       cfg.Browser.Settle(),
		SocialSettle: cfg.Browser.SocialSettle(),
	}, logger)

	engine := harvest.NewEngine(appInstance.GetStore(), factory, system.New(), runID, logger)

	stats, err := engine.Run(cmd.Context(), cfg.Run.Limit)
	if err != nil {
		return fmt.Errorf("run crossref harvest: %w", err)
	}

	logger.Info("Crossref harvest finished",
		zap.String("run_id", stats.RunID),
		zap.Int("processed", stats.Processed),
		zap.Int("succeeded", stats.Succeeded),
		zap.Int("failed", stats.Failed),
		zap.Int("emails_saved", stats.EmailsSaved),
		zap.Duration("elapsed", stats.Elapsed),
	)
	return nil
}
