package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newHarvestCmd creates the 'harvest' subcommand, the full-fetch ingestion
// mode.
func newHarvestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "harvest",
		Short: "Ingests every post from the remote listing",
		Long: `Walks the remote post listing page by page, starting at page 1 and
stopping when the site reports the page number as invalid. Each post is
ingested in its own transaction; a post that fails is skipped and the
harvest continues.`,

		RunE: runHarvestCommand,
	}
}

func runHarvestCommand(cmd *cobra.Command, _ []string) error {
	svc, err := resolveServices(cmd.Context())
	if err != nil {
		return err
	}

	summary, err := svc.Runner().HarvestAll(cmd.Context())
	if err := finishRun(svc, err); err != nil {
		return err
	}

	svc.Logger().Info("harvest complete",
		zap.String("run_id", summary.RunID),
		zap.Int("pages", summary.Pages),
		zap.Int("ingested", summary.Ingested),
		zap.Int("failed", summary.Failed),
	)
	return nil
}
