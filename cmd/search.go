package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newSearchCmd creates the 'search' subcommand, the keyword-search ingestion
// mode.
func newSearchCmd() *cobra.Command {
	var (
		keyword string
		pages   int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Ingests posts found by a keyword search",
		Long: `Fetches a fixed number of search result pages for the keyword, records
the session and its result items, then ingests the post behind each item
and links the two. Pages that fail to fetch are skipped; every requested
page is visited.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSearchCommand(cmd, keyword, pages)
		},
	}

	cmd.Flags().StringVar(&keyword, "keyword", "", "keyword to search for (required)")
	cmd.Flags().IntVar(&pages, "pages", 0, "number of result pages to fetch (default from config)")
	_ = cmd.MarkFlagRequired("keyword")

	return cmd
}

func runSearchCommand(cmd *cobra.Command, keyword string, pages int) error {
	svc, err := resolveServices(cmd.Context())
	if err != nil {
		return err
	}

	if pages <= 0 {
		pages = svc.Config().Harvest.SearchPageCount
	}

	summary, _, err := svc.Runner().SearchByKeyword(cmd.Context(), keyword, pages)
	if err := finishRun(svc, err); err != nil {
		return err
	}

	svc.Logger().Info("keyword search complete",
		zap.String("run_id", summary.RunID),
		zap.String("keyword", keyword),
		zap.Int("items", summary.Items),
		zap.Int("ingested", summary.Ingested),
		zap.Int("failed", summary.Failed),
	)
	return nil
}
