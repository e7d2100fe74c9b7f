package cmd

import (
	"github.com/spf13/cobra"

	"github.com/newsroomlab/pressharvest/internal/report"
)

// newReportCmd creates the 'report' subcommand summarizing stored posts.
func newReportCmd() *cobra.Command {
	var (
		group  string
		method string
		format string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Prints post counts per category, tag or author",
		Long: `Summarizes the stored posts. The 'all' method reads the usage count the
remote site reports on each term; the 'database' method counts the posts
actually stored locally. Authors carry no remote count, so the author
group always uses the database method.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReportCommand(cmd, group, method, format)
		},
	}

	cmd.Flags().StringVar(&group, "group", string(report.GroupCategory), "entity to count posts for: category, tag or author")
	cmd.Flags().StringVar(&method, "method", "", "counting method: all or database (default: all, database for authors)")
	cmd.Flags().StringVar(&format, "format", string(report.FormatTable), "output format: table or csv")

	return cmd
}

func runReportCommand(cmd *cobra.Command, groupFlag, methodFlag, formatFlag string) error {
	svc, err := resolveServices(cmd.Context())
	if err != nil {
		return err
	}

	group, err := report.ParseGroup(groupFlag)
	if err != nil {
		return err
	}
	method, err := pickMethod(group, methodFlag)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	counts, err := svc.Reports().Counts(cmd.Context(), group, method)
	if err != nil {
		return err
	}
	return report.Render(cmd.OutOrStdout(), group, counts, format)
}

// pickMethod applies the per-group default when no method flag was given.
func pickMethod(group report.Group, flag string) (report.Method, error) {
	if flag == "" {
		if group == report.GroupAuthor {
			return report.MethodDatabase, nil
		}
		return report.MethodAll, nil
	}
	return report.ParseMethod(flag)
}
