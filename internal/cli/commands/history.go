package commands

import (
	"github.com/leapstack-labs/leapproof/internal/history"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded check runs",
		Long: `Show the most recent check runs recorded with check --record,
newest first, with the lines that failed in each.`,
		Example: `  leapproof history
  leapproof history --limit 5 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContextWithoutCatalog(cmd)

			store, err := cc.OpenHistory()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return cc.Renderer.Runs(runs)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultLimit, "Number of runs to show")

	return cmd
}
