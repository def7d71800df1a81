package cli

import (
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare <session-a> <session-b>",
	Short: "Compare label counts of two sessions",
	Long: `Compare two sessions label by label. DELTA is B minus A.

Example:
  mclass compare 20250301_090000_1a2b3c4d 20250302_090000_5e6f7a8b`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := NewAppContext(ctx, configPath, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer app.Close()

	cmp, err := app.Analytics.CompareSessions(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	printComparison(cmd.OutOrStdout(), cmp)
	return nil
}
