package cli

import (
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show class-wide engagement and grade",
	Long: `Show the engagement and phone usage of every stored session and the
class grade of their unweighted mean.

Grades: A >= 80%, B >= 65%, C >= 50%, D otherwise.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := NewAppContext(ctx, configPath, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer app.Close()

	report, err := app.Analytics.ClassReport(ctx)
	if err != nil {
		return err
	}

	printClassReport(cmd.OutOrStdout(), report)
	return nil
}
