package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect recorded sessions",
	Long:  `List and inspect recorded sessions.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions",
	Long: `List recorded sessions, newest first.

Examples:
  mclass sessions list            # All sessions
  mclass sessions list --last 5   # Five most recent sessions`,
	Args: cobra.NoArgs,
	RunE: runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one session with its metrics and suggestions",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

// Flags
var sessionsLast int

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)

	sessionsListCmd.Flags().IntVarP(&sessionsLast, "last", "n", 0, "Number of sessions to show (0 = all)")
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := NewAppContext(ctx, configPath, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer app.Close()

	sessions, err := app.Analytics.RecentSessions(ctx)
	if err != nil {
		return err
	}
	if sessionsLast > 0 && len(sessions) > sessionsLast {
		sessions = sessions[:sessionsLast]
	}

	printSessionTable(cmd.OutOrStdout(), sessions)
	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := NewAppContext(ctx, configPath, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer app.Close()

	detail, err := app.Analytics.SessionDetail(ctx, args[0])
	if err != nil {
		return err
	}
	if detail == nil {
		return fmt.Errorf("session %q not found", args[0])
	}

	printSessionDetail(cmd.OutOrStdout(), detail)
	return nil
}
