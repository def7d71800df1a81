package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	apptui "github.com/emiliopalmerini/mclass/internal/app/tui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Browse sessions in an interactive terminal dashboard",
	Long: `Open a full-screen dashboard over the stored sessions.

Screens:
  1  Overview: class grade, mean engagement and phone usage, engagement trend
  2  Sessions: newest first; enter opens a session with its label counts
     and suggestions, esc goes back

Press r to reload the current screen and q to quit.`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := NewAppContext(ctx, configPath, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer app.Close()

	program := tea.NewProgram(apptui.NewApp(app.Analytics),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
