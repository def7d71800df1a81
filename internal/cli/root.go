package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X".
var version = "dev"

// configPath is the --config flag shared by every command.
var configPath string

var rootCmd = &cobra.Command{
	Use:   "mclass",
	Short: "Classroom engagement monitoring and session analytics",
	Long: `mclass samples a classroom video feed, classifies the visible engagement
state of each sampled frame and aggregates the results into sessions.

Stored sessions can be listed, inspected, compared and graded from the
terminal or through the web dashboard.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $XDG_CONFIG_HOME/mclass/config.yaml if present)")
}
