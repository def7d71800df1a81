package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mclass/internal/database"
	"github.com/emiliopalmerini/mclass/internal/infrastructure/config"
	"github.com/emiliopalmerini/mclass/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run database migrations",
	Long: `Run migrations of the libsql session store.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).

Examples:
  mclass migrate      # Run all pending migrations
  mclass migrate 0    # Rollback all migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	target := -1
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 0 {
			return fmt.Errorf("invalid version number: %s", args[0])
		}
		target = v
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Store != config.StoreLibSQL {
		fmt.Fprintf(out, "Store %q has no schema; set %s_STORE=%s to migrate a database\n", cfg.Store, config.Prefix, config.StoreLibSQL)
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := database.Open(cfg.DatabaseURL, cfg.AuthToken)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	m := migrate.New(db, out)
	current, _, err := m.CurrentVersion(ctx)
	if err == nil {
		fmt.Fprintf(out, "Current version: %d\n", current)
	}
	return m.To(ctx, target)
}
