package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mclass/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web dashboard",
	Long: `Start the web dashboard and JSON API.

Examples:
  mclass serve                       # Listen on MCLASS_ADDR (default localhost:8080)
  mclass serve --addr 0.0.0.0:3000   # Listen on all interfaces, port 3000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Address to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewAppContext(ctx, configPath, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer app.Close()

	addr := app.Config.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	server := web.NewServer(app.Analytics, addr, app.Config.CORSOrigins, app.Logger)
	return server.Start(ctx)
}
