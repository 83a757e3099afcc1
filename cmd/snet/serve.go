package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matsen/scholarnet/internal/server"
)

var (
	serveAddr       string
	serveNoBuild    bool
	serveCORSOrigin string
	serveTitle      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the network dashboard",
	Long: `Start the web dashboard.

Every cohort graph is loaded from .scholarnet/snapshots/ before the server
starts listening. Missing snapshots are built and stored unless --no-build
is given, in which case the server refuses to start until 'snet build' has
been run.

Routes:
  GET /               dashboard page
  GET /api/cohorts    cohort list with graph sizes
  GET /api/scholars   dropdown options (?cohort=&exclude=)
  GET /api/figure     figure JSON (?author1=&author2=&cohort=)
  GET /health         liveness probe
  GET /metrics        Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, then :8050)")
	serveCmd.Flags().BoolVar(&serveNoBuild, "no-build", false, "Fail instead of building missing snapshots")
	serveCmd.Flags().StringVar(&serveCORSOrigin, "cors-origin", "", "Allowed CORS origin (default from config, then *)")
	serveCmd.Flags().StringVar(&serveTitle, "title", "Scholar Network", "Dashboard heading")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	log := newLogger()

	a, cleanup := mustNewApp(ctx, repoRoot, cfg, log, !serveNoBuild)
	defer cleanup()

	origin := serveCORSOrigin
	if origin == "" {
		origin = cfg.Server.CORSOrigin
	}
	srv, err := server.New(a, server.Options{
		Title:      serveTitle,
		CORSOrigin: origin,
	}, log)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.ServerAddr()
	}

	if err := srv.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		exitWithError(ExitError, "server: %v", err)
	}
	return nil
}
