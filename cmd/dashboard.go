package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sharai/internal/audit"
	"github.com/ziadkadry99/sharai/internal/dashboard"
	"github.com/ziadkadry99/sharai/internal/server"
	"github.com/ziadkadry99/sharai/internal/session"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"server"},
	Short:   "Start the local web dashboard",
	Long: `Serves the review console in the browser: upload a contract, follow the
analysis, review clauses, preview and download generated contracts.`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	dashboardCmd.Flags().Int("port", 0, "port to listen on (overrides config)")
	dashboardCmd.Flags().String("host", "127.0.0.1", "interface to bind")
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx, stop := commandContext(cmd)
	defer stop()

	toasts := session.NewQueue(0)
	a, err := openApp(ctx, appOptions{restore: true, logs: true, notifier: toasts})
	if err != nil {
		return err
	}
	defer a.Close()

	port := a.cfg.Dashboard.Port
	if p, _ := cmd.Flags().GetInt("port"); p > 0 {
		port = p
	}
	host, _ := cmd.Flags().GetString("host")

	srv := server.New(server.Config{
		Host:     host,
		Port:     port,
		AllowAll: a.cfg.Dashboard.CORSAllowAll,
	}, a.db, a.log)

	dash := dashboard.New(dashboard.Deps{
		Sessions: a.sessions,
		Previews: a.previews,
		Prefs:    a.prefs,
		Toasts:   toasts,
		Log:      a.log,
	})
	dash.RegisterRoutes(srv.Router())
	audit.RegisterRoutes(srv.Router(), a.journal)

	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down dashboard...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	fmt.Fprintf(os.Stderr, "sharai dashboard v%s on http://%s\n", Version, srv.Addr())
	fmt.Fprintf(os.Stderr, "  Backend:  %s\n", a.cfg.APIBaseURL)
	fmt.Fprintf(os.Stderr, "  Database: %s\n", a.cfg.DatabasePath())
	if sid := a.sessions.SessionID(); sid != "" {
		fmt.Fprintf(os.Stderr, "  Session:  %s\n", sid)
	}

	return srv.Start()
}
