package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/transitdir/internal/server"
	"github.com/ziadkadry99/transitdir/internal/site"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the route directory website",
	Long: `Starts the route directory: the searchable directory page, route details,
the JSON API under /api/routes, the web manifest and the service worker.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}

		cat, err := loadCatalog(cfg)
		if err != nil {
			return err
		}

		srv := server.New(server.Config{
			Name:     "transitdir",
			Port:     cfg.Server.Port,
			AllowAll: cfg.Server.AllowAllOrigins,
		})

		st, err := site.New(cat, siteConfig(cfg))
		if err != nil {
			return err
		}
		st.RegisterRoutes(srv.Router())

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "transitdir %s starting on port %d\n", Version, cfg.Server.Port)
		fmt.Fprintf(os.Stderr, "  Site: %s\n", cfg.Site.Title)
		fmt.Fprintf(os.Stderr, "  Routes: %d\n", cat.Len())
		fmt.Fprintf(os.Stderr, "  Offline cache: %s (%d assets)\n", cfg.Offline.CacheName, len(cfg.Offline.Manifest))

		return srv.Start()
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}
