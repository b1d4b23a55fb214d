package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/transitdir/internal/offline"
	"github.com/ziadkadry99/transitdir/internal/progress"
	"github.com/ziadkadry99/transitdir/internal/server"
)

var (
	proxyPort   int
	proxyOrigin string
)

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Run an offline-capable mirror of a transitdir site",
	Long: `Starts a reverse proxy in front of offline.origin with the cache worker
installed. Shell assets are precached on start; every page fetched through
the proxy is kept, so previously visited pages still load when the origin
is unreachable.`,
	RunE: runProxy,
}

func init() {
	proxyCmd.Flags().IntVarP(&proxyPort, "port", "p", 8081, "port to listen on (overrides proxy.port)")
	proxyCmd.Flags().StringVar(&proxyOrigin, "origin", "", "site to mirror (overrides offline.origin)")
	rootCmd.AddCommand(proxyCmd)
}

func runProxy(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Proxy.Port = proxyPort
	}
	if proxyOrigin != "" {
		cfg.Offline.Origin = proxyOrigin
	}
	origin, err := cfg.OriginURL()
	if err != nil {
		return err
	}

	storage, closeStorage, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker, err := newWorker(cfg, storage, http.DefaultTransport, progress.NewReporter("Caching shell"))
	if err != nil {
		return err
	}
	host := offline.NewHost(http.DefaultTransport, offlineLogger())
	defer host.Close()

	reg, err := host.Register(ctx, worker)
	if err != nil {
		// The mirror still works online; it just cannot serve anything offline yet.
		fmt.Fprintf(os.Stderr, "Warning: offline cache not installed: %v\n", err)
	}

	rp := httputil.NewSingleHostReverseProxy(origin)
	rp.Transport = host
	rp.ErrorHandler = proxyErrorHandler

	srv := server.New(server.Config{
		Name:     "transitdir proxy",
		Port:     cfg.Proxy.Port,
		AllowAll: cfg.Server.AllowAllOrigins,
	})
	srv.Router().Handle("/*", rp)

	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down proxy...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	fmt.Fprintf(os.Stderr, "transitdir proxy %s starting on port %d\n", Version, cfg.Proxy.Port)
	fmt.Fprintf(os.Stderr, "  Origin: %s\n", origin)
	fmt.Fprintf(os.Stderr, "  Cache: %s (%s)\n", cfg.Offline.CacheName, cfg.Offline.Storage)
	if reg.ID != "" {
		fmt.Fprintf(os.Stderr, "  Worker: %s (%s)\n", reg.ID, reg.State)
	}

	return srv.Start()
}

// proxyErrorHandler answers requests that neither the origin nor the cache
// could serve.
func proxyErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	msg := "origin unreachable"
	if errors.Is(err, offline.ErrNotCached) {
		status = http.StatusGatewayTimeout
		msg = "offline and not cached"
	}
	log.Printf("proxy %s %s: %v", r.Method, r.URL.Path, err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`, msg)
}
