// Package site serves the route directory: the server-rendered directory
// page, the detail dialog, a JSON API, and the files a browser needs to
// install the offline worker.
package site

import (
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"net/http"
	texttemplate "text/template"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/message"

	"github.com/ziadkadry99/transitdir/internal/catalog"
	"github.com/ziadkadry99/transitdir/internal/detail"
	"github.com/ziadkadry99/transitdir/internal/query"
)

//go:embed static
var staticFiles embed.FS

// Config holds what the site needs from the application configuration.
type Config struct {
	Title    string
	City     string
	Locale   string
	Currency string
	PageSize int

	// CacheName and Manifest feed the generated service worker.
	CacheName string
	Manifest  []string
}

// Site renders the directory for one catalog.
type Site struct {
	cfg     Config
	catalog *catalog.Catalog
	printer *message.Printer
	page    *htmltemplate.Template
	worker  *texttemplate.Template
	static  fs.FS
}

// New parses the site templates. Zero values in cfg take defaults.
func New(cat *catalog.Catalog, cfg Config) (*Site, error) {
	if cat == nil {
		return nil, fmt.Errorf("site: catalog is required")
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = query.DefaultPageSize
	}
	if cfg.Title == "" {
		cfg.Title = "Transit Routes"
	}
	if cfg.Locale == "" {
		cfg.Locale = "en"
	}
	if cfg.CacheName == "" {
		cfg.CacheName = "transitdir-v1"
	}

	page, err := htmltemplate.New("page").Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}
	worker, err := texttemplate.New("service-worker").Parse(serviceWorkerTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing service worker template: %w", err)
	}
	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, err
	}

	return &Site{
		cfg:     cfg,
		catalog: cat,
		printer: detail.NewPrinter(cfg.Locale),
		page:    page,
		worker:  worker,
		static:  static,
	}, nil
}

// RegisterRoutes mounts the site on the given router.
func (s *Site) RegisterRoutes(r chi.Router) {
	r.Get("/", s.handleDirectory)
	r.Get("/routes/{id}", s.handleRoute)

	r.Route("/api/routes", func(r chi.Router) {
		r.Get("/", s.handleAPIList)
		r.Get("/{id}", s.handleAPIGet)
	})

	r.Get("/manifest.webmanifest", s.handleManifest)
	r.Get("/service-worker.js", s.handleServiceWorker)

	files := http.FileServer(http.FS(s.static))
	r.Handle("/styles/*", files)
	r.Handle("/images/*", files)
}
