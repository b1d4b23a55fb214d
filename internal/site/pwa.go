package site

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
)

type webManifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

type webManifest struct {
	Name            string            `json:"name"`
	ShortName       string            `json:"short_name"`
	Description     string            `json:"description,omitempty"`
	StartURL        string            `json:"start_url"`
	Display         string            `json:"display"`
	BackgroundColor string            `json:"background_color"`
	ThemeColor      string            `json:"theme_color"`
	Icons           []webManifestIcon `json:"icons"`
}

const themeColor = "#0f766e"

func (s *Site) handleManifest(w http.ResponseWriter, r *http.Request) {
	m := webManifest{
		Name:            s.cfg.Title,
		ShortName:       s.cfg.City,
		StartURL:        "/",
		Display:         "standalone",
		BackgroundColor: "#ffffff",
		ThemeColor:      themeColor,
		Icons: []webManifestIcon{
			{Src: "/images/icon.svg", Sizes: "any", Type: "image/svg+xml"},
		},
	}
	if m.ShortName == "" {
		m.ShortName = s.cfg.Title
	}
	if s.cfg.City != "" {
		m.Description = "Public transport routes in " + s.cfg.City
	}

	w.Header().Set("Content-Type", "application/manifest+json")
	json.NewEncoder(w).Encode(m)
}

type serviceWorkerData struct {
	CacheName string
	Assets    string
}

// ServiceWorker renders the browser worker script for the configured cache
// name and manifest. It follows the same lifecycle as the offline package:
// precache on install, drop other caches on activate, network-first fetch.
func (s *Site) ServiceWorker() ([]byte, error) {
	name, err := json.Marshal(s.cfg.CacheName)
	if err != nil {
		return nil, err
	}
	manifest := s.cfg.Manifest
	if manifest == nil {
		manifest = []string{}
	}
	assets, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.worker.Execute(&buf, serviceWorkerData{CacheName: string(name), Assets: string(assets)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Site) handleServiceWorker(w http.ResponseWriter, r *http.Request) {
	script, err := s.ServiceWorker()
	if err != nil {
		log.Printf("rendering service worker: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(script)
}
