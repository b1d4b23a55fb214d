package site

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/transitdir/internal/catalog"
	"github.com/ziadkadry99/transitdir/internal/config"
)

func fixture() *catalog.Catalog {
	return catalog.New([]catalog.Route{
		{Category: catalog.CategoryBRTS, Number: "Green Line", Fare: catalog.KnownFare(55), Details: "Surjani to Numaish", Stops: []string{"Surjani", "Nagan", "Numaish"}},
		{Category: catalog.CategoryPeopleBus, Number: "R-1", Fare: catalog.KnownFare(80), Details: "Khokhrapar to **Tower**", Stops: []string{"Malir", "Airport", "Tower"}},
		{Category: catalog.CategoryChinchi, Number: "C-20", Details: "Korangi shuttle", Stops: []string{"Korangi", "Landhi"}},
	})
}

func bulk(n int) *catalog.Catalog {
	routes := make([]catalog.Route, n)
	for i := range routes {
		routes[i] = catalog.Route{Category: catalog.CategoryLocalBus, Number: fmt.Sprintf("L%d", i+1), Stops: []string{"A"}}
	}
	return catalog.New(routes)
}

func newRouter(t *testing.T, cat *catalog.Catalog, cfg Config) chi.Router {
	t.Helper()
	s, err := New(cat, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := chi.NewRouter()
	s.RegisterRoutes(r)
	return r
}

func get(t *testing.T, r http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", target, nil))
	return w
}

func assertContains(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestDirectoryPage(t *testing.T) {
	r := newRouter(t, fixture(), Config{Title: "Karachi Transit Routes", City: "Karachi", Currency: "Rs"})

	w := get(t, r, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	assertContains(t, w.Body.String(),
		"<title>Karachi Transit Routes</title>",
		`id="route-1"`, `id="route-3"`,
		`href="/routes/2"`,
		"PEOPLE BUS", "EV BUS", "CLEAR SORT",
		"Fare: Rs 55", "Fare: Rs 0",
		"3 stops",
		"/images/tuk.svg",
		"Page 1 of 1",
		`navigator.serviceWorker.register("/service-worker.js")`,
	)
	if strings.Contains(w.Body.String(), `role="dialog"`) {
		t.Error("directory page should not open the dialog")
	}
	assertContains(t, w.Body.String(), "Khokhrapar to Tower")
	if strings.Contains(w.Body.String(), "**Tower**") {
		t.Error("cards should show details as plain text")
	}
}

func TestDirectorySearch(t *testing.T) {
	r := newRouter(t, fixture(), Config{})

	body := get(t, r, "/?q=AIRPORT").Body.String()
	if !strings.Contains(body, "R-1") || strings.Contains(body, "Green Line") {
		t.Errorf("search did not narrow to R-1:\n%s", body)
	}
	assertContains(t, body, `value="AIRPORT"`, `href="/routes/2?q=AIRPORT"`)

	body = get(t, r, "/?q=nowhere").Body.String()
	assertContains(t, body, "No routes found.")
	if strings.Contains(body, `class="pagination"`) {
		t.Error("empty result should not render pagination")
	}
}

func TestCategoryToggleLinks(t *testing.T) {
	r := newRouter(t, fixture(), Config{})

	body := get(t, r, "/").Body.String()
	assertContains(t, body, `href="/?category=brts"`)

	body = get(t, r, "/?category=brts").Body.String()
	// The active category links back to the unfiltered directory.
	assertContains(t, body, `class="filter active" href="/" aria-pressed="true">BRTS`)
	assertContains(t, body, `type="hidden" name="category" value="brts"`)
	if strings.Contains(body, "R-1") {
		t.Error("category filter should hide people-bus routes")
	}
}

func TestPaginationLinks(t *testing.T) {
	r := newRouter(t, bulk(45), Config{PageSize: 20})

	body := get(t, r, "/").Body.String()
	assertContains(t, body, "Page 1 of 3", `href="/?page=2" rel="next"`, `aria-disabled="true">Previous`)

	body = get(t, r, "/?page=3").Body.String()
	assertContains(t, body, "Page 3 of 3", `href="/?page=2" rel="prev"`, `aria-disabled="true">Next`, "L45")
	if strings.Contains(body, ">L40<") {
		t.Error("page 3 should only hold routes 41-45")
	}

	body = get(t, r, "/?page=99").Body.String()
	assertContains(t, body, "Page 3 of 3")

	body = get(t, r, "/?page=-4").Body.String()
	assertContains(t, body, "Page 1 of 3")
}

func TestRouteDialog(t *testing.T) {
	r := newRouter(t, fixture(), Config{Title: "Transit", Currency: "Rs"})

	w := get(t, r, "/routes/2?q=tower")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	assertContains(t, w.Body.String(),
		`role="dialog"`,
		`href="/?q=tower#route-2"`,
		"<strong>Tower</strong>",
		"<li>Airport</li>",
		"Fare: Rs 80",
		"<title>R-1 | Transit</title>",
	)
}

func TestRouteNotFound(t *testing.T) {
	r := newRouter(t, fixture(), Config{})

	for _, target := range []string{"/routes/99", "/routes/0", "/routes/abc"} {
		w := get(t, r, target)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", target, w.Code)
		}
		assertContains(t, w.Body.String(), "Route not found.")
	}
}

func TestAPIList(t *testing.T) {
	r := newRouter(t, bulk(45), Config{PageSize: 20})

	w := get(t, r, "/api/routes?page=3")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var page PageJSON
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if page.Page != 3 || page.TotalPages != 3 || page.TotalMatches != 45 || len(page.Items) != 5 {
		t.Errorf("page = %d/%d, matches %d, items %d", page.Page, page.TotalPages, page.TotalMatches, len(page.Items))
	}

	w = get(t, r, "/api/routes?page_size=50")
	page = PageJSON{}
	json.Unmarshal(w.Body.Bytes(), &page)
	if page.TotalPages != 1 || len(page.Items) != 45 {
		t.Errorf("page_size override: %d pages, %d items", page.TotalPages, len(page.Items))
	}
}

func TestAPIUnknownCategoryUsesFallbackLabel(t *testing.T) {
	cat := catalog.New([]catalog.Route{
		{Category: "ferry", Number: "F-1", Details: "Keamari to **Manora**", Stops: []string{"Keamari", "Manora"}},
	})
	r := newRouter(t, cat, Config{})

	var route RouteJSON
	if err := json.Unmarshal(get(t, r, "/api/routes/1").Body.Bytes(), &route); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if route.Label != catalog.FallbackLabel || route.Icon != catalog.FallbackIcon {
		t.Errorf("label/icon = %q/%q, want the fallbacks", route.Label, route.Icon)
	}
	if route.Category != "ferry" {
		t.Errorf("category = %q, want the raw tag", route.Category)
	}
	if route.Details != "Keamari to **Manora**" || route.Summary != "Keamari to Manora" {
		t.Errorf("details/summary = %q/%q", route.Details, route.Summary)
	}

	assertContains(t, get(t, r, "/").Body.String(), ">"+catalog.FallbackLabel+"<")
}

func TestAPIGet(t *testing.T) {
	r := newRouter(t, fixture(), Config{})

	w := get(t, r, "/api/routes/3")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var route RouteJSON
	if err := json.Unmarshal(w.Body.Bytes(), &route); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if route.Number != "C-20" || route.Fare != nil || route.Icon != "/images/tuk.svg" {
		t.Errorf("route = %+v", route)
	}

	w = get(t, r, "/api/routes/2")
	json.Unmarshal(w.Body.Bytes(), &route)
	if route.Fare == nil || *route.Fare != 80 {
		t.Errorf("fare = %v, want 80", route.Fare)
	}

	tests := []struct {
		target string
		status int
	}{
		{"/api/routes/42", http.StatusNotFound},
		{"/api/routes/x", http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := get(t, r, tt.target)
		if w.Code != tt.status {
			t.Errorf("%s: expected %d, got %d", tt.target, tt.status, w.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["error"] == "" {
			t.Errorf("%s: expected JSON error body, got %q", tt.target, w.Body.String())
		}
	}
}

func TestWebManifest(t *testing.T) {
	r := newRouter(t, fixture(), Config{Title: "Karachi Transit Routes", City: "Karachi"})

	w := get(t, r, "/manifest.webmanifest")
	if ct := w.Header().Get("Content-Type"); ct != "application/manifest+json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["name"] != "Karachi Transit Routes" || m["short_name"] != "Karachi" || m["start_url"] != "/" {
		t.Errorf("manifest = %v", m)
	}
}

func TestServiceWorker(t *testing.T) {
	r := newRouter(t, fixture(), Config{
		CacheName: "karachi-v9",
		Manifest:  []string{"/", "/manifest.webmanifest"},
	})

	w := get(t, r, "/service-worker.js")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/javascript") {
		t.Errorf("Content-Type = %q", ct)
	}
	assertContains(t, w.Body.String(),
		`const CACHE_NAME = "karachi-v9";`,
		`"/manifest.webmanifest"`,
		`key !== CACHE_NAME`,
		`event.request.method !== "GET"`,
		`caches.match(event.request)`,
	)
}

// Every default precache asset must be served, or install would fail.
func TestDefaultManifestAssetsAreServed(t *testing.T) {
	r := newRouter(t, fixture(), Config{})
	for _, asset := range config.DefaultManifest() {
		if w := get(t, r, asset); w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", asset, w.Code)
		}
	}
}
