package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ziadkadry99/transitdir/internal/catalog"
	"github.com/ziadkadry99/transitdir/internal/detail"
	"github.com/ziadkadry99/transitdir/internal/directory"
	"github.com/ziadkadry99/transitdir/internal/offline"
	"github.com/ziadkadry99/transitdir/internal/site"
)

func fixture() *catalog.Catalog {
	return catalog.New([]catalog.Route{
		{Category: catalog.CategoryBRTS, Number: "Green Line", Fare: catalog.KnownFare(55), Details: "Surjani to Numaish", Stops: []string{"Surjani", "Numaish"}},
		{Category: catalog.CategoryChinchi, Number: "C-20", Details: "Korangi shuttle", Stops: []string{"Korangi", "Landhi", "Quaidabad"}},
	})
}

func TestPrintRoutes(t *testing.T) {
	ctrl := directory.New(fixture(), 20, nil)
	var buf bytes.Buffer
	printRoutes(&buf, ctrl.View(), detail.NewPrinter("en"), "Rs")

	out := buf.String()
	for _, want := range []string{"Green Line", "C-20", "Rs 55", "Rs 0", "BRTS", "CHINCHI", "Page 1 of 1 (2 routes)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Next page") {
		t.Error("single page should not suggest a next page")
	}
}

func TestPrintRoutesEmpty(t *testing.T) {
	ctrl := directory.New(fixture(), 20, nil)
	ctrl.SetSearch("nowhere")
	var buf bytes.Buffer
	printRoutes(&buf, ctrl.View(), detail.NewPrinter("en"), "Rs")
	if got := strings.TrimSpace(buf.String()); got != "No routes found." {
		t.Errorf("got %q", got)
	}
}

func TestPrintRoutesJSON(t *testing.T) {
	ctrl := directory.New(fixture(), 1, nil)
	ctrl.NextPage()

	var buf bytes.Buffer
	if err := printRoutesJSON(&buf, ctrl.View()); err != nil {
		t.Fatal(err)
	}
	var page site.PageJSON
	if err := json.Unmarshal(buf.Bytes(), &page); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if page.Page != 2 || page.TotalPages != 2 || len(page.Items) != 1 || page.Items[0].Number != "C-20" {
		t.Errorf("page = %+v", page)
	}
}

func TestPrintRoute(t *testing.T) {
	route, _ := fixture().Get(2)
	var buf bytes.Buffer
	printRoute(&buf, route, detail.NewPrinter("en"), "Rs")

	out := buf.String()
	for _, want := range []string{"C-20", "Korangi shuttle", "Fare: Rs 0", "3 stops", " 3. Quaidabad"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func putEntry(t *testing.T, s offline.Storage, cache, url, body string) {
	t.Helper()
	ctx := context.Background()
	c, err := s.Open(ctx, cache)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, url, nil)
	resp := &http.Response{StatusCode: http.StatusOK, Header: http.Header{}}
	if err := c.Put(ctx, offline.NewEntry(offline.KeyFor(req), resp, []byte(body))); err != nil {
		t.Fatal(err)
	}
}

func TestSummarizeCaches(t *testing.T) {
	s := offline.NewMemoryStorage()
	putEntry(t, s, "transitdir-v1", "http://localhost:8080/", "12345")
	putEntry(t, s, "transitdir-v2", "http://localhost:8080/", "1234567890")
	putEntry(t, s, "transitdir-v2", "http://localhost:8080/styles/globals.css", "css")

	caches, err := summarizeCaches(context.Background(), s, "transitdir-v2")
	if err != nil {
		t.Fatal(err)
	}
	if len(caches) != 2 {
		t.Fatalf("expected 2 caches, got %d", len(caches))
	}
	if caches[0].Current || !caches[1].Current {
		t.Error("only transitdir-v2 should be current")
	}
	if len(caches[1].Entries) != 2 || caches[1].Size != 13 {
		t.Errorf("v2 = %d entries, %d bytes", len(caches[1].Entries), caches[1].Size)
	}

	var buf bytes.Buffer
	printCaches(&buf, caches, true)
	for _, want := range []string{"transitdir-v1", "current", "13 B", "GET http://localhost:8080/styles/globals.css"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("status output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestPrintCachesEmpty(t *testing.T) {
	var buf bytes.Buffer
	printCaches(&buf, nil, false)
	if !strings.Contains(buf.String(), "offline install") {
		t.Errorf("got %q", buf.String())
	}
}

func TestClearCaches(t *testing.T) {
	ctx := context.Background()
	s := offline.NewMemoryStorage()
	for i := 1; i <= 3; i++ {
		putEntry(t, s, fmt.Sprintf("v%d", i), "http://localhost:8080/", "x")
	}

	deleted, err := clearCaches(ctx, s, []string{"v1", "missing"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(deleted, ",") != "v1" {
		t.Errorf("deleted = %v, want [v1]", deleted)
	}

	deleted, err = clearCaches(ctx, s, nil)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(deleted, ",") != "v2,v3" {
		t.Errorf("deleted = %v, want [v2 v3]", deleted)
	}
	if names, _ := s.Keys(ctx); len(names) != 0 {
		t.Errorf("caches left: %v", names)
	}
}

func TestProxyErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not cached", fmt.Errorf("%w: http://localhost/", offline.ErrNotCached), http.StatusGatewayTimeout},
		{"origin down", errors.New("connection refused"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			proxyErrorHandler(w, httptest.NewRequest("GET", "/routes/1", nil), tt.err)
			if w.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, w.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["error"] == "" {
				t.Errorf("expected JSON error body, got %q", w.Body.String())
			}
		})
	}
}

func TestDisabledTransport(t *testing.T) {
	_, err := disabledTransport{}.RoundTrip(httptest.NewRequest("GET", "/", nil))
	if !errors.Is(err, errNetworkDisabled) {
		t.Errorf("err = %v", err)
	}
}
