package offline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/transitdir/internal/progress"
)

// Event is one lifecycle event delivered to a worker.
type Event interface {
	EventName() string
}

// InstallEvent asks the worker to precache its manifest.
type InstallEvent struct{}

func (InstallEvent) EventName() string { return "install" }

// ActivateEvent asks the worker to drop superseded caches. Claim, when set,
// makes the worker control already-open clients.
type ActivateEvent struct {
	Claim func()
}

func (ActivateEvent) EventName() string { return "activate" }

// FetchEvent carries an intercepted request. A worker that does not call
// RespondWith leaves the request to the network.
type FetchEvent struct {
	Request *http.Request

	mu        sync.Mutex
	responded bool
	resp      *http.Response
	err       error
}

// NewFetchEvent wraps req.
func NewFetchEvent(req *http.Request) *FetchEvent {
	return &FetchEvent{Request: req}
}

func (*FetchEvent) EventName() string { return "fetch" }

// RespondWith settles the event. Later calls are ignored.
func (e *FetchEvent) RespondWith(resp *http.Response, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.responded {
		return
	}
	e.responded, e.resp, e.err = true, resp, err
}

// Handled reports whether the worker answered the request.
func (e *FetchEvent) Handled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.responded
}

// Result returns the worker's answer.
func (e *FetchEvent) Result() (*http.Response, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resp, e.err
}

// Config configures a Worker.
type Config struct {
	// Version names the cache generation owned by the worker.
	Version string
	// Origin resolves relative manifest paths.
	Origin *url.URL
	// Manifest lists the shell assets precached on install.
	Manifest []string
	// Network performs live requests. Defaults to http.DefaultTransport.
	Network http.RoundTripper
	Storage Storage
	Logger  *log.Logger
	// Progress, when set, reports install progress.
	Progress progress.Reporter
}

// Worker is the cache actor. It is driven only through Dispatch.
type Worker struct {
	cfg     Config
	pending sync.WaitGroup

	mu      sync.Mutex
	retired bool
}

// NewWorker validates cfg and returns a worker.
func NewWorker(cfg Config) (*Worker, error) {
	if cfg.Version == "" {
		return nil, errors.New("offline: version is required")
	}
	if cfg.Storage == nil {
		return nil, errors.New("offline: storage is required")
	}
	if cfg.Origin == nil && len(cfg.Manifest) > 0 {
		return nil, errors.New("offline: origin is required to resolve the manifest")
	}
	if cfg.Network == nil {
		cfg.Network = http.DefaultTransport
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	return &Worker{cfg: cfg}, nil
}

// Version returns the worker's cache name.
func (w *Worker) Version() string { return w.cfg.Version }

// Dispatch delivers ev to its handler. Install and activate failures are
// returned; fetch outcomes are recorded on the event.
func (w *Worker) Dispatch(ctx context.Context, ev Event) error {
	switch ev := ev.(type) {
	case InstallEvent:
		return w.onInstall(ctx)
	case ActivateEvent:
		return w.onActivate(ctx, ev)
	case *FetchEvent:
		w.onFetch(ctx, ev)
		return nil
	default:
		return fmt.Errorf("offline: unknown event %q", ev.EventName())
	}
}

// Wait blocks until every background cache write has finished.
func (w *Worker) Wait() {
	w.pending.Wait()
}

// retire stops the worker from touching its cache generation and waits for
// writes already in flight. A retired worker's cache may be deleted at any
// point afterwards, and opening it again would recreate it.
func (w *Worker) retire() {
	w.mu.Lock()
	w.retired = true
	w.mu.Unlock()
	w.pending.Wait()
}

func (w *Worker) isRetired() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.retired
}

func (w *Worker) onInstall(ctx context.Context) error {
	cache, err := w.cfg.Storage.Open(ctx, w.cfg.Version)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInstallFailed, err)
	}

	total := len(w.cfg.Manifest)
	if w.cfg.Progress != nil {
		w.cfg.Progress.Start(total)
		defer w.cfg.Progress.Finish()
	}

	var (
		mu   sync.Mutex
		done int
	)
	entries := make([]Entry, total)
	g, gctx := errgroup.WithContext(ctx)
	for i, asset := range w.cfg.Manifest {
		i, asset := i, asset
		g.Go(func() error {
			entry, err := w.fetchAsset(gctx, asset)
			if err != nil {
				return err
			}
			entries[i] = entry
			if w.cfg.Progress != nil {
				mu.Lock()
				done++
				w.cfg.Progress.Update(done, entry.Key.URL)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		w.cfg.Logger.Printf("install %s failed: %v", w.cfg.Version, err)
		return fmt.Errorf("%w: %w", ErrInstallFailed, err)
	}

	if err := cache.PutAll(ctx, entries); err != nil {
		return fmt.Errorf("%w: %w", ErrInstallFailed, err)
	}
	w.cfg.Logger.Printf("installed %s (%d assets)", w.cfg.Version, total)
	return nil
}

func (w *Worker) fetchAsset(ctx context.Context, asset string) (Entry, error) {
	ref, err := url.Parse(asset)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing asset %q: %w", asset, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.cfg.Origin.ResolveReference(ref).String(), nil)
	if err != nil {
		return Entry{}, err
	}

	resp, err := w.cfg.Network.RoundTrip(req)
	if err != nil {
		return Entry{}, fmt.Errorf("fetching %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Entry{}, fmt.Errorf("fetching %s: unexpected status %d", req.URL, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Entry{}, fmt.Errorf("reading %s: %w", req.URL, err)
	}
	return NewEntry(KeyFor(req), resp, body), nil
}

func (w *Worker) onActivate(ctx context.Context, ev ActivateEvent) error {
	names, err := w.cfg.Storage.Keys(ctx)
	if err != nil {
		return fmt.Errorf("listing caches: %w", err)
	}

	var errs []error
	for _, name := range names {
		if name == w.cfg.Version {
			continue
		}
		if _, err := w.cfg.Storage.Delete(ctx, name); err != nil {
			errs = append(errs, err)
			continue
		}
		w.cfg.Logger.Printf("deleted superseded cache %s", name)
	}

	if ev.Claim != nil {
		ev.Claim()
	}
	return errors.Join(errs...)
}

func (w *Worker) onFetch(ctx context.Context, ev *FetchEvent) {
	req := ev.Request
	if req.Method != "" && req.Method != http.MethodGet {
		return
	}
	key := KeyFor(req)

	resp, err := w.cfg.Network.RoundTrip(req)
	if err != nil {
		ev.RespondWith(w.fallback(ctx, req, key, err))
		return
	}

	// The cache only stands in for a failed request, not a failed read.
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		ev.RespondWith(nil, fmt.Errorf("reading %s: %w", key.URL, err))
		return
	}
	w.store(ctx, NewEntry(key, resp, body))
	ev.RespondWith(cloneResponse(resp, body), nil)
}

// store persists e in the background.
func (w *Worker) store(ctx context.Context, e Entry) {
	ctx = context.WithoutCancel(ctx)
	w.mu.Lock()
	if w.retired {
		w.mu.Unlock()
		return
	}
	w.pending.Add(1)
	w.mu.Unlock()
	go func() {
		defer w.pending.Done()
		cache, err := w.cfg.Storage.Open(ctx, w.cfg.Version)
		if err == nil {
			err = cache.Put(ctx, e)
		}
		if err != nil {
			w.cfg.Logger.Printf("caching %s: %v", e.Key, err)
		}
	}()
}

func (w *Worker) fallback(ctx context.Context, req *http.Request, key Key, netErr error) (*http.Response, error) {
	if w.isRetired() {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotCached, key.URL, netErr)
	}
	cache, err := w.cfg.Storage.Open(ctx, w.cfg.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotCached, key.URL, errors.Join(netErr, err))
	}
	entry, ok, err := cache.Match(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotCached, key.URL, errors.Join(netErr, err))
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotCached, key.URL, netErr)
	}
	w.cfg.Logger.Printf("network failed for %s, served cached copy from %s", key.URL, entry.StoredAt.Format("2006-01-02 15:04:05"))
	return entry.Response(req), nil
}
