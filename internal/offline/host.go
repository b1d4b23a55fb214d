package offline

import (
	"context"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// State is a worker's lifecycle state within a Host.
type State string

const (
	StateParsed     State = "parsed"
	StateInstalling State = "installing"
	StateInstalled  State = "installed" // waiting to activate
	StateActivating State = "activating"
	StateActivated  State = "activated"
	StateRedundant  State = "redundant"
)

// Registration describes one worker known to a host.
type Registration struct {
	ID      string
	Version string
	State   State
}

type registration struct {
	id     string
	worker *Worker
	state  State
}

func (r *registration) snapshot() Registration {
	return Registration{ID: r.id, Version: r.worker.Version(), State: r.state}
}

// Host runs worker lifecycles and routes requests through the active
// worker. It implements http.RoundTripper, so any http.Client or reverse
// proxy using it has its GET requests intercepted.
type Host struct {
	network http.RoundTripper
	logger  *log.Logger

	lifecycle sync.Mutex // serializes Register and Promote

	mu         sync.RWMutex
	active     *registration
	waiting    *registration
	controlled bool
	workers    []*Worker
}

// NewHost returns a host that sends uncontrolled traffic to network.
func NewHost(network http.RoundTripper, logger *log.Logger) *Host {
	if network == nil {
		network = http.DefaultTransport
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Host{network: network, logger: logger}
}

// Register installs w. When no worker is active it is activated right away;
// otherwise it waits until Promote. A failed install leaves the worker
// redundant and the host unchanged.
func (h *Host) Register(ctx context.Context, w *Worker) (Registration, error) {
	h.lifecycle.Lock()
	defer h.lifecycle.Unlock()

	reg := &registration{id: uuid.NewString(), worker: w, state: StateParsed}
	h.mu.Lock()
	h.workers = append(h.workers, w)
	h.mu.Unlock()

	h.setState(reg, StateInstalling)
	if err := w.Dispatch(ctx, InstallEvent{}); err != nil {
		h.setState(reg, StateRedundant)
		h.logger.Printf("worker %s (%s) redundant: %v", reg.id, w.Version(), err)
		return reg.snapshot(), err
	}
	h.setState(reg, StateInstalled)

	h.mu.Lock()
	hasActive := h.active != nil
	if hasActive {
		if h.waiting != nil {
			h.waiting.state = StateRedundant
		}
		h.waiting = reg
	}
	h.mu.Unlock()

	if hasActive {
		h.logger.Printf("worker %s (%s) waiting", reg.id, w.Version())
		return reg.snapshot(), nil
	}
	err := h.activate(ctx, reg)
	return reg.snapshot(), err
}

// Promote activates the waiting worker, replacing the active one.
func (h *Host) Promote(ctx context.Context) (Registration, error) {
	h.lifecycle.Lock()
	defer h.lifecycle.Unlock()

	h.mu.Lock()
	reg := h.waiting
	h.waiting = nil
	h.mu.Unlock()

	if reg == nil {
		return Registration{}, ErrNoWaitingWorker
	}
	err := h.activate(ctx, reg)
	return reg.snapshot(), err
}

func (h *Host) activate(ctx context.Context, reg *registration) error {
	h.setState(reg, StateActivating)

	h.mu.RLock()
	outgoing := h.active
	h.mu.RUnlock()
	if outgoing != nil {
		outgoing.worker.retire()
	}

	err := reg.worker.Dispatch(ctx, ActivateEvent{Claim: h.claim})
	if err != nil {
		h.logger.Printf("worker %s (%s) activate: %v", reg.id, reg.worker.Version(), err)
	}

	h.mu.Lock()
	if h.active != nil {
		h.active.state = StateRedundant
	}
	reg.state = StateActivated
	h.active = reg
	h.mu.Unlock()

	h.logger.Printf("worker %s (%s) activated", reg.id, reg.worker.Version())
	return err
}

func (h *Host) claim() {
	h.mu.Lock()
	h.controlled = true
	h.mu.Unlock()
}

func (h *Host) setState(reg *registration, s State) {
	h.mu.Lock()
	reg.state = s
	h.mu.Unlock()
}

// Active returns the active registration.
func (h *Host) Active() (Registration, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.active == nil {
		return Registration{}, false
	}
	return h.active.snapshot(), true
}

// Waiting returns the registration waiting to activate.
func (h *Host) Waiting() (Registration, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.waiting == nil {
		return Registration{}, false
	}
	return h.waiting.snapshot(), true
}

// Controlled reports whether requests are routed through a worker.
func (h *Host) Controlled() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.controlled && h.active != nil
}

// RoundTrip delivers req to the active worker as a fetch event. Requests the
// worker does not answer, and all requests while no worker controls the
// host, go straight to the network.
func (h *Host) RoundTrip(req *http.Request) (*http.Response, error) {
	h.mu.RLock()
	active, controlled := h.active, h.controlled
	h.mu.RUnlock()

	if active == nil || !controlled {
		return h.network.RoundTrip(req)
	}

	ev := NewFetchEvent(req)
	if err := active.worker.Dispatch(req.Context(), ev); err != nil {
		return nil, err
	}
	if !ev.Handled() {
		return h.network.RoundTrip(req)
	}
	return ev.Result()
}

// Close waits for every registered worker's pending cache writes.
func (h *Host) Close() error {
	h.mu.RLock()
	workers := append([]*Worker(nil), h.workers...)
	h.mu.RUnlock()
	for _, w := range workers {
		w.Wait()
	}
	return nil
}
