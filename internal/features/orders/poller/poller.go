package poller

import (
	"context"
	"sync"
	"time"

	"order-history/internal/core/logger"
	"order-history/internal/features/orders/domain"
	"order-history/internal/features/orders/ports"

	"go.uber.org/zap"
)

// Phase is the scheduler's lifecycle state.
type Phase string

const (
	// PhaseIdle means the last fetch succeeded and nothing is in flight.
	PhaseIdle Phase = "IDLE"
	// PhaseLoading means the initial foreground load is in flight.
	PhaseLoading Phase = "LOADING"
	// PhaseBackgroundRefreshing means an unattended periodic fetch is in flight.
	PhaseBackgroundRefreshing Phase = "BACKGROUND_REFRESHING"
	// PhaseError means the last user-visible fetch failed.
	PhaseError Phase = "ERROR"
)

// DefaultInterval is the period between background refreshes when none is
// configured.
const DefaultInterval = 30 * time.Second

// fetchKind distinguishes the three triggers of the same fetch path. The
// kind decides state transitions and whether a failure is user-visible.
type fetchKind int

const (
	initialFetch fetchKind = iota
	tickFetch
	manualFetch
)

// View is the scheduler's output: everything the rendering layer needs.
type View struct {
	// Orders is the visible subset under the current filter, in the
	// backend's original order.
	Orders []domain.Order `json:"orders"`
	// Filter is the currently selected filter label.
	Filter string `json:"filter"`
	// FilterLabels is the selectable label set.
	FilterLabels []string `json:"filter_labels"`
	// Loading is true while the initial load is in flight.
	Loading bool `json:"loading"`
	// Refreshing is true while a manual refresh is in flight. It is a
	// separate indicator so the view can show a distinct spinner.
	Refreshing bool `json:"refreshing"`
	// Error is the user-visible error text, empty when there is none.
	// Background refresh failures never appear here.
	Error string `json:"error,omitempty"`
	// LastUpdated is the time of the last successful fetch.
	LastUpdated time.Time `json:"last_updated"`
}

// Poller owns the order-list screen state and drives re-fetching: once on
// start, on a fixed interval while running, and on demand via Refresh. The
// order list is replaced wholesale on success and left untouched on failure.
type Poller struct {
	source   ports.OrderSource
	interval time.Duration

	mu          sync.Mutex
	orders      []domain.Order
	filter      string
	phase       Phase
	errMsg      string
	refreshing  bool
	inFlight    bool
	stopped     bool
	started     bool
	lastUpdated time.Time
	cancel      context.CancelFunc
	done        chan struct{}
}

// New creates a Poller over the given order source. A non-positive interval
// falls back to DefaultInterval.
func New(source ports.OrderSource, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		source:   source,
		interval: interval,
		orders:   []domain.Order{},
		filter:   domain.FilterAll,
		phase:    PhaseIdle,
		done:     make(chan struct{}),
	}
}

// Start performs the initial foreground load and arms the periodic refresh.
// It returns immediately; fetching happens on the poller's own goroutine
// until Stop is called or the parent context is cancelled.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.started = true
	ctx, p.cancel = context.WithCancel(ctx)
	p.mu.Unlock()

	go p.run(ctx)
}

// run drives the fetch loop: one initial load, then one background refresh
// per tick until the context is cancelled.
func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	p.fetch(ctx, initialFetch)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetch(ctx, tickFetch)
		}
	}
}

// Refresh performs a user-initiated fetch. Failures are user-visible, the
// same as the initial load. It does not reset the periodic timer. If a fetch
// is already in flight the call is a no-op; the view's flags report the
// ongoing work.
func (p *Poller) Refresh(ctx context.Context) error {
	return p.fetch(ctx, manualFetch)
}

// Stop disarms the periodic refresh and prevents any in-flight fetch from
// writing state once it resolves. It blocks until the fetch loop has exited.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	started := p.started
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()

	if started {
		<-p.done
	}
}

// SetFilter selects the filter label. The visible list is derived on every
// Snapshot read, so there is nothing to recompute here.
func (p *Poller) SetFilter(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filter = label
}

// Snapshot returns the current view state.
func (p *Poller) Snapshot() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	return View{
		Orders:       domain.VisibleOrders(p.orders, p.filter),
		Filter:       p.filter,
		FilterLabels: domain.FilterLabels,
		Loading:      p.phase == PhaseLoading,
		Refreshing:   p.refreshing,
		Error:        p.errMsg,
		LastUpdated:  p.lastUpdated,
	}
}

// Phase returns the scheduler's current state.
func (p *Poller) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// fetch runs one fetch attempt for the given trigger and applies the state
// transition for its outcome. At most one fetch is in flight: a trigger
// arriving while one is running is skipped rather than raced.
func (p *Poller) fetch(ctx context.Context, kind fetchKind) error {
	p.mu.Lock()
	if p.stopped || p.inFlight {
		p.mu.Unlock()
		return nil
	}
	p.inFlight = true
	switch kind {
	case initialFetch:
		p.phase = PhaseLoading
	case tickFetch:
		p.phase = PhaseBackgroundRefreshing
	case manualFetch:
		p.refreshing = true
	}
	p.mu.Unlock()

	orders, err := p.source.FetchOrders(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		// Resolved after teardown: drop the result, write nothing.
		return nil
	}

	p.inFlight = false
	p.refreshing = false

	if err != nil {
		if kind == tickFetch {
			// Unattended tick: log only, keep the previous list and the
			// previous user-visible state.
			p.phase = PhaseIdle
			logger.Get().Warn("background refresh failed", zap.Error(err))
			return nil
		}
		p.phase = PhaseError
		p.errMsg = err.Error()
		return err
	}

	if orders == nil {
		orders = []domain.Order{}
	}
	p.orders = orders
	p.phase = PhaseIdle
	p.errMsg = ""
	p.lastUpdated = time.Now()
	return nil
}
