package bootstrap

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kcirtapfromspace/no-drake-in-the-house-sub009/internal/domain"
)

// DefaultTimeout bounds the startup profile fetch.
const DefaultTimeout = 10 * time.Second

// State is the coordinator's observable bootstrap state.
type State struct {
	IsInitialized bool
	InitError     bool
	IsRetrying    bool
}

// RouteInitializer is the coordinator's view of the route resolver.
type RouteInitializer interface {
	Initialize()
}

// SessionFetcher is the coordinator's view of the session store. A nil
// return covers both an authenticated profile and a clean "no session".
type SessionFetcher interface {
	FetchProfile(ctx context.Context) error
}

// Coordinator drives startup: it activates the route resolver, races the
// profile fetch against a timer, and tracks initialization/error/retry
// status. It is the exclusive owner of State.
type Coordinator struct {
	routes   RouteInitializer
	sessions SessionFetcher
	timeout  time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	state   State
	subs    []func(State)
	running bool
	gen     int // bumped on every (re)start; stale settles are discarded
	lastErr error
}

// NewCoordinator creates a coordinator. A non-positive timeout selects
// DefaultTimeout.
func NewCoordinator(routes RouteInitializer, sessions SessionFetcher, timeout time.Duration, logger *slog.Logger) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		routes:   routes,
		sessions: sessions,
		timeout:  timeout,
		logger:   logger,
	}
}

// State returns the current bootstrap state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the classified cause of the most recent failed attempt,
// for diagnostics only. State keeps just the boolean.
func (c *Coordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Subscribe registers a handler invoked synchronously after each state
// change. Handlers must not call back into the coordinator's mutators.
func (c *Coordinator) Subscribe(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// Start runs the bootstrap sequence and blocks until it settles. The first
// route resolution completes before the fetch race begins, so the initial
// route is never unknown when the view selector first runs.
func (c *Coordinator) Start(ctx context.Context) {
	c.run(ctx, false)
}

// Retry re-runs the sequence from a clean state. It is a no-op unless the
// previous attempt failed.
func (c *Coordinator) Retry(ctx context.Context) {
	c.mu.Lock()
	failed := c.state.IsInitialized && c.state.InitError
	c.mu.Unlock()
	if !failed {
		return
	}
	c.run(ctx, true)
}

func (c *Coordinator) run(ctx context.Context, retrying bool) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	c.setState(State{IsInitialized: false, InitError: false, IsRetrying: retrying})
	c.logger.Info("bootstrap starting", "retry", retrying, "timeout", c.timeout)

	// The resolver must have a concrete route before the race begins
	c.routes.Initialize()

	// First-settled-wins race between the fetch and the timer. The timer
	// winning cancels the fetch context, so the losing transport aborts
	// instead of lingering and writing late.
	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- c.sessions.FetchProfile(fetchCtx)
	}()

	select {
	case err := <-done:
		c.settle(gen, err)
	case <-fetchCtx.Done():
		c.settle(gen, &domain.FetchError{Kind: domain.FetchTimeout, Err: fetchCtx.Err()})
	}
}

// settle commits the outcome of one bootstrap attempt. A settle from a
// superseded attempt (the user already retried) is discarded.
func (c *Coordinator) settle(gen int, err error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		c.logger.Debug("stale bootstrap settle discarded")
		return
	}
	c.running = false
	c.lastErr = err
	c.mu.Unlock()

	if err != nil {
		if fe, ok := domain.ClassifyFetch(err); ok {
			c.logger.Error("bootstrap failed", "kind", fe.Kind.String(), "error", err)
		} else {
			c.logger.Error("bootstrap failed", "error", err)
		}
		c.setState(State{IsInitialized: true, InitError: true, IsRetrying: false})
		return
	}

	c.logger.Info("bootstrap ready")
	c.setState(State{IsInitialized: true, InitError: false, IsRetrying: false})
}

func (c *Coordinator) setState(state State) {
	c.mu.Lock()
	c.state = state
	subs := make([]func(State), len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}
