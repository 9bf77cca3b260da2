package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/xdocs/internal/logfields"
)

// BuildFunc runs one full build.
type BuildFunc func(ctx context.Context) error

// debouncer fires once after the last of a burst of triggers.
type debouncer struct {
	mu     sync.Mutex
	timer  *time.Timer
	window time.Duration
	fire   func()
}

func newDebouncer(window time.Duration, fire func()) *debouncer {
	return &debouncer{window: window, fire: fire}
}

func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

// rebuilder runs builds one at a time. A request made while a build is running
// queues exactly one follow-up build; further requests coalesce into it.
type rebuilder struct {
	build BuildFunc
	// req holds at most one pending request.
	req chan struct{}
}

func newRebuilder(build BuildFunc) *rebuilder {
	return &rebuilder{build: build, req: make(chan struct{}, 1)}
}

// Request asks for a rebuild without blocking.
func (r *rebuilder) Request() {
	select {
	case r.req <- struct{}{}:
	default:
	}
}

// Run processes requests until ctx is canceled.
func (r *rebuilder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.req:
			r.runOnce(ctx)
		}
	}
}

func (r *rebuilder) runOnce(ctx context.Context) {
	start := time.Now()
	if err := r.build(ctx); err != nil {
		slog.Warn("Rebuild failed", logfields.Error(err), logfields.Duration(time.Since(start)))
		return
	}
	slog.Info("Rebuild complete", logfields.Duration(time.Since(start)))
}
