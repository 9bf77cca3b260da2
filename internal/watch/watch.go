package watch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/xdocs/internal/logfields"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// Options configure a watch session.
type Options struct {
	// Dirs are watched recursively. Empty entries and missing directories are skipped.
	Dirs []string
	// Shallow directories are watched without their subdirectories.
	Shallow  []string
	Debounce time.Duration
	// Period enables a periodic full rebuild when positive.
	Period time.Duration
	// Port enables the preview server on localhost when positive.
	Port int
	// OutputDir is served by the preview server.
	OutputDir string
	// Metrics is mounted at /metrics on the preview server when non-nil.
	Metrics http.Handler
}

// Run performs an initial build, then rebuilds whenever a watched file changes,
// until ctx is canceled. A failing build is logged and the session continues.
func Run(ctx context.Context, build BuildFunc, opts Options) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	output := absPath(opts.OutputDir)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range opts.Dirs {
		if dir == "" {
			continue
		}
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			slog.Warn("Watch directory not found", logfields.Path(dir))
			continue
		}
		addDirsRecursive(watcher, dir, output)
	}
	for _, dir := range opts.Shallow {
		if dir == "" {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			slog.Warn("Watch add failed", logfields.Path(dir), logfields.Error(err))
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rb := newRebuilder(build)
	rb.runOnce(ctx)
	go rb.Run(ctx)

	deb := newDebouncer(opts.Debounce, rb.Request)
	defer deb.Stop()

	if opts.Period > 0 {
		sched, err := startScheduler(opts.Period, rb.Request)
		if err != nil {
			return err
		}
		defer func() {
			if err := sched.Shutdown(); err != nil {
				slog.Warn("Scheduler shutdown error", logfields.Error(err))
			}
		}()
	}

	if opts.Port > 0 {
		srv := NewPreviewServer(fmt.Sprintf("localhost:%d", opts.Port), opts.OutputDir, opts.Metrics)
		go func() {
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				slog.Error("Preview server failed", logfields.Error(err))
			}
		}()
		slog.Info("Preview server listening", slog.String("url", "http://"+srv.Addr))
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("Preview server shutdown error", logfields.Error(err))
			}
		}()
	}

	slog.Info("Watching for changes", slog.Any("dirs", opts.Dirs))
	for {
		select {
		case <-ctx.Done():
			slog.Info("Watch stopped")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleEvent(watcher, ev, output, deb.Trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// handleEvent triggers a rebuild for ev unless it is an ignored file or lies in
// the output directory, which the build itself writes.
func handleEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, output string, trigger func()) {
	if ShouldIgnore(ev.Name) || within(output, ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			addDirsRecursive(watcher, ev.Name, output)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

func addDirsRecursive(w *fsnotify.Watcher, root, output string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if within(output, path) {
				return filepath.SkipDir
			}
			if err := w.Add(path); err != nil {
				slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// within reports whether path is dir or lies below it. An empty dir contains nothing.
func within(dir, path string) bool {
	if dir == "" {
		return false
	}
	rel, err := filepath.Rel(dir, absPath(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func absPath(p string) string {
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// ShouldIgnore reports whether a change to path must not trigger a rebuild:
// editor backups ending in "~" and swap or lock files.
func ShouldIgnore(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasPrefix(base, ".#"),
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"),
		base == ".DS_Store":
		return true
	}
	return false
}
