package watch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldIgnore(t *testing.T) {
	tests := []struct {
		path   string
		ignore bool
	}{
		{"/docs/index.md", false},
		{"/docs/index.md~", true},
		{"/docs/.index.md.swp", true},
		{"/docs/.index.md.swx", true},
		{"/docs/.#index.md", true},
		{"/docs/#index.md#", true},
		{"/docs/.DS_Store", true},
		{"/docs/документація.json", false},
		{"/theme/theme.scss", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.ignore, ShouldIgnore(tt.path))
		})
	}
}

func TestWithin(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "site")

	assert.True(t, within(out, out))
	assert.True(t, within(out, filepath.Join(out, "index.html")))
	assert.True(t, within(out, filepath.Join(out, "guide", "intro.html")))
	assert.False(t, within(out, filepath.Join(root, "site-old", "index.html")))
	assert.False(t, within(out, filepath.Join(root, "index.md")))
	assert.False(t, within("", filepath.Join(out, "index.html")))
}

func TestDebouncer_CoalescesBurst(t *testing.T) {
	var fired atomic.Int32
	d := newDebouncer(30*time.Millisecond, func() { fired.Add(1) })
	defer d.Stop()

	for range 10 {
		d.Trigger()
		time.Sleep(2 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return fired.Load() > 1 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestRebuilder_SingleFlight(t *testing.T) {
	var builds atomic.Int32
	started := make(chan struct{}, 1)
	release := make(chan struct{})

	rb := newRebuilder(func(ctx context.Context) error {
		if builds.Add(1) == 1 {
			started <- struct{}{}
			<-release
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rb.Run(ctx)

	rb.Request()
	<-started
	for range 5 {
		rb.Request()
	}
	close(release)

	require.Eventually(t, func() bool { return builds.Load() == 2 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return builds.Load() > 2 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestRebuilder_FailureDoesNotStop(t *testing.T) {
	var builds atomic.Int32
	rb := newRebuilder(func(ctx context.Context) error {
		builds.Add(1)
		return errors.New("boom")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rb.Run(ctx)

	rb.Request()
	require.Eventually(t, func() bool { return builds.Load() == 1 }, time.Second, 5*time.Millisecond)
	rb.Request()
	require.Eventually(t, func() bool { return builds.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestPreviewServer(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>home</h1>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "guide"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guide", "intro.html"), []byte("<h1>intro</h1>"), 0o644))

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("xdocs_builds_total 1\n"))
	})
	srv := NewPreviewServer("localhost:0", dir, metrics)

	t.Run("serves output files without caching", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/guide/intro.html", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "<h1>intro</h1>", rec.Body.String())
		assert.Contains(t, rec.Header().Get("Cache-Control"), "no-cache")
	})

	t.Run("serves index.html at the root", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "<h1>home</h1>", rec.Body.String())
	})

	t.Run("metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, "xdocs_builds_total 1\n", rec.Body.String())
	})

	t.Run("missing file", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope.html", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("no metrics route without a handler", func(t *testing.T) {
		bare := NewPreviewServer("localhost:0", dir, nil)
		rec := httptest.NewRecorder()
		bare.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRun_RebuildsOnChange(t *testing.T) {
	docs := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(docs, "guide"), 0o755))

	var builds atomic.Int32
	build := func(ctx context.Context) error {
		builds.Add(1)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, build, Options{Dirs: []string{docs, "", filepath.Join(docs, "missing")}, Debounce: 20 * time.Millisecond})
	}()

	require.Eventually(t, func() bool { return builds.Load() == 1 }, 2*time.Second, 5*time.Millisecond, "initial build")

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(docs, "guide", "intro.md"), []byte("# Intro"), 0o644))
	require.Eventually(t, func() bool { return builds.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	before := builds.Load()
	require.NoError(t, os.WriteFile(filepath.Join(docs, "guide", "intro.md~"), []byte("backup"), 0o644))
	assert.Never(t, func() bool { return builds.Load() > before }, 150*time.Millisecond, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_IgnoresOutputInsideInput(t *testing.T) {
	docs := t.TempDir()
	out := filepath.Join(docs, "site")
	require.NoError(t, os.MkdirAll(out, 0o755))

	var builds atomic.Int32
	build := func(ctx context.Context) error {
		builds.Add(1)
		return os.WriteFile(filepath.Join(out, "index.html"), []byte("built"), 0o644)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, build, Options{Dirs: []string{docs}, OutputDir: out, Debounce: 20 * time.Millisecond})
	}()

	require.Eventually(t, func() bool { return builds.Load() == 1 }, 2*time.Second, 5*time.Millisecond, "initial build")
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.MkdirAll(filepath.Join(out, "guide"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(out, "guide", "intro.html"), []byte("x"), 0o644))
	assert.Never(t, func() bool { return builds.Load() > 1 }, 200*time.Millisecond, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(docs, "index.md"), []byte("# Home"), 0o644))
	require.Eventually(t, func() bool { return builds.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Never(t, func() bool { return builds.Load() > 2 }, 200*time.Millisecond, 10*time.Millisecond, "the rebuild's own writes do not retrigger")

	cancel()
	require.NoError(t, <-done)
}
