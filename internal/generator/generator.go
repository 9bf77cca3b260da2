package generator

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"git.home.luguber.info/inful/xdocs/internal/assets"
	"git.home.luguber.info/inful/xdocs/internal/hooks"
	"git.home.luguber.info/inful/xdocs/internal/logfields"
	"git.home.luguber.info/inful/xdocs/internal/metrics"
	"git.home.luguber.info/inful/xdocs/internal/revision"
)

// Options are the inputs of a build.
type Options struct {
	Input     string
	Output    string
	Theme     string
	GTag      string
	CacheBust assets.CacheBust
	Minify    bool
	// Sass compiles the theme stylesheet; nil skips compilation.
	Sass assets.SassCompiler
}

// Generator builds a site. A Generator is reusable; every call to Generate is an
// independent build.
type Generator struct {
	fs       afero.Fs
	opts     Options
	recorder metrics.Recorder
	hooks    []hooks.Hook
	now      func() time.Time
	revision func(dir string) (string, error)
}

// Option configures a Generator.
type Option func(*Generator)

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) {
		if r != nil {
			g.recorder = r
		}
	}
}

// WithHooks registers in-process page hooks. They run before the theme's declarative extension.
func WithHooks(h ...hooks.Hook) Option {
	return func(g *Generator) { g.hooks = append(g.hooks, h...) }
}

// WithClock replaces time.Now for the time cache-bust mode and report timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithRevision replaces the git revision lookup used by the git cache-bust mode.
func WithRevision(fn func(dir string) (string, error)) Option {
	return func(g *Generator) { g.revision = fn }
}

// New creates a Generator reading and writing through fsys.
func New(fsys afero.Fs, opts Options, options ...Option) *Generator {
	if opts.CacheBust == "" {
		opts.CacheBust = assets.CacheBustNone
	}
	g := &Generator{
		fs:       fsys,
		opts:     opts,
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
		revision: revision.Head,
	}
	for _, o := range options {
		o(g)
	}
	return g
}

// Options returns the generator's build options.
func (g *Generator) Options() Options {
	return g.opts
}

// Generate runs one full build. The returned report is non-nil even when the build fails.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	bs := newBuildState(g, uuid.NewString())
	logger := slog.Default().With(logfields.BuildID(bs.ID))
	bs.logger = logger

	logger.Info("Generating documentation", logfields.Source(g.opts.Input), logfields.Output(g.opts.Output))

	err := runStages(ctx, bs, g.stages())
	bs.Report.finish(g.now(), err)

	g.recorder.ObserveBuildDuration(bs.Report.Duration)
	if err != nil {
		g.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		logger.Error("Build failed", logfields.Error(err), logfields.Duration(bs.Report.Duration))
		return bs.Report, err
	}

	g.recorder.IncBuildOutcome(metrics.BuildOutcomeSuccess)
	g.recorder.SetPagesRendered(bs.Report.Pages)
	g.recorder.SetAssetsCopied(bs.Report.Assets)
	logger.Info("Build complete", bs.Report.LogAttrs()...)
	return bs.Report, nil
}
