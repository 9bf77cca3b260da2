package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/xdocs/internal/assets"
	"git.home.luguber.info/inful/xdocs/internal/errors"
	"git.home.luguber.info/inful/xdocs/internal/hooks"
	"git.home.luguber.info/inful/xdocs/internal/logfields"
	"git.home.luguber.info/inful/xdocs/internal/manifest"
	"git.home.luguber.info/inful/xdocs/internal/markdown"
	"git.home.luguber.info/inful/xdocs/internal/metrics"
	"git.home.luguber.info/inful/xdocs/internal/search"
	"git.home.luguber.info/inful/xdocs/internal/templates"
)

// StageName identifies a build stage.
type StageName string

// Stages in execution order.
const (
	StageLoadManifest  StageName = "load_manifest"
	StageLoadTheme     StageName = "load_theme"
	StageInstallAssets StageName = "install_assets"
	StageRenderPages   StageName = "render_pages"
	StageWriteSearch   StageName = "write_search"
)

// Stage is one step of a build.
type Stage func(ctx context.Context, bs *BuildState) error

// StageDef pairs a stage name with its function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

func (g *Generator) stages() []StageDef {
	return []StageDef{
		{StageLoadManifest, stageLoadManifest},
		{StageLoadTheme, stageLoadTheme},
		{StageInstallAssets, stageInstallAssets},
		{StageRenderPages, stageRenderPages},
		{StageWriteSearch, stageWriteSearch},
	}
}

// runStages executes stages in order, recording timing and stopping on the first error.
func runStages(ctx context.Context, bs *BuildState, stages []StageDef) error {
	rec := bs.Generator.recorder
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return errors.BuildError("build canceled").WithCause(err).
				WithContext("stage", string(st.Name)).
				Build()
		}

		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)

		bs.Report.recordStage(st.Name, dur)
		rec.ObserveStageDuration(string(st.Name), dur)
		bs.logger.Debug("Stage finished", logfields.Stage(string(st.Name)), logfields.Duration(dur))

		if err != nil {
			rec.IncStageResult(string(st.Name), metrics.ResultFatal)
			return err
		}
		rec.IncStageResult(string(st.Name), metrics.ResultSuccess)
	}
	return nil
}

func stageLoadManifest(_ context.Context, bs *BuildState) error {
	g := bs.Generator
	m, err := manifest.Load(g.fs, g.opts.Input)
	if err != nil {
		return err
	}

	bs.Manifest = m
	bs.Leaves = m.Leaves()
	if hash, err := m.Hash(); err == nil {
		bs.Report.ManifestHash = hash
	}
	bs.logger.Debug("Manifest loaded", logfields.Count(len(bs.Leaves)))
	return nil
}

func stageLoadTheme(_ context.Context, bs *BuildState) error {
	g := bs.Generator

	for _, h := range g.hooks {
		if err := bs.Hooks.Register(h); err != nil {
			return errors.ConfigError("invalid page hook").WithCause(err).Build()
		}
	}

	var themeFS afero.Fs
	if g.opts.Theme != "" {
		exists, err := afero.DirExists(g.fs, g.opts.Theme)
		if err != nil {
			return errors.FileSystemError("cannot stat theme directory").WithCause(err).
				WithContext("path", g.opts.Theme).
				Build()
		}
		if !exists {
			return errors.ConfigError(fmt.Sprintf("Не знайдено папку теми %s, вказану параметром --вигляд=", g.opts.Theme)).Build()
		}
		themeFS = afero.NewBasePathFs(g.fs, g.opts.Theme)

		ext, err := hooks.LoadThemeExtension(g.fs, g.opts.Theme)
		if err != nil {
			return errors.ValidationError("invalid theme extension").WithCause(err).
				WithContext("path", g.opts.Theme).
				Build()
		}
		if ext != nil {
			if err := bs.Hooks.Register(ext); err != nil {
				return errors.InternalError("cannot register theme extension").WithCause(err).Build()
			}
		}
	}

	var set *templates.Set
	var err error
	if themeFS != nil {
		set, err = templates.Load(afero.NewIOFS(themeFS))
	} else {
		set, err = templates.Load(nil)
	}
	if err != nil {
		return errors.FileSystemError("cannot load templates").WithCause(err).Build()
	}

	bs.Templates = set
	bs.Converter = markdown.NewConverter()
	return nil
}

func stageInstallAssets(ctx context.Context, bs *BuildState) error {
	g := bs.Generator
	installer := assets.NewInstaller(g.fs, assets.Options{Style: markdown.DefaultStyle, Minify: g.opts.Minify, Sass: g.opts.Sass})

	report, err := installer.Install(ctx, g.opts.Theme, g.opts.Output)
	bs.Report.Assets = report.Copied
	bs.Report.Minified = report.Minified
	bs.Report.SassCompiled = report.SassCompiled
	if err != nil {
		return err
	}

	src := assets.TokenSource{Now: g.now()}
	if g.opts.CacheBust == assets.CacheBustGit {
		rev, err := g.revision(g.opts.Input)
		if err != nil {
			bs.logger.Warn("Cannot read git revision; asset URLs carry no cache-bust token", logfields.Error(err))
		}
		src.Revision = rev
	}

	refs, err := assets.Resolve(g.fs, g.opts.Output, g.opts.CacheBust, src)
	if err != nil {
		return errors.FileSystemError("cannot compute asset references").WithCause(err).Build()
	}
	bs.References = refs
	return nil
}

func stageRenderPages(ctx context.Context, bs *BuildState) error {
	for i, leaf := range bs.Leaves {
		if err := ctx.Err(); err != nil {
			return errors.BuildError("build canceled").WithCause(err).
				WithContext("page", leaf.Output).
				Build()
		}

		pc := newPageContext(bs.Leaves, i)
		if err := renderPage(bs, pc); err != nil {
			return err
		}
		bs.Report.Pages++
	}
	return nil
}

func stageWriteSearch(_ context.Context, bs *BuildState) error {
	payload, err := bs.Search.Payload()
	if err != nil {
		return errors.InternalError("cannot encode search index").WithCause(err).Build()
	}

	if err := writeOutput(bs.Generator.fs, bs.Generator.opts.Output, search.OutputPath, bs.Templates.RenderSearch(payload)); err != nil {
		return err
	}
	bs.Report.SearchRecords = bs.Search.Len()
	return nil
}
