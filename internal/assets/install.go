package assets

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/dchest/jsmin"
	"github.com/spf13/afero"

	"git.home.luguber.info/inful/xdocs/internal/errors"
	"git.home.luguber.info/inful/xdocs/internal/logfields"
	"git.home.luguber.info/inful/xdocs/internal/markdown"
)

//go:embed core
var coreFS embed.FS

// Options configures an Installer.
type Options struct {
	// Style is the chroma style used for highlight.css.
	Style string
	// Minify rewrites copied .js files through jsmin.
	Minify bool
	// Sass compiles theme.scss; nil disables compilation.
	Sass SassCompiler
}

// Report summarizes one installation.
type Report struct {
	Copied       int
	Minified     int
	SassCompiled bool
}

// Installer writes assets into an output tree.
type Installer struct {
	fs   afero.Fs
	opts Options
}

// NewInstaller returns an Installer writing through fsys.
func NewInstaller(fsys afero.Fs, opts Options) *Installer {
	if opts.Style == "" {
		opts.Style = markdown.DefaultStyle
	}
	return &Installer{fs: fsys, opts: opts}
}

// Install writes core assets, copies the theme's static directory and compiles
// the theme stylesheet when a theme.scss is present.
func (i *Installer) Install(ctx context.Context, themeDir, outputDir string) (Report, error) {
	var report Report

	n, err := i.installCore(outputDir)
	report.Copied += n
	if err != nil {
		return report, err
	}

	if themeDir == "" {
		return report, nil
	}

	copied, minified, err := i.copyThemeStatic(themeDir, outputDir)
	report.Copied += copied
	report.Minified += minified
	if err != nil {
		return report, err
	}

	compiled, err := i.compileSass(ctx, themeDir, outputDir)
	report.SassCompiled = compiled
	return report, err
}

func (i *Installer) installCore(outputDir string) (int, error) {
	count := 0
	err := fs.WalkDir(coreFS, "core", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := coreFS.ReadFile(p)
		if err != nil {
			return err
		}
		rel := CoreDir + strings.TrimPrefix(p, "core")
		if err := i.write(outputDir, rel, data); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, errors.FileSystemError("cannot write core assets").WithCause(err).Build()
	}

	css, err := HighlightStylesheet(i.opts.Style)
	if err != nil {
		return count, errors.BuildError("cannot generate highlight stylesheet").WithCause(err).
			WithContext("style", i.opts.Style).
			Build()
	}
	if err := i.write(outputDir, HighlightCSS, css); err != nil {
		return count, errors.FileSystemError("cannot write highlight stylesheet").WithCause(err).Build()
	}
	return count + 1, nil
}

// HighlightStylesheet renders the class-based chroma stylesheet scoped to the code wrapper.
func HighlightStylesheet(style string) ([]byte, error) {
	s := styles.Get(style)
	var buf bytes.Buffer
	if err := html.New(html.WithClasses(true)).WriteCSS(&buf, s); err != nil {
		return nil, err
	}
	return []byte(strings.ReplaceAll(buf.String(), ".chroma", ".XDocsCodeWrapper")), nil
}

func (i *Installer) copyThemeStatic(themeDir, outputDir string) (int, int, error) {
	src := filepath.Join(themeDir, ThemeStaticDir)
	exists, err := afero.DirExists(i.fs, src)
	if err != nil {
		return 0, 0, errors.FileSystemError("cannot stat theme static directory").WithCause(err).
			WithContext("path", src).
			Build()
	}
	if !exists {
		slog.Debug("Theme has no static directory", logfields.Path(src))
		return 0, 0, nil
	}

	copied, minified := 0, 0
	err = afero.Walk(i.fs, src, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		data, err := afero.ReadFile(i.fs, p)
		if err != nil {
			return err
		}
		if i.opts.Minify && strings.EqualFold(filepath.Ext(p), ".js") {
			small, err := jsmin.Minify(data)
			if err != nil {
				return fmt.Errorf("minify %s: %w", p, err)
			}
			data = small
			minified++
		}
		if err := i.write(outputDir, ThemeDir+"/"+filepath.ToSlash(rel), data); err != nil {
			return err
		}
		copied++
		return nil
	})
	if err != nil {
		return copied, minified, errors.FileSystemError("cannot copy theme assets").WithCause(err).
			WithContext("path", src).
			Build()
	}
	return copied, minified, nil
}

func (i *Installer) compileSass(ctx context.Context, themeDir, outputDir string) (bool, error) {
	src := filepath.Join(themeDir, ThemeStaticDir, ThemeSassFile)
	exists, err := afero.Exists(i.fs, src)
	if err != nil {
		return false, errors.FileSystemError("cannot stat theme.scss").WithCause(err).
			WithContext("path", src).
			Build()
	}
	if !exists || i.opts.Sass == nil {
		return false, nil
	}

	dst := filepath.Join(outputDir, filepath.FromSlash(ThemeCSS))
	if err := i.opts.Sass.Compile(ctx, src, dst); err != nil {
		return false, errors.ExternalError("sass failed").WithCause(err).
			WithContext("path", src).
			Build()
	}

	copiedSource := filepath.Join(outputDir, filepath.FromSlash(themeSassOutput()))
	if err := i.fs.Remove(copiedSource); err != nil && !os.IsNotExist(err) {
		return true, errors.FileSystemError("cannot remove copied theme.scss").WithCause(err).
			WithContext("path", copiedSource).
			Build()
	}
	return true, nil
}

func (i *Installer) write(outputDir, rel string, data []byte) error {
	dst := filepath.Join(outputDir, filepath.FromSlash(rel))
	if err := i.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(dst), err)
	}
	if err := afero.WriteFile(i.fs, dst, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}
