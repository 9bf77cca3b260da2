package generator

import (
	"html"
	"path/filepath"
	"strconv"
	"unicode/utf8"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/xdocs/internal/assets"
	"git.home.luguber.info/inful/xdocs/internal/errors"
	"git.home.luguber.info/inful/xdocs/internal/hooks"
	"git.home.luguber.info/inful/xdocs/internal/logfields"
	"git.home.luguber.info/inful/xdocs/internal/manifest"
	"git.home.luguber.info/inful/xdocs/internal/markdown"
	"git.home.luguber.info/inful/xdocs/internal/navigation"
	"git.home.luguber.info/inful/xdocs/internal/relpath"
	"git.home.luguber.info/inful/xdocs/internal/search"
	"git.home.luguber.info/inful/xdocs/internal/templates"
)

// pageContext is the page-scoped input of one page render.
type pageContext struct {
	leaf   *manifest.Leaf
	prev   *manifest.Leaf
	next   *manifest.Leaf
	prefix string
}

func newPageContext(leaves []*manifest.Leaf, i int) pageContext {
	pc := pageContext{leaf: leaves[i], prefix: relpath.RootPrefix(leaves[i].Output)}
	if i > 0 {
		pc.prev = leaves[i-1]
	}
	if i+1 < len(leaves) {
		pc.next = leaves[i+1]
	}
	return pc
}

// neighbourURLs returns the prev/next hrefs, honouring the page's suppression flags.
func (pc pageContext) neighbourURLs() (prev, next string) {
	if pc.prev != nil && !pc.leaf.NoPrev {
		prev = pc.prefix + pc.prev.Output
	}
	if pc.next != nil && !pc.leaf.NoNext {
		next = pc.prefix + pc.next.Output
	}
	return prev, next
}

func renderPage(bs *BuildState, pc pageContext) error {
	g := bs.Generator
	leaf := pc.leaf
	logger := bs.logger.With(logfields.Page(leaf.Name), logfields.Output(leaf.Output))

	src := manifest.SourcePath(g.opts.Input, leaf)
	raw, err := afero.ReadFile(g.fs, src)
	if err != nil {
		return errors.FileSystemError("cannot read page source").WithCause(err).
			WithContext("page", leaf.Name).
			WithContext("path", src).
			Build()
	}

	if !utf8.Valid(raw) {
		return errors.ValidationError("page source is not valid UTF-8").
			WithContext("page", leaf.Name).
			WithContext("path", src).
			Build()
	}

	content, err := bs.Converter.Convert(raw)
	if err != nil {
		return errors.RenderError("cannot convert markdown").WithCause(err).
			WithContext("page", leaf.Name).
			Build()
	}

	description, hasDescription, err := metaDescription(leaf, content)
	if err != nil {
		return errors.RenderError("cannot extract description").WithCause(err).
			WithContext("page", leaf.Name).
			Build()
	}

	bs.Search.Add(search.Record{Title: leaf.Name, Content: string(raw), Path: leaf.Output})

	nav := navigation.Build(bs.Templates, bs.Manifest, navigation.Page{Output: leaf.Output, Prefix: pc.prefix})
	nav, err = bs.Hooks.AfterNavigationBuild(hooks.NavigationSnapshot{Output: leaf.Output, Prefix: pc.prefix, HTML: nav})
	if err != nil {
		return errors.RenderError("navigation hook failed").WithCause(err).
			WithContext("page", leaf.Name).
			Build()
	}

	prevURL, nextURL := pc.neighbourURLs()

	snapshot := hooks.PageSnapshot{
		Name:            leaf.Name,
		Output:          leaf.Output,
		Prefix:          pc.prefix,
		Title:           leaf.DocumentTitle(bs.Manifest.Name),
		MetaDescription: description,
		Content:         content,
		Markdown:        string(raw),
	}
	page, extra, err := bs.Hooks.BeforePageRender(snapshot)
	if err != nil {
		return errors.RenderError("page hook failed").WithCause(err).
			WithContext("page", leaf.Name).
			Build()
	}
	if page.MetaDescription != snapshot.MetaDescription {
		hasDescription = page.MetaDescription != ""
	}

	out := bs.Templates.RenderPage(templates.PageFields{
		Title:           page.Title,
		Head:            hooks.JoinMarkup(bs.References.Head(pc.prefix), extra.ExtraHead),
		MetaDescription: metaTag(page.MetaDescription, hasDescription),
		Navigation:      nav,
		Content:         page.Content,
		Scripts:         hooks.JoinMarkup(bs.References.Body(pc.prefix), extra.ExtraScripts),
		PrevURL:         prevURL,
		NextURL:         nextURL,
		FaviconICO:      pc.prefix + assets.FaviconICO,
		FaviconPNG:      pc.prefix + assets.FaviconPNG,
		Icon:            iconMarkup(leaf, pc.prefix),
		IconSize:        leaf.IconHeight,
		SearchURL:       pc.prefix + search.OutputPath,
		Root:            pc.prefix,
		GTag:            gtagSnippet(g.opts.GTag),
	})

	if err := writeOutput(g.fs, g.opts.Output, leaf.Output, out); err != nil {
		return err
	}
	logger.Debug("Page written")
	return nil
}

// metaDescription resolves the description text. Auto-extracted text is
// HTML-escaped because it is decoded from the rendered page; explicit
// manifest text is used verbatim.
func metaDescription(leaf *manifest.Leaf, content string) (string, bool, error) {
	switch leaf.Description.Mode {
	case manifest.DescriptionExplicit:
		return leaf.Description.Text, true, nil
	case manifest.DescriptionAuto:
		text, err := markdown.FirstParagraph(content)
		if err != nil {
			return "", false, err
		}
		return html.EscapeString(text), true, nil
	}
	return "", false, nil
}

func metaTag(description string, present bool) string {
	if !present {
		return ""
	}
	return `<meta name="description" content="` + description + `">`
}

func iconMarkup(leaf *manifest.Leaf, prefix string) string {
	if leaf.Icon == "" {
		return ""
	}
	return `<img class="XDocsPageIcon" src="` + prefix + leaf.Icon + `" height="` + strconv.Itoa(leaf.IconHeight) + `" alt="">`
}

func gtagSnippet(id string) string {
	if id == "" {
		return ""
	}
	return `<script async src="https://www.googletagmanager.com/gtag/js?id=` + id + `"></script>
<script>window.dataLayer = window.dataLayer || []; function gtag(){dataLayer.push(arguments);} gtag("js", new Date()); gtag("config", "` + id + `");</script>`
}

// writeOutput creates parent directories and writes (or overwrites) a site-relative file.
func writeOutput(fsys afero.Fs, outputDir, rel, content string) error {
	dst := filepath.Join(outputDir, filepath.FromSlash(rel))
	if err := fsys.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.FileSystemError("cannot create output directory").WithCause(err).
			WithContext("path", filepath.Dir(dst)).
			Build()
	}
	if err := afero.WriteFile(fsys, dst, []byte(content), 0o644); err != nil {
		return errors.FileSystemError("cannot write output file").WithCause(err).
			WithContext("path", dst).
			Build()
	}
	return nil
}
