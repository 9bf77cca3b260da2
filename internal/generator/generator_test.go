package generator

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/xdocs/internal/assets"
	"git.home.luguber.info/inful/xdocs/internal/errors"
	"git.home.luguber.info/inful/xdocs/internal/hooks"
	"git.home.luguber.info/inful/xdocs/internal/manifest"
	"git.home.luguber.info/inful/xdocs/internal/search"
)

const testManifest = `{
  "назва": "Docs",
  "головна": "https://example.com",
  "логотип": "logo.svg",
  "іконка_підпису": "footer.svg",
  "підпис": "Example",
  "сторінки": [
    {"назва": "Home", "заголовок": "", "файл": "index.md", "вихід": "index.html"},
    {"назва": "Guide", "сторінки": [
      {"назва": "Introduction", "заголовок": "Intro", "файл": "guide/intro.md", "вихід": "guide/intro.html", "опис": true},
      {"назва": "Getting Started", "файл": "guide/start.md", "вихід": "guide/start.html", "без_наступної": true}
    ]},
    {"назва": "About", "файл": "about.md", "вихід": "a/b/about.html", "опис": "About page", "іконка": "img/about.svg", "розмір_іконки": 24}
  ]
}`

var testSources = map[string]string{
	"index.md":       "# Welcome\n\nStart here.\n",
	"guide/intro.md": "# Intro\n\nFirst *paragraph* & more.\n\nSecond.\n",
	"guide/start.md": "# Start\n\n```go\nfunc main() {}\n```\n",
	"about.md":       "About \"us\" with a \\ backslash.\n",
}

func newSite(t *testing.T) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/docs/"+manifest.FileName, []byte(testManifest), 0o644))
	for p, body := range testSources {
		require.NoError(t, afero.WriteFile(fsys, filepath.Join("/docs", p), []byte(body), 0o644))
	}
	require.NoError(t, afero.WriteFile(fsys, "/theme/static/theme.js", []byte("console.log('theme');\n"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/theme/static/theme.css", []byte("body{}"), 0o644))
	return fsys
}

func read(t *testing.T, fsys afero.Fs, rel string) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, filepath.Join("/out", rel))
	require.NoError(t, err, rel)
	return string(data)
}

func generate(t *testing.T, fsys afero.Fs, options ...Option) *Report {
	t.Helper()
	g := New(fsys, Options{Input: "/docs", Output: "/out", Theme: "/theme"}, options...)
	report, err := g.Generate(context.Background())
	require.NoError(t, err)
	return report
}

func TestGenerate_Report(t *testing.T) {
	report := generate(t, newSite(t))

	assert.Equal(t, OutcomeSuccess, report.Outcome)
	assert.Equal(t, 4, report.Pages)
	assert.Equal(t, 4, report.SearchRecords)
	assert.Equal(t, 4, report.Assets, "core.js, highlight.css and two theme files")
	assert.NotEmpty(t, report.BuildID)
	assert.Len(t, report.ManifestHash, 64)
	assert.Equal(t, []string{"load_manifest", "load_theme", "install_assets", "render_pages", "write_search"}, report.StageOrder)
}

func TestGenerate_TitlesAndPrefixes(t *testing.T) {
	fsys := newSite(t)
	generate(t, fsys)

	index := read(t, fsys, "index.html")
	assert.Contains(t, index, "<title>Docs</title>")
	assert.Contains(t, index, `href="./ресурси/ядро/highlight.css"`)
	assert.Contains(t, index, `src="./ресурси/ядро/core.js"`)
	assert.Contains(t, index, `data-src="./ресурси/пошук.html"`)

	intro := read(t, fsys, "guide/intro.html")
	assert.Contains(t, intro, "<title>Intro | Docs</title>")
	assert.Contains(t, intro, `href="../ресурси/вигляд/theme.css"`)
	assert.Contains(t, intro, `<img src="../logo.svg"`)

	start := read(t, fsys, "guide/start.html")
	assert.Contains(t, start, "<title>Getting Started | Docs</title>")
	assert.Contains(t, start, `<div class="XDocsCodeWrapper"><code class="hljs">`)

	about := read(t, fsys, "a/b/about.html")
	assert.Contains(t, about, `src="../../ресурси/ядро/core.js"`)
	assert.Contains(t, about, `<img class="XDocsPageIcon" src="../../img/about.svg" height="24" alt="">`)
	assert.Contains(t, about, "--xdocs-page-icon-size: 24px")
	assert.NotContains(t, index, "XDocsPageIcon", "no icon markup without an icon")
	assert.Contains(t, index, "--xdocs-page-icon-size: 50px", "icon size is substituted even without an icon")
}

func TestGenerate_PrevNext(t *testing.T) {
	fsys := newSite(t)
	generate(t, fsys)

	index := read(t, fsys, "index.html")
	assert.NotContains(t, index, "data-is-prev")
	assert.Contains(t, index, `<a data-is-next="true" href="./guide/intro.html">Наступ</a>`)

	intro := read(t, fsys, "guide/intro.html")
	assert.Contains(t, intro, `<a data-is-prev="true" href="../index.html">Відступ</a>`)
	assert.Contains(t, intro, `<a data-is-next="true" href="../guide/start.html">Наступ</a>`)

	start := read(t, fsys, "guide/start.html")
	assert.Contains(t, start, `<a data-is-prev="true" href="../guide/intro.html">Відступ</a>`)
	assert.NotContains(t, start, "data-is-next", "suppressed by без_наступної")

	about := read(t, fsys, "a/b/about.html")
	assert.Contains(t, about, `<a data-is-prev="true" href="../../guide/start.html">Відступ</a>`)
	assert.NotContains(t, about, "data-is-next", "last page")
}

func TestGenerate_NavigationActiveEntry(t *testing.T) {
	fsys := newSite(t)
	generate(t, fsys)

	intro := read(t, fsys, "guide/intro.html")
	assert.Equal(t, 1, strings.Count(intro, ` active"`))
	assert.Contains(t, intro, `<li class="XDocsNavigationSubmenuItem active"><a href="../guide/intro.html">Introduction</a></li>`)
	assert.Contains(t, intro, `data-expanded="true"`)

	index := read(t, fsys, "index.html")
	assert.Equal(t, 1, strings.Count(index, ` active"`))
	assert.Contains(t, index, `<li class="XDocsNavigationItem active"><a href="./index.html">Home</a></li>`)
	assert.Contains(t, index, `data-expanded="false"`)
	assert.NotContains(t, index, `data-expanded="true"`)
}

func TestGenerate_MetaDescription(t *testing.T) {
	fsys := newSite(t)
	generate(t, fsys)

	assert.Contains(t, read(t, fsys, "guide/intro.html"), `<meta name="description" content="First paragraph &amp; more.">`)
	assert.Contains(t, read(t, fsys, "a/b/about.html"), `<meta name="description" content="About page">`)
	assert.NotContains(t, read(t, fsys, "index.html"), `name="description"`)
}

func TestGenerate_SearchPayload(t *testing.T) {
	fsys := newSite(t)
	generate(t, fsys)

	host := read(t, fsys, search.OutputPath)
	start := strings.Index(host, `JSON.parse("`) + len(`JSON.parse("`)
	end := strings.LastIndex(host, `") }`)
	require.Greater(t, end, start)

	unquoted, err := strconv.Unquote(`"` + host[start:end] + `"`)
	require.NoError(t, err)

	var records []search.Record
	require.NoError(t, json.Unmarshal([]byte(unquoted), &records))
	require.Len(t, records, 4)

	assert.Equal(t, search.Record{Title: "Home", Content: testSources["index.md"], Path: "index.html"}, records[0])
	assert.Equal(t, "Introduction", records[1].Title)
	assert.Equal(t, "guide/start.html", records[2].Path)
	assert.Equal(t, testSources["about.md"], records[3].Content)
}

func TestGenerate_Idempotent(t *testing.T) {
	fsys := newSite(t)
	generate(t, fsys)

	first := map[string]string{}
	require.NoError(t, afero.Walk(fsys, "/out", func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		data, err := afero.ReadFile(fsys, p)
		first[p] = string(data)
		return err
	}))

	generate(t, fsys)
	for p, content := range first {
		data, err := afero.ReadFile(fsys, p)
		require.NoError(t, err)
		assert.Equal(t, content, string(data), p)
	}
}

func TestGenerate_CacheBust(t *testing.T) {
	t.Run("time", func(t *testing.T) {
		fsys := newSite(t)
		clock := func() time.Time { return time.UnixMilli(1700000000000) }
		g := New(fsys, Options{Input: "/docs", Output: "/out", Theme: "/theme", CacheBust: assets.CacheBustTime}, WithClock(clock))
		_, err := g.Generate(context.Background())
		require.NoError(t, err)
		assert.Contains(t, read(t, fsys, "index.html"), `src="./ресурси/ядро/core.js?1700000000000"`)
	})

	t.Run("git", func(t *testing.T) {
		fsys := newSite(t)
		rev := func(string) (string, error) { return "abc1234", nil }
		g := New(fsys, Options{Input: "/docs", Output: "/out", Theme: "/theme", CacheBust: assets.CacheBustGit}, WithRevision(rev))
		_, err := g.Generate(context.Background())
		require.NoError(t, err)
		assert.Contains(t, read(t, fsys, "guide/intro.html"), `href="../ресурси/вигляд/theme.css?abc1234"`)
	})
}

type shout struct{ hooks.Base }

func (shout) Name() string { return "shout" }

func (shout) BeforePageRender(p hooks.PageSnapshot) (hooks.PageOverrides, error) {
	title := strings.ToUpper(p.Title)
	return hooks.PageOverrides{Title: &title, ExtraScripts: "<script>/*shout*/</script>", ExtraHead: `<meta name="shout">`}, nil
}

func TestGenerate_Hooks(t *testing.T) {
	fsys := newSite(t)
	require.NoError(t, afero.WriteFile(fsys, "/theme/"+hooks.ExtensionFile, []byte("навігація_до: '<div class=\"banner\"></div>'\n"), 0o644))

	generate(t, fsys, WithHooks(shout{}))

	intro := read(t, fsys, "guide/intro.html")
	assert.Contains(t, intro, "<title>INTRO | DOCS</title>")
	assert.Contains(t, intro, `src="../ресурси/вигляд/theme.js"></script>`+"\n"+`<script>/*shout*/</script>`)
	assert.Contains(t, intro, `href="../ресурси/вигляд/theme.css">`+"\n"+`<meta name="shout">`)
	assert.Contains(t, intro, `<div class="banner"></div><nav class="XDocsNavigation">`)
}

func TestGenerate_ThemeTemplateOverride(t *testing.T) {
	fsys := newSite(t)
	require.NoError(t, afero.WriteFile(fsys, "/theme/templates/page.template.html", []byte("{{PAGE_TITLE}}|{{PAGE_ROOT}}"), 0o644))

	generate(t, fsys)
	assert.Equal(t, "Getting Started | Docs|../", read(t, fsys, "guide/start.html"))
}

func TestGenerate_Errors(t *testing.T) {
	t.Run("missing source is a filesystem error", func(t *testing.T) {
		fsys := newSite(t)
		require.NoError(t, fsys.Remove("/docs/guide/start.md"))

		report, err := New(fsys, Options{Input: "/docs", Output: "/out"}).Generate(context.Background())
		require.Error(t, err)
		assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
		assert.Equal(t, OutcomeFailed, report.Outcome)
		assert.Equal(t, 2, report.Pages, "pages before the failure are written")
	})

	t.Run("duplicate outputs are a validation error", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fsys, "/docs/"+manifest.FileName, []byte(`{"назва":"D","сторінки":[
			{"назва":"a","файл":"a.md","вихід":"x.html"},{"назва":"b","файл":"b.md","вихід":"x.html"}]}`), 0o644))

		_, err := New(fsys, Options{Input: "/docs", Output: "/out"}).Generate(context.Background())
		require.Error(t, err)
		assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
		exists, _ := afero.DirExists(fsys, "/out")
		assert.False(t, exists, "nothing is written when the manifest is invalid")
	})

	t.Run("missing theme directory is a config error", func(t *testing.T) {
		fsys := newSite(t)
		_, err := New(fsys, Options{Input: "/docs", Output: "/out", Theme: "/no-such-theme"}).Generate(context.Background())
		require.Error(t, err)
		assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
		exists, _ := afero.DirExists(fsys, "/out")
		assert.False(t, exists, "nothing is written without a theme")
	})

	t.Run("non UTF-8 source is a validation error", func(t *testing.T) {
		fsys := newSite(t)
		require.NoError(t, afero.WriteFile(fsys, "/docs/guide/intro.md", []byte("# Intro\n\xff\xfe broken\n"), 0o644))

		report, err := New(fsys, Options{Input: "/docs", Output: "/out", Theme: "/theme"}).Generate(context.Background())
		require.Error(t, err)
		assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
		assert.Equal(t, 1, report.Pages)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := New(newSite(t), Options{Input: "/docs", Output: "/out"}).Generate(ctx)
		require.Error(t, err)
	})
}
