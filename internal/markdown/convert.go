package markdown

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// DefaultStyle is the chroma style used for highlighted code and highlight.css.
const DefaultStyle = "onedark"

const (
	codeWrapperOpen  = `<pre><div class="XDocsCodeWrapper"><code class="hljs">`
	codeWrapperClose = `</code></div></pre>`
)

// Converter turns page markdown into HTML. It is safe for sequential reuse across pages.
type Converter struct {
	md goldmark.Markdown
}

// ConverterOption configures a Converter.
type ConverterOption func(*converterConfig)

type converterConfig struct {
	style string
}

// WithStyle selects the chroma style name.
func WithStyle(style string) ConverterOption {
	return func(c *converterConfig) {
		if style != "" {
			c.style = style
		}
	}
}

// NewConverter builds a GFM converter with raw HTML passthrough and class-based highlighting.
// Fenced code is wrapped in the XDocsCodeWrapper markup; blocks in unknown languages
// are written HTML-escaped inside the same wrapper.
func NewConverter(opts ...ConverterOption) *Converter {
	cfg := converterConfig{style: DefaultStyle}
	for _, opt := range opts {
		opt(&cfg)
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(cfg.style),
				highlighting.WithGuessLanguage(false),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
					chromahtml.PreventSurroundingPre(true),
				),
				highlighting.WithWrapperRenderer(wrapCode),
			),
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &Converter{md: md}
}

// Convert renders src to HTML.
func (c *Converter) Convert(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

func wrapCode(w util.BufWriter, _ highlighting.CodeBlockContext, entering bool) {
	if entering {
		_, _ = w.WriteString(codeWrapperOpen)
		return
	}
	_, _ = w.WriteString(codeWrapperClose)
}
