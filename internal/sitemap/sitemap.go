// Package sitemap writes a sitemaps.org urlset for a generated site.
package sitemap

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/xdocs/internal/assets"
)

// FileName is the sitemap written at the output root.
const FileName = "sitemap.xml"

const (
	xmlns        = "http://www.sitemaps.org/schemas/sitemap/0.9"
	notFoundPage = "404.html"
)

type urlEntry struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
}

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	XMLNS   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

// Options configures sitemap generation.
type Options struct {
	// Domain is the site host, e.g. "docs.example.com". A scheme prefix is ignored.
	Domain string
	// Exclude holds doublestar patterns matched against site-relative paths.
	Exclude []string
}

// Collect walks root and returns the site-relative path of every listed page, in lexical order.
// Pages under the resources subtree, pages named 404.html and non-HTML files are skipped.
func Collect(fsys afero.Fs, root string, opts Options) ([]string, error) {
	var pages []string
	err := afero.Walk(fsys, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = norm.NFC.String(filepath.ToSlash(rel))

		if info.IsDir() {
			if rel != "." && assets.IsResource(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(rel, ".html") || info.Name() == notFoundPage {
			return nil
		}
		for _, pattern := range opts.Exclude {
			if ok, _ := doublestar.Match(pattern, rel); ok {
				return nil
			}
		}
		pages = append(pages, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return pages, nil
}

// URL builds the absolute page URL for a site-relative path.
func URL(domain, rel string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(domain, "https://"), "http://")
	host = strings.TrimSuffix(host, "/")
	return "https://" + host + "/" + rel
}

// Render encodes the urlset document.
func Render(domain string, pages []string) ([]byte, error) {
	set := urlSet{XMLNS: xmlns, URLs: make([]urlEntry, 0, len(pages))}
	for _, p := range pages {
		set.URLs = append(set.URLs, urlEntry{Loc: URL(domain, p)})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sitemap: %w", err)
	}
	return []byte(xml.Header + string(out) + "\n"), nil
}

// Write collects the pages under root and writes root/sitemap.xml. It returns the number of URLs.
func Write(fsys afero.Fs, root string, opts Options) (int, error) {
	pages, err := Collect(fsys, root, opts)
	if err != nil {
		return 0, err
	}
	data, err := Render(opts.Domain, pages)
	if err != nil {
		return 0, err
	}
	if err := afero.WriteFile(fsys, filepath.Join(root, FileName), data, 0o644); err != nil {
		return 0, fmt.Errorf("write sitemap: %w", err)
	}
	return len(pages), nil
}
