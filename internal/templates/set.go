// Package templates holds the six page-level template kinds and renders them by
// literal placeholder substitution.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/yalue/merged_fs"
)

//go:embed defaults/*.template.html
var embedded embed.FS

// Kind names one template file.
type Kind string

const (
	KindPage              Kind = "page"
	KindNavigation        Kind = "navigation"
	KindNavigationLink    Kind = "navigation_item_link"
	KindNavigationSubmenu Kind = "navigation_item_submenu"
	KindSubmenuLink       Kind = "navigation_item_submenu_link"
	KindSearch            Kind = "search"
)

// Kinds lists every template kind in load order.
var Kinds = []Kind{KindPage, KindNavigation, KindNavigationLink, KindNavigationSubmenu, KindSubmenuLink, KindSearch}

// ThemeDir is the directory inside a theme root that may override templates.
const ThemeDir = "templates"

// FileName returns the file name of a template kind.
func (k Kind) FileName() string {
	return string(k) + ".template.html"
}

// Set is a loaded, immutable collection of template sources.
type Set struct {
	sources map[Kind]string
}

// Defaults returns the templates compiled into the binary.
func Defaults() fs.FS {
	sub, err := fs.Sub(embedded, "defaults")
	if err != nil {
		panic(fmt.Sprintf("embedded templates: %v", err))
	}
	return sub
}

// Load reads every template kind. Files under theme's templates directory
// take precedence over the embedded defaults; theme may be nil.
func Load(theme fs.FS) (*Set, error) {
	var source fs.FS = Defaults()
	if theme != nil {
		overrides, err := fs.Sub(theme, ThemeDir)
		if err != nil {
			return nil, fmt.Errorf("theme templates: %w", err)
		}
		source = merged_fs.NewMergedFS(overrides, source)
	}

	set := &Set{sources: make(map[Kind]string, len(Kinds))}
	for _, kind := range Kinds {
		data, err := fs.ReadFile(source, kind.FileName())
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", path.Join(ThemeDir, kind.FileName()), err)
		}
		set.sources[kind] = string(data)
	}
	return set, nil
}

// FromStrings builds a Set from literal sources. Kinds missing from sources render as "".
func FromStrings(sources map[Kind]string) *Set {
	set := &Set{sources: make(map[Kind]string, len(sources))}
	for k, v := range sources {
		set.sources[k] = v
	}
	return set
}

// Source returns the raw text of a template kind.
func (s *Set) Source(kind Kind) string {
	return s.sources[kind]
}
