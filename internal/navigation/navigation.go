// Package navigation renders the site navigation for one page.
package navigation

import (
	"strings"

	"git.home.luguber.info/inful/xdocs/internal/manifest"
	"git.home.luguber.info/inful/xdocs/internal/templates"
)

// Page identifies the page the navigation is built for.
type Page struct {
	Output string
	Prefix string
}

// Links renders the link list. An entry is active iff its output path equals
// page.Output; a submenu is expanded iff one of its children is active.
func Links(set *templates.Set, entries []manifest.Entry, page Page) string {
	items := make([]string, 0, len(entries))
	for _, entry := range entries {
		switch e := entry.(type) {
		case *manifest.Group:
			children := make([]string, 0, len(e.Pages))
			expanded := false
			for _, child := range e.Pages {
				active := child.Output == page.Output
				expanded = expanded || active
				children = append(children, set.RenderSubmenuLink(templates.LinkFields{
					Name:   child.Name,
					URL:    page.Prefix + child.Output,
					Active: active,
				}))
			}
			items = append(items, set.RenderSubmenu(templates.SubmenuFields{
				Name:     e.Name,
				Items:    strings.Join(children, "\n"),
				Expanded: expanded,
			}))
		case *manifest.Leaf:
			items = append(items, set.RenderLink(templates.LinkFields{
				Name:   e.Name,
				URL:    page.Prefix + e.Output,
				Active: e.Output == page.Output,
			}))
		}
	}
	return strings.Join(items, "\n")
}

// Build renders the full navigation block for page.
func Build(set *templates.Set, m *manifest.Manifest, page Page) string {
	fields := templates.NavigationFields{
		LogoURL:    m.Home,
		LogoImage:  page.Prefix + m.Logo,
		Links:      Links(set, m.Pages, page),
		FooterURL:  m.FooterLink,
		FooterText: m.FooterText,
	}
	if m.LogoPNG != "" {
		fields.LogoPNG = page.Prefix + m.LogoPNG
	}
	if m.FooterImage != "" {
		fields.FooterImage = page.Prefix + m.FooterImage
	}
	return set.RenderNavigation(fields)
}
