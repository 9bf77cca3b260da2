// Package hooks lets themes and in-process extensions adjust a page before it is
// rendered and the navigation after it is built. Hooks receive value snapshots
// and return overrides; they never see or mutate shared build state.
package hooks

// PageSnapshot is the state of one page just before the page shell is rendered.
type PageSnapshot struct {
	Name            string
	Output          string
	Prefix          string
	Title           string
	MetaDescription string
	Content         string
	Markdown        string
}

// PageOverrides carries a hook's changes to a page. nil fields keep the current value.
type PageOverrides struct {
	Title           *string
	MetaDescription *string
	Content         *string
	// ExtraHead is appended to the page head markup.
	ExtraHead string
	// ExtraScripts is appended to the body scripts markup.
	ExtraScripts string
}

// NavigationSnapshot is the rendered navigation of one page.
type NavigationSnapshot struct {
	Output string
	Prefix string
	HTML   string
}

// Hook is a page-render extension point.
type Hook interface {
	Name() string
	BeforePageRender(page PageSnapshot) (PageOverrides, error)
	AfterNavigationBuild(nav NavigationSnapshot) (string, error)
}

// Base provides pass-through implementations. Hooks can embed it and override
// only the methods they need.
type Base struct{}

// BeforePageRender returns no overrides.
func (Base) BeforePageRender(PageSnapshot) (PageOverrides, error) {
	return PageOverrides{}, nil
}

// AfterNavigationBuild returns the navigation unchanged.
func (Base) AfterNavigationBuild(nav NavigationSnapshot) (string, error) {
	return nav.HTML, nil
}

// Apply returns page with the overridden fields replaced.
func (o PageOverrides) Apply(page PageSnapshot) PageSnapshot {
	if o.Title != nil {
		page.Title = *o.Title
	}
	if o.MetaDescription != nil {
		page.MetaDescription = *o.MetaDescription
	}
	if o.Content != nil {
		page.Content = *o.Content
	}
	return page
}
