package hooks

import (
	"fmt"
	"sync"
)

// Registry holds hooks in registration order.
type Registry struct {
	mu    sync.RWMutex
	hooks []Hook
	names map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Register appends a hook. Names must be unique.
func (r *Registry) Register(h Hook) error {
	if h == nil {
		return fmt.Errorf("cannot register nil hook")
	}
	name := h.Name()
	if name == "" {
		return fmt.Errorf("hook name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.names[name]; exists {
		return fmt.Errorf("hook %s already registered", name)
	}
	r.names[name] = struct{}{}
	r.hooks = append(r.hooks, h)
	return nil
}

// List returns the registered hooks in order.
func (r *Registry) List() []Hook {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Hook, len(r.hooks))
	copy(out, r.hooks)
	return out
}

// Count returns the number of registered hooks.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks)
}

// BeforePageRender runs every hook in order. Each hook sees the page as left
// by the previous one. Head and script additions accumulate.
func (r *Registry) BeforePageRender(page PageSnapshot) (PageSnapshot, PageOverrides, error) {
	var combined PageOverrides
	for _, h := range r.List() {
		o, err := h.BeforePageRender(page)
		if err != nil {
			return page, combined, fmt.Errorf("hook %s: %w", h.Name(), err)
		}
		page = o.Apply(page)
		combined.ExtraHead = JoinMarkup(combined.ExtraHead, o.ExtraHead)
		combined.ExtraScripts = JoinMarkup(combined.ExtraScripts, o.ExtraScripts)
	}
	return page, combined, nil
}

// AfterNavigationBuild threads the navigation markup through every hook in order.
func (r *Registry) AfterNavigationBuild(nav NavigationSnapshot) (string, error) {
	for _, h := range r.List() {
		out, err := h.AfterNavigationBuild(nav)
		if err != nil {
			return nav.HTML, fmt.Errorf("hook %s: %w", h.Name(), err)
		}
		nav.HTML = out
	}
	return nav.HTML, nil
}

// JoinMarkup puts extra on its own line after base. Empty parts are dropped.
func JoinMarkup(base, extra string) string {
	switch {
	case extra == "":
		return base
	case base == "":
		return extra
	}
	return base + "\n" + extra
}
