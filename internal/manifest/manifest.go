// Package manifest models the documentation manifest: site-level fields and the
// ordered two-level page tree that drives navigation, prev/next adjacency and
// the search index.
package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// DefaultIconHeight is the pixel height used when a page declares an icon without a size.
const DefaultIconHeight = 50

// Manifest is the parsed documentation manifest. It is read once per build and never mutated.
type Manifest struct {
	Name        string  `json:"назва"`
	Home        string  `json:"головна"`
	Logo        string  `json:"логотип"`
	LogoPNG     string  `json:"логотип_png,omitempty"`
	FooterImage string  `json:"іконка_підпису,omitempty"`
	FooterLink  string  `json:"посилання_підпису,omitempty"`
	FooterText  string  `json:"підпис,omitempty"`
	Pages       Entries `json:"сторінки"`
}

// Entry is a top-level manifest entry. It is implemented only by *Leaf and *Group.
type Entry interface {
	DisplayName() string
	isEntry()
}

// Leaf is a single renderable page.
type Leaf struct {
	Name string
	// Title overrides the display name in the document title. nil means absent;
	// a pointer to "" suppresses the page part and leaves only the site name.
	Title       *string
	Source      string
	Output      string
	Icon        string
	IconHeight  int
	Description Description
	NoPrev      bool
	NoNext      bool
}

// Group is a named submenu of leaves. Groups never contain groups.
type Group struct {
	Name  string
	Pages []*Leaf
}

func (l *Leaf) DisplayName() string  { return l.Name }
func (g *Group) DisplayName() string { return g.Name }
func (*Leaf) isEntry()               {}
func (*Group) isEntry()              {}

// DocumentTitle returns the <title> text for the page within the named site.
func (l *Leaf) DocumentTitle(siteName string) string {
	if l.Title == nil {
		return l.Name + " | " + siteName
	}
	if *l.Title == "" {
		return siteName
	}
	return *l.Title + " | " + siteName
}

// DescriptionMode tells how a page's meta description is obtained.
type DescriptionMode int

const (
	// DescriptionNone omits the meta description.
	DescriptionNone DescriptionMode = iota
	// DescriptionExplicit uses the manifest text verbatim.
	DescriptionExplicit
	// DescriptionAuto extracts the first paragraph of the rendered page.
	DescriptionAuto
)

// Description is a page's meta description setting.
type Description struct {
	Mode DescriptionMode
	Text string
}

// Flatten expands groups in place and returns only leaves, in document order.
func Flatten(entries []Entry) []*Leaf {
	leaves := make([]*Leaf, 0, len(entries))
	for _, e := range entries {
		switch v := e.(type) {
		case *Group:
			leaves = append(leaves, v.Pages...)
		case *Leaf:
			leaves = append(leaves, v)
		}
	}
	return leaves
}

// Leaves returns the flattened page sequence of the manifest.
func (m *Manifest) Leaves() []*Leaf {
	return Flatten(m.Pages)
}

// ToJSON serializes the manifest to JSON.
func (m *Manifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Hash computes a deterministic hash of the manifest content.
// Builds of the same manifest record the same hash in the build journal.
func (m *Manifest) Hash() (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}
