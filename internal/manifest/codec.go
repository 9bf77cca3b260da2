package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const pagesKey = "сторінки"

// Entries is the ordered top-level page list.
type Entries []Entry

type leafWire struct {
	Name        string          `json:"назва"`
	Title       *string         `json:"заголовок,omitempty"`
	Source      string          `json:"файл"`
	Output      string          `json:"вихід"`
	Icon        string          `json:"іконка,omitempty"`
	IconHeight  *int            `json:"розмір_іконки,omitempty"`
	Description json.RawMessage `json:"опис,omitempty"`
	NoPrev      bool            `json:"без_попередньої,omitempty"`
	NoNext      bool            `json:"без_наступної,omitempty"`
}

type groupWire struct {
	Name  string            `json:"назва"`
	Pages []json.RawMessage `json:"сторінки"`
}

// UnmarshalJSON decides each entry's variant by the presence of a nested page list.
func (e *Entries) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("pages must be a list: %w", err)
	}

	entries := make(Entries, 0, len(raw))
	for i, item := range raw {
		nested, err := hasPages(item)
		if err != nil {
			return fmt.Errorf("page %d: %w", i, err)
		}
		if !nested {
			leaf, err := decodeLeaf(item)
			if err != nil {
				return fmt.Errorf("page %d: %w", i, err)
			}
			entries = append(entries, leaf)
			continue
		}

		var gw groupWire
		if err := json.Unmarshal(item, &gw); err != nil {
			return fmt.Errorf("page %d: %w", i, err)
		}
		group := &Group{Name: gw.Name, Pages: make([]*Leaf, 0, len(gw.Pages))}
		for j, child := range gw.Pages {
			childNested, err := hasPages(child)
			if err != nil {
				return fmt.Errorf("page %d.%d: %w", i, j, err)
			}
			if childNested {
				return fmt.Errorf("page %d.%d: submenus cannot be nested", i, j)
			}
			leaf, err := decodeLeaf(child)
			if err != nil {
				return fmt.Errorf("page %d.%d: %w", i, j, err)
			}
			group.Pages = append(group.Pages, leaf)
		}
		entries = append(entries, group)
	}

	*e = entries
	return nil
}

// MarshalJSON writes entries back in manifest form.
func (e Entries) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(e))
	for _, entry := range e {
		switch v := entry.(type) {
		case *Leaf:
			out = append(out, encodeLeaf(v))
		case *Group:
			children := make([]leafWire, 0, len(v.Pages))
			for _, l := range v.Pages {
				children = append(children, encodeLeaf(l))
			}
			out = append(out, struct {
				Name  string     `json:"назва"`
				Pages []leafWire `json:"сторінки"`
			}{v.Name, children})
		}
	}
	return json.Marshal(out)
}

func hasPages(item json.RawMessage) (bool, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(item, &probe); err != nil {
		return false, fmt.Errorf("page entry must be an object: %w", err)
	}
	_, ok := probe[pagesKey]
	return ok, nil
}

func decodeLeaf(item json.RawMessage) (*Leaf, error) {
	var w leafWire
	if err := json.Unmarshal(item, &w); err != nil {
		return nil, err
	}
	desc, err := decodeDescription(w.Description)
	if err != nil {
		return nil, err
	}

	height := DefaultIconHeight
	if w.IconHeight != nil {
		height = *w.IconHeight
	}

	return &Leaf{
		Name:        w.Name,
		Title:       w.Title,
		Source:      w.Source,
		Output:      w.Output,
		Icon:        w.Icon,
		IconHeight:  height,
		Description: desc,
		NoPrev:      w.NoPrev,
		NoNext:      w.NoNext,
	}, nil
}

// decodeDescription accepts a string (explicit), true (auto-extract), or false/null/absent (none).
func decodeDescription(raw json.RawMessage) (Description, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Description{}, nil
	}

	var flag bool
	if err := json.Unmarshal(trimmed, &flag); err == nil {
		if flag {
			return Description{Mode: DescriptionAuto}, nil
		}
		return Description{}, nil
	}

	var text string
	if err := json.Unmarshal(trimmed, &text); err != nil {
		return Description{}, errors.New("опис must be a string or true")
	}
	return Description{Mode: DescriptionExplicit, Text: text}, nil
}

func encodeLeaf(l *Leaf) leafWire {
	w := leafWire{
		Name:   l.Name,
		Title:  l.Title,
		Source: l.Source,
		Output: l.Output,
		Icon:   l.Icon,
		NoPrev: l.NoPrev,
		NoNext: l.NoNext,
	}
	if l.IconHeight != DefaultIconHeight {
		h := l.IconHeight
		w.IconHeight = &h
	}
	switch l.Description.Mode {
	case DescriptionAuto:
		w.Description = json.RawMessage("true")
	case DescriptionExplicit:
		w.Description, _ = json.Marshal(l.Description.Text)
	}
	return w
}
