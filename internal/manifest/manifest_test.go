package manifest

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/xdocs/internal/errors"
)

const sampleJSON = `{
  "назва": "Docs",
  "головна": "https://example.com",
  "логотип": "logo.svg",
  "іконка_підпису": "footer.svg",
  "підпис": "© Example",
  "сторінки": [
    {"назва": "A", "файл": "a.md", "вихід": "index.html"},
    {"назва": "Group", "сторінки": [
      {"назва": "B", "файл": "b.md", "вихід": "guide/b.html", "опис": true},
      {"назва": "C", "файл": "c.md", "вихід": "guide/c.html", "заголовок": "", "розмір_іконки": 32, "іконка": "c.png"}
    ]},
    {"назва": "D", "файл": "d.md", "вихід": "d.html", "опис": "About D", "без_попередньої": true}
  ]
}`

func names(leaves []*Leaf) []string {
	out := make([]string, 0, len(leaves))
	for _, l := range leaves {
		out = append(out, l.Name)
	}
	return out
}

func TestFromJSON(t *testing.T) {
	m, err := FromJSON([]byte(sampleJSON))
	require.NoError(t, err)

	assert.Equal(t, "Docs", m.Name)
	assert.Equal(t, "footer.svg", m.FooterImage)
	require.Len(t, m.Pages, 3)

	group, ok := m.Pages[1].(*Group)
	require.True(t, ok, "second entry should decode as a group")
	assert.Equal(t, "Group", group.DisplayName())
	require.Len(t, group.Pages, 2)

	b, c := group.Pages[0], group.Pages[1]
	assert.Equal(t, DescriptionAuto, b.Description.Mode)
	assert.Nil(t, b.Title)
	assert.Equal(t, DefaultIconHeight, b.IconHeight)

	require.NotNil(t, c.Title)
	assert.Empty(t, *c.Title)
	assert.Equal(t, 32, c.IconHeight)
	assert.Equal(t, "c.png", c.Icon)

	d, ok := m.Pages[2].(*Leaf)
	require.True(t, ok)
	assert.Equal(t, Description{Mode: DescriptionExplicit, Text: "About D"}, d.Description)
	assert.True(t, d.NoPrev)
	assert.False(t, d.NoNext)
}

func TestFromJSON_NestedGroupRejected(t *testing.T) {
	_, err := FromJSON([]byte(`{"назва":"x","сторінки":[{"назва":"g","сторінки":[{"назва":"h","сторінки":[]}]}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nested")
}

func TestFromJSON_BadDescription(t *testing.T) {
	_, err := FromJSON([]byte(`{"сторінки":[{"назва":"a","файл":"a.md","вихід":"a.html","опис":42}]}`))
	require.Error(t, err)
}

func TestFlatten(t *testing.T) {
	a := &Leaf{Name: "A"}
	b := &Leaf{Name: "B"}
	c := &Leaf{Name: "C"}
	d := &Leaf{Name: "D"}

	got := Flatten([]Entry{a, &Group{Name: "G", Pages: []*Leaf{b, c}}, d})
	assert.Equal(t, []string{"A", "B", "C", "D"}, names(got))

	assert.Empty(t, Flatten(nil))
	assert.Empty(t, Flatten([]Entry{&Group{Name: "empty"}}))
}

func TestDocumentTitle(t *testing.T) {
	empty := ""
	override := "Intro"

	assert.Equal(t, "Intro | Docs", (&Leaf{Name: "Introduction", Title: &override}).DocumentTitle("Docs"))
	assert.Equal(t, "Docs", (&Leaf{Name: "Home", Title: &empty}).DocumentTitle("Docs"))
	assert.Equal(t, "Getting Started | Docs", (&Leaf{Name: "Getting Started"}).DocumentTitle("Docs"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		pages   Entries
		wantErr bool
	}{
		{
			name:  "unique outputs",
			pages: Entries{&Leaf{Name: "a", Source: "a.md", Output: "index.html"}, &Leaf{Name: "b", Source: "b.md", Output: "b/index.html"}},
		},
		{
			name: "duplicate across group",
			pages: Entries{
				&Leaf{Name: "a", Source: "a.md", Output: "index.html"},
				&Group{Name: "g", Pages: []*Leaf{{Name: "b", Source: "b.md", Output: "index.html"}}},
			},
			wantErr: true,
		},
		{name: "missing source", pages: Entries{&Leaf{Name: "a", Output: "a.html"}}, wantErr: true},
		{name: "empty output", pages: Entries{&Leaf{Name: "a", Source: "a.md"}}, wantErr: true},
		{name: "absolute output", pages: Entries{&Leaf{Name: "a", Source: "a.md", Output: "/a.html"}}, wantErr: true},
		{name: "escaping output", pages: Entries{&Leaf{Name: "a", Source: "a.md", Output: "../a.html"}}, wantErr: true},
		{name: "unclean output", pages: Entries{&Leaf{Name: "a", Source: "a.md", Output: "x//a.html"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Manifest{Name: "Docs", Pages: tt.pages}).Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fsys, "/docs/"+FileName, []byte(sampleJSON), 0o644))

		m, err := Load(fsys, "/docs")
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "C", "D"}, names(m.Leaves()))
	})

	t.Run("yaml fallback", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		doc := "назва: Docs\nсторінки:\n  - назва: A\n    файл: a.md\n    вихід: index.html\n    опис: true\n  - назва: G\n    сторінки:\n      - назва: B\n        файл: b.md\n        вихід: g/b.html\n"
		require.NoError(t, afero.WriteFile(fsys, "/docs/документація.yaml", []byte(doc), 0o644))

		m, err := Load(fsys, "/docs")
		require.NoError(t, err)
		leaves := m.Leaves()
		assert.Equal(t, []string{"A", "B"}, names(leaves))
		assert.Equal(t, DescriptionAuto, leaves[0].Description.Mode)
	})

	t.Run("missing manifest is a config error", func(t *testing.T) {
		_, err := Load(afero.NewMemMapFs(), "/nowhere")
		require.Error(t, err)
		assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
	})

	t.Run("malformed manifest is a validation error", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fsys, "/docs/"+FileName, []byte(`{"сторінки": 5}`), 0o644))

		_, err := Load(fsys, "/docs")
		require.Error(t, err)
		assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	})
}

func TestHashStable(t *testing.T) {
	m1, err := FromJSON([]byte(sampleJSON))
	require.NoError(t, err)
	m2, err := FromJSON([]byte(sampleJSON))
	require.NoError(t, err)

	h1, err := m1.Hash()
	require.NoError(t, err)
	h2, err := m2.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}
