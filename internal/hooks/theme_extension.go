package hooks

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ExtensionFile is the declarative theme extension looked up in the theme root.
const ExtensionFile = "розширення.yaml"

// rootToken in extension markup is replaced by the page's root-relative prefix.
const rootToken = "{{PAGE_ROOT}}"

// Replacement is a literal substitution applied to rendered page content.
type Replacement struct {
	Find    string `yaml:"шукати"`
	Replace string `yaml:"замінити"`
}

// ThemeExtension is a hook declared by a theme in YAML.
type ThemeExtension struct {
	Head             string        `yaml:"голова"`
	Scripts          string        `yaml:"скрипти"`
	NavigationBefore string        `yaml:"навігація_до"`
	NavigationAfter  string        `yaml:"навігація_після"`
	Replacements     []Replacement `yaml:"заміни"`
}

// LoadThemeExtension reads the theme's extension file. It returns nil, nil when the theme has none.
func LoadThemeExtension(fsys afero.Fs, themeDir string) (*ThemeExtension, error) {
	p := filepath.Join(themeDir, ExtensionFile)
	exists, err := afero.Exists(fsys, p)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", p, err)
	}
	if !exists {
		return nil, nil
	}

	data, err := afero.ReadFile(fsys, p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}

	var ext ThemeExtension
	if err := yaml.Unmarshal(data, &ext); err != nil {
		return nil, fmt.Errorf("parse %s: %w", p, err)
	}
	for i, r := range ext.Replacements {
		if r.Find == "" {
			return nil, fmt.Errorf("parse %s: replacement %d has empty шукати", p, i)
		}
	}
	return &ext, nil
}

// Name implements Hook.
func (e *ThemeExtension) Name() string { return "theme" }

// BeforePageRender implements Hook.
func (e *ThemeExtension) BeforePageRender(page PageSnapshot) (PageOverrides, error) {
	o := PageOverrides{
		ExtraHead:    withRoot(e.Head, page.Prefix),
		ExtraScripts: withRoot(e.Scripts, page.Prefix),
	}
	if len(e.Replacements) > 0 {
		pairs := make([]string, 0, 2*len(e.Replacements))
		for _, r := range e.Replacements {
			pairs = append(pairs, r.Find, withRoot(r.Replace, page.Prefix))
		}
		content := strings.NewReplacer(pairs...).Replace(page.Content)
		o.Content = &content
	}
	return o, nil
}

// AfterNavigationBuild implements Hook.
func (e *ThemeExtension) AfterNavigationBuild(nav NavigationSnapshot) (string, error) {
	return withRoot(e.NavigationBefore, nav.Prefix) + nav.HTML + withRoot(e.NavigationAfter, nav.Prefix), nil
}

func withRoot(s, prefix string) string {
	if s == "" {
		return ""
	}
	return strings.ReplaceAll(s, rootToken, prefix)
}
