package manifest

import (
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/xdocs/internal/errors"
)

// FileName is the manifest file looked up in the input root.
const FileName = "документація.json"

// fallbackNames are tried in order when FileName does not exist.
var fallbackNames = []string{"документація.yaml", "документація.yml"}

// Locate returns the manifest path inside inputDir.
func Locate(fsys afero.Fs, inputDir string) (string, error) {
	for _, name := range append([]string{FileName}, fallbackNames...) {
		candidate := filepath.Join(inputDir, name)
		exists, err := afero.Exists(fsys, candidate)
		if err != nil {
			return "", errors.FileSystemError("cannot stat manifest").WithCause(err).
				WithContext("path", candidate).
				Build()
		}
		if exists {
			return candidate, nil
		}
	}
	return "", errors.ConfigError(fmt.Sprintf("Не знайдено файл %s у %s", FileName, inputDir)).
		WithContext("path", inputDir).
		Build()
}

// Load reads, decodes and validates the manifest in inputDir.
func Load(fsys afero.Fs, inputDir string) (*Manifest, error) {
	manifestPath, err := Locate(fsys, inputDir)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(fsys, manifestPath)
	if err != nil {
		return nil, errors.FileSystemError("cannot read manifest").WithCause(err).
			WithContext("path", manifestPath).
			Build()
	}

	m, err := Parse(data, filepath.Ext(manifestPath))
	if err != nil {
		return nil, errors.ValidationError("malformed manifest").WithCause(err).
			WithContext("path", manifestPath).
			Build()
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Parse decodes manifest bytes. ext selects YAML (".yaml", ".yml"); anything else is JSON.
func Parse(data []byte, ext string) (*Manifest, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		// Re-encode so both formats share one set of field rules.
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("convert yaml: %w", err)
		}
		return FromJSON(converted)
	default:
		return FromJSON(data)
	}
}

// Validate checks the structural invariants that decoding alone cannot.
func (m *Manifest) Validate() error {
	seen := make(map[string]string)
	for _, leaf := range m.Leaves() {
		if leaf.Source == "" {
			return errors.ValidationError(fmt.Sprintf("Сторінка %q не має поля файл", leaf.Name)).
				WithContext("page", leaf.Name).
				Build()
		}
		if err := validateOutput(leaf.Output); err != nil {
			return errors.ValidationError(fmt.Sprintf("Сторінка %q має некоректний вихід: %v", leaf.Name, err)).
				WithContext("page", leaf.Name).
				WithContext("output", leaf.Output).
				Build()
		}
		if prev, dup := seen[leaf.Output]; dup {
			return errors.ValidationError(fmt.Sprintf("Вихід %q повторюється у сторінках %q та %q", leaf.Output, prev, leaf.Name)).
				WithContext("output", leaf.Output).
				Build()
		}
		seen[leaf.Output] = leaf.Name
	}
	return nil
}

func validateOutput(out string) error {
	switch {
	case out == "":
		return fmt.Errorf("empty path")
	case strings.Contains(out, "\\"):
		return fmt.Errorf("use / as separator")
	case strings.HasPrefix(out, "/"):
		return fmt.Errorf("path must be relative")
	case path.Clean(out) != out:
		return fmt.Errorf("path must be clean")
	case out == ".." || strings.HasPrefix(out, "../"):
		return fmt.Errorf("path escapes the output directory")
	}
	return nil
}

// SourcePath joins a leaf's source path onto the input root using the OS separator.
func SourcePath(inputDir string, leaf *Leaf) string {
	return filepath.Join(inputDir, filepath.FromSlash(leaf.Source))
}

// OutputPath joins a leaf's output path onto the output root using the OS separator.
func OutputPath(outputDir string, leaf *Leaf) string {
	return filepath.Join(outputDir, filepath.FromSlash(leaf.Output))
}

