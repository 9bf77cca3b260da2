package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/xdocs/internal/errors"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromEnv(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{
		EnvInput:          " docs ",
		EnvCacheBust:      "git",
		EnvMinify:         "true",
		EnvDebounce:       "1s",
		EnvPort:           "8080",
		EnvSitemapExclude: "drafts/**, ,private/*.html",
	}))
	require.NoError(t, err)

	assert.Equal(t, "docs", cfg.Input)
	assert.Equal(t, "git", cfg.CacheBust)
	assert.True(t, cfg.Minify)
	assert.Equal(t, time.Second, cfg.Debounce)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, []string{"drafts/**", "private/*.html"}, cfg.SitemapExclude)
}

func TestFromEnv_Invalid(t *testing.T) {
	for key, value := range map[string]string{EnvMinify: "maybe", EnvPeriod: "soon", EnvPort: "http"} {
		t.Run(key, func(t *testing.T) {
			_, err := FromEnv(lookupFrom(map[string]string{key: value}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestMergePrecedence(t *testing.T) {
	cfg := Defaults()
	cfg.Merge(Config{Input: "from-file", Output: "out-file", Period: time.Minute})
	cfg.Merge(Config{Input: "from-env"})
	cfg.Merge(Config{Input: "from-flag", Minify: true})

	assert.Equal(t, "from-flag", cfg.Input)
	assert.Equal(t, "out-file", cfg.Output)
	assert.Equal(t, time.Minute, cfg.Period)
	assert.Equal(t, 300*time.Millisecond, cfg.Debounce)
	assert.Equal(t, "none", cfg.CacheBust)
	assert.True(t, cfg.Minify)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("XDOCS_TEST_DOMAIN", "docs.example.com")
	path := filepath.Join(t.TempDir(), "xdocs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("вхід: ./docs\nдомен: ${XDOCS_TEST_DOMAIN}\nзатримка: 500ms\nмапа_виключення:\n  - drafts/**\n"), 0o600))

	cfg := Defaults()
	require.NoError(t, LoadFile(&cfg, path))
	assert.Equal(t, "./docs", cfg.Input)
	assert.Equal(t, "docs.example.com", cfg.Domain)
	assert.Equal(t, 500*time.Millisecond, cfg.Debounce)
	assert.Equal(t, []string{"drafts/**"}, cfg.SitemapExclude)

	require.Error(t, LoadFile(&cfg, filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestResolve(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(".env", []byte("XDOCS_OUTPUT=from-dotenv\nXDOCS_THEME=theme-dotenv\n"), 0o600))
	t.Setenv(EnvTheme, "theme-env")

	cfg, err := Resolve("", Config{Input: "docs"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Unsetenv(EnvOutput) })

	assert.Equal(t, "docs", cfg.Input)
	assert.Equal(t, "from-dotenv", cfg.Output)
	assert.Equal(t, "theme-env", cfg.Theme, ".env never overrides the process environment")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		command Command
		message string
	}{
		{name: "generate missing input", cfg: Config{Output: "out"}, command: CommandGenerate, message: MsgMissingInput},
		{name: "generate missing output", cfg: Config{Input: "docs"}, command: CommandGenerate, message: MsgMissingOutput},
		{name: "generate missing theme", cfg: Config{Input: "docs", Output: "out"}, command: CommandGenerate, message: MsgMissingTheme},
		{name: "watch missing theme", cfg: Config{Input: "docs", Output: "out"}, command: CommandWatch, message: MsgMissingTheme},
		{name: "generate ok", cfg: Config{Input: "docs", Output: "out", Theme: "theme"}, command: CommandGenerate},
		{name: "bad cache mode", cfg: Config{Input: "docs", Output: "out", Theme: "theme", CacheBust: "hourly"}, command: CommandGenerate, message: "Невідомий режим кешування \"hourly\" параметра --кеш= (none, time, fingerprint, git)"},
		{name: "sitemap missing domain", cfg: Config{Output: "out"}, command: CommandSitemap, message: MsgMissingDomain},
		{name: "sitemap missing output", cfg: Config{Domain: "d"}, command: CommandSitemap, message: MsgMissingOutput},
		{name: "sitemap bad pattern", cfg: Config{Output: "out", Domain: "d", SitemapExclude: []string{"[a"}}, command: CommandSitemap, message: "Некоректний шаблон виключення \"[a\""},
		{name: "watch bad port", cfg: Config{Input: "docs", Output: "out", Theme: "theme", Port: 70000}, command: CommandWatch, message: "Некоректний порт 70000 параметра --порт="},
		{name: "watch ok", cfg: Config{Input: "docs", Output: "out", Theme: "theme", Port: 8080, Period: time.Hour}, command: CommandWatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate(tt.command)
			if tt.message == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			ce, ok := errors.AsClassified(err)
			require.True(t, ok)
			assert.Equal(t, errors.CategoryConfig, ce.Category())
			assert.Equal(t, tt.message, ce.Message())
		})
	}
}
