package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/xdocs/internal/config"
	"git.home.luguber.info/inful/xdocs/internal/errors"
)

// Global is passed to every command's Run.
type Global struct {
	Logger *slog.Logger
}

// CLI is the root command line.
type CLI struct {
	Config  string           `name:"конфігурація" short:"c" help:"Шлях до YAML-файлу конфігурації" type:"path"`
	Verbose bool             `short:"v" help:"Докладний журнал (debug)"`
	Version kong.VersionFlag `name:"version" help:"Показати версію"`

	Generate GenerateCmd `cmd:"" name:"згенерувати" aliases:"generate" default:"withargs" help:"Згенерувати сайт документації"`
	Watch    WatchCmd    `cmd:"" name:"стежити" aliases:"watch" help:"Генерувати сайт при кожній зміні вихідних файлів"`
	Sitemap  SitemapCmd  `cmd:"" name:"мапа" aliases:"sitemap" help:"Створити sitemap.xml для згенерованого сайту"`
}

// AfterApply installs the default logger once flags are parsed. XDOCS_LOG_LEVEL
// sets the level; -v forces debug.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	config.LoadEnvFiles()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.logLevel()})))
	return nil
}

func (c *CLI) logLevel() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	level := slog.LevelInfo
	if v := strings.TrimSpace(os.Getenv(config.EnvLogLevel)); v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			level = slog.LevelInfo
		}
	}
	return level
}

// SiteFlags are the build settings shared by generate and watch.
type SiteFlags struct {
	Input     string `name:"вхід" help:"Папка з документацією (містить документація.json)" type:"path"`
	Output    string `name:"вихід" help:"Папка для згенерованого сайту" type:"path"`
	Theme     string `name:"вигляд" help:"Папка теми" type:"path"`
	GTag      string `name:"ґтег" help:"Ідентифікатор Google tag"`
	CacheBust string `name:"кеш" help:"Позначка кешу для ресурсів: none, time, fingerprint, git"`
	Minify    bool   `name:"мінімізувати" help:"Мінімізувати JavaScript теми"`
	Sass      string `name:"sass" help:"Виконуваний файл sass"`

	MetricsFile string `name:"метрики" help:"Записати метрики Prometheus у текстовий файл" type:"path"`
	Journal     string `name:"журнал" help:"Журнал збірок SQLite" type:"path"`
	NATSURL     string `name:"nats" help:"Адреса NATS для подій завершення збірки"`
	NATSSubject string `name:"nats-тема" help:"Тема NATS"`
}

func (f SiteFlags) config() config.Config {
	return config.Config{
		Input:       f.Input,
		Output:      f.Output,
		Theme:       f.Theme,
		GTag:        f.GTag,
		CacheBust:   f.CacheBust,
		Minify:      f.Minify,
		Sass:        f.Sass,
		MetricsFile: f.MetricsFile,
		Journal:     f.Journal,
		NATSURL:     f.NATSURL,
		NATSSubject: f.NATSSubject,
	}
}

// resolveConfig resolves and validates the configuration for command.
func resolveConfig(cli *CLI, flags config.Config, command config.Command) (config.Config, error) {
	cfg, err := config.Resolve(cli.Config, flags)
	if err != nil {
		return cfg, errors.ConfigError(fmt.Sprintf("Не вдалося прочитати конфігурацію: %v", err)).WithCause(err).Build()
	}
	if err := cfg.Validate(command); err != nil {
		return cfg, err
	}
	return cfg, nil
}
