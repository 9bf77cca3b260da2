package commands

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/xdocs/internal/config"
	"git.home.luguber.info/inful/xdocs/internal/watch"
)

// WatchCmd rebuilds the site whenever the documentation, the theme or the
// program itself changes.
type WatchCmd struct {
	SiteFlags `embed:""`

	Debounce time.Duration `name:"затримка" help:"Вікно об'єднання змін (типово 300ms)"`
	Period   time.Duration `name:"період" help:"Повна перебудова через кожен період (0 вимикає)"`
	Port     int           `name:"порт" help:"Порт локального перегляду (0 вимикає)"`
}

func (w *WatchCmd) Run(_ *Global, cli *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	flags := w.config()
	flags.Debounce = w.Debounce
	flags.Period = w.Period
	flags.Port = w.Port

	cfg, err := resolveConfig(cli, flags, config.CommandWatch)
	if err != nil {
		return err
	}

	s, err := newSite(afero.NewOsFs(), cfg, config.CommandWatch, cfg.Port > 0)
	if err != nil {
		return err
	}
	defer s.Close()

	var metrics http.Handler
	if s.recorder != nil {
		metrics = s.recorder.HTTPHandler()
	}

	return watch.Run(ctx, s.Build, watch.Options{
		Dirs:      []string{cfg.Input, cfg.Theme},
		Shallow:   []string{programDir()},
		Debounce:  cfg.Debounce,
		Period:    cfg.Period,
		Port:      cfg.Port,
		OutputDir: cfg.Output,
		Metrics:   metrics,
	})
}

// programDir is the directory holding the running executable, or "" when it cannot be determined.
func programDir() string {
	exe, err := os.Executable()
	if err != nil {
		slog.Debug("Cannot locate executable", slog.String("error", err.Error()))
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}
