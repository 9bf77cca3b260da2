package commands

import (
	"log/slog"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/xdocs/internal/config"
	"git.home.luguber.info/inful/xdocs/internal/errors"
	"git.home.luguber.info/inful/xdocs/internal/logfields"
	"git.home.luguber.info/inful/xdocs/internal/sitemap"
)

// SitemapCmd writes sitemap.xml for an already generated site.
type SitemapCmd struct {
	Output  string   `name:"вихід" help:"Папка згенерованого сайту" type:"path"`
	Domain  string   `name:"домен" help:"Домен сайту, наприклад example.com"`
	Exclude []string `name:"виключити" help:"Шаблони шляхів (doublestar), які не потрапляють до мапи"`
}

func (m *SitemapCmd) Run(_ *Global, cli *CLI) error {
	return m.run(afero.NewOsFs(), cli)
}

func (m *SitemapCmd) run(fsys afero.Fs, cli *CLI) error {
	cfg, err := resolveConfig(cli, config.Config{Output: m.Output, Domain: m.Domain, SitemapExclude: m.Exclude}, config.CommandSitemap)
	if err != nil {
		return err
	}

	n, err := sitemap.Write(fsys, cfg.Output, sitemap.Options{Domain: cfg.Domain, Exclude: cfg.SitemapExclude})
	if err != nil {
		return errors.FileSystemError("cannot write sitemap").WithCause(err).
			WithContext("path", cfg.Output).
			Build()
	}
	slog.Info("Sitemap written", logfields.Path(cfg.Output), logfields.Count(n))
	return nil
}
