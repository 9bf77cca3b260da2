package commands

import (
	"context"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/xdocs/internal/config"
)

// GenerateCmd builds the site once.
type GenerateCmd struct {
	SiteFlags `embed:""`
}

func (g *GenerateCmd) Run(_ *Global, cli *CLI) error {
	return g.run(context.Background(), afero.NewOsFs(), cli)
}

func (g *GenerateCmd) run(ctx context.Context, fsys afero.Fs, cli *CLI) error {
	cfg, err := resolveConfig(cli, g.config(), config.CommandGenerate)
	if err != nil {
		return err
	}

	s, err := newSite(fsys, cfg, config.CommandGenerate, false)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.Build(ctx)
}
