package generator

import (
	"log/slog"

	"git.home.luguber.info/inful/xdocs/internal/assets"
	"git.home.luguber.info/inful/xdocs/internal/hooks"
	"git.home.luguber.info/inful/xdocs/internal/manifest"
	"git.home.luguber.info/inful/xdocs/internal/markdown"
	"git.home.luguber.info/inful/xdocs/internal/search"
	"git.home.luguber.info/inful/xdocs/internal/templates"
)

// BuildState is the build-scoped state shared by the stages of one build.
type BuildState struct {
	ID        string
	Generator *Generator
	Report    *Report

	Manifest   *manifest.Manifest
	Leaves     []*manifest.Leaf
	Templates  *templates.Set
	Hooks      *hooks.Registry
	Converter  *markdown.Converter
	References assets.References
	Search     *search.Index

	logger *slog.Logger
}

func newBuildState(g *Generator, id string) *BuildState {
	return &BuildState{
		ID:        id,
		Generator: g,
		Report:    newReport(id, g.now()),
		Hooks:     hooks.NewRegistry(),
		Search:    &search.Index{},
		logger:    slog.Default(),
	}
}
