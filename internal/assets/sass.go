package assets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"git.home.luguber.info/inful/xdocs/internal/logfields"
)

// SassCompiler compiles a stylesheet source into a CSS file.
type SassCompiler interface {
	Compile(ctx context.Context, src, dst string) error
}

// ExecSass runs the external sass binary with stdio inherited.
type ExecSass struct {
	Binary string
}

// Compile runs `sass src dst`.
func (s ExecSass) Compile(ctx context.Context, src, dst string) error {
	binary := s.Binary
	if binary == "" {
		binary = "sass"
	}

	cmd := exec.CommandContext(ctx, binary, src, dst)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	slog.Info("Compiling theme stylesheet", logfields.Source(src), logfields.Output(dst))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s command failed: %w", binary, err)
	}
	return nil
}
