package commands

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"git.home.luguber.info/inful/xdocs/internal/assets"
	"git.home.luguber.info/inful/xdocs/internal/config"
	"git.home.luguber.info/inful/xdocs/internal/errors"
	"git.home.luguber.info/inful/xdocs/internal/generator"
	"git.home.luguber.info/inful/xdocs/internal/journal"
	"git.home.luguber.info/inful/xdocs/internal/logfields"
	"git.home.luguber.info/inful/xdocs/internal/metrics"
	"git.home.luguber.info/inful/xdocs/internal/notify"
)

// site couples the generator with the optional post-build sinks: metrics
// textfile, build journal and NATS event.
type site struct {
	cfg       config.Config
	command   config.Command
	gen       *generator.Generator
	recorder  *metrics.PrometheusRecorder
	journal   journal.Store
	publisher notify.Publisher
}

// newSite wires a generator for cfg. withMetrics forces a Prometheus recorder
// even without a metrics file.
func newSite(fsys afero.Fs, cfg config.Config, command config.Command, withMetrics bool) (*site, error) {
	mode, err := assets.ParseCacheBust(cfg.CacheBust)
	if err != nil {
		return nil, errors.ConfigError(err.Error()).Build()
	}

	s := &site{cfg: cfg, command: command, publisher: notify.NoopPublisher{}}

	var options []generator.Option
	if withMetrics || cfg.MetricsFile != "" {
		s.recorder = metrics.NewPrometheusRecorder(prometheus.NewRegistry())
		options = append(options, generator.WithRecorder(s.recorder))
	}

	if cfg.Journal != "" {
		store, err := journal.NewSQLiteStore(cfg.Journal)
		if err != nil {
			return nil, errors.FileSystemError("cannot open build journal").WithCause(err).
				WithContext("path", cfg.Journal).
				Build()
		}
		s.journal = store
	}

	if cfg.NATSURL != "" {
		pub, err := notify.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			slog.Warn("Build events disabled", logfields.Error(err))
		} else {
			s.publisher = pub
		}
	}

	s.gen = generator.New(fsys, generator.Options{
		Input:     cfg.Input,
		Output:    cfg.Output,
		Theme:     cfg.Theme,
		GTag:      cfg.GTag,
		CacheBust: mode,
		Minify:    cfg.Minify,
		Sass:      assets.ExecSass{Binary: cfg.Sass},
	}, options...)
	return s, nil
}

// Build runs one generation and feeds the report to the configured sinks. Sink
// failures are logged; only the build error is returned.
func (s *site) Build(ctx context.Context) error {
	report, err := s.gen.Generate(ctx)
	if report == nil {
		return err
	}

	if s.recorder != nil && s.cfg.MetricsFile != "" {
		if werr := s.recorder.WriteTextfile(s.cfg.MetricsFile); werr != nil {
			slog.Warn("Failed to write metrics", logfields.Path(s.cfg.MetricsFile), logfields.Error(werr))
		}
	}

	if s.journal != nil {
		entry := journal.Build{
			BuildID:      report.BuildID,
			Command:      string(s.command),
			Started:      report.Start,
			Duration:     report.Duration,
			Outcome:      report.Outcome,
			Pages:        report.Pages,
			Assets:       report.Assets,
			ManifestHash: report.ManifestHash,
			Error:        report.ErrorText(),
			Stages:       report.StageDurations,
		}
		if jerr := s.journal.Record(ctx, entry); jerr != nil {
			slog.Warn("Failed to record build", logfields.BuildID(report.BuildID), logfields.Error(jerr))
		}
	}

	event := notify.BuildCompleted{
		BuildID:    report.BuildID,
		Site:       s.cfg.Input,
		Output:     s.cfg.Output,
		Outcome:    report.Outcome,
		Pages:      report.Pages,
		DurationMS: report.Duration.Milliseconds(),
		Error:      report.ErrorText(),
		Timestamp:  report.End,
	}
	if perr := s.publisher.PublishBuildCompleted(event); perr != nil {
		slog.Warn("Failed to publish build event", logfields.BuildID(report.BuildID), logfields.Error(perr))
	}
	return err
}

// Close releases the journal and NATS connection.
func (s *site) Close() {
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			slog.Warn("Failed to close build journal", logfields.Error(err))
		}
	}
	s.publisher.Close()
}
