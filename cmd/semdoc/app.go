package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/c360studio/semdoc/archive"
	"github.com/c360studio/semdoc/config"
	"github.com/c360studio/semdoc/diff"
	"github.com/c360studio/semdoc/metrics"
	"github.com/c360studio/semdoc/publish"
	"github.com/c360studio/semdoc/render"
	"github.com/c360studio/semdoc/watch"
	"github.com/c360studio/semdoc/word"
)

// errDifferent is returned by diff --exit-code when the documents differ.
var errDifferent = errors.New("documents differ")

// exitDifferent is the exit status for errDifferent, distinct from failures.
const exitDifferent = 3

func exitCode(err error) (int, bool) {
	if errors.Is(err, errDifferent) {
		return exitDifferent, true
	}
	return 0, false
}

// App wires configuration, decoding and the report sinks for one command.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
	format render.Format

	metrics   *metrics.Metrics
	archive   *archive.Store
	publisher *publish.Publisher
	nc        *nats.Conn

	open func(path string, opts word.Options) (*word.Document, error)
}

// newApp loads configuration for cmd and applies the global flags.
func newApp(cmd *cobra.Command, g *globalFlags) (*App, error) {
	logger := newLogger(cmd.ErrOrStderr(), g.logLevel)
	slog.SetDefault(logger)

	cfg, err := config.NewLoader(logger).Load(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if g.format != "" {
		cfg.Merge(&config.Config{Render: config.RenderConfig{Format: g.format}})
	}
	return newAppWithConfig(cfg, logger, cmd.OutOrStdout())
}

func newAppWithConfig(cfg *config.Config, logger *slog.Logger, out io.Writer) (*App, error) {
	format, err := render.ParseFormat(cfg.Render.Format)
	if err != nil {
		return nil, err
	}
	return &App{
		cfg:     cfg,
		logger:  logger,
		out:     out,
		format:  format,
		metrics: metrics.New(),
		open:    word.OpenFile,
	}, nil
}

// openSinks opens the archive and the NATS publisher when configured.
func (a *App) openSinks(ctx context.Context) error {
	if a.cfg.Archive.Path != "" && a.archive == nil {
		store, err := archive.Open(ctx, a.cfg.Archive.Path)
		if err != nil {
			return err
		}
		a.archive = store
		a.logger.Debug("Archive opened", slog.String("path", a.cfg.Archive.Path))
	}
	if a.cfg.Publish.NATSURL != "" && a.publisher == nil {
		p, nc, err := publish.Connect(a.cfg.Publish.NATSURL, a.cfg.Publish.Subject, a.cfg.Publish.Timeout, a.logger)
		if err != nil {
			return err
		}
		a.publisher, a.nc = p, nc
		a.logger.Debug("Connected to NATS", slog.String("url", a.cfg.Publish.NATSURL))
	}
	return nil
}

// Close writes the metrics textfile and releases the sinks.
func (a *App) Close() error {
	var errs []error
	if err := a.flushMetrics(); err != nil {
		errs = append(errs, err)
	}
	if a.nc != nil {
		a.nc.Close()
	}
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close archive: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (a *App) flushMetrics() error {
	if a.cfg.Metrics.Textfile == "" {
		return nil
	}
	return a.metrics.WriteTextfile(a.cfg.Metrics.Textfile)
}

func (a *App) render(v any) error {
	return render.Write(a.out, a.format, v)
}

// load assembles one document, logging the structures that failed.
func (a *App) load(path string) (*word.Document, error) {
	start := time.Now()
	doc, err := a.open(path, a.cfg.DecodeOptions(a.logger))
	if err != nil {
		a.metrics.ObserveFailure("decode")
		return nil, err
	}
	a.metrics.ObserveDocument(doc, time.Since(start))
	for _, o := range doc.Failed() {
		a.logger.Warn("Structure not decoded",
			slog.String("path", path),
			slog.String("structure", o.Structure),
			slog.String("error", o.Error()))
	}
	return doc, nil
}

// compare diffs two files and delivers the report to the configured sinks.
func (a *App) compare(ctx context.Context, refPath, compPath string) (*diff.Report, error) {
	ref, err := a.load(refPath)
	if err != nil {
		return nil, err
	}
	comp, err := a.load(compPath)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	report, err := diff.Compare(ctx, refPath, ref, compPath, comp, a.cfg.DiffOptions(a.logger))
	if err != nil {
		a.metrics.ObserveFailure("compare")
		return nil, err
	}
	a.metrics.ObserveReport(report, time.Since(start))
	return report, a.deliver(ctx, report)
}

// deliver archives and publishes a report. Both sinks are attempted.
func (a *App) deliver(ctx context.Context, r *diff.Report) error {
	var errs []error
	if a.archive != nil {
		if err := a.archive.Save(ctx, r); err != nil {
			a.metrics.ObserveFailure("archive")
			errs = append(errs, err)
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Publish(ctx, r); err != nil {
			a.metrics.ObserveFailure("publish")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// watchDecoder decodes through the configured assembly options and counts
// each decoded document.
func (a *App) watchDecoder() watch.Decoder {
	decode := watch.DecodeWord(a.cfg.DecodeOptions(a.logger))
	return func(data []byte) (diff.Source, error) {
		start := time.Now()
		src, err := decode(data)
		if err != nil {
			a.metrics.ObserveFailure("decode")
			return nil, err
		}
		if doc, ok := src.(*word.Document); ok {
			a.metrics.ObserveDocument(doc, time.Since(start))
		}
		return src, nil
	}
}

// watchHandler renders, delivers and counts each report produced in watch mode.
func (a *App) watchHandler() watch.Handler {
	return func(ctx context.Context, r *diff.Report) error {
		a.metrics.ObserveReport(r, time.Since(r.CreatedAt))
		if err := a.render(r); err != nil {
			return err
		}
		if err := a.deliver(ctx, r); err != nil {
			return err
		}
		return a.flushMetrics()
	}
}

// resolveInputs keeps existing paths as given and expands the rest as
// doublestar patterns relative to the working directory.
func resolveInputs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if _, err := os.Stat(arg); err == nil {
			out = append(out, arg)
			continue
		}
		matches, err := watch.Expand(".", []string{arg}, nil)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no documents match %q", arg)
		}
		out = append(out, matches...)
	}
	return out, nil
}
