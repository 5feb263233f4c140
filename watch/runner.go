package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"

	"github.com/c360studio/semdoc/diff"
)

// Handler receives every report the runner produces.
type Handler func(ctx context.Context, r *diff.Report) error

// Runner compares changed documents against the reference.
type Runner struct {
	reference string
	cache     *Cache
	opts      diff.Options
	handle    Handler
	logger    *slog.Logger

	mu       sync.Mutex
	compared map[string]struct{}
}

// NewRunner creates a runner comparing against the document at reference.
func NewRunner(reference string, cache *Cache, opts diff.Options, handle Handler, logger *slog.Logger) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(reference)
	if err != nil {
		return nil, fmt.Errorf("resolve reference %s: %w", reference, err)
	}
	return &Runner{
		reference: abs,
		cache:     cache,
		opts:      opts,
		handle:    handle,
		logger:    logger,
		compared:  make(map[string]struct{}),
	}, nil
}

// Run consumes events until ctx is done or the channel closes. Failures are
// logged per event and never stop the loop.
func (r *Runner) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			r.HandleEvent(ctx, ev)
		}
	}
}

// HandleEvent reacts to one change. A changed reference re-compares every
// document compared so far.
func (r *Runner) HandleEvent(ctx context.Context, ev Event) {
	switch {
	case ev.Operation == OpDelete:
		r.mu.Lock()
		delete(r.compared, ev.AbsPath)
		r.mu.Unlock()
		r.logger.Info("Document removed", slog.String("path", ev.Path))

	case ev.AbsPath == r.reference:
		paths := r.Compared()
		r.logger.Info("Reference changed, re-comparing", slog.Int("documents", len(paths)))
		for _, p := range paths {
			r.compareLogged(ctx, p)
		}

	default:
		r.compareLogged(ctx, ev.AbsPath)
	}
}

// Compared returns the documents compared so far, sorted.
func (r *Runner) Compared() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.compared))
	for p := range r.compared {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

func (r *Runner) compareLogged(ctx context.Context, path string) {
	if _, err := r.Compare(ctx, path); err != nil {
		r.logger.Warn("Comparison failed", slog.String("path", path), slog.Any("error", err))
	}
}

// Compare diffs the document at path against the reference and passes the
// report to the handler.
func (r *Runner) Compare(ctx context.Context, path string) (*diff.Report, error) {
	ref, _, err := r.cache.Load(r.reference)
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	comp, _, err := r.cache.Load(path)
	if err != nil {
		return nil, err
	}

	report, err := diff.Compare(ctx, r.reference, ref, path, comp, r.opts)
	if err != nil {
		return nil, fmt.Errorf("compare %s: %w", path, err)
	}

	r.mu.Lock()
	r.compared[path] = struct{}{}
	r.mu.Unlock()

	r.logger.Info("Compared document",
		slog.String("path", path),
		slog.Bool("identical", report.Summary.Identical()),
		slog.Int("changed_items", report.Summary.ChangedItems))

	if r.handle != nil {
		if err := r.handle(ctx, report); err != nil {
			return report, fmt.Errorf("handle report: %w", err)
		}
	}
	return report, nil
}
