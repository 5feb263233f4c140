package diff

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/c360studio/semdoc/structure"
)

// Source is a decoded document that can be projected for comparison.
type Source interface {
	PhysicalStructures() ([]structure.Physical, error)
	LogicalStructures() []structure.Structure
}

// Options tunes Compare.
type Options struct {
	// Parallel compares top-level structures concurrently.
	Parallel bool
	// Physical includes the byte-range diff.
	Physical bool
	Logger   *slog.Logger
}

// DefaultOptions compares everything in parallel.
func DefaultOptions() Options {
	return Options{Parallel: true, Physical: true}
}

// Summary totals a report.
type Summary struct {
	PhysicalChanged   int `json:"physical_changed" yaml:"physical_changed"`
	PhysicalRanges    int `json:"physical_ranges" yaml:"physical_ranges"`
	ChangedNibbles    int `json:"changed_nibbles" yaml:"changed_nibbles"`
	LogicalChanged    int `json:"logical_changed" yaml:"logical_changed"`
	ChangedItems      int `json:"changed_items" yaml:"changed_items"`
	OneSidedStructure int `json:"one_sided_structures" yaml:"one_sided_structures"`
}

// Identical reports whether nothing differs.
func (s Summary) Identical() bool {
	return s.PhysicalChanged == 0 && s.LogicalChanged == 0 && s.OneSidedStructure == 0
}

// Report is the full comparison of two documents.
type Report struct {
	ID        uuid.UUID            `json:"id" yaml:"id"`
	CreatedAt time.Time            `json:"created_at" yaml:"created_at"`
	Reference string               `json:"reference" yaml:"reference"`
	Compared  string               `json:"compared" yaml:"compared"`
	Physical  []PhysicalComparison `json:"physical,omitempty" yaml:"physical,omitempty"`
	Logical   []LogicalComparison  `json:"logical" yaml:"logical"`
	Summary   Summary              `json:"summary" yaml:"summary"`
}

// Compare diffs comp against ref. Top-level logical structures are aligned
// by name first; each matched pair is then compared on its own goroutine
// when opts.Parallel is set. The physical diff runs alongside.
func Compare(ctx context.Context, refName string, ref Source, compName string, comp Source, opts Options) (*Report, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	start := time.Now()
	report := &Report{
		ID:        uuid.New(),
		CreatedAt: start.UTC(),
		Reference: refName,
		Compared:  compName,
	}

	g, gctx := errgroup.WithContext(ctx)
	if !opts.Parallel {
		g.SetLimit(1)
	}

	if opts.Physical {
		g.Go(func() error {
			rp, err := ref.PhysicalStructures()
			if err != nil {
				return fmt.Errorf("physical structures of %s: %w", refName, err)
			}
			cp, err := comp.PhysicalStructures()
			if err != nil {
				return fmt.Errorf("physical structures of %s: %w", compName, err)
			}
			report.Physical = ComparePhysical(rp, cp)
			return nil
		})
	}

	logical := align(ref.LogicalStructures(), comp.LogicalStructures())
	report.Logical = make([]LogicalComparison, len(logical))
	for i, pair := range logical {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if pair.ref == nil || pair.comp == nil {
				report.Logical[i] = oneSided(pair.ref, pair.comp)
				return nil
			}
			c, err := CompareStructure(pair.ref, pair.comp)
			if err != nil {
				return err
			}
			report.Logical[i] = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	report.Summary = summarize(report)
	log.Debug("Compared documents",
		slog.String("id", report.ID.String()),
		slog.String("reference", refName),
		slog.String("compared", compName),
		slog.Int("changed_items", report.Summary.ChangedItems),
		slog.Int("physical_changed", report.Summary.PhysicalChanged),
		slog.Duration("duration", time.Since(start)))
	return report, nil
}

func summarize(r *Report) Summary {
	var s Summary
	for _, p := range r.Physical {
		if p.Changed() {
			s.PhysicalChanged++
		}
		s.PhysicalRanges += len(p.Differences)
		for _, d := range p.Differences {
			s.ChangedNibbles += d.Len()
		}
	}
	for _, l := range r.Logical {
		items := l.ChangedItems()
		sided := l.OneSided()
		if items > 0 || sided > 0 {
			s.LogicalChanged++
		}
		s.ChangedItems += items
		s.OneSidedStructure += sided
	}
	return s
}
