package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/c360studio/semdoc/archive"
	"github.com/c360studio/semdoc/config"
	"github.com/c360studio/semdoc/container"
	"github.com/c360studio/semdoc/render"
	"github.com/c360studio/semdoc/watch"
)

// withApp runs fn with an App built from the global flags and closes it afterwards.
func withApp(cmd *cobra.Command, g *globalFlags, fn func(a *App) error) (err error) {
	a, err := newApp(cmd, g)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(a)
}

func inspectCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file|pattern>...",
		Short: "Print the logical structures of documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(a *App) error {
				paths, err := resolveInputs(args)
				if err != nil {
					return err
				}
				return a.inspect(paths)
			})
		},
	}
}

func (a *App) inspect(paths []string) error {
	for _, path := range paths {
		doc, err := a.load(path)
		if err != nil {
			return err
		}
		if len(paths) > 1 && a.format == render.FormatText {
			fmt.Fprintf(a.out, "== %s ==\n", path)
		}
		if err := a.render(doc.LogicalStructures()); err != nil {
			return err
		}
	}
	return nil
}

func physicalCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "physical <file>",
		Short: "Print the named byte ranges of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(a *App) error {
				doc, err := a.load(args[0])
				if err != nil {
					return err
				}
				ranges, err := doc.PhysicalStructures()
				if err != nil {
					return err
				}
				return a.render(ranges)
			})
		},
	}
}

func walkCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "walk <file>",
		Short: "List every storage and stream in a compound file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(a *App) error {
				cf, err := container.Open(args[0])
				if err != nil {
					return err
				}
				return a.render(cf.Walk())
			})
		},
	}
}

func diffCmd(g *globalFlags) *cobra.Command {
	var (
		exitOnChange bool
		noPhysical   bool
		sequential   bool
		lenient      bool
		fallback     bool
	)

	cmd := &cobra.Command{
		Use:   "diff <reference> <compared>",
		Short: "Compare two documents structure by structure",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(a *App) error {
				flags := cmd.Flags()
				if flags.Changed("no-physical") {
					a.cfg.Diff.Physical = !noPhysical
				}
				if flags.Changed("sequential") {
					a.cfg.Diff.Parallel = !sequential
				}
				if flags.Changed("lenient") {
					a.cfg.Decode.StrictPlex = !lenient
				}
				if flags.Changed("table-fallback") {
					a.cfg.Decode.TableStreamFallback = fallback
				}
				return a.diff(cmd.Context(), args[0], args[1], exitOnChange)
			})
		},
	}

	cmd.Flags().BoolVar(&exitOnChange, "exit-code", false, "Exit with status 3 when the documents differ")
	cmd.Flags().BoolVar(&noPhysical, "no-physical", false, "Skip the byte range comparison")
	cmd.Flags().BoolVar(&sequential, "sequential", false, "Compare top-level structures one at a time")
	cmd.Flags().BoolVar(&lenient, "lenient", false, "Trim trailing bytes of plex blocks instead of failing")
	cmd.Flags().BoolVar(&fallback, "table-fallback", false, "Try the other table stream when the selected one is missing")
	return cmd
}

func (a *App) diff(ctx context.Context, refPath, compPath string, exitOnChange bool) error {
	if err := a.openSinks(ctx); err != nil {
		return err
	}
	report, err := a.compare(ctx, refPath, compPath)
	if report == nil {
		return err
	}
	if rerr := a.render(report); rerr != nil {
		return rerr
	}
	if err != nil {
		return err
	}
	if exitOnChange && !report.Summary.Identical() {
		return errDifferent
	}
	return nil
}

func watchCmd(g *globalFlags) *cobra.Command {
	var reference string

	cmd := &cobra.Command{
		Use:   "watch [root]",
		Short: "Re-compare documents against a reference whenever they change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return withApp(cmd, g, func(a *App) error {
				if reference != "" {
					a.cfg.Watch.Reference = reference
				}
				ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer cancel()
				return a.watch(ctx, root)
			})
		},
	}
	cmd.Flags().StringVarP(&reference, "reference", "r", "", "Reference document (overrides watch.reference)")
	return cmd
}

func (a *App) watch(ctx context.Context, root string) error {
	if a.cfg.Watch.Reference == "" {
		return fmt.Errorf("watch needs a reference document: set watch.reference or pass --reference")
	}
	if err := a.openSinks(ctx); err != nil {
		return err
	}

	cache, err := watch.NewCache(a.cfg.Watch.CacheSize, a.watchDecoder())
	if err != nil {
		return err
	}
	if _, _, err := cache.Load(a.cfg.Watch.Reference); err != nil {
		return fmt.Errorf("reference: %w", err)
	}
	runner, err := watch.NewRunner(a.cfg.Watch.Reference, cache, a.cfg.DiffOptions(a.logger), a.watchHandler(), a.logger)
	if err != nil {
		return err
	}

	w, err := watch.NewWatcher(a.cfg.Watch, root, a.logger)
	if err != nil {
		return err
	}
	defer w.Stop()
	if err := w.Start(ctx); err != nil {
		return err
	}

	err = runner.Run(ctx, w.Events())
	hits, misses := cache.Stats()
	a.logger.Info("Watch stopped",
		"compared", len(runner.Compared()),
		"cache_hits", hits,
		"cache_misses", misses,
		"dropped_events", w.DroppedEvents())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func historyCmd(g *globalFlags) *cobra.Command {
	var (
		limit    int
		document string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived comparison reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(a *App) error {
				return a.history(cmd.Context(), document, limit)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of reports (0 = all)")
	cmd.Flags().StringVar(&document, "document", "", "Only reports that used this document on either side")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Render one archived report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(a *App) error {
				return a.showReport(cmd.Context(), args[0])
			})
		},
	})
	return cmd
}

func (a *App) requireArchive(ctx context.Context) error {
	if a.cfg.Archive.Path == "" {
		return fmt.Errorf("no archive configured: set archive.path")
	}
	return a.openSinks(ctx)
}

func (a *App) history(ctx context.Context, document string, limit int) error {
	if err := a.requireArchive(ctx); err != nil {
		return err
	}
	var (
		entries []archive.Entry
		err     error
	)
	if document != "" {
		entries, err = a.archive.ForDocument(ctx, document, limit)
	} else {
		entries, err = a.archive.List(ctx, limit)
	}
	if err != nil {
		return err
	}
	return a.render(entries)
}

func (a *App) showReport(ctx context.Context, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid report id %q: %w", rawID, err)
	}
	if err := a.requireArchive(ctx); err != nil {
		return err
	}
	report, err := a.archive.Get(ctx, id)
	if err != nil {
		return err
	}
	return a.render(report)
}

func configCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialise configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, g, func(a *App) error {
					return render.Write(a.out, render.FormatYAML, a.cfg)
				})
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create the user config file with defaults if it does not exist",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				logger := newLogger(cmd.ErrOrStderr(), g.logLevel)
				path, err := config.NewLoader(logger).EnsureUserConfig()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			},
		},
	)
	return cmd
}
