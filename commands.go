package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/phobologic/doxyfront/internal/depgraph"
	"github.com/phobologic/doxyfront/internal/doctree"
	"github.com/phobologic/doxyfront/internal/load"
	"github.com/phobologic/doxyfront/internal/ranking"
	"github.com/phobologic/doxyfront/internal/toon"
	"github.com/phobologic/doxyfront/internal/unitcache"
	"github.com/phobologic/doxyfront/internal/watch"
)

// buildStats is what build --stats prints.
type buildStats struct {
	load.Stats
	Pages int `json:"pages"`
}

func newBuildCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <xml-dir> <out-dir>",
		Short: "Write the HTML reference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.build(cmd.Context(), args[0], args[1])
		},
	}
	cmd.Flags().BoolVar(&a.stats, "stats", false, "print load statistics as JSON to stdout")
	return cmd
}

func (a *app) build(ctx context.Context, xmlDir, outDir string) error {
	cache, err := a.openCache()
	if err != nil {
		return err
	}
	defer a.closeCache(cache)
	return a.buildOnce(ctx, xmlDir, outDir, cache)
}

func (a *app) buildOnce(ctx context.Context, xmlDir, outDir string, cache *unitcache.Cache) error {
	ctx, span := tracer.Start(ctx, "doxyfront.build")
	defer span.End()

	res, err := a.load(ctx, xmlDir, cache)
	if err != nil {
		return err
	}

	start := time.Now()
	pages, err := doctree.Write(ctx, res.Graph, outDir, doctree.Options{Jobs: a.cfg.Jobs, Metrics: a.metrics})
	a.metrics.Stage("render", time.Since(start))
	if err != nil {
		return err
	}
	a.log.Info("wrote pages", "pages", pages, "out", outDir)

	if a.stats {
		data, err := json.MarshalIndent(buildStats{Stats: res.Stats, Pages: pages}, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encoding stats")
		}
		fmt.Fprintln(a.stdout, string(data))
	}
	return a.writeMetrics()
}

func newSymbolsCmd(a *app) *cobra.Command {
	var f ranking.Filter
	cmd := &cobra.Command{
		Use:   "symbols <xml-dir>",
		Short: "Print the resolved definitions as a TOON table, most referenced first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := a.openCache()
			if err != nil {
				return err
			}
			defer a.closeCache(cache)

			res, err := a.load(cmd.Context(), args[0], cache)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, toon.Encode(&toon.Table{
				Source:      filepath.Base(filepath.Clean(args[0])),
				Graph:       res.Graph,
				Entries:     ranking.Select(res.Graph, f),
				Diagnostics: res.Diagnostics,
			}))
			return a.writeMetrics()
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "keep definitions whose qualified name contains this (case-insensitive)")
	cmd.Flags().StringSliceVar(&f.Kinds, "kind", nil, "keep only these kinds, e.g. struct,function")
	cmd.Flags().IntVarP(&f.Limit, "limit", "n", 0, "keep the top N definitions")
	return cmd
}

func newDepgraphCmd(a *app) *cobra.Command {
	var (
		depth  int
		output string
	)
	cmd := &cobra.Command{
		Use:   "depgraph <xml-dir>",
		Short: "Print include dependencies between directories as Graphviz DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := a.openCache()
			if err != nil {
				return err
			}
			defer a.closeCache(cache)

			res, err := a.load(cmd.Context(), args[0], cache)
			if err != nil {
				return err
			}

			var w io.Writer = a.stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return errors.Wrap(err, "creating output")
				}
				defer f.Close()
				w = f
			}
			if err := depgraph.Write(w, res.Graph, depth); err != nil {
				return err
			}
			return a.writeMetrics()
		},
	}
	cmd.Flags().IntVar(&depth, "depth", depgraph.DefaultDepth, "directory levels below each top directory to cluster by")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the graph to this file instead of stdout")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <xml-dir> <out-dir>",
		Short: "Build, then rebuild whenever the XML directory changes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			xmlDir, outDir := args[0], args[1]
			cache, err := a.openCache()
			if err != nil {
				return err
			}
			defer a.closeCache(cache)

			a.log.Info("watching", "dir", xmlDir, "debounce", a.cfg.WatchDebounce)
			return watch.Run(cmd.Context(), xmlDir, watch.Options{
				Debounce:   a.cfg.WatchDebounce,
				IgnoreFile: a.cfg.IgnoreFile,
				Logger:     a.log,
			}, func(ctx context.Context) error {
				return a.buildOnce(ctx, xmlDir, outDir, cache)
			})
		},
	}
}
