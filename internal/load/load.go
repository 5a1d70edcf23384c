// Package load imports a set of XML units in parallel and builds the symbol
// graph from them.
package load

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/doxyfront/internal/diag"
	"github.com/phobologic/doxyfront/internal/discover"
	"github.com/phobologic/doxyfront/internal/doxml"
	"github.com/phobologic/doxyfront/internal/graph"
	"github.com/phobologic/doxyfront/internal/metrics"
	"github.com/phobologic/doxyfront/internal/model"
	"github.com/phobologic/doxyfront/internal/unitcache"
)

var tracer = otel.Tracer("doxyfront.load")

// Options configures a load. Every field is optional.
type Options struct {
	// Jobs bounds the import workers. Zero means runtime.GOMAXPROCS(0).
	Jobs    int
	Graph   graph.Options
	Cache   *unitcache.Cache
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Stats summarizes a load.
type Stats struct {
	Units       int `json:"units"`
	UnitsOK     int `json:"units_ok"`
	UnitsFailed int `json:"units_failed"`
	UnitsCached int `json:"units_cached"`
	Definitions int `json:"definitions"`
	Duplicates  int `json:"duplicates"`
	Resolved    int `json:"resolved"`
	Unresolved  int `json:"unresolved"`
}

// Result is a built graph with everything reported on the way.
type Result struct {
	Graph       *graph.Graph
	Diagnostics diag.List
	Stats       Stats
}

type unitResult struct {
	res    doxml.Result
	status string
}

// Load imports units and builds the graph. Units are merged in the order
// given, so the same units always give the same graph. A unit that cannot be
// read or parsed is reported as a diagnostic; Load itself only fails when
// ctx is cancelled.
func Load(ctx context.Context, units []discover.Unit, opts Options) (*Result, error) {
	ctx, span := tracer.Start(ctx, "load.Load",
		trace.WithAttributes(attribute.Int("units", len(units))),
	)
	defer span.End()

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	start := time.Now()
	results := make([]unitResult, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, u := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = importUnit(gctx, u, opts.Cache, opts.Metrics, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts.Metrics.Stage("import", time.Since(start))

	stats := Stats{Units: len(units)}
	var defs []*model.Definition
	var diags diag.List
	for _, r := range results {
		switch r.status {
		case metrics.UnitOK:
			stats.UnitsOK++
		case metrics.UnitCached:
			stats.UnitsCached++
		default:
			stats.UnitsFailed++
		}
		defs = append(defs, r.res.Definitions...)
		diags = append(diags, r.res.Diagnostics...)
	}

	start = time.Now()
	built, buildDiags := graph.Build(ctx, defs, opts.Graph)
	opts.Metrics.Stage("build", time.Since(start))
	diags = append(diags, buildDiags...)

	sum := built.Summary()
	stats.Definitions = sum.Definitions
	stats.Duplicates = sum.Duplicates
	stats.Resolved = sum.Resolved
	stats.Unresolved = sum.Unresolved
	opts.Metrics.Graph(sum.Definitions, sum.Resolved, sum.Unresolved)
	for _, d := range diags {
		opts.Metrics.Diagnostic(d.Kind.String())
	}

	span.SetAttributes(
		attribute.Int("units_failed", stats.UnitsFailed),
		attribute.Int("units_cached", stats.UnitsCached),
		attribute.Int("definitions", stats.Definitions),
	)
	return &Result{Graph: built, Diagnostics: diags, Stats: stats}, nil
}

// importUnit reads one unit, consulting the cache first.
func importUnit(ctx context.Context, u discover.Unit, cache *unitcache.Cache, m *metrics.Metrics, logger *slog.Logger) unitResult {
	ctx, span := tracer.Start(ctx, "load.unit", trace.WithAttributes(attribute.String("unit", u.Path)))
	defer span.End()
	start := time.Now()

	data, err := os.ReadFile(u.Abs)
	if err != nil {
		var res doxml.Result
		res.Diagnostics.Addf(u.Path, diag.Structural, "cannot read unit: %v", err)
		m.Unit(metrics.UnitFailed, time.Since(start))
		return unitResult{res: res, status: metrics.UnitFailed}
	}

	if cache != nil {
		res, ok, err := cache.Get(ctx, u.Path, data)
		if err != nil {
			logger.Warn("cache lookup failed", "unit", u.Path, "error", err)
		} else if ok {
			m.Unit(metrics.UnitCached, 0)
			return unitResult{res: res, status: metrics.UnitCached}
		}
	}

	res := doxml.Import(u.Path, data)
	status := metrics.UnitOK
	if len(res.Definitions) == 0 && len(res.Diagnostics) > 0 {
		status = metrics.UnitFailed
	}
	m.Unit(status, time.Since(start))

	if cache != nil && status == metrics.UnitOK {
		if err := cache.Put(ctx, u.Path, data, res); err != nil {
			logger.Warn("cache store failed", "unit", u.Path, "error", err)
		}
	}
	return unitResult{res: res, status: status}
}
