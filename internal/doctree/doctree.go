// Package doctree writes one HTML page per paged definition of a graph.
package doctree

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/doxyfront/internal/graph"
	"github.com/phobologic/doxyfront/internal/listing"
	"github.com/phobologic/doxyfront/internal/metrics"
	"github.com/phobologic/doxyfront/internal/model"
	"github.com/phobologic/doxyfront/internal/ref"
)

//go:embed page.html.tmpl style.css
var assets embed.FS

var pageTemplate = template.Must(template.ParseFS(assets, "page.html.tmpl"))

// StyleSheet is written next to the pages.
const StyleSheet = "style.css"

var groupTitles = map[model.Category]string{
	model.DirectoryCategory:   "Directories",
	model.FileCategory:        "Files",
	model.NamespaceCategory:   "Namespaces",
	model.MacroCategory:       "Macros",
	model.TypeCategory:        "Types",
	model.VariantCategory:     "Values",
	model.ConstructorCategory: "Constructors",
	model.DestructorCategory:  "Destructors",
	model.FunctionCategory:    "Functions",
	model.SignalCategory:      "Signals",
	model.SlotCategory:        "Slots",
	model.PropertyCategory:    "Properties",
	model.VariableCategory:    "Variables",
	model.FriendCategory:      "Friends",
	model.PageCategory:        "Pages",
	model.GroupCategory:       "Groups",
}

// Options configures Write.
type Options struct {
	// Jobs bounds the page writers. Zero means runtime.GOMAXPROCS(0).
	Jobs    int
	Metrics *metrics.Metrics
}

type crumb struct {
	Name string
	URL  string
}

type member struct {
	Anchor    string
	Signature template.HTML
	Brief     template.HTML
	Detailed  template.HTML
	Listing   template.HTML
}

type group struct {
	Category string
	Title    string
	Members  []member
}

type page struct {
	Title       string
	IndexURL    string
	FilesURL    string
	Breadcrumbs []crumb
	Signature   template.HTML
	Brief       template.HTML
	Detailed    template.HTML
	Listing     template.HTML
	Location    string
	Groups      []group
}

// Write renders every page of g into outDir and returns how many pages it
// wrote. The graph is only read, so pages are rendered in parallel; each
// writer owns its own highlighter.
func Write(ctx context.Context, g *graph.Graph, outDir string, opts Options) (int, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, errors.Wrap(err, "creating output directory")
	}
	css, err := assets.ReadFile(StyleSheet)
	if err != nil {
		return 0, errors.Wrap(err, "reading stylesheet")
	}
	if err := os.WriteFile(filepath.Join(outDir, StyleSheet), css, 0o644); err != nil {
		return 0, errors.Wrap(err, "writing stylesheet")
	}

	var pages []ref.Handle
	for h := range g.Pages() {
		pages = append(pages, h)
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	jobs = min(jobs, len(pages))

	var written atomic.Int64
	work := make(chan ref.Handle)
	eg, ctx := errgroup.WithContext(ctx)
	for range jobs {
		eg.Go(func() error {
			r := &renderer{g: g, hl: listing.NewHighlighter()}
			for h := range work {
				if err := r.write(ctx, outDir, h); err != nil {
					return err
				}
				written.Add(1)
				opts.Metrics.Page()
			}
			return nil
		})
	}
	eg.Go(func() error {
		defer close(work)
		for _, h := range pages {
			if err := ctx.Err(); err != nil {
				return err
			}
			select {
			case work <- h:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	err = eg.Wait()
	return int(written.Load()), err
}

type renderer struct {
	g  *graph.Graph
	hl *listing.Highlighter
}

func (r *renderer) write(ctx context.Context, outDir string, h ref.Handle) error {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, r.page(ctx, h)); err != nil {
		return errors.Wrapf(err, "rendering %s", r.g.Def(h).ID)
	}
	path := filepath.Join(outDir, r.g.URL(h))
	return errors.Wrapf(os.WriteFile(path, buf.Bytes(), 0o644), "writing %s", path)
}

func (r *renderer) page(ctx context.Context, h ref.Handle) page {
	g := r.g
	d := g.Def(h)
	pctx := g.PageContext(h)
	p := page{
		Title:    r.title(h),
		IndexURL: g.URL(g.ScopeRoot()),
		FilesURL: g.URL(g.FileRoot()),
		Brief:    template.HTML(g.MarkupHTML(d.Brief, pctx)),
		Detailed: template.HTML(g.MarkupHTML(d.Detailed, pctx)),
		Listing:  r.listing(ctx, d),
		Groups:   r.groups(ctx, h, pctx),
	}
	if !g.IsRoot(h) {
		p.Signature = template.HTML(g.SignatureHTML(h, nil, true))
		p.Breadcrumbs = r.breadcrumbs(h)
	}
	if d.Location.File != "" {
		p.Location = d.Location.File
		if d.Location.Line > 0 {
			p.Location += fmt.Sprintf(":%d", d.Location.Line)
		}
	}
	return p
}

func (r *renderer) title(h ref.Handle) string {
	g := r.g
	d := g.Def(h)
	switch {
	case h == g.ScopeRoot():
		return "Symbols"
	case h == g.FileRoot():
		return "Files"
	case d.Kind.IsPath():
		return d.KindName() + " " + g.PathPlaintext(h, false)
	case d.Kind == model.Page || d.Kind == model.Group:
		if d.Title != "" {
			return d.Title
		}
		return d.Name
	default:
		return d.KindName() + " " + g.QualifiedNamePlaintext(h, nil)
	}
}

// breadcrumbs lists the ancestors of h, outermost first.
func (r *renderer) breadcrumbs(h ref.Handle) []crumb {
	g := r.g
	ancestors := g.ScopeAncestors(h)
	if g.Def(h).Kind.IsPath() {
		ancestors = g.FileAncestors(h)
	}
	out := make([]crumb, 0, len(ancestors))
	for _, a := range slices.Backward(ancestors) {
		out = append(out, crumb{Name: g.Def(a).Name, URL: g.URL(a)})
	}
	return out
}

func (r *renderer) listing(ctx context.Context, d *model.Definition) template.HTML {
	if d.Listing == "" {
		return ""
	}
	return template.HTML(r.hl.HTML(ctx, d.Listing))
}

// groups lists the resolved members of h by category, each sorted by
// case-folded name.
func (r *renderer) groups(ctx context.Context, h ref.Handle, pctx graph.Context) []group {
	g := r.g
	byCategory := make(map[model.Category][]ref.Handle)
	for _, m := range g.Members(h) {
		c := model.CategoryOf(g.Def(m))
		byCategory[c] = append(byCategory[c], m)
	}

	categories := make([]model.Category, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	slices.SortFunc(categories, func(a, b model.Category) int { return a.Order() - b.Order() })

	out := make([]group, 0, len(categories))
	for _, c := range categories {
		handles := byCategory[c]
		slices.SortStableFunc(handles, func(a, b ref.Handle) int {
			return strings.Compare(strings.ToLower(g.Def(a).Name), strings.ToLower(g.Def(b).Name))
		})
		grp := group{Category: c.String(), Title: groupTitles[c]}
		for _, m := range handles {
			grp.Members = append(grp.Members, r.member(ctx, m, pctx))
		}
		out = append(out, grp)
	}
	return out
}

// member renders one member entry. Members without a page of their own carry
// their full description here.
func (r *renderer) member(ctx context.Context, h ref.Handle, pctx graph.Context) member {
	g := r.g
	d := g.Def(h)
	m := member{
		Anchor:    d.ID,
		Signature: template.HTML(g.SignatureHTML(h, pctx, false)),
		Brief:     template.HTML(g.MarkupHTML(d.Brief, pctx)),
	}
	if d.Page == "" {
		m.Detailed = template.HTML(g.MarkupHTML(d.Detailed, pctx))
		m.Listing = r.listing(ctx, d)
	}
	return m
}
