package ranking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/doxyfront/internal/graph"
	"github.com/phobologic/doxyfront/internal/markup"
	"github.com/phobologic/doxyfront/internal/model"
	"github.com/phobologic/doxyfront/internal/ref"
)

func mentions(ids ...string) *markup.Markup {
	m := markup.New()
	for _, id := range ids {
		m.Append(markup.NewCrossRef(ref.NewSymbolic(id, id)))
	}
	return m
}

// makeGraph builds ns::{Widget, Color, make, draw, RED}. make and draw both
// mention Widget; draw also mentions Color.
func makeGraph(t *testing.T) *graph.Graph {
	t.Helper()

	ns := model.New(model.Namespace, "ns")
	ns.QualifiedName = "ns"
	for _, id := range []string{"widget", "color", "make", "draw"} {
		ns.Members = append(ns.Members, ref.NewSymbolic(id, id))
	}

	widget := model.New(model.Class, "widget")
	widget.ClassKind = model.Struct
	widget.QualifiedName = "ns::Widget"

	color := model.New(model.Enum, "color")
	color.QualifiedName = "ns::Color"
	color.Members = []ref.Ref{ref.NewSymbolic("red", "RED")}
	red := model.New(model.EnumValue, "red")
	red.QualifiedName = "ns::Color::RED"

	mk := model.New(model.Function, "make")
	mk.QualifiedName = "ns::make"
	mk.Type = mentions("widget")

	draw := model.New(model.Function, "draw")
	draw.QualifiedName = "ns::draw"
	draw.Detailed = mentions("widget", "color")

	g, _ := graph.Build(context.Background(),
		[]*model.Definition{ns, widget, color, red, mk, draw}, graph.DefaultOptions())
	return g
}

func names(g *graph.Graph, entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, g.Def(e.Handle).QualifiedName)
	}
	return out
}

func TestRank(t *testing.T) {
	t.Parallel()

	g := makeGraph(t)
	ranks := Rank(g)
	require.Len(t, ranks, g.Len())

	var sum float64
	for _, r := range ranks {
		sum += r
	}
	assert.InDelta(t, 1.0, sum, 1e-6)

	byName := func(qn string) float64 {
		for h, d := range g.All() {
			if d.QualifiedName == qn {
				return ranks[h]
			}
		}
		t.Fatalf("no %s", qn)
		return 0
	}
	assert.Greater(t, byName("ns::Widget"), byName("ns::Color"))
	assert.Greater(t, byName("ns::Color"), byName("ns::draw"))
	// Membership is not a reference.
	assert.InDelta(t, byName("ns::make"), byName("ns"), 1e-9)
}

func TestRankEmpty(t *testing.T) {
	t.Parallel()

	g, _ := graph.Build(context.Background(), nil, graph.DefaultOptions())
	ranks := Rank(g)
	require.Len(t, ranks, 2)
	assert.InDelta(t, 0.5, ranks[g.ScopeRoot()], 1e-9)
}

func TestSelect(t *testing.T) {
	t.Parallel()

	g := makeGraph(t)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{
			name:   "all ranked",
			filter: Filter{Limit: 2},
			want:   []string{"ns::Widget", "ns::Color"},
		},
		{
			name:   "name substring",
			filter: Filter{Name: "COLOR"},
			want:   []string{"ns::Color", "ns::Color::RED"},
		},
		{
			name:   "display kind",
			filter: Filter{Kinds: []string{"Struct"}},
			want:   []string{"ns::Widget"},
		},
		{
			name:   "base kind",
			filter: Filter{Kinds: []string{"class", "enum value"}},
			want:   []string{"ns::Widget", "ns::Color::RED"},
		},
		{
			name:   "ties by id",
			filter: Filter{Kinds: []string{"function"}},
			want:   []string{"ns::draw", "ns::make"},
		},
		{
			name:   "no match",
			filter: Filter{Name: "nothing"},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, names(g, Select(g, tt.filter)))
		})
	}
}

func TestSelectSkipsRoots(t *testing.T) {
	t.Parallel()

	g := makeGraph(t)
	for _, e := range Select(g, Filter{}) {
		assert.False(t, g.IsRoot(e.Handle))
	}
	assert.Len(t, Select(g, Filter{}), 6)
}
