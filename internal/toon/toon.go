// Package toon encodes the symbol table in TOON (Token-Oriented Object
// Notation).
package toon

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/phobologic/doxyfront/internal/diag"
	"github.com/phobologic/doxyfront/internal/graph"
	"github.com/phobologic/doxyfront/internal/ranking"
	"github.com/phobologic/doxyfront/internal/ref"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Table is what the symbols command prints.
type Table struct {
	// Source names the XML directory the graph was loaded from.
	Source      string
	Graph       *graph.Graph
	Entries     []ranking.Entry
	Diagnostics diag.List
}

// Encode converts t into TOON format.
func Encode(t *Table) string {
	g := t.Graph
	var parts []string

	parts = append(parts, fmt.Sprintf("source: %s", encodeValue(t.Source)))
	sum := g.Summary()
	parts = append(parts, fmt.Sprintf("summary: definitions=%d resolved=%d unresolved=%d duplicates=%d",
		sum.Definitions, sum.Resolved, sum.Unresolved, sum.Duplicates))

	defRows := make([][]string, 0, len(t.Entries))
	for _, e := range t.Entries {
		d := g.Def(e.Handle)
		defRows = append(defRows, []string{
			d.ID,
			d.KindName(),
			d.Name,
			d.QualifiedName,
			parentID(g, d.ScopeParent),
			parentID(g, d.FileParent),
			g.URL(e.Handle),
			fmt.Sprintf("%.4f", e.Rank),
		})
	}
	parts = append(parts, formatTabular("definitions",
		[]string{"id", "kind", "name", "qualified_name", "scope_parent", "file_parent", "href", "rank"}, defRows))

	diagRows := make([][]string, 0, len(t.Diagnostics))
	for _, d := range t.Diagnostics {
		diagRows = append(diagRows, []string{d.Unit, d.Kind.String(), d.Severity.String(), d.Message})
	}
	parts = append(parts, formatTabular("diagnostics", []string{"unit", "kind", "severity", "message"}, diagRows))

	return strings.Join(parts, "\n")
}

func parentID(g *graph.Graph, h ref.Handle) string {
	if d := g.Def(h); d != nil {
		return d.ID
	}
	return ""
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	switch {
	case value == "":
		return `""`
	case value != strings.TrimSpace(value), strings.ContainsAny(value, "\n\r\t"):
		return quote(value)
	}
	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}
	if looksNumeric.MatchString(value) {
		return value
	}
	if needsQuoting.MatchString(value) || strings.HasPrefix(value, "-") {
		return quote(value)
	}
	return value
}

var quoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

func quote(value string) string {
	return `"` + quoter.Replace(value) + `"`
}
