// Package diag carries recoverable problems found while loading a symbol
// graph. Diagnostics are returned to the caller, never printed by the code
// that finds them.
package diag

import (
	"fmt"
	"iter"
)

// Kind classifies a diagnostic.
type Kind uint8

const (
	// Structural problems come from malformed or incomplete input units.
	Structural Kind = iota
	// DanglingReference marks a reference whose target does not exist.
	DanglingReference
	// Qualification marks a qualified name that does not extend its parent's.
	Qualification
	// Duplicate marks a record dropped because its id was already loaded.
	Duplicate
)

func (k Kind) String() string {
	switch k {
	case Structural:
		return "structural"
	case DanglingReference:
		return "dangling-reference"
	case Qualification:
		return "qualification"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Severity says how loudly a diagnostic should be reported.
type Severity uint8

const (
	Warning Severity = iota
	Note
)

func (s Severity) String() string {
	if s == Note {
		return "note"
	}
	return "warning"
}

// Diagnostic is one recoverable problem, scoped to the unit it came from.
type Diagnostic struct {
	Unit     string   `json:"unit"`
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Unit == "" {
		return d.Message
	}
	return d.Unit + ": " + d.Message
}

// List is an ordered collection of diagnostics.
type List []Diagnostic

// severityOf is the default severity of each kind.
func severityOf(k Kind) Severity {
	if k == Duplicate {
		return Note
	}
	return Warning
}

// Addf appends a diagnostic of kind k.
func (l *List) Addf(unit string, k Kind, format string, args ...any) {
	*l = append(*l, Diagnostic{
		Unit:     unit,
		Kind:     k,
		Severity: severityOf(k),
		Message:  fmt.Sprintf(format, args...),
	})
}

// Count returns the number of diagnostics of kind k.
func (l List) Count(k Kind) int {
	n := 0
	for _, d := range l {
		if d.Kind == k {
			n++
		}
	}
	return n
}

// OfKind yields the diagnostics of kind k in order.
func (l List) OfKind(k Kind) iter.Seq[Diagnostic] {
	return func(yield func(Diagnostic) bool) {
		for _, d := range l {
			if d.Kind == k && !yield(d) {
				return
			}
		}
	}
}
