// Package ref defines references between definitions and the arena handles
// they resolve to.
package ref

// Handle is an index into the definition arena owned by a graph.
// Handles never own the definition they point at.
type Handle int32

// None is the zero value for "no definition".
const None Handle = -1

// Valid reports whether h points at a definition.
func (h Handle) Valid() bool {
	return h >= 0
}

// State is the resolution state of a Ref.
type State uint8

const (
	// Symbolic is a dangling reference as imported: an id plus display name.
	Symbolic State = iota
	// Unresolved means lookup of the id failed; only the name remains.
	Unresolved
	// Resolved points at a definition in the arena.
	Resolved
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case Symbolic:
		return "symbolic"
	case Unresolved:
		return "unresolved"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Ref is a possibly-unresolved pointer from one definition to another.
//
// The zero value is a Symbolic reference with an empty id, which never
// resolves. Use the constructors below.
type Ref struct {
	State  State  `json:"state"`
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Target Handle `json:"target"`
}

// NewSymbolic returns a dangling reference to id.
func NewSymbolic(id, name string) Ref {
	return Ref{State: Symbolic, ID: id, Name: name, Target: None}
}

// NewUnresolved returns a reference that only carries display text.
func NewUnresolved(name string) Ref {
	return Ref{State: Unresolved, Name: name, Target: None}
}

// NewResolved returns a reference to the definition at h.
func NewResolved(h Handle, name string) Ref {
	return Ref{State: Resolved, Name: name, Target: h}
}

// IsResolved reports whether r points at a definition.
func (r Ref) IsResolved() bool {
	return r.State == Resolved && r.Target.Valid()
}

// Lookup maps a definition id to its handle.
type Lookup func(id string) (Handle, bool)

// Resolve replaces a Symbolic reference with Resolved or Unresolved.
// Terminal states are left alone. It reports false only when a Symbolic
// reference failed to resolve.
func (r *Ref) Resolve(lookup Lookup) bool {
	if r.State != Symbolic {
		return true
	}
	if h, ok := lookup(r.ID); ok && r.ID != "" {
		*r = NewResolved(h, r.Name)
		return true
	}
	*r = NewUnresolved(r.Name)
	return false
}
