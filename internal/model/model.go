// Package model defines the definition records that make up a symbol graph.
package model

import (
	"iter"

	"github.com/phobologic/doxyfront/internal/markup"
	"github.com/phobologic/doxyfront/internal/ref"
)

// Kind is the variant of a Definition.
type Kind uint8

const (
	Macro Kind = iota
	Typedef
	Function
	Variable
	Property
	EnumValue
	Enum
	Friend
	Class
	Namespace
	Directory
	File
	Group
	Page
	// Index is the kind of the two synthetic hierarchy roots.
	Index
)

var kindNames = [...]string{
	Macro:     "macro",
	Typedef:   "typedef",
	Function:  "function",
	Variable:  "variable",
	Property:  "property",
	EnumValue: "enum value",
	Enum:      "enum",
	Friend:    "friend",
	Class:     "class",
	Namespace: "namespace",
	Directory: "directory",
	File:      "file",
	Group:     "group",
	Page:      "page",
	Index:     "index",
}

// String returns the generic name of k.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsCompound reports whether definitions of kind k own a member list.
func (k Kind) IsCompound() bool {
	switch k {
	case Directory, File, Namespace, Class, Enum, Group, Page, Index:
		return true
	default:
		return false
	}
}

// ScopeEligible reports whether k takes part in the lexical scope tree.
func (k Kind) ScopeEligible() bool {
	switch k {
	case Macro, Typedef, Function, Variable, Property, EnumValue, Enum, Friend, Class, Namespace:
		return true
	default:
		return false
	}
}

// FileEligible reports whether k takes part in the file containment tree.
func (k Kind) FileEligible() bool {
	return k == Directory || k == File
}

// ScopeOwner reports whether a compound of kind k assigns scope parents to
// its members.
func (k Kind) ScopeOwner() bool {
	return k == Namespace || k == Class || k == Enum
}

// FileOwner reports whether a compound of kind k assigns file parents to its
// members.
func (k Kind) FileOwner() bool {
	return k == Directory || k == File
}

// IsPath reports whether definitions of kind k are named by a path rather
// than a scoped symbol name.
func (k Kind) IsPath() bool {
	return k == Directory || k == File
}

// FunctionKind refines Function definitions.
type FunctionKind uint8

const (
	PlainFunction FunctionKind = iota
	Signal
	Slot
	Constructor
	Destructor
)

func (f FunctionKind) String() string {
	switch f {
	case Signal:
		return "signal"
	case Slot:
		return "slot"
	case Constructor:
		return "constructor"
	case Destructor:
		return "destructor"
	default:
		return "function"
	}
}

// ClassKind refines Class definitions.
type ClassKind uint8

const (
	PlainClass ClassKind = iota
	Struct
	Union
	Protocol
	Interface
	ObjCCategory
)

var classKindNames = [...]string{
	PlainClass:   "class",
	Struct:       "struct",
	Union:        "union",
	Protocol:     "protocol",
	Interface:    "interface",
	ObjCCategory: "category",
}

func (c ClassKind) String() string {
	if int(c) < len(classKindNames) {
		return classKindNames[c]
	}
	return "class"
}

// ParseClassKind maps a Doxygen compound kind onto a ClassKind.
func ParseClassKind(s string) (ClassKind, bool) {
	for i, name := range classKindNames {
		if name == s {
			return ClassKind(i), true
		}
	}
	return PlainClass, false
}

// Location is a position in the documented sources. Line is 0 when unknown.
type Location struct {
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
}

// Param is a function, macro or template parameter.
type Param struct {
	Name    string         `json:"name,omitempty"`
	Type    *markup.Markup `json:"type,omitempty"`
	Default *markup.Markup `json:"default,omitempty"`
}

// Include is an #include edge from a file or class.
type Include struct {
	File  ref.Ref `json:"file"`
	Local bool    `json:"local"`
}

// Inheritance is one base of a class.
type Inheritance struct {
	Base       ref.Ref    `json:"base"`
	Visibility Visibility `json:"visibility"`
	Virtual    bool       `json:"virtual"`
}

// Definition is one documented entity. Fields that do not apply to its Kind
// are left zero.
type Definition struct {
	Kind          Kind         `json:"kind"`
	FunctionKind  FunctionKind `json:"function_kind,omitempty"`
	ClassKind     ClassKind    `json:"class_kind,omitempty"`
	ID            string       `json:"id"`
	QualifiedName string       `json:"qualified_name,omitempty"`
	Name          string       `json:"name,omitempty"`
	Title         string       `json:"title,omitempty"`
	Language      string       `json:"language,omitempty"`
	Unit          string       `json:"unit,omitempty"`
	Location      Location     `json:"location"`
	Visibility    Visibility   `json:"visibility,omitempty"`
	Attributes    AttrSet      `json:"attributes,omitempty"`

	Brief    *markup.Markup `json:"brief,omitempty"`
	Detailed *markup.Markup `json:"detailed,omitempty"`
	InBody   *markup.Markup `json:"in_body,omitempty"`

	// Members is the ordered member list of compound kinds.
	Members []ref.Ref `json:"members,omitempty"`

	Includes       []Include     `json:"includes,omitempty"`
	Bases          []Inheritance `json:"bases,omitempty"`
	TemplateParams []Param       `json:"template_params,omitempty"`
	Params         []Param       `json:"params,omitempty"`
	MacroParams    []string      `json:"macro_params,omitempty"`

	// Type is the return type of functions, the aliased type of typedefs, the
	// declared type of variables and properties and the underlying type of
	// enums.
	Type        *markup.Markup `json:"type,omitempty"`
	Initializer *markup.Markup `json:"initializer,omitempty"`
	// Listing is verbatim code: a macro's substitution or the definition text
	// of a typedef or friend.
	Listing string `json:"listing,omitempty"`
	Strong  bool   `json:"strong,omitempty"`

	ScopeParent ref.Handle `json:"scope_parent"`
	FileParent  ref.Handle `json:"file_parent"`
	Page        string     `json:"page,omitempty"`
	Href        string     `json:"href,omitempty"`
}

// New returns a definition of kind k with no parents.
func New(k Kind, id string) *Definition {
	return &Definition{
		Kind:        k,
		ID:          id,
		ScopeParent: ref.None,
		FileParent:  ref.None,
	}
}

// KindName returns the display kind, which for functions and classes is the
// refined sub-kind.
func (d *Definition) KindName() string {
	switch d.Kind {
	case Function:
		return d.FunctionKind.String()
	case Class:
		return d.ClassKind.String()
	default:
		return d.Kind.String()
	}
}

// Refs yields every reference reachable from d, in a fixed order, so that
// callers can rewrite them in place.
func (d *Definition) Refs() iter.Seq[*ref.Ref] {
	return func(yield func(*ref.Ref) bool) {
		for i := range d.Members {
			if !yield(&d.Members[i]) {
				return
			}
		}
		for i := range d.Includes {
			if !yield(&d.Includes[i].File) {
				return
			}
		}
		for i := range d.Bases {
			if !yield(&d.Bases[i].Base) {
				return
			}
		}
		trees := []*markup.Markup{d.Type, d.Initializer}
		for _, params := range [][]Param{d.TemplateParams, d.Params} {
			for _, p := range params {
				trees = append(trees, p.Type, p.Default)
			}
		}
		trees = append(trees, d.Brief, d.Detailed, d.InBody)
		for _, m := range trees {
			for r := range m.Refs() {
				if !yield(r) {
					return
				}
			}
		}
	}
}
