package model

import "strings"

// Visibility is the access level of a definition. The zero value means the
// input did not say.
type Visibility uint8

const (
	NoVisibility Visibility = iota
	Public
	Package
	Protected
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Package:
		return "package"
	case Protected:
		return "protected"
	case Private:
		return "private"
	default:
		return ""
	}
}

// Symbol returns the UML marker for v.
func (v Visibility) Symbol() string {
	switch v {
	case Public:
		return "+"
	case Package:
		return "~"
	case Protected:
		return "#"
	case Private:
		return "-"
	default:
		return ""
	}
}

// ParseVisibility parses a Doxygen prot attribute.
func ParseVisibility(s string) (Visibility, bool) {
	switch strings.ToLower(s) {
	case "public":
		return Public, true
	case "package":
		return Package, true
	case "protected":
		return Protected, true
	case "private":
		return Private, true
	default:
		return NoVisibility, false
	}
}

// Attribute is a declaration specifier.
type Attribute uint8

const (
	Final Attribute = iota
	Override
	Virtual
	Abstract
	Constexpr
	Explicit
	Noexcept
	Static
	Mutable
	Inline
	Const
)

var attributeNames = [...]string{
	Final:     "final",
	Override:  "override",
	Virtual:   "virtual",
	Abstract:  "abstract",
	Constexpr: "constexpr",
	Explicit:  "explicit",
	Noexcept:  "noexcept",
	Static:    "static",
	Mutable:   "mutable",
	Inline:    "inline",
	Const:     "const",
}

func (a Attribute) String() string {
	if int(a) < len(attributeNames) {
		return attributeNames[a]
	}
	return "unknown"
}

// Text returns the source spelling of a. Abstract is the pure specifier.
func (a Attribute) Text() string {
	if a == Abstract {
		return "= 0"
	}
	return a.String()
}

// ParseAttribute maps a Doxygen yes/no attribute key onto an Attribute.
func ParseAttribute(key string) (Attribute, bool) {
	for i, name := range attributeNames {
		if name == key {
			return Attribute(i), true
		}
	}
	return 0, false
}

// AttrSet is a set of attributes.
type AttrSet uint16

// Has reports whether a is in s.
func (s AttrSet) Has(a Attribute) bool {
	return s&(1<<a) != 0
}

// With returns s plus a.
func (s AttrSet) With(a Attribute) AttrSet {
	return s | 1<<a
}

var (
	beforeName = []Attribute{Static, Virtual, Constexpr, Mutable, Explicit}
	afterName  = []Attribute{Const, Override, Final, Abstract}
)

// Ordered splits s into the specifiers written before a declarator and those
// written after it, each in canonical order. Attributes in neither group are
// omitted.
func (s AttrSet) Ordered() (before, after []Attribute) {
	for _, a := range beforeName {
		if s.Has(a) {
			before = append(before, a)
		}
	}
	for _, a := range afterName {
		if s.Has(a) {
			after = append(after, a)
		}
	}
	return before, after
}
