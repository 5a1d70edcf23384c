package model

// Category groups definitions for listing. The numeric value is the order in
// which categories are listed.
type Category uint8

const (
	DirectoryCategory Category = iota
	FileCategory
	NamespaceCategory
	MacroCategory
	TypeCategory
	VariantCategory
	ConstructorCategory
	DestructorCategory
	FunctionCategory
	SignalCategory
	SlotCategory
	PropertyCategory
	VariableCategory
	FriendCategory
	PageCategory
	GroupCategory
	IndexCategory
)

var categoryNames = [...]string{
	DirectoryCategory:   "directory",
	FileCategory:        "file",
	NamespaceCategory:   "namespace",
	MacroCategory:       "macro",
	TypeCategory:        "type",
	VariantCategory:     "variant",
	ConstructorCategory: "constructor",
	DestructorCategory:  "destructor",
	FunctionCategory:    "function",
	SignalCategory:      "signal",
	SlotCategory:        "slot",
	PropertyCategory:    "property",
	VariableCategory:    "variable",
	FriendCategory:      "friend",
	PageCategory:        "page",
	GroupCategory:       "group",
	IndexCategory:       "index",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// Order returns the listing position of c.
func (c Category) Order() int {
	return int(c)
}

// CategoryOf classifies d.
func CategoryOf(d *Definition) Category {
	switch d.Kind {
	case Directory:
		return DirectoryCategory
	case File:
		return FileCategory
	case Namespace:
		return NamespaceCategory
	case Macro:
		return MacroCategory
	case Class, Enum, Typedef:
		return TypeCategory
	case EnumValue:
		return VariantCategory
	case Function:
		switch d.FunctionKind {
		case Constructor:
			return ConstructorCategory
		case Destructor:
			return DestructorCategory
		case Signal:
			return SignalCategory
		case Slot:
			return SlotCategory
		default:
			return FunctionCategory
		}
	case Property:
		return PropertyCategory
	case Variable:
		return VariableCategory
	case Friend:
		return FriendCategory
	case Page:
		return PageCategory
	case Group:
		return GroupCategory
	default:
		return IndexCategory
	}
}
