// Package doxml imports Doxygen XML units into raw definition records.
//
// Import never fails: every problem in a unit is reported as a structural
// diagnostic and the affected value is left empty. Only reading the file can
// return an error.
package doxml

import (
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/phobologic/doxyfront/internal/diag"
	"github.com/phobologic/doxyfront/internal/model"
	"github.com/phobologic/doxyfront/internal/ref"
)

// Result is what one unit contributes to the graph.
type Result struct {
	Definitions []*model.Definition `json:"definitions"`
	Diagnostics diag.List           `json:"diagnostics"`
}

// ImportFile reads and imports the unit at path. The unit is named by the
// file's base name.
func ImportFile(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, errors.Wrapf(err, "reading %s", path)
	}
	return Import(filepath.Base(path), data), nil
}

// Import parses one Doxygen XML unit.
func Import(unit string, data []byte) Result {
	imp := &importer{unit: unit}
	root, err := parseDocument(data)
	if err != nil {
		imp.warnf("%v", err)
		return imp.result()
	}

	compounds := []*node{root}
	if root.name != "compounddef" {
		compounds = compounds[:0]
		for _, c := range root.elements() {
			if c.name == "compounddef" {
				compounds = append(compounds, c)
			}
		}
	}
	if len(compounds) == 0 {
		imp.warnf("no compounddef in unit")
		return imp.result()
	}
	for _, c := range compounds {
		imp.compound(c)
	}
	return imp.result()
}

type importer struct {
	unit  string
	defs  []*model.Definition
	diags diag.List
}

func (imp *importer) result() Result {
	return Result{Definitions: imp.defs, Diagnostics: imp.diags}
}

func (imp *importer) warnf(format string, args ...any) {
	imp.diags.Addf(imp.unit, diag.Structural, format, args...)
}

func (imp *importer) add(d *model.Definition) {
	d.Unit = imp.unit
	imp.defs = append(imp.defs, d)
}

func (imp *importer) requireAttr(n *node, key string) string {
	v, ok := n.attr(key)
	if !ok {
		imp.warnf("<%s> lacks attribute %q", n.name, key)
	}
	return v
}

// yesNo parses a Doxygen boolean attribute.
func (imp *importer) yesNo(n *node, key string) (value, present bool) {
	v, ok := n.attr(key)
	if !ok {
		return false, false
	}
	switch v {
	case "yes":
		return true, true
	case "no":
		return false, true
	default:
		imp.warnf("<%s %s=%q>: expected yes or no", n.name, key, v)
		return false, false
	}
}

// common reads what every definition shares: visibility, attribute flags,
// descriptions and location.
func (imp *importer) common(d *model.Definition, n *node) {
	if prot, ok := n.attr("prot"); ok {
		v, known := model.ParseVisibility(prot)
		if !known {
			imp.warnf("%s: unknown visibility %q", d.ID, prot)
		}
		d.Visibility = v
	}

	for _, key := range slices.Sorted(maps.Keys(n.attrs)) {
		a, ok := model.ParseAttribute(key)
		if !ok {
			continue
		}
		if set, _ := imp.yesNo(n, key); set {
			d.Attributes = d.Attributes.With(a)
		}
	}
	switch virt, _ := n.attr("virt"); virt {
	case "virtual":
		d.Attributes = d.Attributes.With(model.Virtual)
	case "pure-virtual":
		d.Attributes = d.Attributes.With(model.Virtual).With(model.Abstract)
	}

	d.Brief = convertMarkup(n.child("briefdescription"))
	d.Detailed = convertMarkup(n.child("detaileddescription"))
	d.InBody = convertMarkup(n.child("inbodydescription"))

	if loc := n.child("location"); loc != nil {
		d.Location.File = imp.requireAttr(loc, "file")
		if line, ok := loc.attr("line"); ok {
			if l, err := strconv.Atoi(line); err == nil && l > 0 {
				d.Location.Line = l
			}
		}
	}
}

func compoundKind(kind string) (model.Kind, model.ClassKind, bool) {
	switch kind {
	case "file":
		return model.File, 0, true
	case "dir":
		return model.Directory, 0, true
	case "namespace":
		return model.Namespace, 0, true
	case "group":
		return model.Group, 0, true
	case "page":
		return model.Page, 0, true
	}
	if ck, ok := model.ParseClassKind(kind); ok {
		return model.Class, ck, true
	}
	return 0, 0, false
}

func (imp *importer) compound(n *node) {
	kindAttr := imp.requireAttr(n, "kind")
	kind, classKind, ok := compoundKind(kindAttr)
	if !ok {
		imp.warnf("unknown compound kind %q", kindAttr)
		return
	}

	d := model.New(kind, imp.requireAttr(n, "id"))
	d.ClassKind = classKind
	d.Language, _ = n.attr("language")
	d.QualifiedName = strings.TrimSpace(n.child("compoundname").innerText())
	if d.QualifiedName == "" {
		imp.warnf("%s: missing compoundname", d.ID)
	}
	d.Title = strings.TrimSpace(n.child("title").innerText())
	imp.common(d, n)
	imp.add(d)

	for _, c := range n.elements() {
		switch {
		case strings.HasPrefix(c.name, "inner"):
			if r, ok := symbolicRef(c); ok {
				d.Members = append(d.Members, r)
			}
		case c.name == "basecompoundref":
			imp.base(d, c)
		case c.name == "includes":
			if r, ok := symbolicRef(c); ok {
				local, _ := imp.yesNo(c, "local")
				d.Includes = append(d.Includes, model.Include{File: r, Local: local})
			}
		case c.name == "templateparamlist":
			d.TemplateParams = imp.params(c)
		case c.name == "sectiondef":
			imp.section(d, c)
		}
	}
}

func (imp *importer) base(d *model.Definition, n *node) {
	r, ok := symbolicRef(n)
	if !ok {
		imp.warnf("%s: empty basecompoundref", d.ID)
		return
	}
	inh := model.Inheritance{Base: r}
	if prot, ok := n.attr("prot"); ok {
		inh.Visibility, _ = model.ParseVisibility(prot)
	}
	virt, _ := n.attr("virt")
	inh.Virtual = virt == "virtual" || virt == "pure-virtual"
	d.Bases = append(d.Bases, inh)
}

func (imp *importer) params(n *node) []model.Param {
	var out []model.Param
	for _, p := range n.elements() {
		if p.name != "param" {
			continue
		}
		out = append(out, paramOf(p))
	}
	return out
}

func paramOf(n *node) model.Param {
	p := model.Param{
		Type:    convertMarkup(n.child("type")),
		Default: convertMarkup(n.child("defval")),
	}
	p.Name = strings.TrimSpace(n.child("declname").innerText())
	if p.Name == "" {
		p.Name = strings.TrimSpace(n.child("defname").innerText())
	}
	return p
}

// section imports the members of a sectiondef. A memberdef defines a member;
// a bare member element only references one defined elsewhere.
func (imp *importer) section(owner *model.Definition, n *node) {
	for _, c := range n.elements() {
		switch c.name {
		case "memberdef":
			if m := imp.member(owner, c); m != nil {
				owner.Members = append(owner.Members, ref.NewSymbolic(m.ID, m.QualifiedName))
			}
		case "member":
			id := imp.requireAttr(c, "refid")
			name := strings.TrimSpace(c.child("name").innerText())
			if id != "" {
				owner.Members = append(owner.Members, ref.NewSymbolic(id, name))
			}
		}
	}
}

func memberKind(kind string) (model.Kind, model.FunctionKind, bool) {
	switch kind {
	case "define":
		return model.Macro, 0, true
	case "typedef":
		return model.Typedef, 0, true
	case "function":
		return model.Function, model.PlainFunction, true
	case "signal":
		return model.Function, model.Signal, true
	case "slot":
		return model.Function, model.Slot, true
	case "variable":
		return model.Variable, 0, true
	case "property":
		return model.Property, 0, true
	case "enum":
		return model.Enum, 0, true
	case "friend":
		return model.Friend, 0, true
	default:
		return 0, 0, false
	}
}

func (imp *importer) member(owner *model.Definition, n *node) *model.Definition {
	kindAttr := imp.requireAttr(n, "kind")
	kind, fk, ok := memberKind(kindAttr)
	if !ok {
		imp.warnf("unknown member kind %q", kindAttr)
		return nil
	}

	d := model.New(kind, imp.requireAttr(n, "id"))
	d.FunctionKind = fk
	d.Language = owner.Language
	name := strings.TrimSpace(n.child("name").innerText())
	if name == "" {
		imp.warnf("%s: member without name", d.ID)
	}
	d.QualifiedName = strings.TrimSpace(n.child("qualifiedname").innerText())
	if d.QualifiedName == "" {
		d.QualifiedName = qualify(owner, name)
	}
	imp.common(d, n)
	imp.add(d)

	switch kind {
	case model.Macro:
		for _, p := range n.elements() {
			if p.name == "param" {
				d.MacroParams = append(d.MacroParams, strings.TrimSpace(p.child("defname").innerText()))
			}
		}
		d.Listing = n.child("initializer").innerText()
	case model.Typedef:
		d.Type = convertMarkup(n.child("type"))
		d.Listing = n.child("definition").innerText()
		if t := n.child("templateparamlist"); t != nil {
			d.TemplateParams = imp.params(t)
		}
	case model.Function:
		d.Type = convertMarkup(n.child("type"))
		d.Params = imp.params(n)
		if t := n.child("templateparamlist"); t != nil {
			d.TemplateParams = imp.params(t)
		}
		if fk == model.PlainFunction && owner.Kind == model.Class {
			d.FunctionKind = structorKind(owner.QualifiedName, name, separatorFor(owner.Language))
		}
	case model.Variable:
		d.Type = convertMarkup(n.child("type"))
		d.Initializer = convertMarkup(n.child("initializer"))
	case model.Property:
		d.Type = convertMarkup(n.child("type"))
	case model.Enum:
		if strong, ok := imp.yesNo(n, "strong"); ok {
			d.Strong = strong
		}
		d.Type = convertMarkup(n.child("type"))
		for _, v := range n.elements() {
			if v.name == "enumvalue" {
				ev := imp.enumValue(d, v)
				d.Members = append(d.Members, ref.NewSymbolic(ev.ID, ev.QualifiedName))
			}
		}
	case model.Friend:
		d.Listing = n.child("definition").innerText()
	}
	return d
}

func (imp *importer) enumValue(enum *model.Definition, n *node) *model.Definition {
	d := model.New(model.EnumValue, imp.requireAttr(n, "id"))
	d.Language = enum.Language
	d.QualifiedName = qualify(enum, strings.TrimSpace(n.child("name").innerText()))
	d.Initializer = convertMarkup(n.child("initializer"))
	imp.common(d, n)
	imp.add(d)
	return d
}

// qualify prefixes name with the owner's qualified name when the owner is a
// scope. Members of files, groups and directories are already top-level.
func qualify(owner *model.Definition, name string) string {
	if !owner.Kind.ScopeOwner() || owner.QualifiedName == "" || name == "" {
		return name
	}
	return owner.QualifiedName + separatorFor(owner.Language) + name
}

func separatorFor(language string) string {
	switch language {
	case "Java", "C#", "Python", "D":
		return "."
	default:
		return "::"
	}
}

// structorKind recognizes constructors and destructors by comparing name
// with the last component of the class name.
func structorKind(class, name, sep string) model.FunctionKind {
	short := class
	if i := strings.LastIndex(class, sep); i >= 0 {
		short = class[i+len(sep):]
	}
	// Template classes are named with their arguments.
	if i := strings.IndexByte(short, '<'); i >= 0 {
		short = short[:i]
	}
	switch name {
	case short:
		return model.Constructor
	case "~" + short:
		return model.Destructor
	default:
		return model.PlainFunction
	}
}
