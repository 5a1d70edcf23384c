package graph

import (
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/phobologic/doxyfront/internal/markup"
	"github.com/phobologic/doxyfront/internal/model"
	"github.com/phobologic/doxyfront/internal/ref"
)

// Context is a set of scopes whose names are left out when a name is
// qualified, typically the page being rendered and its ancestors.
type Context map[ref.Handle]struct{}

// NewContext returns a context eliding hs.
func NewContext(hs ...ref.Handle) Context {
	c := make(Context, len(hs))
	for _, h := range hs {
		c[h] = struct{}{}
	}
	return c
}

// PageContext returns the context for rendering inside h's page: h itself
// and all of its scope ancestors.
func (g *Graph) PageContext(h ref.Handle) Context {
	return NewContext(append(g.ScopeAncestors(h), h)...)
}

func (c Context) has(h ref.Handle) bool {
	_, ok := c[h]
	return ok
}

func kindClass(d *model.Definition) string {
	return strings.ReplaceAll(d.KindName(), " ", "-")
}

// visibleScopes returns the scope ancestors of h not elided by ctx, outermost
// first.
func (g *Graph) visibleScopes(h ref.Handle, ctx Context) []ref.Handle {
	var out []ref.Handle
	for _, a := range g.ScopeAncestors(h) {
		if ctx.has(a) {
			break
		}
		out = append(out, a)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// QualifiedNamePlaintext returns h's name prefixed by every scope not in ctx.
func (g *Graph) QualifiedNamePlaintext(h ref.Handle, ctx Context) string {
	d := g.Def(h)
	if d == nil {
		return ""
	}
	var b strings.Builder
	for _, a := range g.visibleScopes(h, ctx) {
		b.WriteString(g.defs[a].Name)
		b.WriteString("::")
	}
	b.WriteString(d.Name)
	return b.String()
}

func (g *Graph) anchor(h ref.Handle) string {
	d := g.defs[h]
	return fmt.Sprintf(`<a class="ref ref-%s" href="%s">%s</a>`,
		kindClass(d), html.EscapeString(g.URL(h)), html.EscapeString(d.Name))
}

// QualifiedNameHTML is QualifiedNamePlaintext with every component linked.
func (g *Graph) QualifiedNameHTML(h ref.Handle, ctx Context) string {
	if g.Def(h) == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<span class="ref">`)
	for _, a := range g.visibleScopes(h, ctx) {
		b.WriteString(g.anchor(a))
		b.WriteString(`<span class="scope">::</span>`)
	}
	b.WriteString(g.anchor(h))
	b.WriteString("</span>")
	return b.String()
}

// PathPlaintext returns the path of a directory or file. A short path is the
// name alone.
func (g *Graph) PathPlaintext(h ref.Handle, short bool) string {
	d := g.Def(h)
	if d == nil {
		return ""
	}
	parts := []string{d.Name}
	if !short {
		for _, a := range g.FileAncestors(h) {
			parts = append([]string{g.defs[a].Name}, parts...)
		}
	}
	return strings.Join(parts, g.opts.PathSeparator)
}

// PathHTML is PathPlaintext with every component linked.
func (g *Graph) PathHTML(h ref.Handle, short bool) string {
	if g.Def(h) == nil {
		return ""
	}
	parts := []string{g.anchor(h)}
	if !short {
		for _, a := range g.FileAncestors(h) {
			parts = append([]string{g.anchor(a)}, parts...)
		}
	}
	return `<span class="ref">` + strings.Join(parts, html.EscapeString(g.opts.PathSeparator)) + "</span>"
}

type linker struct {
	g   *Graph
	ctx Context
}

func (l linker) LinkHTML(target ref.Handle) string {
	d := l.g.Def(target)
	if d == nil {
		return ""
	}
	if d.Kind.IsPath() {
		return l.g.PathHTML(target, true)
	}
	return l.g.QualifiedNameHTML(target, l.ctx)
}

// Linker returns a markup.Linker rendering references relative to ctx.
func (g *Graph) Linker(ctx Context) markup.Linker {
	return linker{g: g, ctx: ctx}
}

// MarkupHTML renders m with references qualified relative to ctx.
func (g *Graph) MarkupHTML(m *markup.Markup, ctx Context) string {
	return m.HTML(g.Linker(ctx))
}

func attrHTML(a model.Attribute) string {
	return fmt.Sprintf(`<span class="attrib attrib-%s">%s</span>`, a, html.EscapeString(a.Text()))
}

func (g *Graph) paramHTML(p model.Param, ctx Context) string {
	var b strings.Builder
	if !p.Type.Empty() {
		fmt.Fprintf(&b, `<span class="type param-type">%s</span>`, g.MarkupHTML(p.Type, ctx))
		if p.Name != "" {
			b.WriteString(" ")
		}
	}
	if p.Name != "" {
		fmt.Fprintf(&b, `<span class="param-name">%s</span>`, html.EscapeString(p.Name))
	}
	if !p.Default.Empty() {
		fmt.Fprintf(&b, ` = <span class="param-default">%s</span>`, g.MarkupHTML(p.Default, ctx))
	}
	return b.String()
}

func (g *Graph) paramsHTML(params []model.Param, ctx Context) string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = g.paramHTML(p, ctx)
	}
	return strings.Join(out, ", ")
}

func (g *Graph) templateHTML(params []model.Param, ctx Context) string {
	if len(params) == 0 {
		return ""
	}
	return fmt.Sprintf(`<span class="template">template&lt;%s&gt;</span> `, g.paramsHTML(params, ctx))
}

// SignaturePlaintext renders the declaration of h as text. Names are
// qualified relative to ctx unless fullyQualified is set.
func (g *Graph) SignaturePlaintext(h ref.Handle, ctx Context, fullyQualified bool) string {
	d := g.Def(h)
	if d == nil {
		return ""
	}
	if fullyQualified {
		ctx = nil
	}
	before, after := declAttributes(d)
	var b strings.Builder
	writeBefore := func() {
		for _, a := range before {
			b.WriteString(a.Text())
			b.WriteString(" ")
		}
	}
	writeAfter := func() {
		for _, a := range after {
			b.WriteString(" ")
			b.WriteString(a.Text())
		}
	}
	name := g.QualifiedNamePlaintext(h, ctx)

	switch d.Kind {
	case model.Macro:
		b.WriteString("#define ")
		b.WriteString(d.Name)
		if len(d.MacroParams) > 0 {
			fmt.Fprintf(&b, "(%s)", strings.Join(d.MacroParams, ", "))
		}
	case model.Typedef:
		fmt.Fprintf(&b, "using %s = %s", name, d.Type.Plaintext())
		if len(d.TemplateParams) > 0 {
			b.WriteString("<>")
		}
	case model.Function:
		writeBefore()
		if !d.Type.Empty() {
			b.WriteString(d.Type.Plaintext())
			b.WriteString(" ")
		}
		b.WriteString(name)
		if len(d.TemplateParams) > 0 {
			b.WriteString("<>")
		}
		types := make([]string, len(d.Params))
		for i, p := range d.Params {
			types[i] = p.Type.Plaintext()
		}
		fmt.Fprintf(&b, "(%s)", strings.Join(types, ", "))
		writeAfter()
	case model.Variable, model.Property:
		writeBefore()
		if !d.Type.Empty() {
			b.WriteString(d.Type.Plaintext())
			b.WriteString(" ")
		}
		b.WriteString(name)
		if !d.Initializer.Empty() {
			b.WriteString(" ")
			b.WriteString(initializerPrefix(d.Initializer) + d.Initializer.Plaintext())
		}
		writeAfter()
	case model.EnumValue:
		b.WriteString(name)
		if !d.Initializer.Empty() {
			b.WriteString(" ")
			b.WriteString(initializerPrefix(d.Initializer) + d.Initializer.Plaintext())
		}
	case model.Enum:
		b.WriteString(enumKeyword(d))
		b.WriteString(" ")
		b.WriteString(name)
		if !d.Type.Empty() {
			b.WriteString(": ")
			b.WriteString(d.Type.Plaintext())
		}
	case model.Class:
		writeBefore()
		fmt.Fprintf(&b, "%s %s", d.KindName(), name)
		if len(d.TemplateParams) > 0 {
			b.WriteString("<>")
		}
		writeAfter()
	case model.Directory, model.File:
		fmt.Fprintf(&b, "%s %s", d.KindName(), g.PathPlaintext(h, !fullyQualified))
	case model.Group, model.Page:
		fmt.Fprintf(&b, "%s %s", d.KindName(), titleOrName(d))
	default:
		fmt.Fprintf(&b, "%s %s", d.KindName(), name)
	}
	return b.String()
}

// SignatureHTML renders the declaration of h with every reference linked.
func (g *Graph) SignatureHTML(h ref.Handle, ctx Context, fullyQualified bool) string {
	d := g.Def(h)
	if d == nil {
		return ""
	}
	if fullyQualified {
		ctx = nil
	}
	before, after := declAttributes(d)
	var b strings.Builder
	writeBefore := func() {
		for _, a := range before {
			b.WriteString(attrHTML(a))
			b.WriteString(" ")
		}
	}
	writeAfter := func() {
		for _, a := range after {
			b.WriteString(" ")
			b.WriteString(attrHTML(a))
		}
	}
	name := g.QualifiedNameHTML(h, ctx)

	switch d.Kind {
	case model.Macro:
		fmt.Fprintf(&b, `<span class="preprocessor">#define</span> %s`, g.anchor(h))
		if len(d.MacroParams) > 0 {
			params := make([]string, len(d.MacroParams))
			for i, p := range d.MacroParams {
				params[i] = fmt.Sprintf(`<span class="param macro-param">%s</span>`, html.EscapeString(p))
			}
			fmt.Fprintf(&b, "(%s)", strings.Join(params, ", "))
		}
	case model.Typedef:
		b.WriteString(g.templateHTML(d.TemplateParams, ctx))
		fmt.Fprintf(&b, "using %s = %s", name, g.MarkupHTML(d.Type, ctx))
	case model.Function:
		b.WriteString(g.templateHTML(d.TemplateParams, ctx))
		writeBefore()
		if !d.Type.Empty() {
			fmt.Fprintf(&b, `<span class="type return-type">%s</span> `, g.MarkupHTML(d.Type, ctx))
		}
		fmt.Fprintf(&b, "%s(%s)", name, g.paramsHTML(d.Params, ctx))
		writeAfter()
	case model.Variable, model.Property:
		writeBefore()
		if !d.Type.Empty() {
			fmt.Fprintf(&b, `<span class="type">%s</span> `, g.MarkupHTML(d.Type, ctx))
		}
		b.WriteString(name)
		if !d.Initializer.Empty() {
			fmt.Fprintf(&b, ` %s<span class="initializer">%s</span>`, initializerPrefix(d.Initializer), g.MarkupHTML(d.Initializer, ctx))
		}
		writeAfter()
	case model.EnumValue:
		b.WriteString(name)
		if !d.Initializer.Empty() {
			fmt.Fprintf(&b, ` %s<span class="initializer">%s</span>`, initializerPrefix(d.Initializer), g.MarkupHTML(d.Initializer, ctx))
		}
	case model.Enum:
		fmt.Fprintf(&b, "%s %s", enumKeyword(d), name)
		if !d.Type.Empty() {
			fmt.Fprintf(&b, ": %s", g.MarkupHTML(d.Type, ctx))
		}
	case model.Class:
		b.WriteString(g.templateHTML(d.TemplateParams, ctx))
		writeBefore()
		fmt.Fprintf(&b, "%s %s", d.KindName(), name)
		writeAfter()
	case model.Directory, model.File:
		fmt.Fprintf(&b, "%s %s", d.KindName(), g.PathHTML(h, !fullyQualified))
	case model.Group, model.Page:
		fmt.Fprintf(&b, "%s %s", d.KindName(), html.EscapeString(titleOrName(d)))
	default:
		fmt.Fprintf(&b, "%s %s", d.KindName(), name)
	}
	return b.String()
}

// declAttributes splits the attributes of d for its declaration. An abstract
// class has no pure specifier to write.
func declAttributes(d *model.Definition) (before, after []model.Attribute) {
	before, after = d.Attributes.Ordered()
	if d.Kind == model.Class {
		after = slices.DeleteFunc(after, func(a model.Attribute) bool { return a == model.Abstract })
	}
	return before, after
}

func enumKeyword(d *model.Definition) string {
	if d.Strong {
		return "enum class"
	}
	return "enum"
}

// initializerPrefix returns the "= " Doxygen leaves out of some initializers.
func initializerPrefix(m *markup.Markup) string {
	s := m.Plaintext()
	if strings.HasPrefix(s, "=") || strings.HasPrefix(s, "{") {
		return ""
	}
	return "= "
}

func titleOrName(d *model.Definition) string {
	if d.Title != "" {
		return d.Title
	}
	return d.Name
}
