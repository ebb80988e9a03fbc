package generator

import (
	"fmt"
	"strings"

	"github.com/ivan-banha/gtkx-sub001/internal/ffitype"
	"github.com/ivan-banha/gtkx-sub001/internal/gir"
	"github.com/ivan-banha/gtkx-sub001/internal/naming"
	"github.com/ivan-banha/gtkx-sub001/internal/typemap"
)

// ctorReturn is the descriptor of constructor and factory dispatches: the
// wrapper takes ownership of the fresh instance.
var ctorReturn = ffitype.GObject{}

// instanceDesc is the receiver descriptor of class methods.
var instanceDesc = ffitype.GObject{Borrowed: true}

// allocGuard is the constructor prologue shared by every strategy: only the
// most-derived constructor in a super() chain allocates, and wrapper
// construction through getObject allocates nothing at all.
var allocGuard = []string{
	"const create = isInstantiating();",
	"setInstantiating(false);",
	"super();",
	"setInstantiating(create);",
}

// classGenerator emits one namespace's class modules.
type classGenerator struct {
	cfg    *Config
	h      *hierarchy
	mapper *typemap.Mapper
	ns     *gir.Namespace
	header fileHeader
}

// classOutput is the result of generating one class.
type classOutput struct {
	FileName string
	Model    *classModel
	Usage    *typemap.Usage
	Meta     *classMeta
}

// classMeta feeds the namespace metadata module.
type classMeta struct {
	Name          string
	CtorParams    []string
	ConstructOnly []string
	Props         []metaPropEntry
	Signals       []string
}

// Generate builds the module for one class, or returns nil for classes
// that produce no output (non-introspectable or skipped).
func (g *classGenerator) Generate(e *classEntry) *classOutput {
	c := e.Class
	if !c.Introspectable() || g.mapper.Skipped(e.Qualified()) {
		return nil
	}

	u := typemap.NewUsage()
	valueUses := map[string]bool{}
	entry := g.mapper.Registry().Resolve(e.Qualified())

	model := &classModel{
		Header: g.header,
		Lib:    g.ns.PrimaryLibrary(),
		Doc:    sanitizeDoc(c.Doc),
		Name:   entry.TransformedName,
	}
	model.Extends = g.extendsExpr(e, u, valueUses)
	model.Implements = g.implementsExprs(e, u)

	surfaced := map[string]bool{"connect": true, "disconnect": true}

	primary, factories := g.splitConstructors(c)
	model.Ctor = g.buildCtor(e, primary, u)
	for _, f := range factories {
		if m, ok := g.buildFactory(e, f, u, surfaced); ok {
			model.Factories = append(model.Factories, m)
		}
	}

	model.Methods = g.buildMethods(e, u, valueUses, surfaced)

	sg := &signalGenerator{g: g}
	var signalNames []string
	model.Connect, signalNames = sg.build(e, entry.TransformedName, u)

	out := &classOutput{
		FileName: naming.ToKebab(entry.TransformedName) + ".ts",
		Model:    model,
		Usage:    u,
		Meta: &classMeta{
			Name:    entry.TransformedName,
			Signals: signalNames,
		},
	}
	g.fillCtorMeta(out.Meta, model.Ctor)
	g.fillPropMeta(out.Meta, e, surfaced)
	out.Model.Imports = buildImports(u, valueUses, g.ns.Name, g.cfg.RuntimeImport, e.Qualified())
	return out
}

// fillCtorMeta records the surfaced constructor parameter names; the
// reconciler splits JSX props into constructor arguments and post-construct
// property sets with this.
func (g *classGenerator) fillCtorMeta(meta *classMeta, ctor *ctorModel) {
	if ctor == nil {
		return
	}
	for _, p := range ctor.Params {
		meta.CtorParams = append(meta.CtorParams, p.Name)
	}
}

// fillPropMeta records accessor pairs for the settable properties.
// Accessor names resolve against the surfaced method set so collision
// renames carry through: a property whose setter was dropped has no usable
// update path and is left out; a dropped getter maps to null.
func (g *classGenerator) fillPropMeta(meta *classMeta, e *classEntry, surfaced map[string]bool) {
	resolveAccessor := func(attr, fallback string) string {
		if attr != "" {
			if name := naming.SafeIdent(naming.ToCamel(attr)); surfaced[name] {
				return name
			}
		}
		if surfaced[fallback] {
			return fallback
		}
		return ""
	}
	for i := range e.Class.Properties {
		p := &e.Class.Properties[i]
		camel := naming.ToCamel(p.Name)
		if p.ConstructOnly {
			meta.ConstructOnly = append(meta.ConstructOnly, camel)
			continue
		}
		if !p.Writable {
			continue
		}
		setter := resolveAccessor(p.Setter, "set"+naming.ToPascal(p.Name))
		if setter == "" {
			continue
		}
		meta.Props = append(meta.Props, metaPropEntry{
			Name:   camel,
			Getter: resolveAccessor(p.Getter, "get"+naming.ToPascal(p.Name)),
			Setter: setter,
		})
	}
}

// resolvedParent walks up until an ancestor that will actually be emitted:
// registered, not skipped, and in a generated namespace.
func (g *classGenerator) resolvedParent(e *classEntry) *typemap.Entry {
	for cur := g.h.parent(e); cur != nil; cur = g.h.parent(cur) {
		if g.mapper.Skipped(cur.Qualified()) {
			continue
		}
		mt := g.mapper.MapType(gir.TypeRef{Name: cur.Qualified()}, false, nil)
		if mt.Entry != nil && mt.Entry.Kind == typemap.KindClass {
			return mt.Entry
		}
	}
	return nil
}

// extendsExpr resolves the parent expression; the hierarchy root extends
// the runtime's native-object base.
func (g *classGenerator) extendsExpr(e *classEntry, u *typemap.Usage, valueUses map[string]bool) string {
	p := g.resolvedParent(e)
	if p == nil {
		u.Helper("NativeObject")
		return "NativeObject"
	}
	u.Type(p)
	valueUses[p.Qualified()] = true
	if p.Namespace == g.ns.Name {
		return p.TransformedName
	}
	return p.Namespace + "." + p.TransformedName
}

func (g *classGenerator) implementsExprs(e *classEntry, u *typemap.Usage) []string {
	var out []string
	for _, iface := range g.h.interfacesOf(e) {
		mt := g.mapper.MapType(gir.TypeRef{Name: iface.Qualified()}, false, u)
		if mt.Entry == nil || mt.Entry.Kind != typemap.KindInterface {
			continue
		}
		out = append(out, mt.TS)
	}
	return out
}

// splitConstructors picks the primary constructor (the one named new) and
// returns the rest as factory candidates. Unusable constructors are
// filtered here.
func (g *classGenerator) splitConstructors(c *gir.Class) (*gir.Function, []*gir.Function) {
	var primary *gir.Function
	var factories []*gir.Function
	for i := range c.Constructors {
		ctor := &c.Constructors[i]
		if !ctor.Introspectable() || ctor.HasVarArgs() || g.mapper.HasUnsupportedCallback(ctor) {
			continue
		}
		if ctor.Name == "new" && primary == nil {
			primary = ctor
			continue
		}
		factories = append(factories, ctor)
	}
	return primary, factories
}

// buildCtor emits the constructor for whichever strategy applies: wrap the
// primary introspected constructor, fall back to g_object_new through the
// runtime when only a GType exists, or stay trivial for abstract classes.
func (g *classGenerator) buildCtor(e *classEntry, primary *gir.Function, u *typemap.Usage) *ctorModel {
	u.Helper("isInstantiating")
	u.Helper("setInstantiating")
	body := append([]string{}, allocGuard...)

	switch {
	case primary != nil:
		u.Helper("call")
		params, ok := g.buildParams(primary, u)
		if !ok {
			return &ctorModel{Body: body}
		}
		body = append(body, "if (!create) {", "return;", "}")
		body = append(body, fmt.Sprintf("this.id = %s as number;", callExpr(primary.CIdentifier, params.Args, ctorReturn)))
		return &ctorModel{Doc: sanitizeDoc(primary.Doc), Params: params.Models, Body: body}
	case e.Class.GLibGetType != "" && !e.Class.Abstract:
		u.Helper("createObject")
		body = append(body, "if (!create) {", "return;", "}")
		body = append(body, fmt.Sprintf("this.id = createObject(%s, %q);", libConst, e.Class.GLibGetType))
		return &ctorModel{Body: body}
	default:
		return &ctorModel{Body: body}
	}
}

func (g *classGenerator) buildFactory(e *classEntry, f *gir.Function, u *typemap.Usage, surfaced map[string]bool) (methodModel, bool) {
	name := naming.SafeIdent(naming.ToCamel(f.Name))
	if surfaced[name] {
		log.Debugf("dropping factory %s.%s: name already surfaced", e.Qualified(), f.Name)
		return methodModel{}, false
	}
	params, ok := g.buildParams(f, u)
	if !ok {
		return methodModel{}, false
	}
	surfaced[name] = true

	own := g.mapper.Registry().Resolve(e.Qualified())
	u.Helper("call")
	u.Helper("getObject")
	body := []string{
		fmt.Sprintf("const result = %s as number;", callExpr(f.CIdentifier, params.Args, ctorReturn)),
		fmt.Sprintf("return getObject(result, %s);", own.TransformedName),
	}
	return methodModel{
		Doc:      sanitizeDoc(f.Doc),
		Static:   true,
		Name:     name,
		Params:   params.Models,
		ReturnTS: own.TransformedName,
		Body:     body,
	}, true
}

// buildMethods surfaces the class's own methods, then its interfaces'
// methods, then its static functions, applying pairing, renaming and
// cycle-breaking along the way.
func (g *classGenerator) buildMethods(e *classEntry, u *typemap.Usage, valueUses map[string]bool, surfaced map[string]bool) []methodModel {
	var out []methodModel
	ancestors := g.h.ancestorMethodNames(e)
	asyncPairs, consumed := g.pairAsync(e.Class.Methods)

	for i := range e.Class.Methods {
		m := &e.Class.Methods[i]
		if !m.Introspectable() || m.HasVarArgs() || g.mapper.HasUnsupportedCallback(m) {
			continue
		}
		if consumed[m.Name] {
			continue
		}
		if pair, ok := asyncPairs[m.Name]; ok {
			if model, ok := g.buildAsyncWrapper(e, pair, u, valueUses, surfaced); ok {
				out = append(out, model)
			}
			continue
		}
		name := g.methodName(e, m, ancestors, surfaced)
		if name == "" {
			continue
		}
		if model, ok := g.buildMethod(e, m, name, instanceDesc, true, u, valueUses); ok {
			surfaced[name] = true
			out = append(out, model)
		}
	}

	for _, iface := range g.h.interfacesOf(e) {
		for i := range iface.Iface.Methods {
			m := &iface.Iface.Methods[i]
			if !m.Introspectable() || m.HasVarArgs() || g.mapper.HasUnsupportedCallback(m) {
				continue
			}
			name := naming.SafeIdent(naming.ToCamel(m.Name))
			if surfaced[name] {
				renamed := naming.ToCamel(iface.Iface.Name) + naming.ToPascal(m.Name)
				if g.ifaceMethodMatches(e, m, name) || surfaced[renamed] {
					continue
				}
				name = renamed
			}
			if model, ok := g.buildMethod(e, m, name, instanceDesc, true, u, valueUses); ok {
				surfaced[name] = true
				out = append(out, model)
			}
		}
	}

	for i := range e.Class.Functions {
		f := &e.Class.Functions[i]
		if !f.Introspectable() || f.HasVarArgs() || g.mapper.HasUnsupportedCallback(f) {
			continue
		}
		name := naming.SafeIdent(naming.ToCamel(f.Name))
		if surfaced[name] {
			continue
		}
		if model, ok := g.buildMethod(e, f, name, nil, false, u, valueUses); ok {
			model.Static = true
			surfaced[name] = true
			out = append(out, model)
		}
	}
	return out
}

// methodName resolves the surfaced name of an own method, renaming on
// collisions with differently-shaped inherited methods and skipping exact
// re-declarations. An empty result drops the method.
func (g *classGenerator) methodName(e *classEntry, m *gir.Function, ancestors map[string]bool, surfaced map[string]bool) string {
	camel := naming.SafeIdent(naming.ToCamel(m.Name))
	renamed := naming.ToCamel(e.Class.Name) + naming.ToPascal(m.Name)

	if camel == "connect" || camel == "disconnect" {
		camel = renamed
	} else if ancestors[naming.ToCamel(m.Name)] {
		if g.ancestorMethodMatches(e, m) {
			return ""
		}
		camel = renamed
	}
	if surfaced[camel] {
		if camel != renamed && !surfaced[renamed] {
			return renamed
		}
		log.Debugf("dropping method %s.%s: no collision-free name", e.Qualified(), m.Name)
		return ""
	}
	return camel
}

// ancestorMethodMatches reports whether an ancestor already surfaces a
// method with this name and an identical signature, in which case emitting
// it again is redundant.
func (g *classGenerator) ancestorMethodMatches(e *classEntry, m *gir.Function) bool {
	want := g.signatureOf(m)
	camel := naming.ToCamel(m.Name)
	for _, a := range g.h.ancestors(e) {
		for i := range a.Class.Methods {
			am := &a.Class.Methods[i]
			if naming.ToCamel(am.Name) != camel || !am.Introspectable() {
				continue
			}
			return g.signatureOf(am) == want
		}
	}
	return false
}

// ifaceMethodMatches reports whether the already-surfaced member with this
// name has the same signature as the interface method.
func (g *classGenerator) ifaceMethodMatches(e *classEntry, m *gir.Function, name string) bool {
	want := g.signatureOf(m)
	camel := naming.ToCamel(m.Name)
	for i := range e.Class.Methods {
		om := &e.Class.Methods[i]
		if naming.ToCamel(om.Name) == camel && om.Introspectable() {
			return g.signatureOf(om) == want
		}
	}
	for _, iface := range g.h.interfacesOf(e) {
		for i := range iface.Iface.Methods {
			im := &iface.Iface.Methods[i]
			if naming.ToCamel(im.Name) == camel && im.Introspectable() {
				return g.signatureOf(im) == want
			}
		}
	}
	_ = name
	return false
}

// signatureOf renders a comparable shape of a callable. Resolution here is
// a side computation: passing a nil usage keeps it from contaminating the
// current file's imports.
func (g *classGenerator) signatureOf(f *gir.Function) string {
	var parts []string
	for i := range f.Parameters {
		p := &f.Parameters[i]
		if !p.In() && p.Direction != gir.DirectionOut && p.Direction != gir.DirectionInOut {
			continue
		}
		parts = append(parts, g.mapper.MapParameter(p, nil).TSNullable())
	}
	parts = append(parts, "-> "+g.mapper.MapReturn(f.ReturnValue, nil).TSNullable())
	return strings.Join(parts, ", ")
}

// buildMethod emits one callable as a method model. instance selects
// whether a receiver argument is prepended; a nil class entry (record
// methods) wraps object returns dynamically since records sit outside the
// class import graph.
func (g *classGenerator) buildMethod(e *classEntry, m *gir.Function, name string, recvDesc ffitype.Type, instance bool, u *typemap.Usage, valueUses map[string]bool) (methodModel, bool) {
	params, ok := g.buildParams(m, u)
	if !ok {
		return methodModel{}, false
	}
	args := params.Args
	if instance {
		args = append([]string{instanceArg(recvDesc)}, args...)
	}

	ret := g.mapper.MapReturn(m.ReturnValue, u)
	plan := returnPlan{Mapped: ret, Throws: m.Throws}
	returnTS := ret.TSNullable()

	if ret.Entry != nil {
		switch ret.Entry.Kind {
		case typemap.KindClass:
			target := g.h.classes[ret.Entry.Qualified()]
			switch {
			case e == nil:
				plan.Dynamic = true
			case target != nil && g.h.cyclicReturn(e, target):
				plan.Cyclic = true
			default:
				plan.WrapIn = ret.TS
				valueUses[ret.Entry.Qualified()] = true
			}
		case typemap.KindInterface:
			plan.Dynamic = true
		case typemap.KindRecord:
			plan.WrapIn = ret.TS
			valueUses[ret.Entry.Qualified()] = true
		}
	}

	return methodModel{
		Doc:      sanitizeDoc(m.Doc),
		Name:     name,
		Params:   params.Models,
		ReturnTS: returnTS,
		Body:     buildBody(m.CIdentifier, args, plan, u),
	}, true
}

// builtParams is the shared parameter-lowering result.
type builtParams struct {
	Models []paramModel
	Args   []string
}

// buildParams lowers a callable's parameters: closure and destroy targets
// of callback parameters are dropped from the surface (the trampoline
// supplies them), out/inout parameters become Ref slots, and optionality is
// only kept on a suffix so the TypeScript signature stays legal.
func (g *classGenerator) buildParams(f *gir.Function, u *typemap.Usage) (builtParams, bool) {
	dropped := map[int]bool{}
	for i := range f.Parameters {
		p := &f.Parameters[i]
		mt := g.mapper.MapParameter(p, nil)
		if _, ok := mt.FFI.(ffitype.Callback); !ok {
			continue
		}
		if idx := p.ClosureIndex(); idx >= 0 && idx < len(f.Parameters) {
			dropped[idx] = true
		}
		if idx := p.DestroyIndex(); idx >= 0 && idx < len(f.Parameters) {
			dropped[idx] = true
		}
	}

	var out builtParams
	for i := range f.Parameters {
		if dropped[i] {
			continue
		}
		p := &f.Parameters[i]
		mt := g.mapper.MapParameter(p, u)
		name := naming.SafeIdent(naming.ToCamel(p.Name))
		isRef := false
		if _, ok := mt.FFI.(ffitype.Ref); ok {
			isRef = true
		}
		opt := !isRef && (p.Optional || p.NullableIn())
		ts := mt.TS
		if mt.Nullable && !isRef {
			ts = mt.TSNullable()
		}
		out.Models = append(out.Models, paramModel{Name: name, TS: ts, Optional: opt})
		if isRef {
			out.Args = append(out.Args, renderArg(mt.FFI, name))
		} else {
			out.Args = append(out.Args, renderArg(mt.FFI, paramValueExpr(name, mt, opt)))
		}
	}

	// optionality must be a suffix
	required := false
	for i := len(out.Models) - 1; i >= 0; i-- {
		if !out.Models[i].Optional {
			required = true
		} else if required {
			out.Models[i].Optional = false
			if !strings.HasSuffix(out.Models[i].TS, "| null") {
				out.Models[i].TS += " | null"
			}
		}
	}
	return out, true
}
