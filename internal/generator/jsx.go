package generator

import (
	"fmt"

	"github.com/ivan-banha/gtkx-sub001/internal/gir"
	"github.com/ivan-banha/gtkx-sub001/internal/naming"
	"github.com/ivan-banha/gtkx-sub001/internal/typemap"
)

// jsxGenerator derives the JSX layer of a namespace: per-widget prop
// interfaces, the intrinsic-element table, and the container facts the
// reconciler mounts children through.
type jsxGenerator struct {
	cfg    *Config
	h      *hierarchy
	mapper *typemap.Mapper
	ns     *gir.Namespace
	header fileHeader
}

// containerFacts describes how a widget accepts children. Facts cover a
// class's own API only; the reconciler inherits them along the class chain.
type containerFacts struct {
	Append   bool
	SetChild bool
	Remove   bool
	Slots    []string
}

func (f containerFacts) empty() bool {
	return !f.Append && !f.SetChild && !f.Remove && len(f.Slots) == 0
}

// widgets filters the namespace's classes down to descendants of the
// configured root widget (the root itself included when local), in
// document order.
func (j *jsxGenerator) widgets() []*classEntry {
	root := j.h.classes[j.cfg.RootWidget]
	if root == nil {
		return nil
	}
	var out []*classEntry
	for i := range j.ns.Classes {
		e := j.h.classes[j.ns.Name+"."+j.ns.Classes[i].Name]
		if e == nil || !e.Class.Introspectable() || j.mapper.Skipped(e.Qualified()) {
			continue
		}
		if e == root || j.h.isDescendantOf(e, root) {
			out = append(out, e)
		}
	}
	return out
}

// isWidgetClass reports whether a type reference resolves to the root
// widget or one of its descendants.
func (j *jsxGenerator) isWidgetClass(t gir.TypeRef) bool {
	if t.IsArray || t.Name == "" {
		return false
	}
	name := t.Name
	if _, _, qualified := naming.SplitQualified(name); !qualified {
		name = j.ns.Name + "." + name
	}
	e := j.h.classes[name]
	if e == nil {
		return false
	}
	root := j.h.classes[j.cfg.RootWidget]
	return root != nil && (e == root || j.h.isDescendantOf(e, root))
}

// analyzeContainers computes the container facts of every widget in the
// namespace. The result covers each widget that will be generated; JSX
// generation panics on a missing entry since that indicates the two passes
// disagreed about the widget set.
func (j *jsxGenerator) analyzeContainers(widgets []*classEntry) map[string]containerFacts {
	facts := map[string]containerFacts{}
	for _, e := range widgets {
		f := containerFacts{}
		for i := range e.Class.Methods {
			m := &e.Class.Methods[i]
			if !m.Introspectable() || len(m.Parameters) != 1 || !m.Parameters[0].In() {
				continue
			}
			if !j.isWidgetClass(m.Parameters[0].TypeRef()) {
				continue
			}
			switch m.Name {
			case "append":
				f.Append = true
			case "set_child":
				f.SetChild = true
			case "remove":
				f.Remove = true
			}
		}
		for i := range e.Class.Properties {
			p := &e.Class.Properties[i]
			if !p.Writable || p.Name == "child" || !j.isWidgetClass(p.TypeRef()) {
				continue
			}
			f.Slots = append(f.Slots, naming.ToCamel(p.Name))
		}
		facts[e.Qualified()] = f
	}
	return facts
}

// Generate builds the JSX module model plus the container facts destined
// for the metadata module.
func (j *jsxGenerator) Generate() (*jsxModel, map[string]containerFacts, *typemap.Usage) {
	widgets := j.widgets()
	if len(widgets) == 0 {
		return nil, nil, nil
	}
	facts := j.analyzeContainers(widgets)
	u := typemap.NewUsage()

	excluded := map[string]bool{}
	for _, name := range j.cfg.BaseWidgetProps {
		excluded[name] = true
	}

	model := &jsxModel{Header: j.header}
	sg := &signalGenerator{g: &classGenerator{cfg: j.cfg, h: j.h, mapper: j.mapper, ns: j.ns, header: j.header}}
	for _, e := range widgets {
		f, ok := facts[e.Qualified()]
		if !ok {
			panic(fmt.Sprintf("no container analysis for %s", e.Qualified()))
		}
		entry := j.mapper.Registry().Resolve(e.Qualified())
		iface := propsInterface{
			Name:    propsInterfaceName(e.NS.Name, entry.TransformedName),
			Extends: j.parentPropsExpr(e, u),
		}

		for i := range e.Class.Properties {
			p := &e.Class.Properties[i]
			camel := naming.ToCamel(p.Name)
			if excluded[camel] || (!p.Writable && !p.ConstructOnly) {
				continue
			}
			// widget-typed props are child slots: they take elements,
			// not instances
			ts := "unknown"
			if !j.isWidgetClass(p.TypeRef()) {
				ts = j.mapper.MapType(p.TypeRef(), false, u).TSNullable()
			}
			iface.Props = append(iface.Props, propEntry{
				Doc:  sanitizeDoc(p.Doc),
				Name: camel,
				TS:   ts,
			})
		}

		own := append([]gir.Signal{}, e.Class.Signals...)
		for _, ifc := range j.h.interfacesOf(e) {
			own = append(own, ifc.Iface.Signals...)
		}
		seen := map[string]bool{}
		for i := range own {
			sig := &own[i]
			if seen[sig.Name] {
				continue
			}
			seen[sig.Name] = true
			name := "on" + naming.ToPascal(sig.Name)
			if excluded[name] {
				continue
			}
			u.Type(entry)
			iface.Props = append(iface.Props, propEntry{
				Doc:  sanitizeDoc(sig.Doc),
				Name: name,
				TS:   sg.handlerType(entry.TransformedName, sig, u),
			})
		}

		if f.Append || f.SetChild {
			iface.Props = append(iface.Props, propEntry{Name: "children", TS: "unknown"})
		}

		model.Interfaces = append(model.Interfaces, iface)
		if len(f.Slots) > 0 {
			model.SlotTypes = append(model.SlotTypes, slotUnion{
				Name:  naming.ToPascal(e.NS.Name) + entry.TransformedName + "Slot",
				Slots: f.Slots,
			})
		}
		if !e.Class.Abstract {
			model.Intrinsics = append(model.Intrinsics, intrinsicEntry{
				Tag:   naming.ToCamel(e.NS.Name + "." + entry.TransformedName),
				Props: iface.Name,
			})
		}
	}
	return model, facts, u
}

// parentPropsExpr names the props interface the widget's interface extends,
// or empty at the widget root.
func (j *jsxGenerator) parentPropsExpr(e *classEntry, u *typemap.Usage) string {
	root := j.h.classes[j.cfg.RootWidget]
	if e == root {
		return ""
	}
	for cur := j.h.parent(e); cur != nil; cur = j.h.parent(cur) {
		if j.mapper.Skipped(cur.Qualified()) {
			continue
		}
		if cur != root && !j.h.isDescendantOf(cur, root) {
			break
		}
		mt := j.mapper.MapType(gir.TypeRef{Name: cur.Qualified()}, false, nil)
		if mt.Entry == nil {
			continue
		}
		name := propsInterfaceName(mt.Entry.Namespace, mt.Entry.TransformedName)
		if mt.Entry.Namespace != j.ns.Name {
			u.Type(mt.Entry)
			return mt.Entry.Namespace + "." + name
		}
		return name
	}
	return ""
}

func propsInterfaceName(namespace, transformed string) string {
	return naming.ToPascal(namespace) + transformed + "Props"
}
