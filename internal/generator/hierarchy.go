package generator

import (
	"github.com/ivan-banha/gtkx-sub001/internal/gir"
	"github.com/ivan-banha/gtkx-sub001/internal/naming"
)

// hierarchy indexes every class and interface across the loaded namespaces
// and answers the structural questions generation keeps asking: ancestor
// chains, descendant checks, interface resolution and the value-import
// cycles that force cast-based returns.
type hierarchy struct {
	classes    map[string]*classEntry
	interfaces map[string]*ifaceEntry
}

// classEntry pairs a class with its owning namespace.
type classEntry struct {
	NS    *gir.Namespace
	Class *gir.Class
}

func (e *classEntry) Qualified() string { return e.NS.Name + "." + e.Class.Name }

// ifaceEntry pairs an interface with its owning namespace.
type ifaceEntry struct {
	NS    *gir.Namespace
	Iface *gir.Interface
}

func (e *ifaceEntry) Qualified() string { return e.NS.Name + "." + e.Iface.Name }

func buildHierarchy(set *gir.Set) *hierarchy {
	h := &hierarchy{
		classes:    map[string]*classEntry{},
		interfaces: map[string]*ifaceEntry{},
	}
	for _, ns := range set.Namespaces {
		for i := range ns.Classes {
			e := &classEntry{NS: ns, Class: &ns.Classes[i]}
			h.classes[e.Qualified()] = e
		}
		for i := range ns.Interfaces {
			e := &ifaceEntry{NS: ns, Iface: &ns.Interfaces[i]}
			h.interfaces[e.Qualified()] = e
		}
	}
	return h
}

// resolveClass resolves a possibly-unqualified parent reference relative to
// the given namespace.
func (h *hierarchy) resolveClass(name, namespace string) *classEntry {
	if _, _, qualified := naming.SplitQualified(name); qualified {
		return h.classes[name]
	}
	return h.classes[namespace+"."+name]
}

// resolveInterface resolves an implements reference.
func (h *hierarchy) resolveInterface(name, namespace string) *ifaceEntry {
	if _, _, qualified := naming.SplitQualified(name); qualified {
		return h.interfaces[name]
	}
	return h.interfaces[namespace+"."+name]
}

// parent returns the resolved parent entry, or nil at the root (or when
// the parent namespace was not loaded).
func (h *hierarchy) parent(e *classEntry) *classEntry {
	if e.Class.Parent == "" {
		return nil
	}
	p := h.resolveClass(e.Class.Parent, e.NS.Name)
	if p == e {
		return nil
	}
	return p
}

// ancestors returns the full parent chain, nearest first, crossing
// namespace boundaries. A visited guard terminates malformed parent loops.
func (h *hierarchy) ancestors(e *classEntry) []*classEntry {
	var chain []*classEntry
	seen := map[string]bool{e.Qualified(): true}
	for cur := h.parent(e); cur != nil; cur = h.parent(cur) {
		if seen[cur.Qualified()] {
			break
		}
		seen[cur.Qualified()] = true
		chain = append(chain, cur)
	}
	return chain
}

// signalAncestors returns the parent chain restricted to the class's own
// namespace, plus whether the chain was cut by a namespace boundary. Signal
// collection cannot enumerate signals of unloaded foreign ancestors, so a
// cut chain forces the generic connect surface.
func (h *hierarchy) signalAncestors(e *classEntry) (chain []*classEntry, crossesNS bool) {
	seen := map[string]bool{e.Qualified(): true}
	for cur := e; ; {
		if cur.Class.Parent == "" {
			return chain, false
		}
		next := h.resolveClass(cur.Class.Parent, cur.NS.Name)
		if next == nil || next.NS.Name != e.NS.Name {
			return chain, true
		}
		if seen[next.Qualified()] {
			return chain, false
		}
		seen[next.Qualified()] = true
		chain = append(chain, next)
		cur = next
	}
}

// isDescendantOf reports whether e descends from ancestor.
func (h *hierarchy) isDescendantOf(e, ancestor *classEntry) bool {
	for _, a := range h.ancestors(e) {
		if a == ancestor {
			return true
		}
	}
	return false
}

// interfacesOf resolves the implements clauses of e's class, dropping
// references to interfaces in unloaded namespaces.
func (h *hierarchy) interfacesOf(e *classEntry) []*ifaceEntry {
	var out []*ifaceEntry
	for _, impl := range e.Class.Implements {
		if iface := h.resolveInterface(impl.Name, e.NS.Name); iface != nil {
			out = append(out, iface)
		}
	}
	return out
}

// ancestorMethodNames collects the camel names every ancestor surfaces,
// used for collision renaming.
func (h *hierarchy) ancestorMethodNames(e *classEntry) map[string]bool {
	names := map[string]bool{}
	for _, a := range h.ancestors(e) {
		for i := range a.Class.Methods {
			m := &a.Class.Methods[i]
			if m.Introspectable() && !m.HasVarArgs() {
				names[naming.ToCamel(m.Name)] = true
			}
		}
		for _, iface := range h.interfacesOf(a) {
			for i := range iface.Iface.Methods {
				m := &iface.Iface.Methods[i]
				if m.Introspectable() && !m.HasVarArgs() {
					names[naming.ToCamel(m.Name)] = true
				}
			}
		}
	}
	return names
}

// callableClassRefs walks every type reference of a callable, including
// array elements, and feeds the qualified resolution of class references
// to visit.
func (h *hierarchy) callableClassRefs(ns string, f *gir.Function, visit func(string)) {
	ref := func(t gir.TypeRef) {
		for cur := &t; cur != nil; cur = cur.Element {
			if cur.Name == "" {
				continue
			}
			name := cur.Name
			if _, _, qualified := naming.SplitQualified(name); !qualified {
				name = ns + "." + name
			}
			if _, ok := h.classes[name]; ok {
				visit(name)
			}
		}
	}
	for i := range f.Parameters {
		ref(f.Parameters[i].TypeRef())
	}
	if f.ReturnValue != nil {
		ref(f.ReturnValue.TypeRef())
	}
}

// referencesClass reports whether e's surface (extends chain plus callable
// signatures) mentions the target class.
func (h *hierarchy) referencesClass(e *classEntry, target string) bool {
	if p := h.parent(e); p != nil && p.Qualified() == target {
		return true
	}
	found := false
	visit := func(name string) {
		if name == target {
			found = true
		}
	}
	for i := range e.Class.Methods {
		h.callableClassRefs(e.NS.Name, &e.Class.Methods[i], visit)
	}
	for i := range e.Class.Constructors {
		h.callableClassRefs(e.NS.Name, &e.Class.Constructors[i], visit)
	}
	for i := range e.Class.Functions {
		h.callableClassRefs(e.NS.Name, &e.Class.Functions[i], visit)
	}
	for i := range e.Class.Properties {
		p := &e.Class.Properties[i]
		for cur := p.TypeRef(); ; {
			if cur.Name != "" {
				name := cur.Name
				if _, _, q := naming.SplitQualified(name); !q {
					name = e.NS.Name + "." + name
				}
				if name == target {
					found = true
				}
			}
			if cur.Element == nil {
				break
			}
			cur = *cur.Element
		}
	}
	return found
}

// cyclicReturn reports whether emitting a value import of ret from owner
// would close an import cycle: ret descends from owner (its extends chain
// imports owner's module), or ret or one of its ancestors references owner
// back. Returning the class itself or one of its own ancestors is never
// cyclic: the extends chain already carries that import.
func (h *hierarchy) cyclicReturn(owner, ret *classEntry) bool {
	if owner == ret {
		return false
	}
	if h.isDescendantOf(owner, ret) {
		return false
	}
	if h.isDescendantOf(ret, owner) {
		return true
	}
	if h.referencesClass(ret, owner.Qualified()) {
		return true
	}
	for _, a := range h.ancestors(ret) {
		if h.referencesClass(a, owner.Qualified()) {
			return true
		}
	}
	return false
}
