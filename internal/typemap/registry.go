// Package typemap translates GIR type references into binding-surface type
// expressions paired with the marshaling descriptors the runtime dispatcher
// consumes. The Registry indexes every registered type across all loaded
// namespaces; the Mapper resolves individual references against it.
package typemap

import (
	"github.com/ivan-banha/gtkx-sub001/internal/gir"
	"github.com/ivan-banha/gtkx-sub001/internal/naming"
)

// Kind classifies a registry entry.
type Kind uint8

const (
	KindNone Kind = iota
	KindClass
	KindInterface
	KindEnum
	KindRecord
	KindCallback
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindRecord:
		return "record"
	case KindCallback:
		return "callback"
	}
	return "none"
}

// Entry is one registered type. TransformedName is the binding-surface
// spelling; GLibTypeName/SharedLibrary/GetTypeFn carry what boxed and
// gobject marshaling need at runtime.
type Entry struct {
	Kind            Kind
	Namespace       string
	Name            string
	TransformedName string
	GLibTypeName    string
	SharedLibrary   string
	GetTypeFn       string
}

// Qualified returns the "Namespace.Name" key of the entry.
func (e *Entry) Qualified() string { return e.Namespace + "." + e.Name }

// Registry maps qualified type names to entries. Registration order is
// retained: the unqualified fallback scan in ResolveIn walks entries in
// insertion order, so resolution is deterministic for a fixed load order.
type Registry struct {
	byName        map[string]*Entry
	order         []*Entry
	byTransformed map[string]*Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:        map[string]*Entry{},
		byTransformed: map[string]*Entry{},
	}
}

func (r *Registry) register(e *Entry) *Entry {
	key := e.Qualified()
	if existing, ok := r.byName[key]; ok {
		return existing
	}
	e.TransformedName = naming.NormalizeClassName(e.Namespace, e.Name, func(candidate string) bool {
		claimed, ok := r.byTransformed[candidate]
		return ok && claimed.Namespace != e.Namespace
	})
	if _, ok := r.byTransformed[e.TransformedName]; !ok {
		r.byTransformed[e.TransformedName] = e
	}
	r.byName[key] = e
	r.order = append(r.order, e)
	return e
}

// RegisterClass records a class. Registration is idempotent: a second call
// for the same qualified name returns the original entry untouched.
func (r *Registry) RegisterClass(namespace, name, glibTypeName, sharedLibrary, getTypeFn string) *Entry {
	return r.register(&Entry{
		Kind:          KindClass,
		Namespace:     namespace,
		Name:          name,
		GLibTypeName:  glibTypeName,
		SharedLibrary: sharedLibrary,
		GetTypeFn:     getTypeFn,
	})
}

// RegisterInterface records an interface.
func (r *Registry) RegisterInterface(namespace, name, glibTypeName, sharedLibrary, getTypeFn string) *Entry {
	return r.register(&Entry{
		Kind:          KindInterface,
		Namespace:     namespace,
		Name:          name,
		GLibTypeName:  glibTypeName,
		SharedLibrary: sharedLibrary,
		GetTypeFn:     getTypeFn,
	})
}

// RegisterEnum records an enumeration or bitfield.
func (r *Registry) RegisterEnum(namespace, name string) *Entry {
	return r.register(&Entry{Kind: KindEnum, Namespace: namespace, Name: name})
}

// RegisterRecord records a boxed record.
func (r *Registry) RegisterRecord(namespace, name, glibTypeName, sharedLibrary, getTypeFn string) *Entry {
	return r.register(&Entry{
		Kind:          KindRecord,
		Namespace:     namespace,
		Name:          name,
		GLibTypeName:  glibTypeName,
		SharedLibrary: sharedLibrary,
		GetTypeFn:     getTypeFn,
	})
}

// RegisterCallback records a named callback type.
func (r *Registry) RegisterCallback(namespace, name string) *Entry {
	return r.register(&Entry{Kind: KindCallback, Namespace: namespace, Name: name})
}

// Resolve looks up a fully qualified "Namespace.Name", returning nil on a
// miss.
func (r *Registry) Resolve(qualified string) *Entry {
	return r.byName[qualified]
}

// ResolveIn resolves name relative to namespace. A qualified name is looked
// up directly. An unqualified name prefers the current namespace, then
// falls back to scanning all entries in registration order and taking the
// first whose original or transformed name matches.
func (r *Registry) ResolveIn(name, namespace string) *Entry {
	if _, _, qualified := naming.SplitQualified(name); qualified {
		return r.byName[name]
	}
	if e, ok := r.byName[namespace+"."+name]; ok {
		return e
	}
	for _, e := range r.order {
		if e.Name == name || e.TransformedName == name {
			return e
		}
	}
	return nil
}

// Entries returns all registrations in insertion order.
func (r *Registry) Entries() []*Entry { return r.order }

// FromNamespaces builds a registry over every loaded namespace, in load
// order. Only boxed records are registered; disguised and opaque records
// cannot cross the marshaling boundary and stay unresolvable on purpose.
func FromNamespaces(namespaces []*gir.Namespace) *Registry {
	r := NewRegistry()
	for _, ns := range namespaces {
		lib := ns.PrimaryLibrary()
		for i := range ns.Classes {
			c := &ns.Classes[i]
			r.RegisterClass(ns.Name, c.Name, c.GLibTypeName, lib, c.GLibGetType)
		}
		for i := range ns.Interfaces {
			iface := &ns.Interfaces[i]
			r.RegisterInterface(ns.Name, iface.Name, iface.GLibTypeName, lib, iface.GLibGetType)
		}
		for i := range ns.Enumerations {
			r.RegisterEnum(ns.Name, ns.Enumerations[i].Name)
		}
		for i := range ns.Bitfields {
			r.RegisterEnum(ns.Name, ns.Bitfields[i].Name)
		}
		for i := range ns.Records {
			rec := &ns.Records[i]
			if rec.Boxed() {
				r.RegisterRecord(ns.Name, rec.Name, rec.GLibTypeName, lib, rec.GLibGetType)
			}
		}
		for i := range ns.Callbacks {
			r.RegisterCallback(ns.Name, ns.Callbacks[i].Name)
		}
	}
	return r
}
