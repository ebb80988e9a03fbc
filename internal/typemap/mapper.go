package typemap

import (
	"strings"

	"github.com/ivan-banha/gtkx-sub001/internal/ffitype"
	"github.com/ivan-banha/gtkx-sub001/internal/gir"
	"github.com/ivan-banha/gtkx-sub001/internal/naming"
)

// genericCallbackTS is the surface type for callbacks the mapper has no
// precise shape for.
const genericCallbackTS = "(...args: unknown[]) => unknown"

// cairo-gobject is the one library the mapper must know out-of-band: the
// draw-func trampoline passes a cairo context whose GType lives there, and
// cairo's own introspection data is too sparse to resolve it from.
const (
	cairoGObjectLib       = "libcairo-gobject.so.2"
	cairoContextTypeName  = "CairoContext"
	cairoContextGetTypeFn = "cairo_gobject_context_get_type"
)

// MappedType is the mapper's answer for one type reference: the generated
// surface type expression, the marshaling descriptor, and where resolution
// landed in the registry (nil for scalars and degradations).
type MappedType struct {
	TS       string
	FFI      ffitype.Type
	Entry    *Entry
	Nullable bool
}

// TSNullable renders the surface type with its null union when the source
// annotation allows null.
func (m MappedType) TSNullable() string {
	if m.Nullable {
		return m.TS + " | null"
	}
	return m.TS
}

// Mapper resolves type references for one namespace being generated.
// Resolution walks, in order: scalar tables, the registry within the
// current namespace, the same-pass local tables, qualified registry lookup
// (with its registration-order fallback scan), and finally the raw C type.
type Mapper struct {
	registry     *Registry
	namespace    string
	skipped      map[string]bool
	generated    map[string]bool
	localEnums   map[string]*Entry
	localRecords map[string]*Entry
}

// NewMapper builds a mapper for the given namespace.
func NewMapper(registry *Registry, namespace string) *Mapper {
	return &Mapper{
		registry:     registry,
		namespace:    namespace,
		skipped:      map[string]bool{},
		localEnums:   map[string]*Entry{},
		localRecords: map[string]*Entry{},
	}
}

// SetGenerated restricts cross-namespace resolution to the namespaces this
// run emits modules for; references into other namespaces degrade instead
// of producing imports of files that will not exist. An empty set (the
// default) allows everything.
func (m *Mapper) SetGenerated(namespaces []string) {
	m.generated = map[string]bool{}
	for _, ns := range namespaces {
		m.generated[ns] = true
	}
}

// resolvable applies the skip set and the generated-namespace restriction.
func (m *Mapper) resolvable(e *Entry) bool {
	if e == nil || m.skipped[e.Qualified()] {
		return false
	}
	if m.generated != nil && e.Namespace != m.namespace && !m.generated[e.Namespace] {
		return false
	}
	return true
}

// Registry exposes the backing registry.
func (m *Mapper) Registry() *Registry { return m.registry }

// Namespace returns the namespace this mapper generates for.
func (m *Mapper) Namespace() string { return m.namespace }

// MarkSkipped excludes a qualified class name from resolution; references
// to it degrade to opaque pointers instead of naming a class that was never
// emitted.
func (m *Mapper) MarkSkipped(qualified string) { m.skipped[qualified] = true }

// Skipped reports whether the qualified name was marked skipped.
func (m *Mapper) Skipped(qualified string) bool { return m.skipped[qualified] }

// RegisterLocalEnum records an enum emitted earlier in this generation
// pass; unqualified references hit it before the shared registry scan.
func (m *Mapper) RegisterLocalEnum(name string) {
	m.localEnums[name] = &Entry{
		Kind:            KindEnum,
		Namespace:       m.namespace,
		Name:            name,
		TransformedName: naming.ToPascal(name),
	}
}

// RegisterLocalRecord records a boxed record emitted earlier in this pass.
func (m *Mapper) RegisterLocalRecord(name string, e *Entry) {
	m.localRecords[name] = e
}

// MapType resolves a normalized type reference. isReturn marks return
// position, which sets the borrowed flag on gobject/boxed descriptors: the
// runtime wraps returned handles without assuming ownership.
func (m *Mapper) MapType(t gir.TypeRef, isReturn bool, u *Usage) MappedType {
	if t.IsArray {
		return m.mapArray(t, isReturn, u)
	}
	if t.Name == "" {
		return m.mapCType(t.CType)
	}

	if t.Name == "utf8" || t.Name == "filename" {
		return MappedType{
			TS:       "string",
			FFI:      ffitype.String{Borrowed: t.Transfer == gir.TransferNone},
			Nullable: t.Nullable,
		}
	}
	if t.Name == "GLib.Variant" || (m.namespace == "GLib" && t.Name == "Variant") {
		return MappedType{
			TS:       "unknown",
			FFI:      ffitype.GVariant{Borrowed: isReturn},
			Nullable: t.Nullable,
		}
	}
	if b, ok := basicTypes[t.Name]; ok {
		return MappedType{TS: b.ts, FFI: b.ffi, Nullable: t.Nullable}
	}
	if b, ok := namespaceAliases[t.Name]; ok {
		return MappedType{TS: b.ts, FFI: b.ffi, Nullable: t.Nullable}
	}

	if e := m.resolve(t.Name); e != nil {
		return m.mapEntry(e, t, isReturn, u)
	}
	if e := m.resolveExcluded(t.Name); e != nil {
		return MappedType{TS: "unknown", FFI: ffitype.GObject{Borrowed: isReturn}, Nullable: t.Nullable}
	}
	degraded := m.mapCType(t.CType)
	degraded.Nullable = t.Nullable
	return degraded
}

// resolve runs the registry/local-table precedence chain for a type name.
func (m *Mapper) resolve(name string) *Entry {
	_, _, qualified := naming.SplitQualified(name)
	if !qualified {
		if e := m.registry.Resolve(m.namespace + "." + name); m.resolvable(e) {
			return e
		}
		if e, ok := m.localEnums[name]; ok {
			return e
		}
		if e, ok := m.localRecords[name]; ok {
			return e
		}
	}
	if e := m.registry.ResolveIn(name, m.namespace); m.resolvable(e) {
		return e
	}
	return nil
}

// resolveExcluded finds class and interface entries the resolvable filter
// rejected: skipped classes and references into namespaces this run emits
// no modules for. They are still native objects at the boundary, so they
// degrade to an untyped gobject handle instead of a raw pointer word.
func (m *Mapper) resolveExcluded(name string) *Entry {
	_, _, qualified := naming.SplitQualified(name)
	var e *Entry
	if !qualified {
		e = m.registry.Resolve(m.namespace + "." + name)
	}
	if e == nil {
		e = m.registry.ResolveIn(name, m.namespace)
	}
	if e != nil && (e.Kind == KindClass || e.Kind == KindInterface) {
		return e
	}
	return nil
}

func (m *Mapper) mapEntry(e *Entry, t gir.TypeRef, isReturn bool, u *Usage) MappedType {
	ts := e.TransformedName
	if e.Namespace != m.namespace {
		ts = e.Namespace + "." + e.TransformedName
	}
	switch e.Kind {
	case KindClass, KindInterface:
		u.Type(e)
		return MappedType{TS: ts, FFI: ffitype.GObject{Borrowed: isReturn}, Entry: e, Nullable: t.Nullable}
	case KindEnum:
		u.Enum(e)
		return MappedType{TS: ts, FFI: ffitype.Int{Size: 32}, Entry: e, Nullable: t.Nullable}
	case KindRecord:
		u.Record(e)
		return MappedType{
			TS: ts,
			FFI: ffitype.Boxed{
				Borrowed:  isReturn,
				InnerType: e.GLibTypeName,
				Lib:       e.SharedLibrary,
				GetTypeFn: e.GetTypeFn,
			},
			Entry:    e,
			Nullable: t.Nullable,
		}
	case KindCallback:
		return MappedType{TS: genericCallbackTS, FFI: ffitype.Callback{}, Entry: e, Nullable: t.Nullable}
	}
	return m.mapCType(t.CType)
}

// mapArray maps a container reference. The borrowed flag is directional:
// return-position containers are wrapped without taking ownership, whatever
// the transfer annotation says about the elements.
func (m *Mapper) mapArray(t gir.TypeRef, isReturn bool, u *Usage) MappedType {
	borrowed := isReturn
	list := listKindOf(t)
	if t.Element == nil {
		return MappedType{
			TS:       "unknown[]",
			FFI:      ffitype.Array{ItemType: ffitype.Undefined{}, ListType: list, Borrowed: borrowed},
			Nullable: t.Nullable,
		}
	}
	item := m.MapType(*t.Element, isReturn, u)
	ts := item.TS + "[]"
	if strings.ContainsAny(item.TS, " |") {
		ts = "(" + item.TS + ")[]"
	}
	return MappedType{
		TS:       ts,
		FFI:      ffitype.Array{ItemType: item.FFI, ListType: list, Borrowed: borrowed},
		Entry:    item.Entry,
		Nullable: t.Nullable,
	}
}

// listKindOf picks the container traversal of an array reference. The
// parser normalizes GLib.List/GLib.SList elements; the C type is the
// fallback for data that only spells the container there (GSList first,
// since its spelling contains GList).
func listKindOf(t gir.TypeRef) ffitype.ListKind {
	if t.ListKind != "" {
		return ffitype.ListKind(t.ListKind)
	}
	switch {
	case strings.Contains(t.CType, "GSList"):
		return ffitype.ListGSList
	case strings.Contains(t.CType, "GList"):
		return ffitype.ListGList
	}
	return ffitype.ListNone
}

// mapCType resolves a raw C type spelling. Trailing-pointer and
// unrecognized spellings degrade to an opaque machine word; void means no
// value.
func (m *Mapper) mapCType(cType string) MappedType {
	cType = strings.TrimPrefix(cType, "const ")
	if cType == "" || cType == "void" {
		return MappedType{TS: voidEntry.ts, FFI: voidEntry.ffi}
	}
	if strings.HasSuffix(cType, "*") {
		return MappedType{TS: pointerEntry.ts, FFI: pointerEntry.ffi}
	}
	if b, ok := basicTypes[cType]; ok {
		return MappedType{TS: b.ts, FFI: b.ffi}
	}
	return MappedType{TS: pointerEntry.ts, FFI: pointerEntry.ffi}
}

// MapReturn resolves a callable's return value in return position. A nil
// or void return maps to undefined.
func (m *Mapper) MapReturn(ret *gir.ReturnValue, u *Usage) MappedType {
	if ret == nil || ret.IsVoid() {
		return MappedType{TS: voidEntry.ts, FFI: voidEntry.ffi}
	}
	return m.MapType(ret.TypeRef(), true, u)
}

// MapParameter resolves one parameter. Recognized callback types take the
// trampoline path; out/inout parameters wrap in a Ref slot unless the
// caller allocates a boxed/gobject target; gobject-family in-parameters get
// their borrowed flag from the transfer annotation.
func (m *Mapper) MapParameter(p *gir.Parameter, u *Usage) MappedType {
	if mt, ok := m.mapCallbackParameter(p); ok {
		return mt
	}
	inner := m.MapType(p.TypeRef(), false, u)
	if p.Direction == gir.DirectionOut || p.Direction == gir.DirectionInOut {
		if p.CallerAllocates && allocatable(inner.FFI) {
			inner.FFI = ffitype.WithBorrowed(inner.FFI, true)
			return inner
		}
		u.Helper("Ref")
		return MappedType{
			TS:    "Ref<" + inner.TSNullable() + ">",
			FFI:   ffitype.Ref{InnerType: inner.FFI},
			Entry: inner.Entry,
		}
	}
	switch inner.FFI.(type) {
	case ffitype.GObject, ffitype.Boxed, ffitype.GVariant:
		inner.FFI = ffitype.WithBorrowed(inner.FFI, p.TransferOwnership != gir.TransferFull)
	}
	return inner
}

// allocatable reports descriptors a caller-allocates out parameter can be
// backed by directly, without a Ref slot.
func allocatable(t ffitype.Type) bool {
	switch t.(type) {
	case ffitype.GObject, ffitype.Boxed:
		return true
	}
	return false
}

// mapCallbackParameter handles the callback parameter shapes the runtime
// has trampolines for. Anything else returns ok=false and flows through the
// normal pipeline.
func (m *Mapper) mapCallbackParameter(p *gir.Parameter) (MappedType, bool) {
	t := p.TypeRef()
	if t.IsArray || t.Name == "" || !p.In() {
		return MappedType{}, false
	}
	qualified := t.Name
	if _, _, ok := naming.SplitQualified(qualified); !ok {
		qualified = m.namespace + "." + qualified
	}
	switch qualified {
	case "Gio.AsyncReadyCallback":
		return MappedType{
			TS: "(sourceObject: unknown, res: unknown) => void",
			FFI: ffitype.Callback{
				Trampoline: ffitype.TrampolineAsyncReady,
				SourceType: ffitype.GObject{Borrowed: true},
				ResultType: ffitype.GObject{Borrowed: true},
			},
			Nullable: p.NullableIn(),
		}, true
	case "GLib.DestroyNotify":
		return MappedType{
			TS:       "() => void",
			FFI:      ffitype.Callback{Trampoline: ffitype.TrampolineDestroy},
			Nullable: p.NullableIn(),
		}, true
	case "Gtk.DrawingAreaDrawFunc":
		return MappedType{
			TS: "(self: unknown, cr: unknown, width: number, height: number) => void",
			FFI: ffitype.Callback{
				Trampoline: ffitype.TrampolineDrawFunc,
				ArgTypes: []ffitype.Type{
					ffitype.GObject{Borrowed: true},
					ffitype.Boxed{
						Borrowed:  true,
						InnerType: cairoContextTypeName,
						Lib:       cairoGObjectLib,
						GetTypeFn: cairoContextGetTypeFn,
					},
					ffitype.Int{Size: 32},
					ffitype.Int{Size: 32},
				},
			},
			Nullable: p.NullableIn(),
		}, true
	case "GObject.Closure":
		return MappedType{TS: genericCallbackTS, FFI: ffitype.Callback{}, Nullable: p.NullableIn()}, true
	}
	return MappedType{}, false
}

// HasUnsupportedCallback reports whether any in-parameter of f is a named
// callback type without a runtime trampoline. Constructors with such
// parameters make their class unmarshalable; methods with them are dropped.
func (m *Mapper) HasUnsupportedCallback(f *gir.Function) bool {
	for i := range f.Parameters {
		p := &f.Parameters[i]
		t := p.TypeRef()
		if t.IsArray || t.Name == "" || !p.In() {
			continue
		}
		if _, ok := m.mapCallbackParameter(p); ok {
			continue
		}
		if e := m.registry.ResolveIn(t.Name, m.namespace); e != nil && e.Kind == KindCallback {
			return true
		}
	}
	return false
}
