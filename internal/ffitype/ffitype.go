// Package ffitype models the marshaling descriptors embedded in generated
// bindings. Every native call site carries one descriptor per argument plus
// one for the return value; the runtime dispatcher reads the type tag to
// decide how a JavaScript value crosses into C and back.
//
// The set of tags is closed: int, float, boolean, string, null, undefined,
// gobject, boxed, gvariant, array, callback and ref. Descriptors are plain
// values and safe to copy.
package ffitype

// Kind is the wire tag of a descriptor.
type Kind string

const (
	KindInt       Kind = "int"
	KindFloat     Kind = "float"
	KindBoolean   Kind = "boolean"
	KindString    Kind = "string"
	KindNull      Kind = "null"
	KindUndefined Kind = "undefined"
	KindGObject   Kind = "gobject"
	KindBoxed     Kind = "boxed"
	KindGVariant  Kind = "gvariant"
	KindArray     Kind = "array"
	KindCallback  Kind = "callback"
	KindRef       Kind = "ref"
)

// Trampoline selects how a callback descriptor expands at the native
// boundary. The zero value is the generic closure trampoline.
type Trampoline string

const (
	TrampolineClosure    Trampoline = "closure"
	TrampolineAsyncReady Trampoline = "asyncReady"
	TrampolineDestroy    Trampoline = "destroy"
	TrampolineDrawFunc   Trampoline = "drawFunc"
)

// ListKind distinguishes the linked-list container shapes an array
// descriptor can marshal from. Empty means a plain C array.
type ListKind string

const (
	ListNone   ListKind = ""
	ListGList  ListKind = "glist"
	ListGSList ListKind = "gslist"
)

// Type is a marshaling descriptor. The concrete types below are the only
// implementations.
type Type interface {
	Kind() Kind
}

// Int describes a fixed-width integer. Size is in bits: 8, 16, 32 or 64.
type Int struct {
	Size     int
	Unsigned bool
}

// Float describes a 32- or 64-bit floating point value.
type Float struct {
	Size int
}

// Boolean describes a gboolean.
type Boolean struct{}

// String describes a NUL-terminated C string. Borrowed strings stay owned
// by the callee and are copied, not freed, on the way out.
type String struct {
	Borrowed bool
}

// Null marshals as a NULL pointer.
type Null struct{}

// Undefined marshals as void; as a return descriptor it means the call
// produces no value.
type Undefined struct{}

// GObject describes a reference-counted instance addressed by handle.
// Borrowed results are not unreffed when the handle is released.
type GObject struct {
	Borrowed bool
}

// Boxed describes a value addressed through the GLib boxed-type machinery.
// Lib and GetTypeFn identify the shared library and the get_type symbol the
// runtime resolves the GType from; InnerType is the binding-surface class
// the handle is wrapped in.
type Boxed struct {
	Borrowed  bool
	InnerType string
	Lib       string
	GetTypeFn string
}

// GVariant describes a GLib.Variant value.
type GVariant struct {
	Borrowed bool
}

// Array describes a homogeneous sequence. ListType selects GList/GSList
// traversal instead of contiguous storage; Borrowed controls whether the
// container is freed after conversion.
type Array struct {
	ItemType Type
	ListType ListKind
	Borrowed bool
}

// Callback describes a function-pointer argument. ArgTypes/ReturnType feed
// the generic closure trampoline; SourceType/ResultType feed the
// async-ready trampoline.
type Callback struct {
	Trampoline Trampoline
	ArgTypes   []Type
	ReturnType Type
	SourceType Type
	ResultType Type
}

// Ref describes an out or inout parameter slot. The runtime allocates
// storage for InnerType, passes its address, and writes the result back
// into the Ref object after the call.
type Ref struct {
	InnerType Type
}

func (Int) Kind() Kind       { return KindInt }
func (Float) Kind() Kind     { return KindFloat }
func (Boolean) Kind() Kind   { return KindBoolean }
func (String) Kind() Kind    { return KindString }
func (Null) Kind() Kind      { return KindNull }
func (Undefined) Kind() Kind { return KindUndefined }
func (GObject) Kind() Kind   { return KindGObject }
func (Boxed) Kind() Kind     { return KindBoxed }
func (GVariant) Kind() Kind  { return KindGVariant }
func (Array) Kind() Kind     { return KindArray }
func (Callback) Kind() Kind  { return KindCallback }
func (Ref) Kind() Kind       { return KindRef }

// Ownable reports whether t carries a Borrowed flag tied to GIR transfer
// annotations: gobject, boxed, gvariant and string descriptors do.
func Ownable(t Type) bool {
	switch t.(type) {
	case GObject, Boxed, GVariant, String:
		return true
	}
	return false
}

// WithBorrowed returns a copy of t with its Borrowed flag set to borrowed.
// Descriptors without an ownership flag are returned unchanged.
func WithBorrowed(t Type, borrowed bool) Type {
	switch v := t.(type) {
	case GObject:
		v.Borrowed = borrowed
		return v
	case Boxed:
		v.Borrowed = borrowed
		return v
	case GVariant:
		v.Borrowed = borrowed
		return v
	case String:
		v.Borrowed = borrowed
		return v
	case Array:
		v.Borrowed = borrowed
		return v
	}
	return t
}

// IsVoid reports whether t is the undefined descriptor, i.e. no value.
func IsVoid(t Type) bool {
	if t == nil {
		return true
	}
	_, ok := t.(Undefined)
	return ok
}
