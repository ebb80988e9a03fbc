// Package gir parses GObject-Introspection repository files (.gir) into the
// subset of the schema the binding generator consumes. The model keeps the
// attribute spellings of the format (transfer-ownership, caller-allocates)
// and layers small accessors on top for the awkward cases: tri-state
// introspectable flags, closure/destroy indices where 0 is meaningful, and
// list types expressed as parameterized GLib containers.
package gir

import "strings"

// Namespace URIs used by attribute struct tags. Element tags stay
// unqualified: the decoder matches elements by local name when no namespace
// is given, which covers both core and glib-prefixed elements.
//
//	core: http://www.gtk.org/introspection/core/1.0
//	c:    http://www.gtk.org/introspection/c/1.0
//	glib: http://www.gtk.org/introspection/glib/1.0

// Transfer annotation values.
const (
	TransferNone      = "none"
	TransferFull      = "full"
	TransferContainer = "container"
)

// Parameter directions.
const (
	DirectionIn    = "in"
	DirectionOut   = "out"
	DirectionInOut = "inout"
)

// Repository is the root element of a .gir document.
type Repository struct {
	Version   string    `xml:"version,attr"`
	Includes  []Include `xml:"include"`
	Namespace Namespace `xml:"namespace"`
}

// Include names a dependency namespace that must be loaded first.
type Include struct {
	Name    string `xml:"name,attr"`
	Version string `xml:"version,attr"`
}

// Namespace is one introspected library: its registered types plus the
// shared-library and symbol-prefix metadata needed to call into it.
type Namespace struct {
	Name             string `xml:"name,attr"`
	Version          string `xml:"version,attr"`
	SharedLibrary    string `xml:"shared-library,attr"`
	IdentifierPrefix string `xml:"http://www.gtk.org/introspection/c/1.0 identifier-prefixes,attr"`
	SymbolPrefix     string `xml:"http://www.gtk.org/introspection/c/1.0 symbol-prefixes,attr"`

	Classes      []Class       `xml:"class"`
	Interfaces   []Interface   `xml:"interface"`
	Records      []Record      `xml:"record"`
	Enumerations []Enumeration `xml:"enumeration"`
	Bitfields    []Enumeration `xml:"bitfield"`
	Callbacks    []Callback    `xml:"callback"`
	Functions    []Function    `xml:"function"`
	Constants    []Constant    `xml:"constant"`
}

// PrimaryLibrary returns the first entry of the (possibly comma-separated)
// shared-library attribute; that is the library the runtime dlopens.
func (n *Namespace) PrimaryLibrary() string {
	lib, _, _ := strings.Cut(n.SharedLibrary, ",")
	return lib
}

// FindClass returns the class with the given introspected name, or nil.
func (n *Namespace) FindClass(name string) *Class {
	for i := range n.Classes {
		if n.Classes[i].Name == name {
			return &n.Classes[i]
		}
	}
	return nil
}

// FindInterface returns the interface with the given name, or nil.
func (n *Namespace) FindInterface(name string) *Interface {
	for i := range n.Interfaces {
		if n.Interfaces[i].Name == name {
			return &n.Interfaces[i]
		}
	}
	return nil
}

// FindRecord returns the record with the given name, or nil.
func (n *Namespace) FindRecord(name string) *Record {
	for i := range n.Records {
		if n.Records[i].Name == name {
			return &n.Records[i]
		}
	}
	return nil
}

// Class is a GObject class: constructors, methods, static functions,
// signals, properties and the parent/interface links that position it in
// the hierarchy.
type Class struct {
	Name               string `xml:"name,attr"`
	Parent             string `xml:"parent,attr"`
	Abstract           bool   `xml:"abstract,attr"`
	IntrospectableAttr string `xml:"introspectable,attr"`
	CType              string `xml:"http://www.gtk.org/introspection/c/1.0 type,attr"`
	SymbolPrefix       string `xml:"http://www.gtk.org/introspection/c/1.0 symbol-prefix,attr"`
	GLibTypeName       string `xml:"http://www.gtk.org/introspection/glib/1.0 type-name,attr"`
	GLibGetType        string `xml:"http://www.gtk.org/introspection/glib/1.0 get-type,attr"`

	Doc            string      `xml:"doc"`
	Implements     []Implement `xml:"implements"`
	Constructors   []Function  `xml:"constructor"`
	Methods        []Function  `xml:"method"`
	Functions      []Function  `xml:"function"`
	VirtualMethods []Function  `xml:"virtual-method"`
	Properties     []Property  `xml:"property"`
	Signals        []Signal    `xml:"signal"`
}

// Introspectable reports whether the class is visible to bindings. The
// attribute is tri-state in the format: absent means yes.
func (c *Class) Introspectable() bool { return c.IntrospectableAttr != "0" }

// Implement names an interface a class implements.
type Implement struct {
	Name string `xml:"name,attr"`
}

// Prerequisite names a type an implementor of an interface must also be.
type Prerequisite struct {
	Name string `xml:"name,attr"`
}

// Interface is a GObject interface; bindings surface its methods through
// implementing classes and its signals through connect overloads.
type Interface struct {
	Name               string `xml:"name,attr"`
	IntrospectableAttr string `xml:"introspectable,attr"`
	CType              string `xml:"http://www.gtk.org/introspection/c/1.0 type,attr"`
	GLibTypeName       string `xml:"http://www.gtk.org/introspection/glib/1.0 type-name,attr"`
	GLibGetType        string `xml:"http://www.gtk.org/introspection/glib/1.0 get-type,attr"`

	Doc           string         `xml:"doc"`
	Prerequisites []Prerequisite `xml:"prerequisite"`
	Methods       []Function     `xml:"method"`
	Functions     []Function     `xml:"function"`
	Properties    []Property     `xml:"property"`
	Signals       []Signal       `xml:"signal"`
}

// Introspectable reports whether the interface is visible to bindings.
func (i *Interface) Introspectable() bool { return i.IntrospectableAttr != "0" }

// Record is a plain C struct. Only records registered as boxed types (a
// glib:type-name plus get-type and not disguised/opaque) can cross the FFI
// boundary by value handle.
type Record struct {
	Name               string `xml:"name,attr"`
	Disguised          bool   `xml:"disguised,attr"`
	Opaque             bool   `xml:"opaque,attr"`
	Foreign            bool   `xml:"foreign,attr"`
	IntrospectableAttr string `xml:"introspectable,attr"`
	CType              string `xml:"http://www.gtk.org/introspection/c/1.0 type,attr"`
	GLibTypeName       string `xml:"http://www.gtk.org/introspection/glib/1.0 type-name,attr"`
	GLibGetType        string `xml:"http://www.gtk.org/introspection/glib/1.0 get-type,attr"`

	Doc          string     `xml:"doc"`
	Constructors []Function `xml:"constructor"`
	Methods      []Function `xml:"method"`
	Functions    []Function `xml:"function"`
}

// Introspectable reports whether the record is visible to bindings.
func (r *Record) Introspectable() bool { return r.IntrospectableAttr != "0" }

// Boxed reports whether the record participates in the boxed-type
// machinery and can therefore be marshaled.
func (r *Record) Boxed() bool {
	return r.GLibTypeName != "" && r.GLibGetType != "" && !r.Disguised && !r.Opaque
}

// Enumeration covers both enumeration and bitfield elements.
type Enumeration struct {
	Name               string `xml:"name,attr"`
	IntrospectableAttr string `xml:"introspectable,attr"`
	CType              string `xml:"http://www.gtk.org/introspection/c/1.0 type,attr"`
	GLibTypeName       string `xml:"http://www.gtk.org/introspection/glib/1.0 type-name,attr"`

	Doc     string   `xml:"doc"`
	Members []Member `xml:"member"`
}

// Introspectable reports whether the enumeration is visible to bindings.
func (e *Enumeration) Introspectable() bool { return e.IntrospectableAttr != "0" }

// Member is a single enumeration value.
type Member struct {
	Name        string `xml:"name,attr"`
	Value       string `xml:"value,attr"`
	CIdentifier string `xml:"http://www.gtk.org/introspection/c/1.0 identifier,attr"`
	Doc         string `xml:"doc"`
}

// Callback is a named function-pointer type.
type Callback struct {
	Name        string       `xml:"name,attr"`
	CType       string       `xml:"http://www.gtk.org/introspection/c/1.0 type,attr"`
	Doc         string       `xml:"doc"`
	Parameters  []Parameter  `xml:"parameters>parameter"`
	ReturnValue *ReturnValue `xml:"return-value"`
}

// Constant is a namespace-level constant; parsed so documents round-trip
// but not surfaced in generated bindings.
type Constant struct {
	Name  string   `xml:"name,attr"`
	Value string   `xml:"value,attr"`
	CType string   `xml:"http://www.gtk.org/introspection/c/1.0 type,attr"`
	Type  *RawType `xml:"type"`
}

// Function covers constructor, method and static function elements; they
// share one schema shape.
type Function struct {
	Name               string `xml:"name,attr"`
	CIdentifier        string `xml:"http://www.gtk.org/introspection/c/1.0 identifier,attr"`
	MovedTo            string `xml:"moved-to,attr"`
	IntrospectableAttr string `xml:"introspectable,attr"`
	Throws             bool   `xml:"throws,attr"`
	Deprecated         bool   `xml:"deprecated,attr"`

	Doc         string       `xml:"doc"`
	Parameters  []Parameter  `xml:"parameters>parameter"`
	ReturnValue *ReturnValue `xml:"return-value"`
}

// Introspectable reports whether the function is visible to bindings.
func (f *Function) Introspectable() bool { return f.IntrospectableAttr != "0" }

// HasVarArgs reports whether any parameter is a varargs placeholder;
// such callables cannot be marshaled and are skipped.
func (f *Function) HasVarArgs() bool {
	for i := range f.Parameters {
		if f.Parameters[i].VarArgs() {
			return true
		}
	}
	return false
}

// Returns reports whether the callable produces a value.
func (f *Function) Returns() bool {
	return f.ReturnValue != nil && !f.ReturnValue.IsVoid()
}

// Parameter is one formal parameter of a callable.
type Parameter struct {
	Name              string `xml:"name,attr"`
	Direction         string `xml:"direction,attr"`
	TransferOwnership string `xml:"transfer-ownership,attr"`
	Nullable          bool   `xml:"nullable,attr"`
	AllowNone         bool   `xml:"allow-none,attr"`
	Optional          bool   `xml:"optional,attr"`
	CallerAllocates   bool   `xml:"caller-allocates,attr"`
	Scope             string `xml:"scope,attr"`
	Closure           *int   `xml:"closure,attr"`
	Destroy           *int   `xml:"destroy,attr"`

	Doc       string    `xml:"doc"`
	Type      *RawType  `xml:"type"`
	Array     *RawArray `xml:"array"`
	VarArgsEl *struct{} `xml:"varargs"`
}

// VarArgs reports whether this is a C varargs placeholder.
func (p *Parameter) VarArgs() bool { return p.VarArgsEl != nil }

// In reports whether the parameter flows caller-to-callee. An absent
// direction attribute means in.
func (p *Parameter) In() bool {
	return p.Direction == "" || p.Direction == DirectionIn
}

// ClosureIndex returns the index of the user-data parameter paired with a
// callback parameter, or -1 when the attribute is absent. Index 0 is valid,
// hence the pointer-backed attribute.
func (p *Parameter) ClosureIndex() int {
	if p.Closure == nil {
		return -1
	}
	return *p.Closure
}

// DestroyIndex returns the index of the destroy-notify parameter paired
// with a callback parameter, or -1 when absent.
func (p *Parameter) DestroyIndex() int {
	if p.Destroy == nil {
		return -1
	}
	return *p.Destroy
}

// NullableIn reports whether a caller may pass null: either annotation
// spelling counts.
func (p *Parameter) NullableIn() bool { return p.Nullable || p.AllowNone }

// TypeRef normalizes the parameter's type element.
func (p *Parameter) TypeRef() TypeRef {
	return makeTypeRef(p.Type, p.Array, p.TransferOwnership, p.NullableIn())
}

// ReturnValue describes a callable's return.
type ReturnValue struct {
	TransferOwnership string    `xml:"transfer-ownership,attr"`
	Nullable          bool      `xml:"nullable,attr"`
	AllowNone         bool      `xml:"allow-none,attr"`
	Doc               string    `xml:"doc"`
	Type              *RawType  `xml:"type"`
	Array             *RawArray `xml:"array"`
}

// IsVoid reports whether the return type is C void.
func (r *ReturnValue) IsVoid() bool {
	return r.Array == nil && (r.Type == nil || r.Type.Name == "none" || (r.Type.Name == "" && r.Type.CType == "void"))
}

// TypeRef normalizes the return's type element.
func (r *ReturnValue) TypeRef() TypeRef {
	return makeTypeRef(r.Type, r.Array, r.TransferOwnership, r.Nullable || r.AllowNone)
}

// Property is a GObject property.
type Property struct {
	Name              string    `xml:"name,attr"`
	Writable          bool      `xml:"writable,attr"`
	ConstructOnly     bool      `xml:"construct-only,attr"`
	TransferOwnership string    `xml:"transfer-ownership,attr"`
	Getter            string    `xml:"getter,attr"`
	Setter            string    `xml:"setter,attr"`
	Doc               string    `xml:"doc"`
	Type              *RawType  `xml:"type"`
	Array             *RawArray `xml:"array"`
}

// TypeRef normalizes the property's type element.
func (p *Property) TypeRef() TypeRef {
	return makeTypeRef(p.Type, p.Array, p.TransferOwnership, false)
}

// Signal is a glib:signal element.
type Signal struct {
	Name        string       `xml:"name,attr"`
	When        string       `xml:"when,attr"`
	Doc         string       `xml:"doc"`
	Parameters  []Parameter  `xml:"parameters>parameter"`
	ReturnValue *ReturnValue `xml:"return-value"`
}

// RawType is the literal type element. List containers arrive as a RawType
// named GLib.List/GLib.SList with the item type nested inside.
type RawType struct {
	Name  string    `xml:"name,attr"`
	CType string    `xml:"http://www.gtk.org/introspection/c/1.0 type,attr"`
	Inner []RawType `xml:"type"`
}

// RawArray is the literal array element.
type RawArray struct {
	Name           string    `xml:"name,attr"`
	CType          string    `xml:"http://www.gtk.org/introspection/c/1.0 type,attr"`
	ZeroTerminated string    `xml:"zero-terminated,attr"`
	FixedSize      int       `xml:"fixed-size,attr"`
	Length         *int      `xml:"length,attr"`
	Inner          []RawType `xml:"type"`
}

// TypeRef is the normalized type reference handed to the type mapper:
// container shapes collapse to IsArray+Element, and the ownership/null
// annotations of the surrounding parameter or return travel with it.
type TypeRef struct {
	Name     string
	CType    string
	IsArray  bool
	ListKind string // "", "glist", "gslist"
	Element  *TypeRef
	Transfer string
	Nullable bool
}

// listContainers maps GLib container type names to their traversal kind.
var listContainers = map[string]string{
	"GLib.List":  "glist",
	"GLib.SList": "gslist",
}

func makeTypeRef(t *RawType, a *RawArray, transfer string, nullable bool) TypeRef {
	if a != nil {
		ref := TypeRef{IsArray: true, CType: a.CType, Transfer: transfer, Nullable: nullable}
		if len(a.Inner) > 0 {
			el := makeTypeRef(&a.Inner[0], nil, "", false)
			ref.Element = &el
		}
		return ref
	}
	if t == nil {
		return TypeRef{Transfer: transfer, Nullable: nullable}
	}
	if kind, ok := listContainers[t.Name]; ok {
		ref := TypeRef{IsArray: true, ListKind: kind, CType: t.CType, Transfer: transfer, Nullable: nullable}
		if len(t.Inner) > 0 {
			el := makeTypeRef(&t.Inner[0], nil, "", false)
			ref.Element = &el
		}
		return ref
	}
	return TypeRef{Name: t.Name, CType: t.CType, Transfer: transfer, Nullable: nullable}
}
