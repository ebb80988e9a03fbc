package generator

// Template models. Generation happens in two stages, mirroring the split
// between analysis and rendering: the generators below build these models,
// then the embedded templates print them. Anything requiring type
// resolution or descriptor rendering is precomputed here as strings so the
// templates stay purely structural.

// fileHeader is stamped at the top of every generated module.
type fileHeader struct {
	Tool   string // girgen vX.Y.Z
	Source string // Gtk-4.0.gir
}

// classModel renders one class module.
type classModel struct {
	Header  fileHeader
	Imports []string
	Lib     string // shared library constant for this namespace

	Doc        []string // sanitized doc lines, empty for none
	Name       string
	Extends    string   // parent expression; NativeObject at the root
	Implements []string // surfaced interface names

	Ctor      *ctorModel
	Factories []methodModel
	Methods   []methodModel
	Connect   *connectModel
}

// ctorModel renders a constructor. Body lines follow the allocation guard
// prologue; an empty body is the trivial strategy.
type ctorModel struct {
	Doc    []string
	Params []paramModel
	Body   []string
}

// methodModel renders a method or static factory.
type methodModel struct {
	Doc      []string
	Static   bool
	Name     string
	Params   []paramModel
	ReturnTS string
	Body     []string
}

// paramModel is one formal parameter of generated code.
type paramModel struct {
	Name     string
	TS       string
	Optional bool
}

// connectModel renders the connect overload set of a class and the
// module-level descriptor table its implementation consults.
type connectModel struct {
	ClassName string
	Overloads []connectOverload
	Meta      []metaSignalEntry
}

// connectOverload is one typed signal overload.
type connectOverload struct {
	Signal  string // signal name as connected, e.g. "clicked"
	Handler string // full handler function type
}

// enumsModel renders the enums module of a namespace.
type enumsModel struct {
	Header fileHeader
	Enums  []enumModel
}

type enumModel struct {
	Doc     []string
	Name    string
	Members []enumMember
}

type enumMember struct {
	Name  string
	Value string
}

// recordsModel renders the boxed-record wrappers of a namespace.
type recordsModel struct {
	Header  fileHeader
	Imports []string
	Lib     string
	Records []recordModel
}

type recordModel struct {
	Doc     []string
	Name    string
	Methods []methodModel
}

// interfacesModel renders the interface declarations of a namespace.
type interfacesModel struct {
	Header     fileHeader
	Imports    []string
	Interfaces []interfaceModel
}

type interfaceModel struct {
	Doc     []string
	Name    string
	Extends []string
	Methods []interfaceMethod
}

// interfaceMethod is a body-less method signature.
type interfaceMethod struct {
	Doc      []string
	Name     string
	Params   []paramModel
	ReturnTS string
}

// jsxModel renders the JSX prop-interface module.
type jsxModel struct {
	Header     fileHeader
	Imports    []string
	Interfaces []propsInterface
	SlotTypes  []slotUnion
	Intrinsics []intrinsicEntry
}

// slotUnion names the child slots of one container widget.
type slotUnion struct {
	Name  string // GtkHeaderBarSlot
	Slots []string
}

// propsInterface is one widget's prop surface.
type propsInterface struct {
	Name    string // GtkButtonProps
	Extends string // parent props interface, empty at the root
	Props   []propEntry
}

type propEntry struct {
	Doc  []string
	Name string
	TS   string
}

// intrinsicEntry maps a JSX tag to its props interface.
type intrinsicEntry struct {
	Tag   string
	Props string
}

// metaModel renders the runtime metadata module of a namespace.
type metaModel struct {
	Header            fileHeader
	ConstructorParams []metaList
	ConstructorProps  []metaList
	Props             []metaProps
	Signals           []metaList
	Containers        []metaContainer
}

type metaList struct {
	Class string
	Names []string
}

type metaProps struct {
	Class   string
	Entries []metaPropEntry
}

// metaPropEntry renders one [getter, setter] accessor pair; an empty
// getter renders null.
type metaPropEntry struct {
	Name   string
	Getter string
	Setter string
}

// metaSignalEntry is one row of a class module's signal descriptor table,
// with prerendered descriptor literals.
type metaSignalEntry struct {
	Name       string
	Params     []string
	ReturnType string // empty when the signal returns void
}

// metaContainer carries a prerendered capability object literal.
type metaContainer struct {
	Class string
	Value string
}

// indexModel renders a namespace barrel file: the re-exports plus the
// descriptor the registry reads at load time.
type indexModel struct {
	Header  fileHeader
	Exports []string // module specifiers, e.g. "./button.js"
	Name    string   // namespace name, e.g. Gtk
	Lib     string   // primary shared library
	Prefix  string   // C identifier prefix, strips GType names to class names
}

// registryModel renders the root registry wiring every namespace module
// into the runtime.
type registryModel struct {
	Header  fileHeader
	Runtime string
	Entries []registryEntry
}

type registryEntry struct {
	Namespace string // registered name, e.g. Gtk
	Path      string // ./gtk/index.js
}
