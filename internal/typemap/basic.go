package typemap

import "github.com/ivan-banha/gtkx-sub001/internal/ffitype"

type basicEntry struct {
	ts  string
	ffi ffitype.Type
}

func intEntry(size int, unsigned bool) basicEntry {
	return basicEntry{ts: "number", ffi: ffitype.Int{Size: size, Unsigned: unsigned}}
}

func floatEntry(size int) basicEntry {
	return basicEntry{ts: "number", ffi: ffitype.Float{Size: size}}
}

// pointerEntry is the degradation target for raw pointers and anything the
// mapper cannot resolve: an opaque machine word.
var pointerEntry = basicEntry{ts: "unknown", ffi: ffitype.Int{Size: 64, Unsigned: true}}

var voidEntry = basicEntry{ts: "void", ffi: ffitype.Undefined{}}

// basicTypes maps GIR fundamental type names and bare C scalar spellings to
// their marshaling shape. Width aliases follow the GLib typedefs for the
// LP64 targets the runtime supports.
var basicTypes = map[string]basicEntry{
	"gboolean": {ts: "boolean", ffi: ffitype.Boolean{}},

	"gint8":  intEntry(8, false),
	"gchar":  intEntry(8, false),
	"guint8": intEntry(8, true),
	"guchar": intEntry(8, true),

	"gint16":    intEntry(16, false),
	"gshort":    intEntry(16, false),
	"guint16":   intEntry(16, true),
	"gushort":   intEntry(16, true),
	"gunichar2": intEntry(16, true),

	"gint32": intEntry(32, false),
	"gint":   intEntry(32, false),
	"int":    intEntry(32, false),
	"pid_t":  intEntry(32, false),

	"guint32":   intEntry(32, true),
	"guint":     intEntry(32, true),
	"unsigned":  intEntry(32, true),
	"gunichar":  intEntry(32, true),
	"uid_t":     intEntry(32, true),
	"gid_t":     intEntry(32, true),
	"socklen_t": intEntry(32, true),
	"GQuark":    intEntry(32, true),
	"DateYear":  intEntry(32, true),
	"DateDay":   intEntry(8, true),

	"gint64":   intEntry(64, false),
	"glong":    intEntry(64, false),
	"gssize":   intEntry(64, false),
	"goffset":  intEntry(64, false),
	"gintptr":  intEntry(64, false),
	"time_t":   intEntry(64, false),
	"off_t":    intEntry(64, false),
	"TimeSpan": intEntry(64, false),

	"guint64":  intEntry(64, true),
	"gulong":   intEntry(64, true),
	"gsize":    intEntry(64, true),
	"guintptr": intEntry(64, true),
	"dev_t":    intEntry(64, true),
	"GType":    intEntry(64, true),

	"gfloat": floatEntry(32),
	"float":  floatEntry(32),

	"gdouble":     floatEntry(64),
	"double":      floatEntry(64),
	"long double": floatEntry(64),

	"none": voidEntry,
	"void": voidEntry,

	"gpointer":      pointerEntry,
	"gconstpointer": pointerEntry,
}

// namespaceAliases maps qualified names that marshal as scalars despite
// living in a namespace.
var namespaceAliases = map[string]basicEntry{
	"GLib.DateDay":  intEntry(8, true),
	"GLib.DateYear": intEntry(32, true),
	"GLib.Quark":    intEntry(32, true),
	"GLib.TimeSpan": intEntry(64, false),
	"GObject.GType": intEntry(64, true),
	"GObject.Type":  intEntry(64, true),
}
