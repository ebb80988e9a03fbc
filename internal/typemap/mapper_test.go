package typemap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ivan-banha/gtkx-sub001/internal/ffitype"
	"github.com/ivan-banha/gtkx-sub001/internal/gir"
)

func testRegistry() *Registry {
	r := NewRegistry()
	r.RegisterClass("Gtk", "Widget", "GtkWidget", "libgtk-4.so.1", "gtk_widget_get_type")
	r.RegisterClass("Gtk", "Button", "GtkButton", "libgtk-4.so.1", "gtk_button_get_type")
	r.RegisterInterface("Gtk", "Orientable", "GtkOrientable", "libgtk-4.so.1", "gtk_orientable_get_type")
	r.RegisterEnum("Gtk", "Align")
	r.RegisterRecord("Gdk", "Rectangle", "GdkRectangle", "libgtk-4.so.1", "gdk_rectangle_get_type")
	r.RegisterClass("Gdk", "Display", "GdkDisplay", "libgtk-4.so.1", "gdk_display_get_type")
	r.RegisterCallback("Gtk", "TickCallback")
	return r
}

func TestMapTypeScalars(t *testing.T) {
	m := NewMapper(testRegistry(), "Gtk")

	cases := []struct {
		name string
		ts   string
		ffi  ffitype.Type
	}{
		{"gboolean", "boolean", ffitype.Boolean{}},
		{"gint", "number", ffitype.Int{Size: 32}},
		{"guint", "number", ffitype.Int{Size: 32, Unsigned: true}},
		{"gint64", "number", ffitype.Int{Size: 64}},
		{"gsize", "number", ffitype.Int{Size: 64, Unsigned: true}},
		{"gdouble", "number", ffitype.Float{Size: 64}},
		{"gfloat", "number", ffitype.Float{Size: 32}},
		{"gunichar", "number", ffitype.Int{Size: 32, Unsigned: true}},
		{"GType", "number", ffitype.Int{Size: 64, Unsigned: true}},
		{"GQuark", "number", ffitype.Int{Size: 32, Unsigned: true}},
		{"TimeSpan", "number", ffitype.Int{Size: 64}},
		{"DateDay", "number", ffitype.Int{Size: 8, Unsigned: true}},
		{"DateYear", "number", ffitype.Int{Size: 32, Unsigned: true}},
		{"gpointer", "unknown", ffitype.Int{Size: 64, Unsigned: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := m.MapType(gir.TypeRef{Name: tc.name}, false, nil)
			require.Equal(t, tc.ts, got.TS)
			require.Equal(t, tc.ffi, got.FFI)
		})
	}

	t.Run("qualified scalar aliases", func(t *testing.T) {
		got := m.MapType(gir.TypeRef{Name: "GLib.Quark"}, false, nil)
		require.Equal(t, ffitype.Int{Size: 32, Unsigned: true}, got.FFI)
	})
}

func TestMapTypeStrings(t *testing.T) {
	m := NewMapper(testRegistry(), "Gtk")

	t.Run("transfer none borrows", func(t *testing.T) {
		got := m.MapType(gir.TypeRef{Name: "utf8", Transfer: gir.TransferNone}, false, nil)
		require.Equal(t, "string", got.TS)
		require.Equal(t, ffitype.String{Borrowed: true}, got.FFI)
	})

	t.Run("transfer full transfers", func(t *testing.T) {
		got := m.MapType(gir.TypeRef{Name: "utf8", Transfer: gir.TransferFull}, false, nil)
		require.Equal(t, ffitype.String{Borrowed: false}, got.FFI)
	})

	t.Run("filename behaves like utf8", func(t *testing.T) {
		got := m.MapType(gir.TypeRef{Name: "filename", Transfer: gir.TransferNone}, false, nil)
		require.Equal(t, "string", got.TS)
		require.Equal(t, ffitype.String{Borrowed: true}, got.FFI)
	})

	t.Run("nullable union", func(t *testing.T) {
		got := m.MapType(gir.TypeRef{Name: "utf8", Transfer: gir.TransferNone, Nullable: true}, false, nil)
		require.Equal(t, "string | null", got.TSNullable())
	})
}

func TestMapTypeRegisteredKinds(t *testing.T) {
	m := NewMapper(testRegistry(), "Gtk")

	t.Run("class in argument position", func(t *testing.T) {
		u := NewUsage()
		got := m.MapType(gir.TypeRef{Name: "Widget"}, false, u)
		require.Equal(t, "Widget", got.TS)
		require.Equal(t, ffitype.GObject{Borrowed: false}, got.FFI)
		require.Contains(t, u.Types, "Gtk.Widget")
	})

	t.Run("class in return position borrows", func(t *testing.T) {
		got := m.MapType(gir.TypeRef{Name: "Widget"}, true, nil)
		require.Equal(t, ffitype.GObject{Borrowed: true}, got.FFI)
	})

	t.Run("cross-namespace reference qualifies the surface type", func(t *testing.T) {
		u := NewUsage()
		got := m.MapType(gir.TypeRef{Name: "Gdk.Display"}, false, u)
		require.Equal(t, "Gdk.Display", got.TS)
		require.Contains(t, u.Types, "Gdk.Display")
	})

	t.Run("enum maps to int32", func(t *testing.T) {
		u := NewUsage()
		got := m.MapType(gir.TypeRef{Name: "Align"}, false, u)
		require.Equal(t, "Align", got.TS)
		require.Equal(t, ffitype.Int{Size: 32}, got.FFI)
		require.Contains(t, u.Enums, "Gtk.Align")
	})

	t.Run("boxed record carries resolution metadata", func(t *testing.T) {
		got := m.MapType(gir.TypeRef{Name: "Gdk.Rectangle"}, true, nil)
		require.Equal(t, "Gdk.Rectangle", got.TS)
		require.Equal(t, ffitype.Boxed{
			Borrowed:  true,
			InnerType: "GdkRectangle",
			Lib:       "libgtk-4.so.1",
			GetTypeFn: "gdk_rectangle_get_type",
		}, got.FFI)
	})

	t.Run("variant is opaque", func(t *testing.T) {
		got := m.MapType(gir.TypeRef{Name: "GLib.Variant"}, true, nil)
		require.Equal(t, "unknown", got.TS)
		require.Equal(t, ffitype.GVariant{Borrowed: true}, got.FFI)
	})
}

func TestMapTypeDegradation(t *testing.T) {
	m := NewMapper(testRegistry(), "Gtk")

	t.Run("unresolved pointer degrades to machine word", func(t *testing.T) {
		got := m.MapType(gir.TypeRef{Name: "cairo.Context", CType: "cairo_t*"}, false, nil)
		require.Equal(t, "unknown", got.TS)
		require.Equal(t, ffitype.Int{Size: 64, Unsigned: true}, got.FFI)
	})

	t.Run("skipped class degrades to an untyped gobject", func(t *testing.T) {
		m := NewMapper(testRegistry(), "Gtk")
		m.MarkSkipped("Gtk.Button")
		got := m.MapType(gir.TypeRef{Name: "Button", CType: "GtkButton*"}, false, nil)
		require.Nil(t, got.Entry)
		require.Equal(t, "unknown", got.TS)
		require.Equal(t, ffitype.GObject{Borrowed: false}, got.FFI)

		got = m.MapType(gir.TypeRef{Name: "Button", CType: "GtkButton*"}, true, nil)
		require.Equal(t, ffitype.GObject{Borrowed: true}, got.FFI)
	})

	t.Run("ungenerated namespace degrades to an untyped gobject", func(t *testing.T) {
		m := NewMapper(testRegistry(), "Gtk")
		m.SetGenerated([]string{"Gtk"})
		got := m.MapType(gir.TypeRef{Name: "Gdk.Display", CType: "GdkDisplay*"}, false, nil)
		require.Nil(t, got.Entry)
		require.Equal(t, "unknown", got.TS)
		require.Equal(t, ffitype.GObject{Borrowed: false}, got.FFI)
	})

	t.Run("generated namespace still resolves", func(t *testing.T) {
		m := NewMapper(testRegistry(), "Gtk")
		m.SetGenerated([]string{"Gtk", "Gdk"})
		got := m.MapType(gir.TypeRef{Name: "Gdk.Display"}, false, nil)
		require.NotNil(t, got.Entry)
	})
}

func TestMapTypeArrays(t *testing.T) {
	m := NewMapper(testRegistry(), "Gtk")

	t.Run("argument-position array is owned", func(t *testing.T) {
		el := gir.TypeRef{Name: "utf8", Transfer: gir.TransferNone}
		got := m.MapType(gir.TypeRef{IsArray: true, Element: &el, Transfer: gir.TransferFull}, false, nil)
		require.Equal(t, "string[]", got.TS)
		arr, ok := got.FFI.(ffitype.Array)
		require.True(t, ok)
		require.False(t, arr.Borrowed)
		require.Equal(t, ffitype.ListNone, arr.ListType)
	})

	t.Run("return-position glist borrows regardless of transfer", func(t *testing.T) {
		el := gir.TypeRef{Name: "Widget"}
		got := m.MapType(gir.TypeRef{IsArray: true, ListKind: "glist", Element: &el, Transfer: gir.TransferFull}, true, nil)
		require.Equal(t, "Widget[]", got.TS)
		arr, ok := got.FFI.(ffitype.Array)
		require.True(t, ok)
		require.True(t, arr.Borrowed)
		require.Equal(t, ffitype.ListGList, arr.ListType)
		require.Equal(t, ffitype.GObject{Borrowed: true}, arr.ItemType)
	})

	t.Run("argument-position array ignores transfer none", func(t *testing.T) {
		el := gir.TypeRef{Name: "utf8", Transfer: gir.TransferNone}
		got := m.MapType(gir.TypeRef{IsArray: true, Element: &el, Transfer: gir.TransferNone}, false, nil)
		require.False(t, got.FFI.(ffitype.Array).Borrowed)
	})

	t.Run("union element types get parenthesized", func(t *testing.T) {
		el := gir.TypeRef{Name: "utf8", Transfer: gir.TransferNone, Nullable: true}
		got := m.MapType(gir.TypeRef{IsArray: true, Element: &el}, false, nil)
		require.Equal(t, "string[]", got.TS)

		cb := gir.TypeRef{Name: "TickCallback"}
		got = m.MapType(gir.TypeRef{IsArray: true, Element: &cb}, false, nil)
		require.Equal(t, "((...args: unknown[]) => unknown)[]", got.TS)
	})

	t.Run("list containers spelled only in the c type still count", func(t *testing.T) {
		el := gir.TypeRef{Name: "Widget"}
		got := m.MapType(gir.TypeRef{IsArray: true, CType: "GList*", Element: &el}, false, nil)
		require.Equal(t, ffitype.ListGList, got.FFI.(ffitype.Array).ListType)

		got = m.MapType(gir.TypeRef{IsArray: true, CType: "GSList*", Element: &el}, false, nil)
		require.Equal(t, ffitype.ListGSList, got.FFI.(ffitype.Array).ListType)
	})

	t.Run("missing element degrades to unknown items", func(t *testing.T) {
		got := m.MapType(gir.TypeRef{IsArray: true, ListKind: "gslist", Transfer: gir.TransferNone}, false, nil)
		require.Equal(t, "unknown[]", got.TS)
		arr := got.FFI.(ffitype.Array)
		require.Equal(t, ffitype.ListGSList, arr.ListType)
		require.Equal(t, ffitype.Undefined{}, arr.ItemType)
	})
}

func param(name, typeName, cType string) *gir.Parameter {
	return &gir.Parameter{Name: name, Type: &gir.RawType{Name: typeName, CType: cType}}
}

func TestMapParameter(t *testing.T) {
	t.Run("in gobject borrow follows transfer", func(t *testing.T) {
		m := NewMapper(testRegistry(), "Gtk")
		p := param("child", "Widget", "GtkWidget*")
		p.TransferOwnership = gir.TransferNone
		got := m.MapParameter(p, nil)
		require.Equal(t, ffitype.GObject{Borrowed: true}, got.FFI)

		p.TransferOwnership = gir.TransferFull
		got = m.MapParameter(p, nil)
		require.Equal(t, ffitype.GObject{Borrowed: false}, got.FFI)
	})

	t.Run("out parameter wraps in a ref slot", func(t *testing.T) {
		m := NewMapper(testRegistry(), "Gtk")
		u := NewUsage()
		p := param("width", "gint", "gint*")
		p.Direction = gir.DirectionOut
		got := m.MapParameter(p, u)
		require.Equal(t, "Ref<number>", got.TS)
		require.Equal(t, ffitype.Ref{InnerType: ffitype.Int{Size: 32}}, got.FFI)
		require.Contains(t, u.Helpers, "Ref")
	})

	t.Run("caller-allocates boxed skips the ref slot", func(t *testing.T) {
		m := NewMapper(testRegistry(), "Gtk")
		p := param("rect", "Gdk.Rectangle", "GdkRectangle*")
		p.Direction = gir.DirectionOut
		p.CallerAllocates = true
		got := m.MapParameter(p, nil)
		boxed, ok := got.FFI.(ffitype.Boxed)
		require.True(t, ok)
		require.True(t, boxed.Borrowed)
		require.Equal(t, "Gdk.Rectangle", got.TS)
	})

	t.Run("caller-allocates scalar still needs the slot", func(t *testing.T) {
		m := NewMapper(testRegistry(), "Gtk")
		p := param("len", "gsize", "gsize*")
		p.Direction = gir.DirectionOut
		p.CallerAllocates = true
		got := m.MapParameter(p, nil)
		require.IsType(t, ffitype.Ref{}, got.FFI)
	})
}

func TestMapParameterCallbacks(t *testing.T) {
	m := NewMapper(testRegistry(), "Gio")

	t.Run("async ready", func(t *testing.T) {
		p := param("callback", "AsyncReadyCallback", "GAsyncReadyCallback")
		got := m.MapParameter(p, nil)
		cb, ok := got.FFI.(ffitype.Callback)
		require.True(t, ok)
		require.Equal(t, ffitype.TrampolineAsyncReady, cb.Trampoline)
	})

	t.Run("destroy notify", func(t *testing.T) {
		p := param("notify", "GLib.DestroyNotify", "GDestroyNotify")
		got := m.MapParameter(p, nil)
		cb := got.FFI.(ffitype.Callback)
		require.Equal(t, ffitype.TrampolineDestroy, cb.Trampoline)
		require.Equal(t, "() => void", got.TS)
	})

	t.Run("draw func carries the cairo boxed arg", func(t *testing.T) {
		gtk := NewMapper(testRegistry(), "Gtk")
		p := param("draw_func", "DrawingAreaDrawFunc", "GtkDrawingAreaDrawFunc")
		got := gtk.MapParameter(p, nil)
		cb := got.FFI.(ffitype.Callback)
		require.Equal(t, ffitype.TrampolineDrawFunc, cb.Trampoline)
		require.Len(t, cb.ArgTypes, 4)
		boxed := cb.ArgTypes[1].(ffitype.Boxed)
		require.Equal(t, "cairo_gobject_context_get_type", boxed.GetTypeFn)
	})
}

func TestMapReturn(t *testing.T) {
	m := NewMapper(testRegistry(), "Gtk")

	t.Run("nil and void map to undefined", func(t *testing.T) {
		got := m.MapReturn(nil, nil)
		require.Equal(t, "void", got.TS)
		require.True(t, ffitype.IsVoid(got.FFI))

		got = m.MapReturn(&gir.ReturnValue{Type: &gir.RawType{Name: "none", CType: "void"}}, nil)
		require.True(t, ffitype.IsVoid(got.FFI))
	})

	t.Run("returned class borrows", func(t *testing.T) {
		ret := &gir.ReturnValue{TransferOwnership: gir.TransferNone, Type: &gir.RawType{Name: "Widget", CType: "GtkWidget*"}}
		got := m.MapReturn(ret, nil)
		require.Equal(t, ffitype.GObject{Borrowed: true}, got.FFI)
	})
}

func TestHasUnsupportedCallback(t *testing.T) {
	m := NewMapper(testRegistry(), "Gtk")

	t.Run("registered callback without trampoline", func(t *testing.T) {
		f := &gir.Function{Name: "add_tick_callback", Parameters: []gir.Parameter{
			*param("callback", "TickCallback", "GtkTickCallback"),
		}}
		require.True(t, m.HasUnsupportedCallback(f))
	})

	t.Run("trampolined callback is fine", func(t *testing.T) {
		f := &gir.Function{Name: "load_async", Parameters: []gir.Parameter{
			*param("callback", "Gio.AsyncReadyCallback", "GAsyncReadyCallback"),
		}}
		require.False(t, m.HasUnsupportedCallback(f))
	})

	t.Run("plain parameters are fine", func(t *testing.T) {
		f := &gir.Function{Name: "set_label", Parameters: []gir.Parameter{
			*param("label", "utf8", "const char*"),
		}}
		require.False(t, m.HasUnsupportedCallback(f))
	})
}

func TestLocalTables(t *testing.T) {
	r := NewRegistry()
	m := NewMapper(r, "Gtk")
	m.RegisterLocalEnum("InternalMode")

	got := m.MapType(gir.TypeRef{Name: "InternalMode"}, false, nil)
	require.Equal(t, "InternalMode", got.TS)
	require.Equal(t, ffitype.Int{Size: 32}, got.FFI)
}
