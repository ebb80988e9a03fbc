package typemap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ivan-banha/gtkx-sub001/internal/gir"
)

func TestRegistryRegistration(t *testing.T) {
	t.Run("idempotent per qualified name", func(t *testing.T) {
		r := NewRegistry()
		first := r.RegisterClass("Gtk", "Button", "GtkButton", "libgtk-4.so.1", "gtk_button_get_type")
		second := r.RegisterClass("Gtk", "Button", "OTHER", "other.so", "other_get_type")
		require.Same(t, first, second)
		require.Equal(t, "GtkButton", second.GLibTypeName)
		require.Len(t, r.Entries(), 1)
	})

	t.Run("collision across namespaces gets a prefix", func(t *testing.T) {
		r := NewRegistry()
		gtk := r.RegisterClass("Gtk", "Settings", "GtkSettings", "libgtk-4.so.1", "gtk_settings_get_type")
		gio := r.RegisterClass("Gio", "Settings", "GSettings", "libgio-2.0.so.0", "g_settings_get_type")
		require.Equal(t, "Settings", gtk.TransformedName)
		require.Equal(t, "GioSettings", gio.TransformedName)
	})

	t.Run("every later namespace gets its own prefix", func(t *testing.T) {
		r := NewRegistry()
		r.RegisterClass("Gtk", "Settings", "GtkSettings", "libgtk-4.so.1", "gtk_settings_get_type")
		r.RegisterClass("Gio", "Settings", "GSettings", "libgio-2.0.so.0", "g_settings_get_type")
		src := r.RegisterClass("GtkSource", "Settings", "GtkSourceSettings", "libgtksourceview-5.so.0", "gtk_source_settings_get_type")
		require.Equal(t, "GtkSourceSettings", src.TransformedName)
	})
}

func TestRegistryResolveIn(t *testing.T) {
	r := NewRegistry()
	r.RegisterClass("Gdk", "Display", "GdkDisplay", "libgdk.so", "gdk_display_get_type")
	r.RegisterClass("Gtk", "Widget", "GtkWidget", "libgtk-4.so.1", "gtk_widget_get_type")
	r.RegisterEnum("Gtk", "Align")

	t.Run("qualified name resolves directly", func(t *testing.T) {
		e := r.ResolveIn("Gdk.Display", "Gtk")
		require.NotNil(t, e)
		require.Equal(t, "Gdk", e.Namespace)
	})

	t.Run("unqualified prefers current namespace", func(t *testing.T) {
		e := r.ResolveIn("Widget", "Gtk")
		require.NotNil(t, e)
		require.Equal(t, "Gtk.Widget", e.Qualified())
	})

	t.Run("unqualified falls back to registration order", func(t *testing.T) {
		e := r.ResolveIn("Display", "Gtk")
		require.NotNil(t, e)
		require.Equal(t, "Gdk.Display", e.Qualified())
	})

	t.Run("fallback also matches transformed names", func(t *testing.T) {
		r := NewRegistry()
		r.RegisterClass("Gtk", "Settings", "GtkSettings", "libgtk-4.so.1", "gtk_settings_get_type")
		gio := r.RegisterClass("Gio", "Settings", "GSettings", "libgio-2.0.so.0", "g_settings_get_type")
		e := r.ResolveIn("GioSettings", "Gtk")
		require.Same(t, gio, e)
	})

	t.Run("miss returns nil", func(t *testing.T) {
		require.Nil(t, r.ResolveIn("Nope", "Gtk"))
		require.Nil(t, r.Resolve("Gtk.Nope"))
	})
}

func TestFromNamespaces(t *testing.T) {
	ns := &gir.Namespace{
		Name:          "Gtk",
		Version:       "4.0",
		SharedLibrary: "libgtk-4.so.1,libgtk-4.so",
		Classes: []gir.Class{
			{Name: "Button", GLibTypeName: "GtkButton", GLibGetType: "gtk_button_get_type"},
		},
		Interfaces: []gir.Interface{
			{Name: "Orientable", GLibTypeName: "GtkOrientable", GLibGetType: "gtk_orientable_get_type"},
		},
		Enumerations: []gir.Enumeration{{Name: "Align"}},
		Bitfields:    []gir.Enumeration{{Name: "StateFlags"}},
		Records: []gir.Record{
			{Name: "Border", GLibTypeName: "GtkBorder", GLibGetType: "gtk_border_get_type"},
			{Name: "WidgetPrivate", Disguised: true},
		},
		Callbacks: []gir.Callback{{Name: "TickCallback"}},
	}

	r := FromNamespaces([]*gir.Namespace{ns})

	t.Run("registered kinds", func(t *testing.T) {
		require.Equal(t, KindClass, r.Resolve("Gtk.Button").Kind)
		require.Equal(t, KindInterface, r.Resolve("Gtk.Orientable").Kind)
		require.Equal(t, KindEnum, r.Resolve("Gtk.Align").Kind)
		require.Equal(t, KindEnum, r.Resolve("Gtk.StateFlags").Kind)
		require.Equal(t, KindCallback, r.Resolve("Gtk.TickCallback").Kind)
	})

	t.Run("boxed records only", func(t *testing.T) {
		require.NotNil(t, r.Resolve("Gtk.Border"))
		require.Nil(t, r.Resolve("Gtk.WidgetPrivate"))
	})

	t.Run("entries carry the primary library", func(t *testing.T) {
		require.Equal(t, "libgtk-4.so.1", r.Resolve("Gtk.Border").SharedLibrary)
	})
}
