package generator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ivan-banha/gtkx-sub001/internal/gir"
	"github.com/ivan-banha/gtkx-sub001/internal/typemap"
)

func jsxTestSet() *gir.Set {
	demo := &gir.Namespace{
		Name:          "Demo",
		Version:       "1.0",
		SharedLibrary: "libdemo-1.so",
		Classes: []gir.Class{
			{
				Name:     "Widget",
				Abstract: true,
				Properties: []gir.Property{
					{Name: "visible", Writable: true, Type: &gir.RawType{Name: "gboolean"}},
					{Name: "tooltip", Writable: true, TransferOwnership: "none", Type: &gir.RawType{Name: "utf8"}},
				},
				Signals: []gir.Signal{{Name: "show"}},
			},
			{
				Name:   "Label",
				Parent: "Widget",
				Properties: []gir.Property{
					{Name: "label", Writable: true, TransferOwnership: "none", Type: &gir.RawType{Name: "utf8"}},
					{Name: "lines", Type: &gir.RawType{Name: "gint"}},
				},
				Methods: []gir.Function{
					{
						Name:        "append",
						CIdentifier: "demo_label_append",
						Parameters:  []gir.Parameter{{Name: "text", TransferOwnership: "none", Type: &gir.RawType{Name: "utf8"}}},
					},
				},
			},
			{
				Name:   "Box",
				Parent: "Widget",
				Methods: []gir.Function{
					{
						Name:        "append",
						CIdentifier: "demo_box_append",
						Parameters:  []gir.Parameter{{Name: "child", Type: &gir.RawType{Name: "Widget"}}},
					},
					{
						Name:        "remove",
						CIdentifier: "demo_box_remove",
						Parameters:  []gir.Parameter{{Name: "child", Type: &gir.RawType{Name: "Widget"}}},
					},
				},
			},
			{
				Name:   "Window",
				Parent: "Widget",
				Properties: []gir.Property{
					{Name: "title", Writable: true, TransferOwnership: "none", Type: &gir.RawType{Name: "utf8"}},
					{Name: "titlebar", Writable: true, Type: &gir.RawType{Name: "Widget"}},
					{Name: "child", Writable: true, Type: &gir.RawType{Name: "Widget"}},
				},
				Methods: []gir.Function{
					{
						Name:        "set_child",
						CIdentifier: "demo_window_set_child",
						Parameters:  []gir.Parameter{{Name: "child", Type: &gir.RawType{Name: "Widget"}}},
					},
				},
			},
			{Name: "SubBox", Parent: "Box"},
			{Name: "Clock"},
			{Name: "Veiled", Parent: "Widget", IntrospectableAttr: "0"},
		},
	}
	return &gir.Set{Namespaces: []*gir.Namespace{demo}, Requested: map[string]bool{"Demo": true}}
}

func newJSXGen(set *gir.Set, baseProps ...string) *jsxGenerator {
	cfg := &Config{RootWidget: "Demo.Widget", BaseWidgetProps: baseProps}
	cfg.applyDefaults()
	mapper := typemap.NewMapper(typemap.FromNamespaces(set.Namespaces), "Demo")
	mapper.SetGenerated([]string{"Demo"})
	return &jsxGenerator{
		cfg:    cfg,
		h:      buildHierarchy(set),
		mapper: mapper,
		ns:     set.Namespaces[0],
		header: fileHeader{Tool: "girgen", Source: "Demo-1.0.gir"},
	}
}

func propNames(iface propsInterface) []string {
	out := make([]string, 0, len(iface.Props))
	for _, p := range iface.Props {
		out = append(out, p.Name)
	}
	return out
}

func TestJSXWidgets(t *testing.T) {
	set := jsxTestSet()

	t.Run("widgets are the root's descendants in document order", func(t *testing.T) {
		j := newJSXGen(set)
		var names []string
		for _, e := range j.widgets() {
			names = append(names, e.Class.Name)
		}
		require.Equal(t, []string{"Widget", "Label", "Box", "Window", "SubBox"}, names)
	})

	t.Run("a missing root widget disables the layer", func(t *testing.T) {
		j := newJSXGen(set)
		j.cfg.RootWidget = "Demo.Missing"
		require.Nil(t, j.widgets())
		model, facts, u := j.Generate()
		require.Nil(t, model)
		require.Nil(t, facts)
		require.Nil(t, u)
	})
}

func TestJSXContainers(t *testing.T) {
	j := newJSXGen(jsxTestSet())
	facts := j.analyzeContainers(j.widgets())

	t.Run("single widget-parameter methods mark capabilities", func(t *testing.T) {
		require.Equal(t, containerFacts{Append: true, Remove: true}, facts["Demo.Box"])
	})

	t.Run("set_child plus named slots", func(t *testing.T) {
		require.Equal(t, containerFacts{SetChild: true, Slots: []string{"titlebar"}}, facts["Demo.Window"])
	})

	t.Run("non-widget parameters do not count", func(t *testing.T) {
		require.True(t, facts["Demo.Label"].empty())
	})
}

func TestJSXGenerate(t *testing.T) {
	model, facts, u := newJSXGen(jsxTestSet(), "visible").Generate()
	require.NotNil(t, model)
	require.NotNil(t, facts)
	require.NotNil(t, u)

	byName := map[string]propsInterface{}
	for _, iface := range model.Interfaces {
		byName[iface.Name] = iface
	}

	t.Run("prop interfaces follow the class chain", func(t *testing.T) {
		require.Len(t, model.Interfaces, 5)
		require.Equal(t, "", byName["DemoWidgetProps"].Extends)
		require.Equal(t, "DemoWidgetProps", byName["DemoLabelProps"].Extends)
		require.Equal(t, "DemoWidgetProps", byName["DemoWindowProps"].Extends)
		require.Equal(t, "DemoBoxProps", byName["DemoSubBoxProps"].Extends)
	})

	t.Run("base contract props are excluded", func(t *testing.T) {
		names := propNames(byName["DemoWidgetProps"])
		require.NotContains(t, names, "visible")
		require.Contains(t, names, "tooltip")
	})

	t.Run("signals become handler props", func(t *testing.T) {
		w := byName["DemoWidgetProps"]
		require.Contains(t, propNames(w), "onShow")
		for _, p := range w.Props {
			if p.Name == "onShow" {
				require.Equal(t, "(self: Widget) => void", p.TS)
			}
		}
	})

	t.Run("widget-typed props take elements not instances", func(t *testing.T) {
		props := map[string]string{}
		for _, p := range byName["DemoWindowProps"].Props {
			props[p.Name] = p.TS
		}
		require.Equal(t, "string", props["title"])
		require.Equal(t, "unknown", props["titlebar"])
		require.Equal(t, "unknown", props["child"])
	})

	t.Run("containers admit children", func(t *testing.T) {
		require.Contains(t, propNames(byName["DemoBoxProps"]), "children")
		require.Contains(t, propNames(byName["DemoWindowProps"]), "children")
		require.NotContains(t, propNames(byName["DemoLabelProps"]), "children")
	})

	t.Run("slot unions are namespaced", func(t *testing.T) {
		require.Equal(t, []slotUnion{{Name: "DemoWindowSlot", Slots: []string{"titlebar"}}}, model.SlotTypes)
	})

	t.Run("intrinsics skip abstract widgets", func(t *testing.T) {
		require.Equal(t, []intrinsicEntry{
			{Tag: "demoLabel", Props: "DemoLabelProps"},
			{Tag: "demoBox", Props: "DemoBoxProps"},
			{Tag: "demoWindow", Props: "DemoWindowProps"},
			{Tag: "demoSubBox", Props: "DemoSubBoxProps"},
		}, model.Intrinsics)
	})
}

func TestJSXParentProps(t *testing.T) {
	t.Run("skipped ancestors are stepped over", func(t *testing.T) {
		j := newJSXGen(jsxTestSet())
		j.mapper.MarkSkipped("Demo.Box")
		got := j.parentPropsExpr(j.h.classes["Demo.SubBox"], typemap.NewUsage())
		require.Equal(t, "DemoWidgetProps", got)
	})

	t.Run("the root widget extends nothing", func(t *testing.T) {
		j := newJSXGen(jsxTestSet())
		require.Equal(t, "", j.parentPropsExpr(j.h.classes["Demo.Widget"], typemap.NewUsage()))
	})
}
