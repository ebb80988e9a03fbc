package generator

// Config drives one generation run.
type Config struct {
	// Namespaces lists what to generate, in "Gtk-4.0" form. Includes are
	// loaded for resolution but only listed namespaces produce output.
	Namespaces []string

	// GirDirs are the .gir search directories, highest precedence first.
	// Empty means the conventional system locations.
	GirDirs []string

	// OutDir is the root of the emitted package tree.
	OutDir string

	// CacheDir holds the persistent typelib cache; empty disables it.
	CacheDir string

	// RuntimeImport is the module specifier of the runtime package.
	RuntimeImport string

	// RootWidget is the qualified class JSX generation anchors on; widgets
	// are its descendants.
	RootWidget string

	// SkipClasses force-excludes qualified class names beyond the computed
	// skip set.
	SkipClasses []string

	// BaseWidgetProps are prop names owned by the reconciler's base
	// contract and therefore left out of generated prop interfaces.
	BaseWidgetProps []string

	// Tool and Version stamp the generated-file headers.
	Tool    string
	Version string
}

func (c *Config) applyDefaults() {
	if c.RuntimeImport == "" {
		c.RuntimeImport = "@gtkx/ffi"
	}
	if c.RootWidget == "" {
		c.RootWidget = "Gtk.Widget"
	}
	if len(c.BaseWidgetProps) == 0 {
		c.BaseWidgetProps = []string{"ref", "key", "children"}
	}
	if c.Tool == "" {
		c.Tool = "girgen"
	}
	if c.OutDir == "" {
		c.OutDir = "generated"
	}
}
