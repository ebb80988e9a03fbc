package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tliron/commonlog"

	"github.com/ivan-banha/gtkx-sub001/internal/generator"
	"github.com/ivan-banha/gtkx-sub001/internal/gir"
	"github.com/ivan-banha/gtkx-sub001/internal/manifest"

	_ "github.com/tliron/commonlog/simple"
)

// deriveVersion inspects build info for module version or vcs revision.
// preference order: module semantic version -> short commit hash -> "devel".
func deriveVersion() string {
	if bi, ok := debug.ReadBuildInfo(); ok {
		if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			return bi.Main.Version
		}
		var revision string
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				revision = s.Value
				break
			}
		}
		if len(revision) >= 12 { // short hash for readability
			return revision[:12]
		}
		if revision != "" {
			return revision
		}
	}
	return "devel"
}

// dirList is a repeatable flag collecting directories in order.
type dirList []string

func (d *dirList) String() string { return strings.Join(*d, string(os.PathListSeparator)) }

func (d *dirList) Set(value string) error {
	*d = append(*d, value)
	return nil
}

func main() {
	var configPath string
	var girDirs dirList
	var outDir string
	var cacheDir string
	var runtimeImport string
	var list bool
	var verbosity int
	flag.StringVar(&configPath, "config", "", "Path to girgen.toml or its directory (default: walk up from the working directory)")
	flag.Var(&girDirs, "gir-dir", "Directory to search for .gir files (repeatable, highest precedence first)")
	flag.StringVar(&outDir, "out", "", "Output directory for the generated package tree")
	flag.StringVar(&cacheDir, "cache-dir", "", "Directory for the persistent typelib cache")
	flag.StringVar(&runtimeImport, "runtime", "", "Module specifier of the FFI runtime package")
	flag.BoolVar(&list, "list", false, "Resolve and print the namespaces that would be generated, then exit")
	flag.BoolFunc("v", "Increase log verbosity (repeatable)", func(string) error {
		verbosity++
		return nil
	})
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [Namespace-Version ...]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nGirgen generates TypeScript bindings and JSX typings from GIR introspection data.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s -gir-dir=/usr/share/gir-1.0 -out=src/generated Gtk-4.0 GdkPixbuf-2.0\n", os.Args[0])
	}
	flag.Parse()

	_ = godotenv.Load()
	commonlog.Configure(verbosity, nil)

	if outDir == "" {
		outDir = os.Getenv("GIRGEN_OUT_DIR")
	}
	if cacheDir == "" {
		cacheDir = os.Getenv("GIRGEN_CACHE_DIR")
	}

	man, err := loadManifest(configPath)
	if err != nil {
		fail(err)
	}

	namespaces := flag.Args()
	if len(namespaces) == 0 && man != nil {
		namespaces = man.Namespaces
	}
	if len(namespaces) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no namespaces given (pass Namespace-Version arguments or list them in girgen.toml)\n\n")
		flag.Usage()
		os.Exit(1)
	}

	dirs := searchDirs(girDirs, man)

	if list {
		if err := listNamespaces(namespaces, dirs); err != nil {
			fail(err)
		}
		return
	}

	cfg := generator.Config{
		Namespaces:    namespaces,
		GirDirs:       dirs,
		OutDir:        outDir,
		CacheDir:      cacheDir,
		RuntimeImport: runtimeImport,
		Tool:          "girgen",
		Version:       deriveVersion(),
	}
	if man != nil {
		if cfg.OutDir == "" {
			cfg.OutDir = man.OutPath()
		}
		if cfg.CacheDir == "" {
			cfg.CacheDir = man.CachePath()
		}
		if cfg.RuntimeImport == "" {
			cfg.RuntimeImport = man.Output.Runtime
		}
		cfg.RootWidget = man.JSX.RootWidget
		cfg.BaseWidgetProps = man.JSX.BaseProps
		cfg.SkipClasses = man.Skip
	}

	if err := generator.Run(cfg); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "girgen: %v\n", err)
	os.Exit(1)
}

// loadManifest resolves the project configuration. An explicit -config path
// must exist; without one, a missing manifest is not an error.
func loadManifest(configPath string) (*manifest.Manifest, error) {
	if configPath == "" {
		return manifest.FindAndLoad(".")
	}
	info, err := os.Stat(configPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", configPath, err)
	}
	dir := configPath
	if !info.IsDir() {
		dir = filepath.Dir(configPath)
	}
	return manifest.Load(dir)
}

// searchDirs merges .gir search directories: flags first, then GIRGEN_GIR_DIR,
// then the manifest, then GI_GIR_PATH, with the conventional system locations
// as fallback.
func searchDirs(flagDirs []string, man *manifest.Manifest) []string {
	dirs := append([]string{}, flagDirs...)
	if env := os.Getenv("GIRGEN_GIR_DIR"); env != "" {
		dirs = append(dirs, filepath.SplitList(env)...)
	}
	if man != nil {
		dirs = append(dirs, man.GirDirPaths()...)
	}
	if env := os.Getenv("GI_GIR_PATH"); env != "" {
		dirs = append(dirs, filepath.SplitList(env)...)
	}
	if len(dirs) > 0 {
		dirs = append(dirs, gir.DefaultSearchDirs...)
	}
	return dirs
}

func listNamespaces(namespaces, dirs []string) error {
	refs := make([]gir.NamespaceRef, len(namespaces))
	for i, s := range namespaces {
		refs[i] = gir.ParseNamespaceRef(s)
	}
	set, err := gir.NewLoader(dirs).Load(refs)
	if err != nil {
		return err
	}
	for _, ns := range set.Namespaces {
		marker := " "
		if set.Requested[ns.Name] {
			marker = "*"
		}
		fmt.Printf("%s %s-%s\n", marker, ns.Name, ns.Version)
	}
	return nil
}
