package generator

import (
	"errors"
	"sort"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/ivan-banha/gtkx-sub001/internal/gir"
	"github.com/ivan-banha/gtkx-sub001/internal/typemap"
)

var log = commonlog.GetLogger("girgen.generator")

// Run executes one generation pass: load the requested namespaces with
// their include closure, build the cross-namespace type registry and class
// hierarchy, generate each requested namespace, then write the artifacts
// plus the root registry module.
//
// The registry must be complete before any namespace generates; mappers
// treat it as read-only from then on.
func Run(cfg Config) error {
	cfg.applyDefaults()
	if len(cfg.Namespaces) == 0 {
		return errors.New("no namespaces requested")
	}

	set, err := loadNamespaces(&cfg)
	if err != nil {
		return err
	}

	registry := typemap.FromNamespaces(set.Namespaces)
	h := buildHierarchy(set)

	generated := make([]string, 0, len(set.Requested))
	for _, ns := range set.Namespaces {
		if set.Requested[ns.Name] {
			generated = append(generated, ns.Name)
		}
	}

	var artifacts []artifact
	for _, ns := range set.Namespaces {
		if !set.Requested[ns.Name] {
			continue
		}
		mapper := typemap.NewMapper(registry, ns.Name)
		mapper.SetGenerated(generated)
		ng := &namespaceGenerator{
			cfg:    &cfg,
			h:      h,
			mapper: mapper,
			ns:     ns,
			header: headerFor(&cfg, ns),
		}
		files := ng.Generate()
		log.Infof("generated namespace %s-%s: %d modules", ns.Name, ns.Version, len(files))
		artifacts = append(artifacts, files...)
	}

	artifacts = append(artifacts, registryArtifact(&cfg, set, generated))
	return writeArtifacts(cfg.OutDir, artifacts)
}

func loadNamespaces(cfg *Config) (*gir.Set, error) {
	var opts []gir.LoaderOption
	if cfg.CacheDir != "" {
		tc, err := gir.NewTypelibCache(cfg.CacheDir)
		if err != nil {
			log.Errorf("typelib cache unavailable, parsing cold: %s", err.Error())
		} else {
			opts = append(opts, gir.WithTypelibCache(tc))
		}
	}
	loader := gir.NewLoader(cfg.GirDirs, opts...)

	refs := make([]gir.NamespaceRef, 0, len(cfg.Namespaces))
	for _, s := range cfg.Namespaces {
		refs = append(refs, gir.ParseNamespaceRef(s))
	}
	return loader.Load(refs)
}

// registryArtifact builds the root module registering every generated
// namespace, longest name first so longest-prefix stripping resolves
// ambiguous GType names to the most specific namespace.
func registryArtifact(cfg *Config, set *gir.Set, generated []string) artifact {
	entries := make([]registryEntry, 0, len(generated))
	sources := make([]string, 0, len(generated))
	for _, name := range generated {
		entries = append(entries, registryEntry{
			Namespace: name,
			Path:      "./" + strings.ToLower(name) + "/index.js",
		})
		if ns := set.Namespace(name); ns != nil {
			sources = append(sources, ns.Name+"-"+ns.Version)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].Namespace) != len(entries[j].Namespace) {
			return len(entries[i].Namespace) > len(entries[j].Namespace)
		}
		return entries[i].Namespace < entries[j].Namespace
	})
	return artifact{
		Path:     "registry.ts",
		Template: tmplRegistry,
		Data: &registryModel{
			Header:  fileHeader{Tool: toolLine(cfg), Source: strings.Join(sources, ", ")},
			Runtime: cfg.RuntimeImport,
			Entries: entries,
		},
	}
}

func toolLine(cfg *Config) string {
	if cfg.Version != "" {
		return cfg.Tool + " " + cfg.Version
	}
	return cfg.Tool
}

func headerFor(cfg *Config, ns *gir.Namespace) fileHeader {
	return fileHeader{Tool: toolLine(cfg), Source: ns.Name + "-" + ns.Version + ".gir"}
}
