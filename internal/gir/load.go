package gir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	goversion "github.com/hashicorp/go-version"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("girgen.gir")

// DefaultSearchDirs are the conventional gobject-introspection install
// locations, consulted when no explicit directories are configured.
var DefaultSearchDirs = []string{
	"/usr/share/gir-1.0",
	"/usr/local/share/gir-1.0",
}

// repositoryCacheSize bounds the in-process repository cache. A full
// desktop stack (Gtk, Gdk, Gsk, Pango, Gio, ...) stays well under this.
const repositoryCacheSize = 64

// NamespaceRef names a namespace to load. An empty Version means "highest
// available".
type NamespaceRef struct {
	Name    string
	Version string
}

// ParseNamespaceRef splits the "Gtk-4.0" command-line spelling into name
// and version; a bare "Gtk" leaves the version unpinned.
func ParseNamespaceRef(s string) NamespaceRef {
	if i := strings.LastIndexByte(s, '-'); i > 0 {
		return NamespaceRef{Name: s[:i], Version: s[i+1:]}
	}
	return NamespaceRef{Name: s}
}

func (r NamespaceRef) String() string {
	if r.Version == "" {
		return r.Name
	}
	return r.Name + "-" + r.Version
}

// Loader resolves and parses .gir files, following include edges so every
// namespace a requested one depends on is available for type resolution.
// Parsed repositories are kept in a bounded LRU keyed by file path; an
// optional typelib cache persists parses across runs.
type Loader struct {
	dirs     []string
	memo     *lru.Cache[string, *Repository]
	typelibs *TypelibCache
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithTypelibCache attaches a persistent parse cache.
func WithTypelibCache(tc *TypelibCache) LoaderOption {
	return func(l *Loader) { l.typelibs = tc }
}

// NewLoader builds a loader over the given search directories, earlier
// directories taking precedence. An empty list falls back to
// DefaultSearchDirs.
func NewLoader(dirs []string, opts ...LoaderOption) *Loader {
	if len(dirs) == 0 {
		dirs = DefaultSearchDirs
	}
	memo, _ := lru.New[string, *Repository](repositoryCacheSize)
	l := &Loader{dirs: dirs, memo: memo}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Set is a load result: the requested namespaces plus their transitive
// includes, in dependency-first order.
type Set struct {
	Namespaces []*Namespace
	Requested  map[string]bool
	byName     map[string]*Namespace
}

// Namespace returns the loaded namespace with the given name, or nil.
func (s *Set) Namespace(name string) *Namespace { return s.byName[name] }

// Load resolves every ref and its include closure. Namespaces are parsed
// once even when reachable through several include paths.
func (l *Loader) Load(refs []NamespaceRef) (*Set, error) {
	set := &Set{Requested: map[string]bool{}, byName: map[string]*Namespace{}}
	for _, ref := range refs {
		if err := l.load(ref, set, map[string]bool{}); err != nil {
			return nil, err
		}
		set.Requested[ref.Name] = true
	}
	return set, nil
}

func (l *Loader) load(ref NamespaceRef, set *Set, loading map[string]bool) error {
	if _, ok := set.byName[ref.Name]; ok {
		return nil
	}
	if loading[ref.Name] {
		// include cycle; the outer frame finishes the namespace
		return nil
	}
	loading[ref.Name] = true
	defer delete(loading, ref.Name)

	path, err := l.resolveFile(ref)
	if err != nil {
		return err
	}
	repo, err := l.parse(path)
	if err != nil {
		return err
	}
	for _, inc := range repo.Includes {
		if err := l.load(NamespaceRef{Name: inc.Name, Version: inc.Version}, set, loading); err != nil {
			return fmt.Errorf("resolve include %s-%s of %s: %w", inc.Name, inc.Version, ref.Name, err)
		}
	}
	set.byName[repo.Namespace.Name] = &repo.Namespace
	set.Namespaces = append(set.Namespaces, &repo.Namespace)
	log.Debugf("loaded namespace %s-%s from %s", repo.Namespace.Name, repo.Namespace.Version, path)
	return nil
}

func (l *Loader) parse(path string) (*Repository, error) {
	if repo, ok := l.memo.Get(path); ok {
		return repo, nil
	}
	if l.typelibs != nil {
		if repo, ok := l.typelibs.Get(path); ok {
			l.memo.Add(path, repo)
			return repo, nil
		}
	}
	repo, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	if l.typelibs != nil {
		l.typelibs.Put(path, repo)
	}
	l.memo.Add(path, repo)
	return repo, nil
}

// resolveFile locates the .gir file for ref. Pinned versions must match
// exactly; unpinned refs pick the highest parseable version across all
// search directories, earlier directories winning ties.
func (l *Loader) resolveFile(ref NamespaceRef) (string, error) {
	if ref.Version != "" {
		for _, dir := range l.dirs {
			path := filepath.Join(dir, ref.Name+"-"+ref.Version+".gir")
			if fileExists(path) {
				return path, nil
			}
		}
		return "", fmt.Errorf("gir file %s-%s.gir not found in %s", ref.Name, ref.Version, strings.Join(l.dirs, ", "))
	}

	var bestPath string
	var bestVer *goversion.Version
	for _, dir := range l.dirs {
		matches, err := filepath.Glob(filepath.Join(dir, ref.Name+"-*.gir"))
		if err != nil {
			continue
		}
		for _, m := range matches {
			base := strings.TrimSuffix(filepath.Base(m), ".gir")
			verStr := strings.TrimPrefix(base, ref.Name+"-")
			ver, err := goversion.NewVersion(verStr)
			if err != nil {
				continue
			}
			if bestVer == nil || ver.GreaterThan(bestVer) {
				bestVer, bestPath = ver, m
			}
		}
	}
	if bestPath == "" {
		return "", fmt.Errorf("no gir file for namespace %s in %s", ref.Name, strings.Join(l.dirs, ", "))
	}
	return bestPath, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
