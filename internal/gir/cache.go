package gir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
)

// cacheFormat is bumped whenever the parsed model changes shape; stale
// entries are silently discarded and reparsed.
const cacheFormat = 3

// TypelibCache persists parsed repositories between runs as CBOR blobs,
// keyed by source path and validated against the source file's size and
// modification time. Every miss, stale hit or decode failure degrades to a
// fresh parse; the cache never makes a run fail.
type TypelibCache struct {
	dir string
}

type cacheEntry struct {
	Format     int
	Source     string
	Size       int64
	ModTime    int64
	Repository *Repository
}

// NewTypelibCache opens (creating if needed) a cache rooted at dir.
func NewTypelibCache(dir string) (*TypelibCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create typelib cache dir: %w", err)
	}
	return &TypelibCache{dir: dir}, nil
}

func (c *TypelibCache) entryPath(source string) string {
	sum := sha256.Sum256([]byte(source))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:12])+".typelib")
}

// Get returns the cached parse of source if it is still valid.
func (c *TypelibCache) Get(source string) (*Repository, bool) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, false
	}
	raw, err := os.ReadFile(c.entryPath(source))
	if err != nil {
		return nil, false
	}
	var entry cacheEntry
	if err := cbor.Unmarshal(raw, &entry); err != nil {
		log.Debugf("discarding unreadable typelib cache entry for %s: %s", source, err.Error())
		return nil, false
	}
	if entry.Format != cacheFormat || entry.Source != source {
		return nil, false
	}
	if entry.Size != info.Size() || entry.ModTime != info.ModTime().UnixNano() {
		return nil, false
	}
	return entry.Repository, true
}

// Put stores repo as the cached parse of source. Failures are logged and
// swallowed; the caller already holds the parse it needs.
func (c *TypelibCache) Put(source string, repo *Repository) {
	info, err := os.Stat(source)
	if err != nil {
		return
	}
	raw, err := cbor.Marshal(cacheEntry{
		Format:     cacheFormat,
		Source:     source,
		Size:       info.Size(),
		ModTime:    info.ModTime().UnixNano(),
		Repository: repo,
	})
	if err != nil {
		log.Errorf("encode typelib cache entry for %s: %s", source, err.Error())
		return
	}
	final := c.entryPath(source)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		log.Errorf("write typelib cache entry for %s: %s", source, err.Error())
		return
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		log.Errorf("commit typelib cache entry for %s: %s", source, err.Error())
	}
}
