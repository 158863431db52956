// Package mount provides the read-only source mounts the pipeline
// reads scripts from: a filesystem directory or an in-memory map (used
// by tests and embedded callers). Paths use POSIX slashes under a
// conventional "scripts/" namespace, and lookups succeed with or
// without the prefix.
package mount

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Mount is the read-only bundle of named text blobs the extractors
// walk. Implementations are safe for concurrent readers and cache
// monotonically: an entry never invalidates during a build.
type Mount interface {
	// Read returns the blob at path; the bool is false when absent.
	// Lookups are accepted with or without the "scripts/" prefix.
	Read(path string) (string, bool)
	// FileList returns every path in the normalized namespace, sorted.
	FileList() []string
}

// pathCandidates returns the lookup keys for a path, with and without
// the scripts/ prefix.
func pathCandidates(path string) []string {
	p := strings.TrimLeft(strings.ReplaceAll(path, "\\", "/"), "/")
	if p == "" {
		return nil
	}
	if strings.HasPrefix(p, "scripts/") {
		return []string{p, strings.TrimPrefix(p, "scripts/")}
	}
	return []string{p, "scripts/" + p}
}

// Map is an in-memory mount. Keys may be stored with or without the
// scripts/ prefix; FileList reports them under the normalized
// namespace.
type Map map[string]string

// Read implements Mount.
func (m Map) Read(path string) (string, bool) {
	for _, cand := range pathCandidates(path) {
		if text, ok := m[cand]; ok {
			return text, true
		}
	}
	return "", false
}

// FileList implements Mount.
func (m Map) FileList() []string {
	out := make([]string, 0, len(m))
	for k := range m {
		if !strings.HasPrefix(k, "scripts/") {
			k = "scripts/" + k
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Dir mounts a scripts directory from the filesystem. Reads are cached;
// the cache is monotone for the lifetime of the mount.
type Dir struct {
	root  string
	files []string

	mu    sync.RWMutex
	cache map[string]string
}

// OpenDir walks root and mounts every file under the scripts/
// namespace.
func OpenDir(root string) (*Dir, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open scripts dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, "scripts/"+filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk scripts dir: %w", err)
	}
	sort.Strings(files)

	return &Dir{
		root:  root,
		files: files,
		cache: make(map[string]string),
	}, nil
}

// Root returns the mounted directory.
func (d *Dir) Root() string { return d.root }

// Read implements Mount.
func (d *Dir) Read(path string) (string, bool) {
	for _, cand := range pathCandidates(path) {
		key := cand
		if !strings.HasPrefix(key, "scripts/") {
			key = "scripts/" + key
		}

		d.mu.RLock()
		text, ok := d.cache[key]
		d.mu.RUnlock()
		if ok {
			return text, true
		}

		real := filepath.Join(d.root, filepath.FromSlash(strings.TrimPrefix(key, "scripts/")))
		data, err := os.ReadFile(real)
		if err != nil {
			continue
		}
		out := string(data)
		d.mu.Lock()
		d.cache[key] = out
		d.mu.Unlock()
		return out, true
	}
	return "", false
}

// FileList implements Mount.
func (d *Dir) FileList() []string {
	return append([]string(nil), d.files...)
}

// Finder adds short-name lookup over a mount, used by CLI commands that
// accept "twigs" for scripts/prefabs/twigs.lua. It is a convenience
// outside the core pipeline.
type Finder struct {
	m     Mount
	index map[string][]string
}

// NewFinder indexes a mount's Lua files by collapsed basename.
func NewFinder(m Mount) *Finder {
	f := &Finder{m: m, index: make(map[string][]string)}
	for _, p := range m.FileList() {
		if !strings.HasSuffix(p, ".lua") {
			continue
		}
		f.index[collapseName(baseName(p))] = append(f.index[collapseName(baseName(p))], p)
	}
	return f
}

func baseName(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		p = p[i+1:]
	}
	return strings.TrimSuffix(p, ".lua")
}

func collapseName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}

// Find resolves a short name to a path in the normalized namespace:
// direct path hits first, then the prefabs/ convention, then the fuzzy
// basename index (preferring prefabs on ambiguity).
func (f *Finder) Find(name string) (string, bool) {
	q := strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if q == "" {
		return "", false
	}

	known := map[string]bool{}
	for _, p := range f.m.FileList() {
		known[p] = true
	}

	for _, cand := range pathCandidates(q) {
		if !strings.HasPrefix(cand, "scripts/") {
			cand = "scripts/" + cand
		}
		if known[cand] {
			return cand, true
		}
	}

	base := strings.TrimSuffix(q, ".lua")
	for _, cand := range []string{
		"scripts/prefabs/" + base + ".lua",
		"scripts/" + base + ".lua",
		"scripts/" + base,
	} {
		if known[cand] {
			return cand, true
		}
	}

	hits := f.index[collapseName(baseName(base))]
	switch {
	case len(hits) == 1:
		return hits[0], true
	case len(hits) > 1:
		for _, h := range hits {
			if strings.HasPrefix(h, "scripts/prefabs/") {
				return h, true
			}
		}
		return hits[0], true
	}

	return "", false
}
