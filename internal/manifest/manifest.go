// Package manifest serializes the aggregated entry-to-files correlation into
// the lazy-load manifest document.
package manifest

import (
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"strings"

	"loadable/internal/chunk"
)

// Entry is one manifest record. The field set is additive-only: consumers
// require `id` and `files` to stay present under these names.
type Entry struct {
	ID    string   `json:"id"`
	Files []string `json:"files"`
}

// Manifest maps an entry id to its record. Keys are unique; on collision the
// later write wins.
type Manifest map[string]Entry

// Build converts aggregated entries into a manifest. Asset paths are made
// relative to clientRoot (POSIX separators); an asset outside clientRoot is
// dropped silently without removing its entry. Entries are inserted in input
// order, so a duplicated id resolves last-write-wins.
func Build(entries []chunk.AggregatedEntry, clientRoot string) Manifest {
	m := make(Manifest, len(entries))
	for _, e := range entries {
		files := make([]string, 0, len(e.Assets))
		for _, a := range e.Assets {
			rel, ok := pathWithinRoot(clientRoot, a.Path)
			if !ok {
				continue
			}
			files = append(files, rel)
		}
		m[e.ID] = Entry{ID: e.ID, Files: files}
	}
	return m
}

// pathWithinRoot returns p relative to root, or ok=false when p does not
// live under root. Both paths are slash-separated.
func pathWithinRoot(root, p string) (string, bool) {
	p = path.Clean(filepath.ToSlash(p))
	root = path.Clean(filepath.ToSlash(root))
	if root == "." || root == "" {
		return p, true
	}
	if p == root {
		return ".", true
	}
	if strings.HasPrefix(p, root+"/") {
		return p[len(root)+1:], true
	}
	return "", false
}

// Encode renders the manifest as pretty-printed JSON. Map keys serialize in
// sorted order, so an unchanged manifest encodes byte-identically.
func Encode(m Manifest) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// Write atomically writes the manifest to outputPath: the document lands via
// temp file plus rename, so a partial or interrupted write never surfaces.
func Write(outputPath string, m Manifest) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "manifest-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, outputPath)
}
