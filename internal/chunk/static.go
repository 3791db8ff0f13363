package chunk

import (
	"fmt"
	"sort"

	"loadable/internal/modgraph"
)

// StaticService is a Service backed by precomputed tables. It serves project
// fixtures and tests; a real bundler integration implements Service against
// its own chunk graph.
type StaticService struct {
	// Fingerprint identifies the chunking context; it feeds the derived
	// chunk item ids.
	Fingerprint string
	// Loaders maps module path to the chunk references its async loader
	// pulls in, in reference order.
	Loaders map[string][]Ref
	// Assets maps a chunk reference to its primary output assets.
	Assets map[Ref][]Asset
	// Covered maps a boundary module path to the set of references its
	// own chunk set already guarantees; inherited scopes subtract them.
	Covered map[string]map[Ref]bool
	// IDs optionally pins explicit chunk item ids per module path;
	// modules without a pinned id get a derived one.
	IDs map[string]string
}

// AsyncLoader implements Service.
func (s *StaticService) AsyncLoader(m *modgraph.Module, scope Scope) ([]Ref, error) {
	if s == nil {
		return nil, ErrUnavailable
	}
	refs, ok := s.Loaders[m.Path]
	if !ok {
		return nil, fmt.Errorf("no async loader output for module %q", m.Path)
	}
	if scope.Kind != ScopeInherited || scope.Parent == nil {
		return refs, nil
	}
	covered := s.Covered[scope.Parent.Path]
	if len(covered) == 0 {
		return refs, nil
	}
	filtered := make([]Ref, 0, len(refs))
	for _, ref := range refs {
		if covered[ref] {
			continue
		}
		filtered = append(filtered, ref)
	}
	return filtered, nil
}

// PrimaryOutputAssets implements Service.
func (s *StaticService) PrimaryOutputAssets(ref Ref) ([]Asset, error) {
	if s == nil {
		return nil, ErrUnavailable
	}
	assets, ok := s.Assets[ref]
	if !ok {
		return nil, fmt.Errorf("unknown chunk reference %q", ref)
	}
	return assets, nil
}

// ChunkItemID implements Service.
func (s *StaticService) ChunkItemID(m *modgraph.Module) (string, error) {
	if s == nil {
		return "", ErrUnavailable
	}
	if id, ok := s.IDs[m.Path]; ok {
		return id, nil
	}
	return DeriveID(m.Path, s.Fingerprint), nil
}

// ConfigDigest implements Fingerprinted. Every table the service answers
// from flows into the digest, in sorted key order, so any change to the
// chunk outputs changes the digest.
func (s *StaticService) ConfigDigest() Digest {
	var deps []Digest
	for _, path := range sortedKeys(s.Loaders) {
		deps = append(deps, HashString(path))
		for _, ref := range s.Loaders[path] {
			deps = append(deps, HashString(string(ref)))
		}
	}
	for _, ref := range sortedKeys(s.Assets) {
		deps = append(deps, HashString(string(ref)))
		for _, a := range s.Assets[ref] {
			deps = append(deps, HashString(a.Path))
		}
	}
	for _, path := range sortedKeys(s.Covered) {
		deps = append(deps, HashString(path))
		for _, ref := range sortedKeys(s.Covered[path]) {
			deps = append(deps, HashString(string(ref)))
		}
	}
	for _, path := range sortedKeys(s.IDs) {
		deps = append(deps, HashString(path), HashString(s.IDs[path]))
	}
	return Combine(HashString(s.Fingerprint), deps...)
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
