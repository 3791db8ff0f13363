// Package chunk aggregates the compiled output each lazy-load entry needs at
// runtime, on top of an externally supplied chunking service.
package chunk

import (
	"errors"

	"loadable/internal/modgraph"
)

// Ref is an opaque reference to a chunk produced by the chunking service.
type Ref string

// Asset is a handle to one compiled output file.
type Asset struct {
	// Path is the output path as the bundler wrote it, slash-separated.
	Path string
}

// ScopeKind discriminates chunk scopes.
type ScopeKind uint8

const (
	// ScopeRoot assumes no chunks are already present.
	ScopeRoot ScopeKind = iota
	// ScopeInherited references a boundary module whose chunk set is
	// already guaranteed to be loaded.
	ScopeInherited
)

// Scope describes which chunks an entry may assume present. Entries without
// a boundary parent use RootScope.
type Scope struct {
	Kind ScopeKind
	// Parent identifies the boundary module whose computed chunk set is
	// inherited; nil for ScopeRoot.
	Parent *modgraph.Module
}

// RootScope is the scope with no assumed chunks.
func RootScope() Scope { return Scope{Kind: ScopeRoot} }

// InheritedScope assumes the parent boundary module's chunks are present.
func InheritedScope(parent *modgraph.Module) Scope {
	return Scope{Kind: ScopeInherited, Parent: parent}
}

// ErrUnavailable marks a chunking-service failure that poisons the whole
// manifest build: no entry's result is trustworthy without the service.
var ErrUnavailable = errors.New("chunking service unavailable")

// Fingerprinted is implemented by services that can digest their own
// configuration. Cache keys fold the digest in, so aggregation output is
// never reused after the service's chunk tables change.
type Fingerprinted interface {
	ConfigDigest() Digest
}

// Service is the chunking collaborator.
type Service interface {
	// AsyncLoader returns the chunk references the asynchronous loader for
	// module needs under the given scope.
	AsyncLoader(m *modgraph.Module, scope Scope) ([]Ref, error)
	// PrimaryOutputAssets resolves a chunk reference to its transitively
	// reachable primary output assets, in the bundler's order.
	PrimaryOutputAssets(ref Ref) ([]Asset, error)
	// ChunkItemID returns the stable identifier the bundler assigned to
	// the module's compiled output. It must be reproducible byte-for-byte
	// across rebuilds of an unchanged graph.
	ChunkItemID(m *modgraph.Module) (string, error)
}
