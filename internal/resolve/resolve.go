// Package resolve turns raw import path literals into concrete modules using
// an externally supplied resolution service.
package resolve

import (
	"context"

	"loadable/internal/modgraph"
)

// Mode selects the resolution semantics. Lazy-load imports resolve through
// the same path-matching rules as static imports but under a distinct mode.
type Mode uint8

const (
	// ModeStaticImport resolves a static `import` declaration.
	ModeStaticImport Mode = iota
	// ModeLazyImport resolves a dynamic import inside a lazy-load wrapper.
	ModeLazyImport
)

// Resolver is the module-resolution collaborator. Resolve returns the target
// module for a literal in the context of its originating module, or ok=false
// when the literal does not resolve. An error indicates the resolution
// machinery itself failed for this literal; callers treat both outcomes as
// a dropped literal.
type Resolver interface {
	Resolve(ctx context.Context, origin *modgraph.Module, literal string, mode Mode) (*modgraph.Module, bool, error)
}

// ResolvedImport pairs a raw literal with the module it resolved to.
type ResolvedImport struct {
	Literal string
	Target  *modgraph.Module
}

// Sites resolves every literal of one origin module under ModeLazyImport.
// Literals are processed independently: an unresolvable literal is dropped
// without affecting its siblings, and the input order is preserved in the
// output. Only context cancellation aborts the loop.
func Sites(ctx context.Context, r Resolver, origin *modgraph.Module, literals []string) ([]ResolvedImport, error) {
	if len(literals) == 0 {
		return nil, nil
	}
	resolved := make([]ResolvedImport, 0, len(literals))
	for _, lit := range literals {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		target, ok, err := r.Resolve(ctx, origin, lit, ModeLazyImport)
		if err != nil || !ok || target == nil {
			// Dropped, not retained as an error: a diagnostic for the
			// unresolved import is assumed already reported upstream.
			continue
		}
		resolved = append(resolved, ResolvedImport{Literal: lit, Target: target})
	}
	return resolved, nil
}

// MapResolver resolves literals from a precomputed (origin, literal) table.
// It backs project fixtures and tests.
type MapResolver struct {
	// Table maps origin module path -> literal -> target module path.
	Table map[string]map[string]string
	// Graph supplies the target modules.
	Graph *modgraph.Graph
}

// Resolve implements Resolver.
func (r *MapResolver) Resolve(_ context.Context, origin *modgraph.Module, literal string, _ Mode) (*modgraph.Module, bool, error) {
	if r == nil || r.Graph == nil || origin == nil {
		return nil, false, nil
	}
	byLiteral, ok := r.Table[origin.Path]
	if !ok {
		return nil, false, nil
	}
	targetPath, ok := byLiteral[literal]
	if !ok {
		return nil, false, nil
	}
	target, ok := r.Graph.Lookup(targetPath)
	return target, ok, nil
}
