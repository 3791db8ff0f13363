package modgraph

import (
	"fmt"
	"strings"
)

// LayerTag classifies a module's execution context. The owning graph supplies
// layers as free-form strings; they are validated and mapped into this enum
// at the boundary instead of propagating raw strings through the pipeline.
type LayerTag uint8

const (
	// LayerNone means the module carries no layer tag.
	LayerNone LayerTag = iota
	// LayerClient is client-executed code.
	LayerClient
	// LayerAppClient is client-executed code under the app router.
	LayerAppClient
	// LayerOther is any recognized-but-irrelevant layer string.
	LayerOther
)

// ParseLayerTag maps a raw layer string into the closed enum.
func ParseLayerTag(raw string) LayerTag {
	switch strings.TrimSpace(raw) {
	case "":
		return LayerNone
	case "client":
		return LayerClient
	case "app-client":
		return LayerAppClient
	default:
		return LayerOther
	}
}

func (t LayerTag) String() string {
	switch t {
	case LayerNone:
		return ""
	case LayerClient:
		return "client"
	case LayerAppClient:
		return "app-client"
	default:
		return "other"
	}
}

// IsClient reports whether the layer marks client-executed code.
func (t LayerTag) IsClient() bool {
	return t == LayerClient || t == LayerAppClient
}

// Module is one node of the dependency graph: a resolved path plus build
// context, with the recognition metadata the graph owner attaches to it.
// Modules are read-only snapshots for the duration of one pipeline run.
type Module struct {
	// Path is the resolved module path, unique within one graph.
	Path string
	// Layer is the module's execution-context tag.
	Layer LayerTag
	// LazyTarget marks the module as produced by a lazy-load transform.
	LazyTarget bool
	// BoundaryRef marks the module as a server/client boundary reference.
	BoundaryRef bool
}

// Graph is a materialized module dependency graph with a stable enumeration
// order. Nodes are appended once and never mutated afterwards.
type Graph struct {
	nodes []*Module
	index map[string]*Module
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{index: make(map[string]*Module)}
}

// Add appends a module to the enumeration. Duplicate paths are rejected so
// module identity stays unambiguous.
func (g *Graph) Add(m *Module) error {
	if m == nil || m.Path == "" {
		return fmt.Errorf("module graph: empty module path")
	}
	if _, dup := g.index[m.Path]; dup {
		return fmt.Errorf("module graph: duplicate module %q", m.Path)
	}
	g.nodes = append(g.nodes, m)
	g.index[m.Path] = m
	return nil
}

// Nodes returns the modules in enumeration order. The caller must not modify
// the returned slice.
func (g *Graph) Nodes() []*Module {
	return g.nodes
}

// Lookup finds a module by path.
func (g *Graph) Lookup(path string) (*Module, bool) {
	m, ok := g.index[path]
	return m, ok
}

// Len returns the number of modules.
func (g *Graph) Len() int { return len(g.nodes) }
