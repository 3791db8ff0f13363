package modgraph

// EntryKind is the classification a graph node can receive. A module maps to
// at most one kind.
type EntryKind uint8

const (
	// EntryLazy marks a module reachable through a lazy-load wrapper call
	// from client-executed code.
	EntryLazy EntryKind = iota
	// EntryBoundaryRef marks a module that crosses the server/client
	// boundary.
	EntryBoundaryRef
)

func (k EntryKind) String() string {
	switch k {
	case EntryLazy:
		return "lazy-entry"
	case EntryBoundaryRef:
		return "boundary-reference"
	default:
		return "unknown"
	}
}

// Entry pairs a classified module with its kind.
type Entry struct {
	Module *Module
	Kind   EntryKind
}

// Classify walks the graph's enumeration order exactly once and assigns each
// node an EntryKind, or skips it. A node recognized as a boundary reference
// is EntryBoundaryRef regardless of layer; only otherwise, a lazy-load
// target on a client layer becomes EntryLazy. Boundary-reference-first is a
// fixed policy choice, not an accident of iteration: a node can never
// receive both classifications.
func Classify(g *Graph) []Entry {
	if g == nil {
		return nil
	}
	entries := make([]Entry, 0, g.Len())
	for _, m := range g.Nodes() {
		switch {
		case m.BoundaryRef:
			entries = append(entries, Entry{Module: m, Kind: EntryBoundaryRef})
		case m.LazyTarget && m.Layer.IsClient():
			entries = append(entries, Entry{Module: m, Kind: EntryLazy})
		}
	}
	return entries
}
