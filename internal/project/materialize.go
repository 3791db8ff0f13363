package project

import (
	"fmt"
	"os"
	"path/filepath"

	"loadable/internal/ast"
	"loadable/internal/chunk"
	"loadable/internal/jsparse"
	"loadable/internal/modgraph"
	"loadable/internal/pipeline"
	"loadable/internal/resolve"
)

// Programs is a ProgramSource over parsed project sources.
type Programs map[string]*ast.Program

// ProgramFor implements pipeline.ProgramSource.
func (p Programs) ProgramFor(m *modgraph.Module) (*ast.Program, bool) {
	prog, ok := p[m.Path]
	return prog, ok
}

// Materialize turns a loaded config into a ready pipeline request: the
// module graph in sorted enumeration order, parsed programs, the fixture
// resolver and chunking service, boundary scopes and entry parents.
func Materialize(cfg *Config, rootDir string) (*pipeline.Request, error) {
	graph := modgraph.NewGraph()
	for _, path := range cfg.ModulePaths() {
		spec := cfg.Modules[path]
		m := &modgraph.Module{
			Path:        path,
			Layer:       modgraph.ParseLayerTag(spec.Layer),
			LazyTarget:  spec.Lazy,
			BoundaryRef: spec.Boundary,
		}
		if err := graph.Add(m); err != nil {
			return nil, err
		}
	}

	programs := make(Programs)
	resolveTable := make(map[string]map[string]string)
	loaders := make(map[string][]chunk.Ref)
	covered := make(map[string]map[chunk.Ref]bool)
	ids := make(map[string]string)
	scopes := make(map[*modgraph.Module]chunk.Scope)
	parents := make(map[*modgraph.Module]*modgraph.Module)

	for _, path := range cfg.ModulePaths() {
		spec := cfg.Modules[path]
		m, _ := graph.Lookup(path)

		if spec.File != "" {
			srcPath := filepath.Join(rootDir, filepath.FromSlash(cfg.Build.SourceRoot), filepath.FromSlash(spec.File))
			src, err := os.ReadFile(srcPath)
			if err != nil {
				return nil, fmt.Errorf("module %q: %w", path, err)
			}
			programs[path] = jsparse.Parse(src)
		}
		if len(spec.Resolves) > 0 {
			table := make(map[string]string, len(spec.Resolves))
			for literal, target := range spec.Resolves {
				if _, ok := cfg.Modules[target]; !ok {
					return nil, fmt.Errorf("module %q: resolve target %q is not a configured module", path, target)
				}
				table[literal] = target
			}
			resolveTable[path] = table
		}
		if len(spec.Chunks) > 0 {
			refs := make([]chunk.Ref, 0, len(spec.Chunks))
			for _, ref := range spec.Chunks {
				if _, ok := cfg.Chunks[ref]; !ok {
					return nil, fmt.Errorf("module %q: unknown chunk reference %q", path, ref)
				}
				refs = append(refs, chunk.Ref(ref))
			}
			loaders[path] = refs
		}
		if len(spec.Covered) > 0 {
			set := make(map[chunk.Ref]bool, len(spec.Covered))
			for _, ref := range spec.Covered {
				set[chunk.Ref(ref)] = true
			}
			covered[path] = set
		}
		if spec.ID != "" {
			ids[path] = spec.ID
		}
		if spec.Boundary {
			scopes[m] = chunk.InheritedScope(m)
		}
		if spec.Parent != "" {
			parent, ok := graph.Lookup(spec.Parent)
			if !ok {
				return nil, fmt.Errorf("module %q: unknown parent %q", path, spec.Parent)
			}
			parents[m] = parent
		}
	}

	assets := make(map[chunk.Ref][]chunk.Asset, len(cfg.Chunks))
	for ref, spec := range cfg.Chunks {
		list := make([]chunk.Asset, 0, len(spec.Assets))
		for _, p := range spec.Assets {
			list = append(list, chunk.Asset{Path: p})
		}
		assets[chunk.Ref(ref)] = list
	}

	outputPath := filepath.FromSlash(cfg.Build.Manifest)
	if outputPath != "" && !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(rootDir, outputPath)
	}

	return &pipeline.Request{
		Graph:    graph,
		Programs: programs,
		Resolver: &resolve.MapResolver{Table: resolveTable, Graph: graph},
		Chunks: &chunk.StaticService{
			Fingerprint: cfg.Build.Fingerprint,
			Loaders:     loaders,
			Assets:      assets,
			Covered:     covered,
			IDs:         ids,
		},
		Scopes:        scopes,
		Parents:       parents,
		WrapperModule: cfg.Build.Wrapper,
		ClientRoot:    cfg.Build.ClientRoot,
		OutputPath:    outputPath,
		Fingerprint:   cfg.Build.Fingerprint,
	}, nil
}
