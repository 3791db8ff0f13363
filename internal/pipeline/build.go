// Package pipeline runs the lazy-load manifest build: classify the module
// graph, scan and resolve wrapper call sites, aggregate per-entry output
// assets, and emit the manifest. One build pass works over an immutable
// snapshot of its inputs and keeps no state between passes.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"loadable/internal/ast"
	"loadable/internal/chunk"
	"loadable/internal/manifest"
	"loadable/internal/modgraph"
	"loadable/internal/resolve"
	"loadable/internal/scan"
)

// ProgramSource is the parsed-program access collaborator: a read-only
// lookup from module to its immutable syntax tree.
type ProgramSource interface {
	ProgramFor(m *modgraph.Module) (*ast.Program, bool)
}

// ErrNoGraph reports a missing module graph; nothing can be built without it.
var ErrNoGraph = errors.New("module graph unavailable")

// Request carries one build pass's inputs. All of them are treated as
// immutable snapshots for the duration of the pass.
type Request struct {
	Graph    *modgraph.Graph
	Programs ProgramSource
	Resolver resolve.Resolver
	Chunks   chunk.Service
	// Scopes maps each boundary module to its already-computed chunk
	// scope.
	Scopes map[*modgraph.Module]chunk.Scope
	// Parents maps a lazy entry to its owning boundary module; entries
	// absent from the map aggregate under the root scope.
	Parents map[*modgraph.Module]*modgraph.Module
	// WrapperModule is the import source providing the lazy-load wrapper.
	WrapperModule string
	// ClientRoot is the output root manifest paths are made relative to.
	ClientRoot string
	// OutputPath is where the manifest is written; empty skips the write
	// and leaves the document in the result only.
	OutputPath string
	// Fingerprint identifies the chunking context for cache keying.
	Fingerprint string
	Jobs        int
	Progress    ProgressSink
	// Cache optionally reuses aggregation output across builds of an
	// unchanged graph.
	Cache *DiskCache
}

// ModuleImports is one classified module's resolved lazy-load targets.
type ModuleImports struct {
	Module  *modgraph.Module
	Imports []resolve.ResolvedImport
}

// Result is the output of one build pass.
type Result struct {
	Entries    []modgraph.Entry
	Imports    []ModuleImports
	Aggregated []chunk.AggregatedEntry
	Manifest   manifest.Manifest
	Timings    Timings
	CacheHit   bool
}

// Build runs the full pipeline. Per-item failures (an unresolved literal, a
// failed entry aggregation) are absorbed and excluded from the output;
// failures of whole-pipeline inputs or of the final serialization abort the
// build with no partial manifest written.
func Build(ctx context.Context, req *Request) (Result, error) {
	var res Result
	if req == nil || req.Graph == nil {
		return res, ErrNoGraph
	}
	if req.Chunks == nil {
		return res, fmt.Errorf("pipeline: %w", chunk.ErrUnavailable)
	}
	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Classify: one walk over the graph's enumeration order.
	begin := time.Now()
	emit(req, Event{Stage: StageClassify, Status: StatusWorking})
	res.Entries = modgraph.Classify(req.Graph)
	res.Timings.Set(StageClassify, time.Since(begin))
	emit(req, Event{Stage: StageClassify, Status: StatusDone, Elapsed: time.Since(begin)})

	// Scan: fan out per classified module. Each task owns one slot of the
	// sites slice, so the join preserves classification order with no
	// coordination beyond the group itself.
	begin = time.Now()
	sites := make([][]string, len(res.Entries))
	sg, sctx := errgroup.WithContext(ctx)
	sg.SetLimit(min(jobs, max(len(res.Entries), 1)))
	for i, entry := range res.Entries {
		i, entry := i, entry
		sg.Go(func() error {
			select {
			case <-sctx.Done():
				return sctx.Err()
			default:
			}
			m := entry.Module
			emit(req, Event{Module: m.Path, Stage: StageScan, Status: StatusWorking})
			if req.Programs != nil {
				if prog, ok := req.Programs.ProgramFor(m); ok {
					sites[i] = scan.Scan(prog, req.WrapperModule)
				}
			}
			emit(req, Event{Module: m.Path, Stage: StageScan, Status: StatusDone})
			return nil
		})
	}
	if err := sg.Wait(); err != nil {
		return res, err
	}
	res.Timings.Set(StageScan, time.Since(begin))

	// Resolve: fan out per module, join back in classification order.
	begin = time.Now()
	res.Imports = make([]ModuleImports, len(res.Entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(res.Entries), 1)))
	for i, entry := range res.Entries {
		i, entry := i, entry
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			m := entry.Module
			res.Imports[i] = ModuleImports{Module: m}
			if len(sites[i]) == 0 || req.Resolver == nil {
				return nil
			}
			emit(req, Event{Module: m.Path, Stage: StageResolve, Status: StatusWorking})
			resolved, err := resolve.Sites(gctx, req.Resolver, m, sites[i])
			if err != nil {
				emit(req, Event{Module: m.Path, Stage: StageResolve, Status: StatusError, Err: err})
				return err
			}
			res.Imports[i].Imports = resolved
			emit(req, Event{Module: m.Path, Stage: StageResolve, Status: StatusDone})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	res.Timings.Set(StageResolve, time.Since(begin))

	// Aggregate: lazy entries only, in classification order.
	begin = time.Now()
	emit(req, Event{Stage: StageAggregate, Status: StatusWorking})
	inputs := make([]chunk.Input, 0, len(res.Entries))
	for _, entry := range res.Entries {
		if entry.Kind != modgraph.EntryLazy {
			continue
		}
		inputs = append(inputs, chunk.Input{
			Module: entry.Module,
			Parent: req.Parents[entry.Module],
		})
	}

	key := buildKey(req, inputs)
	if cached, ok := lookupCache(req, key); ok {
		res.Aggregated = cached
		res.CacheHit = true
	} else {
		aggregated, err := chunk.Aggregate(ctx, req.Chunks, inputs, req.Scopes, jobs)
		if err != nil {
			emit(req, Event{Stage: StageAggregate, Status: StatusError, Err: err})
			return res, err
		}
		res.Aggregated = aggregated
		if req.Cache != nil {
			// Cache writes are best-effort; a failed write never fails
			// the build.
			_ = req.Cache.Put(key, aggregated)
		}
	}
	res.Timings.Set(StageAggregate, time.Since(begin))
	emit(req, Event{Stage: StageAggregate, Status: StatusDone, Elapsed: time.Since(begin)})

	// Emit: build the document, then write it atomically.
	begin = time.Now()
	emit(req, Event{Stage: StageEmit, Status: StatusWorking})
	res.Manifest = manifest.Build(res.Aggregated, req.ClientRoot)
	if req.OutputPath != "" {
		if err := manifest.Write(req.OutputPath, res.Manifest); err != nil {
			emit(req, Event{Stage: StageEmit, Status: StatusError, Err: err})
			return res, fmt.Errorf("write manifest: %w", err)
		}
	}
	res.Timings.Set(StageEmit, time.Since(begin))
	emit(req, Event{Stage: StageEmit, Status: StatusDone, Elapsed: time.Since(begin)})

	return res, nil
}

func emit(req *Request, evt Event) {
	if req.Progress == nil {
		return
	}
	req.Progress.OnEvent(evt)
}

// buildKey digests everything the aggregation output depends on: the
// chunking-context fingerprint, the client root, the chunking service's own
// configuration when it exposes one, and each entry with its boundary
// parent, in order. Without the service digest an edited chunk table would
// keep serving the previous build's assets.
func buildKey(req *Request, inputs []chunk.Input) chunk.Digest {
	deps := make([]chunk.Digest, 0, 2*len(inputs)+2)
	deps = append(deps, chunk.HashString(req.ClientRoot))
	if fp, ok := req.Chunks.(chunk.Fingerprinted); ok {
		deps = append(deps, fp.ConfigDigest())
	}
	for _, in := range inputs {
		deps = append(deps, chunk.HashString(in.Module.Path))
		parent := ""
		if in.Parent != nil {
			parent = in.Parent.Path
		}
		deps = append(deps, chunk.HashString(parent))
	}
	return chunk.Combine(chunk.HashString(req.Fingerprint), deps...)
}

// lookupCache re-binds cached entries to the current graph. Any entry whose
// module vanished makes the whole lookup a miss; a partially applicable
// cache line would break the build's ordering guarantees.
func lookupCache(req *Request, key chunk.Digest) ([]chunk.AggregatedEntry, bool) {
	if req.Cache == nil {
		return nil, false
	}
	cached, ok, err := req.Cache.Get(key)
	if err != nil || !ok {
		return nil, false
	}
	entries := make([]chunk.AggregatedEntry, 0, len(cached))
	for _, ce := range cached {
		m, ok := req.Graph.Lookup(ce.ModulePath)
		if !ok {
			return nil, false
		}
		assets := make([]chunk.Asset, 0, len(ce.AssetPaths))
		for _, p := range ce.AssetPaths {
			assets = append(assets, chunk.Asset{Path: p})
		}
		entries = append(entries, chunk.AggregatedEntry{Module: m, ID: ce.ID, Assets: assets})
	}
	return entries, true
}
