package chunk

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"loadable/internal/modgraph"
)

// Input is one lazy entry to aggregate, together with its owning boundary
// reference module, nil when the entry was reached from a top-level page
// rather than through a client/server boundary split.
type Input struct {
	Module *modgraph.Module
	Parent *modgraph.Module
}

// AggregatedEntry correlates one lazy entry with its stable compiled-output
// id and the ordered list of output assets its async load path requires.
// Duplicates in Assets are permitted and preserved.
type AggregatedEntry struct {
	Module *modgraph.Module
	ID     string
	Assets []Asset
}

// Aggregate computes the aggregated output for every lazy entry. Entries are
// fanned out concurrently and joined back in input order. A per-entry
// failure drops that entry and keeps its siblings; a service-unavailable
// failure or a missing boundary scope aborts the whole aggregation, and
// cancellation propagates to all outstanding work.
func Aggregate(ctx context.Context, svc Service, entries []Input, scopes map[*modgraph.Module]Scope, jobs int) ([]AggregatedEntry, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	if svc == nil {
		return nil, fmt.Errorf("chunk aggregate: %w", ErrUnavailable)
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Index-stable slots: each goroutine owns exactly one index, no mutex.
	results := make([]*AggregatedEntry, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(entries)))

	for i, in := range entries {
		i, in := i, in
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			scope := RootScope()
			if in.Parent != nil {
				s, ok := scopes[in.Parent]
				if !ok {
					// The scope map is a whole-pipeline input; a hole in
					// it makes every entry untrustworthy.
					return fmt.Errorf("chunk aggregate: no chunk scope for boundary module %q", in.Parent.Path)
				}
				scope = s
			}

			entry, err := aggregateOne(svc, in.Module, scope)
			if err != nil {
				if errors.Is(err, ErrUnavailable) {
					return err
				}
				// Isolate-and-continue: this entry is dropped, siblings
				// still aggregate.
				return nil
			}
			results[i] = entry
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]AggregatedEntry, 0, len(entries))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

func aggregateOne(svc Service, m *modgraph.Module, scope Scope) (*AggregatedEntry, error) {
	refs, err := svc.AsyncLoader(m, scope)
	if err != nil {
		return nil, err
	}

	// Flatten in reference order, then per-reference asset order.
	var assets []Asset
	for _, ref := range refs {
		refAssets, err := svc.PrimaryOutputAssets(ref)
		if err != nil {
			return nil, err
		}
		assets = append(assets, refAssets...)
	}

	id, err := svc.ChunkItemID(m)
	if err != nil {
		return nil, err
	}

	return &AggregatedEntry{Module: m, ID: id, Assets: assets}, nil
}
