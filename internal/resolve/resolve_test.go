package resolve

import (
	"context"
	"errors"
	"testing"

	"loadable/internal/modgraph"
)

type scriptedResolver struct {
	targets map[string]*modgraph.Module
	errs    map[string]error
	calls   []string
}

func (r *scriptedResolver) Resolve(_ context.Context, _ *modgraph.Module, literal string, mode Mode) (*modgraph.Module, bool, error) {
	r.calls = append(r.calls, literal)
	if mode != ModeLazyImport {
		return nil, false, errors.New("unexpected resolution mode")
	}
	if err, ok := r.errs[literal]; ok {
		return nil, false, err
	}
	m, ok := r.targets[literal]
	return m, ok, nil
}

func TestSitesDropsUnresolvedAndKeepsSiblings(t *testing.T) {
	hello := &modgraph.Module{Path: "components/Hello"}
	world := &modgraph.Module{Path: "components/World"}
	r := &scriptedResolver{
		targets: map[string]*modgraph.Module{
			"./Hello": hello,
			"./World": world,
		},
		errs: map[string]error{"./broken": errors.New("resolver exploded")},
	}
	origin := &modgraph.Module{Path: "pages/index"}

	got, err := Sites(context.Background(), r, origin, []string{"./Hello", "./missing", "./broken", "./World"})
	if err != nil {
		t.Fatalf("Sites: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("resolved = %d, want 2 (%v)", len(got), got)
	}
	if got[0].Literal != "./Hello" || got[0].Target != hello {
		t.Fatalf("got[0] = %+v", got[0])
	}
	if got[1].Literal != "./World" || got[1].Target != world {
		t.Fatalf("got[1] = %+v", got[1])
	}
	// Every literal was attempted despite the failure in the middle.
	if len(r.calls) != 4 {
		t.Fatalf("resolver calls = %d, want 4", len(r.calls))
	}
}

func TestSitesEmptyInput(t *testing.T) {
	got, err := Sites(context.Background(), &scriptedResolver{}, &modgraph.Module{Path: "m"}, nil)
	if err != nil || got != nil {
		t.Fatalf("Sites = %v, %v, want nil, nil", got, err)
	}
}

func TestSitesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Sites(ctx, &scriptedResolver{}, &modgraph.Module{Path: "m"}, []string{"./x"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestMapResolver(t *testing.T) {
	g := modgraph.NewGraph()
	hello := &modgraph.Module{Path: "components/Hello"}
	if err := g.Add(hello); err != nil {
		t.Fatalf("Add: %v", err)
	}
	r := &MapResolver{
		Table: map[string]map[string]string{
			"pages/index": {"../components/Hello": "components/Hello"},
		},
		Graph: g,
	}
	origin := &modgraph.Module{Path: "pages/index"}

	m, ok, err := r.Resolve(context.Background(), origin, "../components/Hello", ModeLazyImport)
	if err != nil || !ok || m != hello {
		t.Fatalf("Resolve = %v, %v, %v", m, ok, err)
	}
	if _, ok, _ := r.Resolve(context.Background(), origin, "./nope", ModeLazyImport); ok {
		t.Fatalf("expected miss for unknown literal")
	}
}
