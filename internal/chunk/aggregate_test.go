package chunk

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"loadable/internal/modgraph"
)

func fixtureService() *StaticService {
	return &StaticService{
		Fingerprint: "build-1",
		Loaders: map[string][]Ref{
			"components/Hello": {"chunks/hello"},
			"components/Big":   {"chunks/shared", "chunks/big"},
			"components/Tiny":  {"chunks/shared", "chunks/tiny"},
		},
		Assets: map[Ref][]Asset{
			"chunks/hello":  {{Path: "dist/client/static/chunks/Hello.js"}},
			"chunks/shared": {{Path: "dist/client/static/chunks/shared.js"}},
			"chunks/big": {
				{Path: "dist/client/static/chunks/big.js"},
				{Path: "dist/client/static/chunks/big.css"},
			},
			"chunks/tiny": {{Path: "dist/client/static/chunks/tiny.js"}},
		},
		Covered: map[string]map[Ref]bool{
			"app/boundary": {"chunks/shared": true},
		},
	}
}

func TestAggregateRootScope(t *testing.T) {
	svc := fixtureService()
	hello := &modgraph.Module{Path: "components/Hello"}

	got, err := Aggregate(context.Background(), svc, []Input{{Module: hello}}, nil, 1)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("entries = %d, want 1", len(got))
	}
	if got[0].ID != DeriveID("components/Hello", "build-1") {
		t.Fatalf("id = %q, want derived id", got[0].ID)
	}
	wantAssets := []Asset{{Path: "dist/client/static/chunks/Hello.js"}}
	if !reflect.DeepEqual(got[0].Assets, wantAssets) {
		t.Fatalf("assets = %v, want %v", got[0].Assets, wantAssets)
	}
}

func TestAggregateSharedBoundaryParentScopes(t *testing.T) {
	svc := fixtureService()
	boundary := &modgraph.Module{Path: "app/boundary", BoundaryRef: true}
	big := &modgraph.Module{Path: "components/Big"}
	tiny := &modgraph.Module{Path: "components/Tiny"}
	scopes := map[*modgraph.Module]Scope{boundary: InheritedScope(boundary)}

	got, err := Aggregate(context.Background(), svc, []Input{
		{Module: big, Parent: boundary},
		{Module: tiny, Parent: boundary},
	}, scopes, 2)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2", len(got))
	}
	// Both entries inherited the same scope: the shared chunk guaranteed by
	// the boundary parent is excluded for both.
	wantBig := []Asset{
		{Path: "dist/client/static/chunks/big.js"},
		{Path: "dist/client/static/chunks/big.css"},
	}
	wantTiny := []Asset{{Path: "dist/client/static/chunks/tiny.js"}}
	if !reflect.DeepEqual(got[0].Assets, wantBig) {
		t.Fatalf("big assets = %v, want %v", got[0].Assets, wantBig)
	}
	if !reflect.DeepEqual(got[1].Assets, wantTiny) {
		t.Fatalf("tiny assets = %v, want %v", got[1].Assets, wantTiny)
	}
}

func TestAggregateMissingScopeIsFatal(t *testing.T) {
	svc := fixtureService()
	boundary := &modgraph.Module{Path: "app/boundary"}
	big := &modgraph.Module{Path: "components/Big"}

	_, err := Aggregate(context.Background(), svc, []Input{{Module: big, Parent: boundary}}, nil, 1)
	if err == nil {
		t.Fatalf("expected missing-scope error")
	}
}

func TestAggregatePerEntryFailureDropsEntryOnly(t *testing.T) {
	svc := fixtureService()
	hello := &modgraph.Module{Path: "components/Hello"}
	ghost := &modgraph.Module{Path: "components/Ghost"} // no loader output

	got, err := Aggregate(context.Background(), svc, []Input{
		{Module: ghost},
		{Module: hello},
	}, nil, 2)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(got) != 1 || got[0].Module != hello {
		t.Fatalf("entries = %v, want only %q", got, hello.Path)
	}
}

func TestAggregateServiceUnavailableIsFatal(t *testing.T) {
	hello := &modgraph.Module{Path: "components/Hello"}
	var svc *StaticService // nil receiver reports ErrUnavailable

	_, err := Aggregate(context.Background(), svc, []Input{{Module: hello}}, nil, 1)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestAggregatePreservesInputOrder(t *testing.T) {
	svc := fixtureService()
	inputs := []Input{
		{Module: &modgraph.Module{Path: "components/Tiny"}},
		{Module: &modgraph.Module{Path: "components/Hello"}},
		{Module: &modgraph.Module{Path: "components/Big"}},
	}

	got, err := Aggregate(context.Background(), svc, inputs, nil, 3)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("entries = %d, want 3", len(got))
	}
	for i, in := range inputs {
		if got[i].Module != in.Module {
			t.Fatalf("got[%d] = %q, want %q", i, got[i].Module.Path, in.Module.Path)
		}
	}
}

func TestConfigDigestTracksChunkTables(t *testing.T) {
	base := fixtureService().ConfigDigest()
	if fixtureService().ConfigDigest() != base {
		t.Fatalf("digest differs across identical services")
	}

	renamed := fixtureService()
	renamed.Assets["chunks/hello"] = []Asset{{Path: "dist/client/static/chunks/Hello-v2.js"}}
	if renamed.ConfigDigest() == base {
		t.Fatalf("renamed asset did not change the digest")
	}

	rewired := fixtureService()
	rewired.Loaders["components/Hello"] = []Ref{"chunks/shared"}
	if rewired.ConfigDigest() == base {
		t.Fatalf("rewired loader did not change the digest")
	}

	uncovered := fixtureService()
	delete(uncovered.Covered, "app/boundary")
	if uncovered.ConfigDigest() == base {
		t.Fatalf("dropped covered set did not change the digest")
	}

	pinned := fixtureService()
	pinned.IDs = map[string]string{"components/Hello": "id-hello"}
	if pinned.ConfigDigest() == base {
		t.Fatalf("pinned id did not change the digest")
	}
}

func TestDeriveIDStable(t *testing.T) {
	a := DeriveID("components/Hello", "build-1")
	b := DeriveID("components/Hello", "build-1")
	if a != b {
		t.Fatalf("derived ids differ: %q vs %q", a, b)
	}
	if DeriveID("components/Hello", "build-2") == a {
		t.Fatalf("fingerprint change should change the id")
	}
	if DeriveID("components/Other", "build-1") == a {
		t.Fatalf("module path change should change the id")
	}
}
