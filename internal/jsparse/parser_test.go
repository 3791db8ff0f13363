package jsparse

import (
	"testing"

	"loadable/internal/ast"
	"loadable/internal/scan"
)

func TestParseImportDecls(t *testing.T) {
	src := `
import lazy from "ui/lazy";
import "./side-effect";
import { named, other } from "./named";
import def, { extra } from "./mixed";
`
	prog := Parse([]byte(src))
	if len(prog.Body) != 4 {
		t.Fatalf("body = %d statements, want 4", len(prog.Body))
	}
	want := []struct {
		source string
		local  string
	}{
		{"ui/lazy", "lazy"},
		{"./side-effect", ""},
		{"./named", ""},
		{"./mixed", "def"},
	}
	for i, w := range want {
		n := prog.Body[i]
		if n.Kind != ast.NodeImportDecl || n.Value != w.source || n.Local != w.local {
			t.Fatalf("body[%d] = %+v, want import %q local %q", i, n, w.source, w.local)
		}
	}
}

func TestParseWrapperCallEndToEndWithScanner(t *testing.T) {
	src := `
import lazy from "ui/lazy";

const Hello = lazy(() => import("../components/Hello"));
const Routes = {
  about: lazy(() => import("./About")),
  home: lazy(() => {
    prefetch();
    return import("./Home");
  }),
};
import("./bare-not-collected");
`
	prog := Parse([]byte(src))
	got := scan.Scan(prog, "ui/lazy")
	want := []string{"../components/Hello", "./About", "./Home"}
	if len(got) != len(want) {
		t.Fatalf("scan = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("scan[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseSkipsBrokenStatements(t *testing.T) {
	src := `
import lazy from "ui/lazy";
const broken = = nonsense);
const Ok = lazy(() => import("./Ok"));
`
	prog := Parse([]byte(src))
	got := scan.Scan(prog, "ui/lazy")
	if len(got) != 1 || got[0] != "./Ok" {
		t.Fatalf("scan = %v, want [./Ok]", got)
	}
}

func TestParseCommentsAndStrings(t *testing.T) {
	src := `
// import lazy from "ui/lazy" (commented out)
/* const X = lazy(() => import("./no")); */
import lazy from 'ui/lazy';
const Y = lazy(() => import(` + "`./tpl`" + `));
`
	prog := Parse([]byte(src))
	got := scan.Scan(prog, "ui/lazy")
	if len(got) != 1 || got[0] != "./tpl" {
		t.Fatalf("scan = %v, want [./tpl]", got)
	}
}

func TestParseHopelessInputYieldsEmptyProgram(t *testing.T) {
	prog := Parse([]byte("]]]] ???"))
	if prog == nil {
		t.Fatalf("Parse returned nil program")
	}
	if len(prog.Body) != 0 {
		t.Fatalf("body = %v, want empty", prog.Body)
	}
}
