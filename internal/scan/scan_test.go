package scan

import (
	"testing"

	"loadable/internal/ast"
)

const wrapper = "ui/lazy"

func program(body ...*ast.Node) *ast.Program {
	return &ast.Program{Body: body}
}

func TestScanNoWrapperImportYieldsNothing(t *testing.T) {
	prog := program(
		ast.ExprStmt(ast.DynImport(ast.Str("./y"))),
		ast.ExprStmt(ast.Call(ast.Ident("lazy"), ast.Func(ast.DynImport(ast.Str("./x"))))),
	)
	if got := Scan(prog, wrapper); len(got) != 0 {
		t.Fatalf("Scan = %v, want empty", got)
	}
}

func TestScanWrapperAlias(t *testing.T) {
	prog := program(
		ast.Import(wrapper, "L"),
		ast.ExprStmt(ast.Call(ast.Ident("L"), ast.Func(ast.DynImport(ast.Str("./x"))))),
	)
	got := Scan(prog, wrapper)
	if len(got) != 1 || got[0] != "./x" {
		t.Fatalf("Scan = %v, want [./x]", got)
	}
}

func TestScanBareDynamicImportExcluded(t *testing.T) {
	prog := program(
		ast.Import(wrapper, "lazy"),
		ast.ExprStmt(ast.DynImport(ast.Str("./bare"))),
		ast.ExprStmt(ast.Call(ast.Ident("lazy"), ast.Func(ast.DynImport(ast.Str("./wrapped"))))),
	)
	got := Scan(prog, wrapper)
	if len(got) != 1 || got[0] != "./wrapped" {
		t.Fatalf("Scan = %v, want [./wrapped]", got)
	}
}

func TestScanMultipleSitesInSourceOrder(t *testing.T) {
	prog := program(
		ast.Import(wrapper, "lazy"),
		ast.VarDecl("a", ast.Call(ast.Ident("lazy"), ast.Func(ast.DynImport(ast.Str("./a"))))),
		ast.VarDecl("b", ast.Call(ast.Ident("lazy"), ast.Func(ast.DynImport(ast.Str("./b"))))),
	)
	got := Scan(prog, wrapper)
	if len(got) != 2 || got[0] != "./a" || got[1] != "./b" {
		t.Fatalf("Scan = %v, want [./a ./b]", got)
	}
}

func TestScanWrapperCallNestedInsideExpression(t *testing.T) {
	// The wrapper call sits inside an object literal value; traversal must
	// still reach it.
	prog := program(
		ast.Import(wrapper, "lazy"),
		ast.VarDecl("routes", ast.Object(
			ast.Call(ast.Ident("lazy"), ast.Func(ast.DynImport(ast.Str("./inner")))),
		)),
	)
	got := Scan(prog, wrapper)
	if len(got) != 1 || got[0] != "./inner" {
		t.Fatalf("Scan = %v, want [./inner]", got)
	}
}

func TestScanRebindTracksMostRecentBinding(t *testing.T) {
	prog := program(
		ast.Import(wrapper, "first"),
		ast.Import(wrapper, "second"),
		ast.ExprStmt(ast.Call(ast.Ident("first"), ast.Func(ast.DynImport(ast.Str("./old"))))),
		ast.ExprStmt(ast.Call(ast.Ident("second"), ast.Func(ast.DynImport(ast.Str("./new"))))),
	)
	got := Scan(prog, wrapper)
	if len(got) != 1 || got[0] != "./new" {
		t.Fatalf("Scan = %v, want [./new]", got)
	}
}

func TestScanImportWithoutDefaultSpecifierDoesNotBind(t *testing.T) {
	prog := program(
		ast.Import(wrapper, ""),
		ast.ExprStmt(ast.Call(ast.Ident("lazy"), ast.Func(ast.DynImport(ast.Str("./x"))))),
	)
	if got := Scan(prog, wrapper); len(got) != 0 {
		t.Fatalf("Scan = %v, want empty", got)
	}
}

func TestScanIgnoresNonLiteralAndWrappedDeeperCalls(t *testing.T) {
	prog := program(
		ast.Import(wrapper, "lazy"),
		// import() wrapped in another call: the shallowest call position
		// is not an import, so nothing is collected.
		ast.ExprStmt(ast.Call(ast.Ident("lazy"),
			ast.Func(ast.Call(ast.Ident("memo"), ast.DynImport(ast.Str("./deep")))))),
		// import() with a non-literal argument.
		ast.ExprStmt(ast.Call(ast.Ident("lazy"), ast.Func(ast.DynImport(ast.Ident("path"))))),
	)
	if got := Scan(prog, wrapper); len(got) != 0 {
		t.Fatalf("Scan = %v, want empty", got)
	}
}
