// Package scan finds lazy-load wrapper call sites in a parsed program and
// extracts the raw import paths they reference.
package scan

import (
	"loadable/internal/ast"
)

// Scan walks one module's parsed program and returns the raw import path
// literals appearing inside lazy-load wrapper calls, in source order.
// wrapperModule is the import source that provides the wrapper (e.g.
// "ui/lazy"). The result is empty when the module never imports the wrapper.
//
// Scan is a pure function of the tree; it never mutates the program.
func Scan(p *ast.Program, wrapperModule string) []string {
	if p == nil || wrapperModule == "" {
		return nil
	}
	s := scanner{wrapper: wrapperModule}
	ast.Walk(p, s.visit)
	return s.sources
}

type scanner struct {
	wrapper string
	// binding is the local name bound to the wrapper's default export.
	// When the wrapper is imported more than once, the most recently
	// observed binding wins.
	binding string
	sources []string
}

func (s *scanner) visit(n *ast.Node) bool {
	switch n.Kind {
	case ast.NodeImportDecl:
		if n.Value == s.wrapper && n.Local != "" {
			s.binding = n.Local
		}
	case ast.NodeCallExpr:
		if s.binding != "" && n.Callee != nil &&
			n.Callee.Kind == ast.NodeIdent && n.Callee.Name == s.binding {
			if src, ok := collectImportSource(n.Args); ok {
				s.sources = append(s.sources, src)
			}
		}
		// Keep walking: wrapper calls may be nested inside other
		// expressions, including other wrapper calls' arguments.
	}
	return true
}

// collectImportSource searches a wrapper call's argument list for a dynamic
// import expression whose sole argument is a string literal. Descent stops
// at any call expression: a matching `import("...")` is inspected in place
// and its own subtree is never entered, and calls wrapping the import
// deeper than the shallowest call position do not match.
func collectImportSource(args []*ast.Node) (string, bool) {
	var (
		source string
		found  bool
	)
	for _, arg := range args {
		ast.WalkNode(arg, func(n *ast.Node) bool {
			if n.Kind != ast.NodeCallExpr {
				return true
			}
			if n.Callee != nil && n.Callee.Kind == ast.NodeImportCallee &&
				len(n.Args) == 1 && n.Args[0].Kind == ast.NodeStringLit {
				source = n.Args[0].Value
				found = true
			}
			return false
		})
	}
	return source, found
}
