// Package jsparse parses the JS/TS subset the lazy-load pipeline inspects:
// static import declarations, call expressions, arrow functions, object
// literals and dynamic import() calls. It is the in-repo stand-in for the
// bundler's parser so the CLI and end-to-end tests can run on real files;
// everything it cannot model is skipped statement by statement, never
// reported, mirroring how parse diagnostics belong to an earlier stage.
package jsparse

import (
	"loadable/internal/ast"
)

// Parse builds a Program from source. Unparseable statements are skipped;
// Parse never fails, a hopeless input just yields an empty body.
func Parse(src []byte) *ast.Program {
	p := parser{toks: lex(src)}
	return p.parseProgram()
}

type parser struct {
	toks []token
	i    int
}

func (p *parser) peek() token { return p.toks[p.i] }
func (p *parser) at(off int) token {
	if p.i+off >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+off]
}

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) isPunct(t token, text string) bool {
	return t.kind == tokPunct && t.text == text
}

func (p *parser) isIdent(t token, text string) bool {
	return t.kind == tokIdent && t.text == text
}

func (p *parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for p.peek().kind != tokEOF {
		start := p.i
		n := p.parseStmt()
		if n != nil {
			prog.Body = append(prog.Body, n)
		}
		if n == nil || p.i == start {
			p.recover()
		}
	}
	return prog
}

// recover skips to just past the next ';' (or a closing brace) so one broken
// statement cannot stall the parse.
func (p *parser) recover() {
	for {
		t := p.next()
		if t.kind == tokEOF || p.isPunct(t, ";") || p.isPunct(t, "}") {
			return
		}
	}
}

func (p *parser) parseStmt() *ast.Node {
	t := p.peek()
	switch {
	case p.isIdent(t, "import") && !p.isPunct(p.at(1), "("):
		return p.parseImportDecl()
	case p.isIdent(t, "const") || p.isIdent(t, "let") || p.isIdent(t, "var"):
		return p.parseVarDecl()
	case p.isIdent(t, "export"):
		// `export default <expr>` and `export const x = ...` both carry
		// expressions worth scanning; strip the keywords and retry.
		p.next()
		if p.isIdent(p.peek(), "default") {
			p.next()
			expr := p.parseExpr()
			if expr == nil {
				return nil
			}
			p.eatSemi()
			return ast.ExprStmt(expr)
		}
		return p.parseStmt()
	default:
		expr := p.parseExpr()
		if expr == nil {
			return nil
		}
		p.eatSemi()
		return ast.ExprStmt(expr)
	}
}

func (p *parser) eatSemi() {
	if p.isPunct(p.peek(), ";") {
		p.next()
	}
}

// parseImportDecl handles `import lazy from "ui/lazy"`, `import "side"`,
// `import { a, b } from "m"` and `import d, { a } from "m"`. Only the
// default-specifier binding matters downstream; named specifiers are
// consumed and ignored.
func (p *parser) parseImportDecl() *ast.Node {
	p.next() // import
	local := ""
	t := p.peek()
	if t.kind == tokIdent && !p.isIdent(t, "from") {
		local = p.next().text
		if p.isPunct(p.peek(), ",") {
			p.next()
		}
	}
	if p.isPunct(p.peek(), "{") {
		depth := 0
		for {
			t := p.next()
			if t.kind == tokEOF {
				return nil
			}
			if p.isPunct(t, "{") {
				depth++
			}
			if p.isPunct(t, "}") {
				depth--
				if depth == 0 {
					break
				}
			}
		}
	}
	if p.isIdent(p.peek(), "from") {
		p.next()
	}
	src := p.peek()
	if src.kind != tokString {
		return nil
	}
	p.next()
	p.eatSemi()
	return ast.Import(src.text, local)
}

func (p *parser) parseVarDecl() *ast.Node {
	p.next() // const/let/var
	name := p.peek()
	if name.kind != tokIdent {
		return nil
	}
	p.next()
	if !p.isPunct(p.peek(), "=") {
		return nil
	}
	p.next()
	init := p.parseExpr()
	if init == nil {
		return nil
	}
	p.eatSemi()
	return ast.VarDecl(name.text, init)
}

func (p *parser) parseExpr() *ast.Node {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}
	for p.isPunct(p.peek(), "(") {
		args, ok := p.parseArgs()
		if !ok {
			return nil
		}
		expr = &ast.Node{Kind: ast.NodeCallExpr, Callee: expr, Args: args}
	}
	return expr
}

func (p *parser) parseArgs() ([]*ast.Node, bool) {
	p.next() // (
	var args []*ast.Node
	for !p.isPunct(p.peek(), ")") {
		if p.peek().kind == tokEOF {
			return nil, false
		}
		arg := p.parseExpr()
		if arg == nil {
			return nil, false
		}
		args = append(args, arg)
		if p.isPunct(p.peek(), ",") {
			p.next()
		}
	}
	p.next() // )
	return args, true
}

func (p *parser) parsePrimary() *ast.Node {
	t := p.peek()
	switch {
	case p.isIdent(t, "import") && p.isPunct(p.at(1), "("):
		p.next()
		return &ast.Node{Kind: ast.NodeImportCallee, Span: ast.Span{Start: t.pos}}
	case t.kind == tokString:
		p.next()
		return ast.Str(t.text)
	case t.kind == tokIdent:
		p.next()
		return ast.Ident(t.text)
	case p.isPunct(t, "("):
		if p.arrowAhead() {
			return p.parseArrow()
		}
		p.next()
		inner := p.parseExpr()
		if inner == nil || !p.isPunct(p.peek(), ")") {
			return nil
		}
		p.next()
		return inner
	case p.isPunct(t, "{"):
		return p.parseObject()
	default:
		return nil
	}
}

// arrowAhead reports whether the '(' at the cursor opens an arrow function's
// parameter list, i.e. the matching ')' is directly followed by '=>'.
func (p *parser) arrowAhead() bool {
	depth := 0
	for off := 0; p.i+off < len(p.toks); off++ {
		t := p.at(off)
		switch {
		case t.kind == tokEOF:
			return false
		case p.isPunct(t, "("):
			depth++
		case p.isPunct(t, ")"):
			depth--
			if depth == 0 {
				return p.isPunct(p.at(off+1), "=>")
			}
		}
	}
	return false
}

func (p *parser) parseArrow() *ast.Node {
	// Parameters carry nothing the scanner needs; skip to the matching ')'.
	depth := 0
	for {
		t := p.next()
		if t.kind == tokEOF {
			return nil
		}
		if p.isPunct(t, "(") {
			depth++
		}
		if p.isPunct(t, ")") {
			depth--
			if depth == 0 {
				break
			}
		}
	}
	if !p.isPunct(p.peek(), "=>") {
		return nil
	}
	p.next()
	if p.isPunct(p.peek(), "{") {
		p.next()
		var body []*ast.Node
		for !p.isPunct(p.peek(), "}") {
			if p.peek().kind == tokEOF {
				return nil
			}
			start := p.i
			stmt := p.parseStmt()
			if stmt != nil {
				body = append(body, stmt)
			}
			if stmt == nil || p.i == start {
				p.recover()
			}
		}
		p.next() // }
		return ast.Func(body...)
	}
	expr := p.parseExpr()
	if expr == nil {
		return nil
	}
	return ast.Func(expr)
}

func (p *parser) parseObject() *ast.Node {
	p.next() // {
	var values []*ast.Node
	for !p.isPunct(p.peek(), "}") {
		if p.peek().kind == tokEOF {
			return nil
		}
		// key (ident or string), then ':' value, or shorthand.
		key := p.peek()
		if key.kind != tokIdent && key.kind != tokString {
			return nil
		}
		p.next()
		if p.isPunct(p.peek(), ":") {
			p.next()
			v := p.parseExpr()
			if v == nil {
				return nil
			}
			values = append(values, v)
		} else {
			values = append(values, ast.Ident(key.text))
		}
		if p.isPunct(p.peek(), ",") {
			p.next()
		}
	}
	p.next() // }
	return ast.Object(values...)
}
