package ast

// NodeKind tags every syntax tree node with its variant.
// The set is closed: traversal dispatches by kind, no open interfaces.
type NodeKind uint8

const (
	// NodeImportDecl is a static import declaration (`import x from "mod"`).
	NodeImportDecl NodeKind = iota
	// NodeCallExpr is a call expression.
	NodeCallExpr
	// NodeImportCallee is the `import` keyword in callee position
	// (`import("mod")`).
	NodeImportCallee
	// NodeIdent is an identifier reference.
	NodeIdent
	// NodeStringLit is a string literal.
	NodeStringLit
	// NodeFuncExpr is a function or arrow expression.
	NodeFuncExpr
	// NodeObjectLit is an object literal; values only, keys are not modeled.
	NodeObjectLit
	// NodeExprStmt is an expression statement.
	NodeExprStmt
	// NodeVarDecl is a variable declaration with an initializer expression.
	NodeVarDecl
)

// Span is a byte range in the originating file.
type Span struct {
	Start uint32
	End   uint32
}

// Node is a single syntax tree node. Which fields are meaningful depends on
// Kind; unused fields stay zero.
type Node struct {
	Kind NodeKind
	Span Span

	// Name holds the identifier text (NodeIdent) or the declared binding
	// (NodeVarDecl).
	Name string
	// Value holds the literal text (NodeStringLit) or the import source
	// (NodeImportDecl).
	Value string
	// Local holds the local binding introduced by a default import
	// specifier; empty when the declaration has no default specifier.
	Local string

	// Callee is set for NodeCallExpr.
	Callee *Node
	// Args are call arguments (NodeCallExpr) or child expressions
	// (NodeFuncExpr body, NodeObjectLit values, NodeExprStmt, NodeVarDecl
	// initializer).
	Args []*Node
}

// Program is one module's parsed body. Immutable after construction.
type Program struct {
	Body []*Node
}

// Ident makes an identifier node.
func Ident(name string) *Node {
	return &Node{Kind: NodeIdent, Name: name}
}

// Str makes a string literal node.
func Str(value string) *Node {
	return &Node{Kind: NodeStringLit, Value: value}
}

// Import makes a static import declaration. local is the default-specifier
// binding, empty if none.
func Import(source, local string) *Node {
	return &Node{Kind: NodeImportDecl, Value: source, Local: local}
}

// Call makes a call expression.
func Call(callee *Node, args ...*Node) *Node {
	return &Node{Kind: NodeCallExpr, Callee: callee, Args: args}
}

// DynImport makes an `import(...)` call expression.
func DynImport(args ...*Node) *Node {
	return &Node{Kind: NodeCallExpr, Callee: &Node{Kind: NodeImportCallee}, Args: args}
}

// Func makes a function expression with the given body expressions.
func Func(body ...*Node) *Node {
	return &Node{Kind: NodeFuncExpr, Args: body}
}

// Object makes an object literal holding the given value expressions.
func Object(values ...*Node) *Node {
	return &Node{Kind: NodeObjectLit, Args: values}
}

// ExprStmt wraps an expression into a statement.
func ExprStmt(expr *Node) *Node {
	return &Node{Kind: NodeExprStmt, Args: []*Node{expr}}
}

// VarDecl makes a variable declaration with one initializer.
func VarDecl(name string, init *Node) *Node {
	return &Node{Kind: NodeVarDecl, Name: name, Args: []*Node{init}}
}
