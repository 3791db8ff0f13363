package ast

// Visitor observes nodes during a walk. Visit returns false to skip the
// node's children.
type Visitor func(n *Node) bool

// Walk traverses the program body top-down in source order.
func Walk(p *Program, visit Visitor) {
	if p == nil {
		return
	}
	for _, n := range p.Body {
		walkNode(n, visit)
	}
}

// WalkNode traverses a single subtree top-down.
func WalkNode(n *Node, visit Visitor) {
	walkNode(n, visit)
}

func walkNode(n *Node, visit Visitor) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	if n.Callee != nil {
		walkNode(n.Callee, visit)
	}
	for _, child := range n.Args {
		walkNode(child, visit)
	}
}
