package ast

import "sort"

// Children returns the direct children of node in their canonical order.
func Children(node Node) []Node {
	switch n := node.(type) {
	case *Block:
		return append([]Node(nil), n.Exprs...)

	case *Assignment:
		return []Node{n.Expr}

	case *FunctionCall:
		out := make([]Node, 0, len(n.Args)+1)
		out = append(out, n.Func)
		for _, arg := range n.Args {
			out = append(out, arg)
		}
		return out

	case *Argument:
		return []Node{n.Expr}

	case *StructLiteral:
		out := make([]Node, 0, len(n.Fields))
		for _, f := range n.Fields {
			out = append(out, f)
		}
		return out

	case *StructLiteralField:
		return []Node{n.Expr}

	case *ListLiteral:
		return append([]Node(nil), n.Elements...)

	case *Conditional:
		out := []Node{n.Condition, n.TrueBranch}
		if n.ElseBranch != nil {
			out = append(out, n.ElseBranch)
		}
		return out

	case *Match:
		out := make([]Node, 0, len(n.Branches)+1)
		out = append(out, n.Scrutinee)
		for _, b := range n.Branches {
			out = append(out, b.Body)
		}
		return out

	case *StructFieldGet:
		return []Node{n.StructExpr}

	case *ListIndex:
		return []Node{n.ListExpr, n.IndexExpr}

	case *FunctionReference, *VariableReference, *StringLiteral, *NumberLiteral,
		*NullLiteral, *MapLiteral, *Placeholder:
		return nil
	}
	return nil
}

// Walk traverses the tree starting from node in depth-first pre-order,
// calling fn for each node. If fn returns false, Walk stops traversing that
// branch.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	for _, child := range Children(node) {
		Walk(child, fn)
	}
}

// Descendants returns every node below node in depth-first pre-order,
// excluding node itself.
func Descendants(node Node) []Node {
	var out []Node
	for _, child := range Children(node) {
		Walk(child, func(n Node) bool {
			out = append(out, n)
			return true
		})
	}
	return out
}

// Find returns the node with the given ID.
func Find(root Node, id ID) (Node, bool) {
	var found Node
	Walk(root, func(n Node) bool {
		if found != nil {
			return false
		}
		if n.ID() == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// FindParent returns the parent of the node with the given ID.
func FindParent(root Node, id ID) (Node, bool) {
	var parent Node
	Walk(root, func(n Node) bool {
		if parent != nil {
			return false
		}
		for _, child := range Children(n) {
			if child.ID() == id {
				parent = n
				return false
			}
		}
		return true
	})
	return parent, parent != nil
}

// IndexOf returns the position of the child with the given ID among
// node's children, or -1.
func IndexOf(node Node, id ID) int {
	for i, child := range Children(node) {
		if child.ID() == id {
			return i
		}
	}
	return -1
}

func sortBranches(branches []MatchBranch) {
	sort.SliceStable(branches, func(i, j int) bool {
		return branches[i].VariantID.String() < branches[j].VariantID.String()
	})
}
