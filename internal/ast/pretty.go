package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arbor-lang/arbor/internal/types"
)

// Printer renders nodes as one-line pseudo-source for terminals and logs.
// Root is used to resolve variable names; it may be nil.
type Printer struct {
	Env  types.Env
	Root Node
}

// PrettyPrint returns a human-readable rendering of a block, one expression
// per line.
func (p Printer) PrettyPrint(b *Block) string {
	var sb strings.Builder
	for i, expr := range b.Exprs {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(p.Print(expr))
	}
	return sb.String()
}

// Print returns a one-line rendering of node.
func (p Printer) Print(node Node) string {
	switch n := node.(type) {
	case *Block:
		parts := make([]string, len(n.Exprs))
		for i, e := range n.Exprs {
			parts[i] = p.Print(e)
		}
		return "{ " + strings.Join(parts, "; ") + " }"

	case *Assignment:
		return fmt.Sprintf("%s = %s", n.Name, p.Print(n.Expr))

	case *FunctionCall:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = p.Print(a)
		}
		return fmt.Sprintf("%s(%s)", p.Print(n.Func), strings.Join(args, ", "))

	case *FunctionReference:
		if p.Env != nil {
			if fn, ok := p.Env.FindFunction(n.FunctionID); ok {
				return fn.Name
			}
		}
		return "<func " + n.FunctionID.String() + ">"

	case *Argument:
		return p.Print(n.Expr)

	case *StructLiteral:
		name := "<struct>"
		var s *types.Struct
		if p.Env != nil {
			if found, ok := p.Env.FindStruct(n.StructID); ok {
				s, name = found, found.Name
			}
		}
		fields := make([]string, len(n.Fields))
		for i, f := range n.Fields {
			fname := "?"
			if s != nil {
				if def, ok := s.Field(f.FieldID); ok {
					fname = def.Name
				}
			}
			fields[i] = fname + ": " + p.Print(f.Expr)
		}
		return name + " { " + strings.Join(fields, ", ") + " }"

	case *StructLiteralField:
		return p.Print(n.Expr)

	case *VariableReference:
		return p.variableName(n.AssignmentID)

	case *StringLiteral:
		return strconv.Quote(n.Value)

	case *NumberLiteral:
		return strconv.FormatInt(n.Value, 10)

	case *NullLiteral:
		return "null"

	case *ListLiteral:
		elems := make([]string, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = p.Print(e)
		}
		return "[" + strings.Join(elems, ", ") + "]"

	case *MapLiteral:
		return "{}"

	case *Conditional:
		out := fmt.Sprintf("if %s %s", p.Print(n.Condition), p.Print(n.TrueBranch))
		if n.ElseBranch != nil {
			out += " else " + p.Print(n.ElseBranch)
		}
		return out

	case *Match:
		branches := make([]string, len(n.Branches))
		for i, b := range n.Branches {
			branches[i] = p.variantName(b.VariantID) + " => " + p.Print(b.Body)
		}
		return fmt.Sprintf("match %s { %s }", p.Print(n.Scrutinee), strings.Join(branches, ", "))

	case *StructFieldGet:
		fname := "?"
		if p.Env != nil {
			if f, ok := p.Env.FindStructField(n.FieldID); ok {
				fname = f.Name
			}
		}
		return p.Print(n.StructExpr) + "." + fname

	case *ListIndex:
		return fmt.Sprintf("%s[%s]", p.Print(n.ListExpr), p.Print(n.IndexExpr))

	case *Placeholder:
		return "<" + n.Description + ">"
	}
	return fmt.Sprintf("<%T>", node)
}

func (p Printer) variableName(id ID) string {
	if p.Root != nil {
		if n, ok := Find(p.Root, id); ok {
			if a, ok := n.(*Assignment); ok {
				return a.Name
			}
		}
		if p.Env != nil {
			for _, arg := range p.Env.CodeTakesArgs(p.Root.ID()) {
				if arg.ID == id {
					return arg.Name
				}
			}
		}
		var name string
		Walk(p.Root, func(n Node) bool {
			m, ok := n.(*Match)
			if !ok || name != "" {
				return name == ""
			}
			for _, b := range m.Branches {
				if MatchVariableID(m.ID(), b.VariantID) == id {
					name = p.variantName(b.VariantID)
				}
			}
			return name == ""
		})
		if name != "" {
			return name
		}
	}
	return "<unresolved>"
}

func (p Printer) variantName(id ID) string {
	if p.Env != nil {
		for _, e := range p.Env.Enums() {
			for _, v := range e.Variants {
				if v.ID == id {
					return v.Name
				}
			}
		}
	}
	return id.String()
}
