package genie

import (
	"errors"
	"fmt"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/types"
)

var (
	// ErrCannotInfer is returned when a node's type depends on something the
	// tree or environment cannot resolve, such as a dangling reference.
	ErrCannotInfer = errors.New("cannot infer type")

	// ErrInvalidDocument is returned when the tree breaks a structural rule,
	// such as indexing into something that is not a list.
	ErrInvalidDocument = errors.New("invalid document")
)

// GuessType infers the type of n, resolving generic parameters from the
// surrounding call arguments where possible.
func (g *Genie) GuessType(n ast.Node, env types.Env) (types.Type, error) {
	inf := inferer{g: g, env: env, visiting: make(map[ast.ID]bool)}
	return inf.guess(n)
}

// GuessTypeUnresolved infers the type of n without substituting generic
// parameters.
func (g *Genie) GuessTypeUnresolved(n ast.Node, env types.Env) (types.Type, error) {
	inf := inferer{g: g, env: env, visiting: make(map[ast.ID]bool)}
	return inf.guessUnresolved(n)
}

// inferer carries the set of assignments being resolved so that a
// self-referencing assignment fails instead of recursing forever.
type inferer struct {
	g        *Genie
	env      types.Env
	visiting map[ast.ID]bool
}

func (inf inferer) guess(n ast.Node) (types.Type, error) {
	typ, err := inf.guessUnresolved(n)
	if err != nil {
		return types.Type{}, err
	}
	if inf.env.IsGeneric(typ.SpecID) {
		return inf.resolveGeneric(n, typ.SpecID), nil
	}
	return typ, nil
}

func (inf inferer) guessUnresolved(node ast.Node) (types.Type, error) {
	switch n := node.(type) {
	case *ast.FunctionCall:
		fn, ok := inf.env.FindFunction(n.Func.FunctionID)
		if !ok {
			return types.NullType(), nil
		}
		return fn.Returns, nil

	case *ast.StringLiteral:
		return types.StringType(), nil

	case *ast.NumberLiteral:
		return types.NumberType(), nil

	case *ast.NullLiteral, *ast.FunctionReference:
		return types.NullType(), nil

	case *ast.Assignment:
		if inf.visiting[n.ID()] {
			return types.Type{}, fmt.Errorf("assignment %s refers to itself: %w", n.Name, ErrCannotInfer)
		}
		inf.visiting[n.ID()] = true
		defer delete(inf.visiting, n.ID())
		return inf.guess(n.Expr)

	case *ast.Block:
		if len(n.Exprs) == 0 {
			return types.NullType(), nil
		}
		return inf.guess(n.Exprs[len(n.Exprs)-1])

	case *ast.VariableReference:
		return inf.guessReference(n)

	case *ast.Argument:
		typ, ok := inf.env.ArgType(n.ArgDefID)
		if !ok {
			return types.Type{}, fmt.Errorf("argument definition %s: %w", n.ArgDefID, ErrCannotInfer)
		}
		return typ, nil

	case *ast.Placeholder:
		return n.Type, nil

	case *ast.StructLiteral:
		if _, ok := inf.env.FindStruct(n.StructID); !ok {
			return types.Type{}, fmt.Errorf("struct %s: %w", n.StructID, ErrCannotInfer)
		}
		return types.Of(n.StructID), nil

	case *ast.StructLiteralField:
		parent, err := inf.g.FindParent(n.ID())
		if err != nil {
			return types.Type{}, err
		}
		lit, ok := parent.(*ast.StructLiteral)
		if !ok {
			return types.Type{}, fmt.Errorf("struct literal field %s inside %s: %w", n.ID(), parent.Kind(), ErrInvalidDocument)
		}
		s, ok := inf.env.FindStruct(lit.StructID)
		if !ok {
			return types.Type{}, fmt.Errorf("struct %s: %w", lit.StructID, ErrCannotInfer)
		}
		f, ok := s.Field(n.FieldID)
		if !ok {
			return types.Type{}, fmt.Errorf("field %s of %s: %w", n.FieldID, s.Name, ErrCannotInfer)
		}
		return f.Type, nil

	case *ast.ListLiteral:
		return types.ListOf(n.ElementType), nil

	case *ast.MapLiteral:
		return types.MapOf(n.KeyType, n.ValueType), nil

	case *ast.Conditional:
		return inf.guess(n.TrueBranch)

	case *ast.Match:
		if len(n.Branches) == 0 {
			return types.Type{}, fmt.Errorf("match %s has no branches: %w", n.ID(), ErrInvalidDocument)
		}
		return inf.guess(n.Branches[0].Body)

	case *ast.StructFieldGet:
		f, ok := inf.env.FindStructField(n.FieldID)
		if !ok {
			return types.Type{}, fmt.Errorf("struct field %s: %w", n.FieldID, ErrCannotInfer)
		}
		return f.Type, nil

	case *ast.ListIndex:
		listType, err := inf.guess(n.ListExpr)
		if err != nil {
			return types.Type{}, err
		}
		if listType.Is(types.AnyID) {
			return types.AnyType(), nil
		}
		elem, ok := listType.ListElem()
		if !ok {
			return types.Type{}, fmt.Errorf("indexing into %s: %w", listType, ErrInvalidDocument)
		}
		return elem, nil
	}
	return types.Type{}, fmt.Errorf("guess type of %T: %w", node, ErrInvalidDocument)
}

func (inf inferer) guessReference(ref *ast.VariableReference) (types.Type, error) {
	if target, ok := inf.g.Lookup(ref.AssignmentID); ok {
		return inf.guess(target)
	}
	if typ, ok := inf.env.ArgType(ref.AssignmentID); ok {
		return typ, nil
	}
	for _, mv := range inf.enumVariantsPreceding(ref.ID()) {
		if mv.AssignmentID() == ref.AssignmentID {
			return mv.Type, nil
		}
	}
	return types.Type{}, fmt.Errorf("variable reference %s to %s: %w", ref.ID(), ref.AssignmentID, ErrCannotInfer)
}

// resolveGeneric looks through the enclosing call arguments for a sibling
// argument declared with the same generic parameter and takes its concrete
// type. If none is found the generic type is returned unchanged.
func (inf inferer) resolveGeneric(n ast.Node, genericID ast.ID) types.Type {
	chain := append([]ast.Node{n}, inf.g.Ancestors(n.ID())...)
	for _, node := range chain {
		if _, ok := node.(*ast.Argument); !ok {
			continue
		}
		parent, ok := inf.g.Parent(node.ID())
		if !ok {
			continue
		}
		call, ok := parent.(*ast.FunctionCall)
		if !ok {
			continue
		}
		for _, arg := range call.Args {
			declared, ok := inf.env.ArgType(arg.ArgDefID)
			if !ok || declared.SpecID != genericID {
				continue
			}
			guessed, err := inf.guessUnresolved(arg.Expr)
			if err == nil && guessed.SpecID != genericID {
				return guessed
			}
		}
	}
	return types.Of(genericID)
}
