// Package insertmenu builds and ranks the code fragments offered when the
// user inserts code at an insertion point.
//
// A SearchParams is derived once per insertion point from the tree: the text
// typed so far, the type the slot requires, and the type of the node being
// wrapped. Each generator turns the params into candidate options; the Menu
// groups, sorts and selects among them.
package insertmenu

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/genie"
	"github.com/arbor-lang/arbor/internal/mutation"
	"github.com/arbor-lang/arbor/internal/types"
)

// SearchParams is the search context for one insertion point. ReturnType is
// nil when any type is acceptable; WrapsType is only set for wraps.
type SearchParams struct {
	InputStr       string
	InsertionPoint mutation.InsertionPoint
	ReturnType     *types.Type
	WrapsType      *types.Type
}

// NewSearchParams derives the search context for point in the tree g views.
func NewSearchParams(input string, point mutation.InsertionPoint, g *genie.Genie, env types.Env) (SearchParams, error) {
	p := SearchParams{InputStr: input, InsertionPoint: point}

	switch point.Kind {
	case mutation.KindBefore, mutation.KindAfter, mutation.KindBeginningOfBlock:
		return p, nil

	case mutation.KindStructLiteralField, mutation.KindReplace:
		node, err := g.FindNode(point.ID)
		if err != nil {
			return p, err
		}
		p.ReturnType, err = returnTypeFor(node, g, env)
		return p, err

	case mutation.KindWrap:
		node, err := g.FindNode(point.ID)
		if err != nil {
			return p, err
		}
		wraps, err := g.GuessType(node, env)
		if err != nil {
			return p, err
		}
		p.WrapsType = &wraps
		p.ReturnType, err = returnTypeFor(node, g, env)
		return p, err

	case mutation.KindListLiteralElement:
		node, err := g.FindNode(point.ID)
		if err != nil {
			return p, err
		}
		listType, err := g.GuessType(node, env)
		if err != nil {
			return p, err
		}
		elem, ok := listType.ListElem()
		if !ok {
			return p, fmt.Errorf("list element of %s: %w", listType, genie.ErrInvalidDocument)
		}
		p.ReturnType = &elem
		return p, nil

	case mutation.KindEditing:
		return p, mutation.ErrEditingInsertion
	}
	return p, fmt.Errorf("search params for %s: %w", point, ast.ErrUnexpectedNode)
}

// returnTypeFor is the type a replacement for node must have. Generic types,
// block expressions and values of unreferenced assignments accept anything,
// since nothing that consumes them could break.
func returnTypeFor(node ast.Node, g *genie.Genie, env types.Env) (*types.Type, error) {
	exact, err := g.GuessType(node, env)
	if err != nil {
		return nil, err
	}
	if env.IsGeneric(exact.SpecID) {
		return nil, nil
	}
	if g.IsBlockExpression(node.ID()) {
		return nil, nil
	}
	if parent, ok := g.Parent(node.ID()); ok {
		if a, ok := parent.(*ast.Assignment); ok && !g.AnyVariableReferencing(a.ID()) {
			return nil, nil
		}
	}
	return &exact, nil
}

// MatchesType reports whether a candidate of typ fits the required type.
func (p SearchParams) MatchesType(typ types.Type, env types.Env) bool {
	if p.ReturnType == nil {
		return true
	}
	return env.TypesMatch(*p.ReturnType, typ)
}

// IsWrapping reports whether typ fits the wrapped node's type.
func (p SearchParams) IsWrapping(typ types.Type, env types.Env) bool {
	if p.WrapsType == nil {
		return false
	}
	return env.TypesMatch(*p.WrapsType, typ)
}

// Query is the input lowercased and trimmed.
func (p SearchParams) Query() string {
	return strings.ToLower(strings.TrimSpace(p.InputStr))
}

// MatchesIdentifier reports whether name contains the query, ignoring case.
func (p SearchParams) MatchesIdentifier(name string) bool {
	return strings.Contains(strings.ToLower(name), p.Query())
}

// SearchPrefix returns what follows prefix in the query, if the query starts
// with prefix as a whole word.
func (p SearchParams) SearchPrefix(prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(p.Query(), prefix)
	if !ok || (rest != "" && rest[0] != ' ') {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// ParseNumber parses the query as an integer.
func (p SearchParams) ParseNumber() (int64, bool) {
	n, err := strconv.ParseInt(p.Query(), 10, 64)
	return n, err == nil
}

// SearchPosition is where locals are looked up for point. After is inclusive
// because the node it names may itself be an assignment.
func SearchPosition(point mutation.InsertionPoint) genie.SearchPosition {
	return genie.SearchPosition{BeforeID: point.ID, Inclusive: point.Kind == mutation.KindAfter}
}

// insertingInsideBlock reports whether the point is a statement position.
func insertingInsideBlock(point mutation.InsertionPoint, g *genie.Genie) bool {
	switch point.Kind {
	case mutation.KindBeginningOfBlock, mutation.KindBefore, mutation.KindAfter:
		return true
	case mutation.KindReplace, mutation.KindWrap:
		return g.IsBlockExpression(point.ID)
	}
	return false
}
