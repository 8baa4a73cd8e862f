package genie

import (
	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/types"
)

// MatchVariant is the pseudo-local a match branch binds for its variant.
type MatchVariant struct {
	MatchID ast.ID
	Variant types.Variant
	Type    types.Type
}

// AssignmentID is the ID variable references use to point at the binding.
func (mv MatchVariant) AssignmentID() ast.ID {
	return ast.MatchVariableID(mv.MatchID, mv.Variant.ID)
}

// FindEnumVariantsPreceding returns the variant bindings of every match
// branch that encloses id, nearest first.
func (g *Genie) FindEnumVariantsPreceding(id ast.ID, env types.Env) []MatchVariant {
	inf := inferer{g: g, env: env, visiting: make(map[ast.ID]bool)}
	return inf.enumVariantsPreceding(id)
}

func (inf inferer) enumVariantsPreceding(id ast.ID) []MatchVariant {
	if _, ok := inf.g.Lookup(id); !ok {
		return nil
	}
	var out []MatchVariant
	prev := id
	for _, node := range inf.g.Ancestors(id) {
		if m, ok := node.(*ast.Match); ok {
			for _, b := range m.Branches {
				if b.Body.ID() != prev {
					continue
				}
				if mv, ok := inf.matchVariant(m, b.VariantID); ok {
					out = append(out, mv)
				}
			}
		}
		prev = node.ID()
	}
	return out
}

// matchVariant resolves the binding for one branch of m from the type of its
// scrutinee. Scrutinees that are not enums bind nothing.
func (inf inferer) matchVariant(m *ast.Match, variantID ast.ID) (MatchVariant, bool) {
	if inf.visiting[m.ID()] {
		return MatchVariant{}, false
	}
	inf.visiting[m.ID()] = true
	defer delete(inf.visiting, m.ID())

	enumType, err := inf.guess(m.Scrutinee)
	if err != nil {
		return MatchVariant{}, false
	}
	e, ok := inf.env.FindEnum(enumType.SpecID)
	if !ok {
		return MatchVariant{}, false
	}
	vts, err := e.VariantTypes(enumType.Params)
	if err != nil {
		return MatchVariant{}, false
	}
	for _, vt := range vts {
		if vt.Variant.ID == variantID {
			return MatchVariant{MatchID: m.ID(), Variant: vt.Variant, Type: vt.Type}, true
		}
	}
	return MatchVariant{}, false
}

// LocalKind says where a local was bound.
type LocalKind int

const (
	LocalAssignment LocalKind = iota
	LocalArgument
	LocalMatchVariant
)

func (k LocalKind) String() string {
	switch k {
	case LocalAssignment:
		return "assignment"
	case LocalArgument:
		return "argument"
	case LocalMatchVariant:
		return "match variant"
	}
	return "unknown"
}

// Local is a binding visible at some position in the tree.
type Local struct {
	ID   ast.ID
	Name string
	Type types.Type
	Kind LocalKind
}

// SearchPosition is where a scope search starts. Inclusive counts the node
// at BeforeID itself as preceding.
type SearchPosition struct {
	BeforeID  ast.ID
	Inclusive bool
}

// Locals lists every binding visible at pos: preceding assignments, the
// arguments of the code block, then enclosing match bindings. Assignments
// whose type cannot be inferred are left out.
func (g *Genie) Locals(pos SearchPosition, env types.Env) []Local {
	var out []Local
	for _, a := range g.FindAssignmentsBefore(pos.BeforeID, pos.Inclusive) {
		typ, err := g.GuessType(a, env)
		if err != nil {
			continue
		}
		out = append(out, Local{ID: a.ID(), Name: a.Name, Type: typ, Kind: LocalAssignment})
	}
	for _, arg := range env.CodeTakesArgs(g.root.ID()) {
		out = append(out, Local{ID: arg.ID, Name: arg.Name, Type: arg.Type, Kind: LocalArgument})
	}
	for _, mv := range g.FindEnumVariantsPreceding(pos.BeforeID, env) {
		out = append(out, Local{ID: mv.AssignmentID(), Name: mv.Variant.Name, Type: mv.Type, Kind: LocalMatchVariant})
	}
	return out
}

// InScope reports whether a reference placed at id may point at target.
func (g *Genie) InScope(id, target ast.ID, env types.Env) bool {
	for _, a := range g.FindAssignmentsBefore(id, false) {
		if a.ID() == target {
			return true
		}
	}
	for _, arg := range env.CodeTakesArgs(g.root.ID()) {
		if arg.ID == target {
			return true
		}
	}
	for _, mv := range g.FindEnumVariantsPreceding(id, env) {
		if mv.AssignmentID() == target {
			return true
		}
	}
	return false
}

// ResolveVariable returns the local ref points at, if that binding is visible
// where ref sits.
func (g *Genie) ResolveVariable(ref *ast.VariableReference, env types.Env) (Local, bool) {
	for _, l := range g.Locals(SearchPosition{BeforeID: ref.ID()}, env) {
		if l.ID == ref.AssignmentID {
			return l, true
		}
	}
	return Local{}, false
}
