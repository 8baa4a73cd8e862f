package validate

import (
	"fmt"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/diag"
	"github.com/arbor-lang/arbor/internal/genie"
	"github.com/arbor-lang/arbor/internal/program"
	"github.com/arbor-lang/arbor/internal/types"
)

// ReturnValueDescription labels the placeholder appended to a block that
// does not return its required type.
const ReturnValueDescription = "Return value"

// MissingVariableDescription labels the placeholder that replaces a dangling
// reference.
const MissingVariableDescription = "Missing variable"

// rememberReferenceTypes records the type of every reference that resolves
// in root.
func (v *Validator) rememberReferenceTypes(loc ast.ID, root *ast.Block) {
	g := genie.New(root)
	for _, ref := range references(root) {
		if !g.InScope(ref.ID(), ref.AssignmentID, v.env) {
			continue
		}
		if typ, err := g.GuessType(ref, v.env); err == nil {
			v.lastTypes[ref.ID()] = rememberedType{loc: loc, typ: typ}
		}
	}
}

// forgetRemovedReferences drops remembered types of loc whose reference is
// no longer in root.
func (v *Validator) forgetRemovedReferences(loc ast.ID, root *ast.Block) {
	live := make(map[ast.ID]bool)
	for _, ref := range references(root) {
		live[ref.ID()] = true
	}
	for id, r := range v.lastTypes {
		if r.loc == loc && !live[id] {
			delete(v.lastTypes, id)
		}
	}
}

// fixReturnType makes the block evaluate to required: a trailing placeholder
// is dropped, then an empty list, an empty map, or a typed placeholder is
// appended.
func (v *Validator) fixReturnType(root *ast.Block, required *types.Type) (*ast.Block, []diag.Diagnostic, error) {
	if required == nil {
		return root, nil, nil
	}
	got, err := genie.New(root).GuessType(root, v.env)
	if err != nil {
		// Unresolvable for now; the other fixes make it inferable.
		return root, nil, nil
	}
	if v.env.TypesMatch(*required, got) {
		return root, nil, nil
	}

	exprs := append([]ast.Node(nil), root.Exprs...)
	if n := len(exprs); n > 0 {
		if _, ok := exprs[n-1].(*ast.Placeholder); ok {
			exprs = exprs[:n-1]
		}
	}
	var tail ast.Node
	if elem, ok := required.ListElem(); ok {
		tail = ast.NewEmptyList(elem)
	} else if key, value, ok := required.MapTypes(); ok {
		tail = ast.NewEmptyMap(key, value)
	} else {
		tail = ast.NewHole(ReturnValueDescription, *required)
	}
	exprs = append(exprs, tail)

	d := diag.New(diag.StageValidate, diag.CodeValidateInvalidReturnType,
		fmt.Sprintf("code returns %s but must return %s", types.Format(v.env, got), types.Format(v.env, *required))).
		WithNode(tail.ID())
	return ast.NewBlock(root.ID(), exprs...), []diag.Diagnostic{d}, nil
}

// fixDanglingReferences replaces every reference that no longer resolves in
// scope with a placeholder of the type it last had, or Null.
func (v *Validator) fixDanglingReferences(root *ast.Block, _ *types.Type) (*ast.Block, []diag.Diagnostic, error) {
	g := genie.New(root)
	var out []diag.Diagnostic
	for _, ref := range references(root) {
		if g.InScope(ref.ID(), ref.AssignmentID, v.env) {
			continue
		}
		typ := v.danglingType(g, ref)
		hole := ast.NewPlaceholder(ref.ID(), MissingVariableDescription, typ)
		next, err := ast.ReplaceBlock(root, ref.ID(), hole)
		if err != nil {
			return root, out, fmt.Errorf("replace dangling reference %s: %w", ref.ID(), err)
		}
		root = next
		out = append(out, diag.New(diag.StageValidate, diag.CodeValidateDanglingReference,
			fmt.Sprintf("reference to a variable that is not in scope, replaced by a %s placeholder", types.Format(v.env, typ))).
			WithNode(ref.ID()))
	}
	return root, out, nil
}

func (v *Validator) danglingType(g *genie.Genie, ref *ast.VariableReference) types.Type {
	if typ, err := g.GuessType(ref, v.env); err == nil {
		return typ
	}
	if r, ok := v.lastTypes[ref.ID()]; ok {
		return r.typ
	}
	return types.NullType()
}

// fixStructFieldDrift realigns struct literals with their definitions:
// unknown fields are dropped and missing ones appended as placeholders, in
// definition order.
func (v *Validator) fixStructFieldDrift(root *ast.Block, _ *types.Type) (*ast.Block, []diag.Diagnostic, error) {
	var literals []*ast.StructLiteral
	ast.Walk(root, func(n ast.Node) bool {
		if lit, ok := n.(*ast.StructLiteral); ok {
			literals = append(literals, lit)
		}
		return true
	})

	var out []diag.Diagnostic
	for _, lit := range literals {
		current, ok := ast.Find(root, lit.ID())
		if !ok {
			continue
		}
		lit, ok = current.(*ast.StructLiteral)
		if !ok {
			continue
		}
		s, ok := v.env.FindStruct(lit.StructID)
		if !ok {
			continue
		}
		realigned, dropped, added := realign(lit, s)
		if dropped == 0 && added == 0 {
			continue
		}
		next, err := ast.ReplaceBlock(root, lit.ID(), realigned)
		if err != nil {
			return root, out, fmt.Errorf("realign struct literal %s: %w", lit.ID(), err)
		}
		root = next
		out = append(out, diag.New(diag.StageValidate, diag.CodeValidateStructFieldDrift,
			fmt.Sprintf("%s literal no longer matches its definition", s.Name)).
			WithNode(lit.ID()).
			WithNote(fmt.Sprintf("%d fields dropped, %d fields added", dropped, added)))
	}
	return root, out, nil
}

func realign(lit *ast.StructLiteral, s *types.Struct) (*ast.StructLiteral, int, int) {
	seen := make(map[ast.ID]bool, len(lit.Fields))
	fields := make([]*ast.StructLiteralField, 0, len(s.Fields))
	for _, f := range lit.Fields {
		if _, ok := s.Field(f.FieldID); !ok || seen[f.FieldID] {
			continue
		}
		seen[f.FieldID] = true
		fields = append(fields, f)
	}
	dropped := len(lit.Fields) - len(fields)

	added := 0
	for _, def := range s.Fields {
		if seen[def.ID] {
			continue
		}
		fields = append(fields, ast.NewStructLiteralField(ast.NewID(), def.ID, ast.NewHole(def.Name, def.Type)))
		added++
	}
	return ast.NewStructLiteral(lit.ID(), lit.StructID, fields...), dropped, added
}

// branchWarnings flags conditionals and matches whose branches evaluate to
// different types. Inference uses the first branch, so nothing is rewritten.
func (v *Validator) branchWarnings(loc program.Location, root *ast.Block) []diag.Diagnostic {
	g := genie.New(root)
	var out []diag.Diagnostic
	warn := func(id ast.ID, a, b types.Type) {
		out = append(out, diag.Warning(diag.StageValidate, diag.CodeValidateBranchTypeMismatch,
			fmt.Sprintf("branches evaluate to %s and %s", types.Format(v.env, a), types.Format(v.env, b))).
			WithLocation(loc.Diag()).
			WithNode(id).
			WithHelp("the first branch decides the type of the whole expression"))
	}
	ast.Walk(root, func(n ast.Node) bool {
		var branches []*ast.Block
		switch n := n.(type) {
		case *ast.Conditional:
			if n.ElseBranch != nil {
				branches = []*ast.Block{n.TrueBranch, n.ElseBranch}
			}
		case *ast.Match:
			for _, b := range n.Branches {
				branches = append(branches, b.Body)
			}
		}
		if len(branches) < 2 {
			return true
		}
		first, err := g.GuessType(branches[0], v.env)
		if err != nil {
			return true
		}
		for _, b := range branches[1:] {
			typ, err := g.GuessType(b, v.env)
			if err != nil {
				continue
			}
			if !v.env.TypesMatch(first, typ) {
				warn(n.ID(), first, typ)
				break
			}
		}
		return true
	})
	return out
}

func references(root ast.Node) []*ast.VariableReference {
	var out []*ast.VariableReference
	ast.Walk(root, func(n ast.Node) bool {
		if ref, ok := n.(*ast.VariableReference); ok {
			out = append(out, ref)
		}
		return true
	})
	return out
}
