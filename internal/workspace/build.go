package workspace

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/types"
)

// binding is a name visible to later nodes in a block.
type binding struct {
	name string
	id   ast.ID
}

// builder turns node specs into a code tree for one location. Anything it
// cannot resolve becomes a placeholder and an error, so one bad node does not
// hide the rest.
type builder struct {
	where string
	names typeNames
	decls *declarations
	args  []types.ArgumentDefinition

	lets     map[*LetSpec]ast.ID
	firstLet map[string]ast.ID
	scope    []binding

	errs *multierror.Error
}

// declarations indexes the catalogue by name.
type declarations struct {
	structs   map[string]*types.Struct
	enums     map[string]*types.Enum
	functions map[string]*types.Function
}

func newBuilder(where string, names typeNames, decls *declarations, args []types.ArgumentDefinition) *builder {
	return &builder{
		where:    where,
		names:    names,
		decls:    decls,
		args:     args,
		lets:     make(map[*LetSpec]ast.ID),
		firstLet: make(map[string]ast.ID),
	}
}

func (b *builder) fail(format string, args ...any) {
	b.errs = multierror.Append(b.errs, fmt.Errorf("%s: "+format, append([]any{b.where}, args...)...))
}

func (b *builder) failHole(desc string, err error) *ast.Placeholder {
	b.fail("%w", err)
	return ast.NewHole(desc, types.NullType())
}

func (b *builder) id(raw string) ast.ID {
	if raw == "" {
		return ast.NewID()
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		b.fail("node id %q: %w", raw, err)
		return ast.NewID()
	}
	return id
}

// root builds the location's block with the given ID. Let IDs are assigned
// up front so a reference to a later or out-of-scope let still resolves to
// it; the validator turns those into placeholders.
func (b *builder) root(id ast.ID, specs []NodeSpec) (*ast.Block, error) {
	walkSpecs(specs, func(n *NodeSpec) {
		if n.Let == nil {
			return
		}
		letID := b.id(n.ID)
		b.lets[n.Let] = letID
		if _, ok := b.firstLet[n.Let.Name]; !ok {
			b.firstLet[n.Let.Name] = letID
		}
	})
	block := ast.NewBlock(id, b.exprs(specs)...)
	return block, b.errs.ErrorOrNil()
}

func (b *builder) block(specs []NodeSpec) *ast.Block {
	return ast.NewBlock(ast.NewID(), b.exprs(specs)...)
}

func (b *builder) exprs(specs []NodeSpec) []ast.Node {
	depth := len(b.scope)
	defer func() { b.scope = b.scope[:depth] }()

	out := make([]ast.Node, 0, len(specs))
	for i := range specs {
		out = append(out, b.node(&specs[i]))
	}
	return out
}

func (b *builder) lookup(name string) (ast.ID, bool) {
	for i := len(b.scope) - 1; i >= 0; i-- {
		if b.scope[i].name == name {
			return b.scope[i].id, true
		}
	}
	for _, arg := range b.args {
		if arg.Name == name {
			return arg.ID, true
		}
	}
	if id, ok := b.firstLet[name]; ok {
		return id, true
	}
	return ast.NoID, false
}

func (b *builder) typ(expr string) (types.Type, bool) {
	t, err := b.names.parse(expr)
	if err != nil {
		b.fail("%w", err)
		return types.Type{}, false
	}
	return t, true
}

func (b *builder) node(n *NodeSpec) ast.Node {
	kinds := n.kinds()
	if len(kinds) != 1 {
		return b.failHole("Invalid node", fmt.Errorf("node sets %v: %w", kinds, ErrInvalidNode))
	}

	switch {
	case n.Let != nil:
		value := b.node(&n.Let.Value)
		id := b.lets[n.Let]
		b.scope = append(b.scope, binding{name: n.Let.Name, id: id})
		return ast.NewAssignment(id, n.Let.Name, value)

	case n.Ref != "":
		target, ok := b.lookup(n.Ref)
		if !ok {
			return b.failHole(n.Ref, fmt.Errorf("variable %q: %w", n.Ref, ErrUnknownName))
		}
		return ast.NewVariableReference(b.id(n.ID), target)

	case n.Call != nil:
		return b.call(b.id(n.ID), n.Call)

	case n.String != nil:
		return ast.NewStringLiteral(b.id(n.ID), *n.String)

	case n.Number != nil:
		return ast.NewNumberLiteral(b.id(n.ID), *n.Number)

	case n.Null:
		return ast.NewNullLiteral(b.id(n.ID))

	case n.List != nil:
		elem, ok := b.typ(n.List.Of)
		if !ok {
			elem = types.AnyType()
		}
		items := make([]ast.Node, 0, len(n.List.Items))
		for i := range n.List.Items {
			items = append(items, b.node(&n.List.Items[i]))
		}
		return ast.NewListLiteral(b.id(n.ID), elem, items...)

	case n.Map != nil:
		key, ok := b.typ(n.Map.Key)
		if !ok {
			key = types.AnyType()
		}
		value, ok := b.typ(n.Map.Value)
		if !ok {
			value = types.AnyType()
		}
		return ast.NewMapLiteral(b.id(n.ID), key, value)

	case n.Struct != nil:
		return b.structLiteral(b.id(n.ID), n.Struct)

	case n.If != nil:
		cond := b.node(&n.If.Cond)
		var elseBranch *ast.Block
		if n.If.Else != nil {
			elseBranch = b.block(n.If.Else)
		}
		return ast.NewConditional(b.id(n.ID), cond, b.block(n.If.Then), elseBranch)

	case n.Match != nil:
		return b.match(b.id(n.ID), n.Match)

	case n.Get != nil:
		of := b.node(&n.Get.Of)
		s, ok := b.decls.structs[n.Get.Struct]
		if !ok {
			return b.failHole(n.Get.Field, fmt.Errorf("struct %q: %w", n.Get.Struct, ErrUnknownName))
		}
		for _, f := range s.Fields {
			if f.Name == n.Get.Field {
				return ast.NewStructFieldGet(b.id(n.ID), of, f.ID)
			}
		}
		return b.failHole(n.Get.Field, fmt.Errorf("field %s.%s: %w", s.Name, n.Get.Field, ErrUnknownName))

	case n.Index != nil:
		return ast.NewListIndex(b.id(n.ID), b.node(&n.Index.List), b.node(&n.Index.At))

	default:
		typ := types.NullType()
		if n.Hole.Type != "" {
			if t, ok := b.typ(n.Hole.Type); ok {
				typ = t
			}
		}
		return ast.NewPlaceholder(b.id(n.ID), n.Hole.Description, typ)
	}
}

func (b *builder) call(id ast.ID, spec *CallSpec) ast.Node {
	fn, ok := b.decls.functions[spec.Function]
	if !ok {
		return b.failHole(spec.Function, fmt.Errorf("function %q: %w", spec.Function, ErrUnknownName))
	}
	known := make(map[string]bool, len(fn.Args))
	args := make([]*ast.Argument, 0, len(fn.Args))
	for _, def := range fn.Args {
		known[def.Name] = true
		var expr ast.Node
		if argSpec, ok := spec.Args[def.Name]; ok {
			expr = b.node(&argSpec)
		} else {
			expr = ast.NewHole(def.Name, def.Type)
		}
		args = append(args, ast.NewArgument(ast.NewID(), def.ID, expr))
	}
	for _, name := range sortedKeys(spec.Args) {
		if !known[name] {
			b.fail("argument %s(%s): %w", fn.Name, name, ErrUnknownName)
		}
	}
	return ast.NewFunctionCall(id, ast.NewFunctionReference(ast.NewID(), fn.ID), args...)
}

func (b *builder) structLiteral(id ast.ID, spec *StructLiteralSpec) ast.Node {
	s, ok := b.decls.structs[spec.Type]
	if !ok {
		return b.failHole(spec.Type, fmt.Errorf("struct %q: %w", spec.Type, ErrUnknownName))
	}
	known := make(map[string]bool, len(s.Fields))
	fields := make([]*ast.StructLiteralField, 0, len(s.Fields))
	for _, def := range s.Fields {
		known[def.Name] = true
		var expr ast.Node
		if fieldSpec, ok := spec.Fields[def.Name]; ok {
			expr = b.node(&fieldSpec)
		} else {
			expr = ast.NewHole(def.Name, def.Type)
		}
		fields = append(fields, ast.NewStructLiteralField(ast.NewID(), def.ID, expr))
	}
	for _, name := range sortedKeys(spec.Fields) {
		if !known[name] {
			b.fail("field %s.%s: %w", s.Name, name, ErrUnknownName)
		}
	}
	return ast.NewStructLiteral(id, s.ID, fields...)
}

func (b *builder) match(id ast.ID, spec *MatchSpec) ast.Node {
	on := b.node(&spec.On)
	e, ok := b.decls.enums[spec.Enum]
	if !ok {
		return b.failHole(spec.Enum, fmt.Errorf("enum %q: %w", spec.Enum, ErrUnknownName))
	}
	known := make(map[string]bool, len(e.Variants))
	branches := make([]ast.MatchBranch, 0, len(e.Variants))
	for _, v := range e.Variants {
		known[v.Name] = true
		b.scope = append(b.scope, binding{name: v.Name, id: ast.MatchVariableID(id, v.ID)})
		body := b.block(spec.Cases[v.Name])
		b.scope = b.scope[:len(b.scope)-1]
		branches = append(branches, ast.MatchBranch{VariantID: v.ID, Body: body})
	}
	for _, name := range sortedKeys(spec.Cases) {
		if !known[name] {
			b.fail("case %s.%s: %w", e.Name, name, ErrUnknownName)
		}
	}
	return ast.NewMatch(id, on, branches...)
}
