package insertmenu

import (
	"strings"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/genie"
	"github.com/arbor-lang/arbor/internal/mutation"
	"github.com/arbor-lang/arbor/internal/types"
)

// Option group names, in the form shown to users.
const (
	GroupFunctions   = "Functions"
	GroupLocals      = "Local variables"
	GroupLiterals    = "Create new value"
	GroupControlFlow = "Control flow"
)

// Option is one candidate fragment. Node is freshly built for every listing,
// except for wrapped or moved nodes, which keep their IDs.
type Option struct {
	SortKey  string
	Node     ast.Node
	Group    string
	Selected bool
}

// generator produces the options of one kind for a search.
type generator func(p SearchParams, g *genie.Genie, env types.Env) []Option

// generators run in this order; it decides how options with equal sort keys
// are ordered.
var generators = []generator{
	functionWrapOptions,
	listIndexOptions,
	variableOptions,
	structFieldGetOptions,
	functionCallOptions,
	conditionalOptions,
	matchOptions,
	assignmentOptions,
	literalOptions,
	functionCallReplacementOptions,
}

// ListOptions runs every generator for p, unsorted.
func ListOptions(p SearchParams, g *genie.Genie, env types.Env) []Option {
	var out []Option
	for _, gen := range generators {
		out = append(out, gen(p, g, env)...)
	}
	return out
}

func wrappedNode(p SearchParams, g *genie.Genie) (ast.Node, bool) {
	if p.InsertionPoint.Kind != mutation.KindWrap {
		return nil, false
	}
	return g.Lookup(p.InsertionPoint.ID)
}

// matchingFunctions filters the environment's functions by name and return
// type, ignoring what is being wrapped.
func matchingFunctions(p SearchParams, env types.Env) []*types.Function {
	var out []*types.Function
	query := p.Query()
	for _, fn := range env.Functions() {
		if query != "" && !p.MatchesIdentifier(fn.Name) {
			continue
		}
		if p.ReturnType != nil && !env.TypesMatch(fn.Returns, *p.ReturnType) {
			continue
		}
		out = append(out, fn)
	}
	return out
}

func functionWrapOptions(p SearchParams, g *genie.Genie, env types.Env) []Option {
	if p.WrapsType == nil {
		return nil
	}
	wrapped, ok := wrappedNode(p, g)
	if !ok {
		return nil
	}
	var out []Option
	for _, fn := range matchingFunctions(p, env) {
		for _, arg := range fn.Args {
			if !env.TypesMatch(arg.Type, *p.WrapsType) {
				continue
			}
			out = append(out, Option{
				SortKey: fn.ID.String(),
				Node:    ast.NewCallWrapping(fn, arg.ID, wrapped),
				Group:   GroupFunctions,
			})
			break
		}
	}
	return out
}

func functionCallOptions(p SearchParams, _ *genie.Genie, env types.Env) []Option {
	if p.WrapsType != nil {
		return nil
	}
	var out []Option
	for _, fn := range matchingFunctions(p, env) {
		out = append(out, Option{
			SortKey: fn.ID.String(),
			Node:    ast.NewCallWithPlaceholders(fn),
			Group:   GroupFunctions,
		})
	}
	return out
}

// functionCallReplacementOptions offers calls that can take over the
// arguments of the call being replaced.
func functionCallReplacementOptions(p SearchParams, g *genie.Genie, env types.Env) []Option {
	if p.InsertionPoint.Kind != mutation.KindReplace {
		return nil
	}
	node, ok := g.Lookup(p.InsertionPoint.ID)
	if !ok {
		return nil
	}
	call, ok := node.(*ast.FunctionCall)
	if !ok {
		return nil
	}
	argTypes := make([]types.Type, len(call.Args))
	exprs := make([]ast.Node, len(call.Args))
	for i, arg := range call.Args {
		typ, err := g.GuessType(arg.Expr, env)
		if err != nil {
			return nil
		}
		argTypes[i] = typ
		exprs[i] = arg.Expr
	}

	var out []Option
	for _, fn := range matchingFunctions(p, env) {
		if len(fn.Args) != len(call.Args) {
			continue
		}
		fits := true
		for i, def := range fn.Args {
			if !env.TypesMatch(argTypes[i], def.Type) {
				fits = false
				break
			}
		}
		if !fits {
			continue
		}
		out = append(out, Option{
			SortKey: "000replacefunccall" + fn.ID.String(),
			Node:    ast.NewCallWithArgExprs(fn, exprs),
			Group:   GroupFunctions,
		})
	}
	return out
}

func variableOptions(p SearchParams, g *genie.Genie, env types.Env) []Option {
	if p.WrapsType != nil {
		return nil
	}
	var out []Option
	for _, local := range g.Locals(SearchPosition(p.InsertionPoint), env) {
		if !p.MatchesType(local.Type, env) || !p.MatchesIdentifier(local.Name) {
			continue
		}
		out = append(out, Option{
			SortKey: local.ID.String(),
			Node:    ast.NewReference(local.ID),
			Group:   GroupLocals,
		})
	}
	return out
}

func listIndexOptions(p SearchParams, g *genie.Genie, env types.Env) []Option {
	var out []Option
	for _, local := range g.Locals(SearchPosition(p.InsertionPoint), env) {
		elem, ok := local.Type.ListElem()
		if !ok {
			continue
		}
		if !p.MatchesType(elem, env) || !p.MatchesIdentifier(local.Name) {
			continue
		}
		out = append(out, Option{
			SortKey: "listindex" + local.ID.String(),
			Node:    ast.NewIndexInto(ast.NewReference(local.ID)),
			Group:   GroupLocals,
		})
	}
	return out
}

func structFieldGetOptions(p SearchParams, g *genie.Genie, env types.Env) []Option {
	if p.WrapsType != nil {
		if s, ok := env.FindStruct(p.WrapsType.SpecID); ok {
			wrapped, ok := wrappedNode(p, g)
			if !ok {
				return nil
			}
			var out []Option
			for _, f := range s.Fields {
				if !p.matchesDotted(s.Name, f.Name) || !p.MatchesType(f.Type, env) {
					continue
				}
				out = append(out, Option{
					SortKey: "00wrappingstructfieldget" + f.ID.String(),
					Node:    ast.NewFieldGet(wrapped, f.ID),
					Group:   GroupLocals,
				})
			}
			return out
		}
	}

	var out []Option
	for _, local := range g.Locals(SearchPosition(p.InsertionPoint), env) {
		if p.WrapsType != nil && !p.IsWrapping(local.Type, env) {
			continue
		}
		s, ok := env.FindStruct(local.Type.SpecID)
		if !ok {
			continue
		}
		for _, f := range s.Fields {
			if !p.matchesDotted(local.Name, f.Name) || !p.MatchesType(f.Type, env) {
				continue
			}
			out = append(out, Option{
				SortKey: "structfieldget" + f.ID.String(),
				Node:    ast.NewFieldGet(ast.NewReference(local.ID), f.ID),
				Group:   GroupLocals,
			})
		}
	}
	return out
}

func (p SearchParams) matchesDotted(owner, field string) bool {
	return p.MatchesIdentifier(owner) || p.MatchesIdentifier(field) || p.MatchesIdentifier(owner+"."+field)
}

func conditionalOptions(p SearchParams, g *genie.Genie, _ types.Env) []Option {
	if !insertingInsideBlock(p.InsertionPoint, g) {
		return nil
	}
	if p.WrapsType != nil {
		wrapped, ok := wrappedNode(p, g)
		if !ok || !p.WrapsType.MatchesSpec(types.BooleanID) {
			return nil
		}
		return []Option{conditionalOption(wrapped, p.ReturnType)}
	}
	q := p.Query()
	if strings.Contains("if", q) || strings.Contains("conditional", q) {
		return []Option{conditionalOption(nil, p.ReturnType)}
	}
	return nil
}

func conditionalOption(cond ast.Node, result *types.Type) Option {
	return Option{
		SortKey: "conditional",
		Node:    ast.NewConditionalFor(cond, result),
		Group:   GroupControlFlow,
	}
}

func matchOptions(p SearchParams, g *genie.Genie, env types.Env) []Option {
	if !insertingInsideBlock(p.InsertionPoint, g) {
		return nil
	}
	if p.WrapsType != nil {
		wrapped, ok := wrappedNode(p, g)
		if !ok {
			return nil
		}
		if o, ok := matchOption(env, *p.WrapsType, wrapped); ok {
			return []Option{o}
		}
		return nil
	}
	var out []Option
	for _, local := range g.Locals(SearchPosition(p.InsertionPoint), env) {
		if o, ok := matchOption(env, local.Type, ast.NewReference(local.ID)); ok {
			out = append(out, o)
		}
	}
	return out
}

func matchOption(env types.Env, typ types.Type, scrutinee ast.Node) (Option, bool) {
	e, ok := env.FindEnum(typ.SpecID)
	if !ok {
		return Option{}, false
	}
	m, err := ast.NewMatchFor(e, typ, scrutinee)
	if err != nil {
		return Option{}, false
	}
	return Option{SortKey: "match" + e.ID.String(), Node: m, Group: GroupControlFlow}, true
}

// assignmentOptions offers a new variable named after the input. Typing an
// "=" floats the option to the top.
func assignmentOptions(p SearchParams, g *genie.Genie, _ types.Env) []Option {
	if !insertingInsideBlock(p.InsertionPoint, g) {
		return nil
	}
	q := p.Query()
	name, ok := p.SearchPrefix("let")
	if !ok {
		name = strings.TrimRight(q, "= ")
	}
	if name == "" {
		return nil
	}
	prefix := "zzz"
	if strings.Contains(q, "=") {
		prefix = "000"
	}
	return []Option{{
		SortKey: prefix + "newvariable" + name,
		Node:    ast.NewNamedAssignment(name, ast.NewHole(name, types.NullType())),
		Group:   GroupLocals,
	}}
}
