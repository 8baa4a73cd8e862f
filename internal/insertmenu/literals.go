package insertmenu

import (
	"strconv"
	"strings"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/genie"
	"github.com/arbor-lang/arbor/internal/types"
)

func literalOptions(p SearchParams, _ *genie.Genie, env types.Env) []Option {
	if p.WrapsType != nil {
		return nil
	}
	if p.ReturnType != nil {
		return typedLiteralOptions(p, env, *p.ReturnType)
	}
	return untypedLiteralOptions(p, env)
}

func typedLiteralOptions(p SearchParams, env types.Env, want types.Type) []Option {
	var out []Option
	if want.MatchesSpec(types.StringID) {
		out = append(out, stringOption(p.InputStr))
	}
	if want.MatchesSpec(types.NullID) {
		out = append(out, nullOption())
	}
	if want.MatchesSpec(types.NumberID) {
		if n, ok := p.ParseNumber(); ok {
			out = append(out, numberOption(n))
		}
	} else if want.Is(types.AnyID) {
		out = append(out, numberOption(0))
	}
	if want.Is(types.ListID) {
		if elem, ok := want.ListElem(); ok {
			out = append(out, listOption(elem))
		}
	}
	if want.Is(types.MapID) {
		if key, value, ok := want.MapTypes(); ok {
			out = append(out, Option{
				SortKey: "mapliteral" + want.Hash().String(),
				Node:    ast.NewEmptyMap(key, value),
				Group:   GroupLiterals,
			})
		}
	}
	if s, ok := env.FindStruct(want.SpecID); ok {
		out = append(out, structOption(s))
	}
	out = append(out, Option{
		SortKey: "zzzzplaceholder" + p.InputStr,
		Node:    ast.NewHole(p.InputStr, want),
		Group:   GroupLiterals,
	})
	return out
}

func untypedLiteralOptions(p SearchParams, env types.Env) []Option {
	var out []Option
	if query, ok := p.SearchPrefix("list"); ok {
		for _, spec := range env.TypeSpecs() {
			if spec.NumParams != 0 || spec.Generic {
				continue
			}
			if !strings.Contains(strings.ToLower(spec.Name), query) {
				continue
			}
			out = append(out, listOption(types.Of(spec.ID)))
		}
	}

	query := p.Query()
	for _, s := range env.Structs() {
		if strings.Contains(strings.ToLower(s.Name), query) {
			out = append(out, structOption(s))
		}
	}

	if p.MatchesIdentifier("null") {
		out = append(out, nullOption())
	}
	if n, ok := p.ParseNumber(); ok {
		out = append(out, numberOption(n))
	} else if p.InputStr == "" {
		out = append(out, numberOption(0))
	}
	return append(out, stringOption(p.InputStr))
}

func stringOption(value string) Option {
	return Option{SortKey: "stringliteral" + value, Node: ast.NewString(value), Group: GroupLiterals}
}

func numberOption(n int64) Option {
	return Option{SortKey: "numliteral" + strconv.FormatInt(n, 10), Node: ast.NewNumber(n), Group: GroupLiterals}
}

// nullOption sorts last among literals.
func nullOption() Option {
	return Option{SortKey: "zzzznullliteral", Node: ast.NewNull(), Group: GroupLiterals}
}

func listOption(elem types.Type) Option {
	return Option{SortKey: "listliteral" + elem.Hash().String(), Node: ast.NewEmptyList(elem), Group: GroupLiterals}
}

func structOption(s *types.Struct) Option {
	return Option{SortKey: "structliteral" + s.ID.String(), Node: ast.NewStructWithPlaceholders(s), Group: GroupLiterals}
}
