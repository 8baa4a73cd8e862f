package workspace

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/program"
	"github.com/arbor-lang/arbor/internal/types"
)

// Dump is the JSON form of one location.
type Dump struct {
	Kind    program.Kind `json:"kind"`
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Returns string       `json:"returns,omitempty"`
	Code    Object       `json:"code"`
}

// Object is the JSON form of a node: its id and kind plus kind-specific
// fields. Names are resolved through the environment where possible.
type Object map[string]any

// Dumps converts every location of src to its JSON form.
func Dumps(env types.Env, src program.Source) []Dump {
	entries := src.Locations()
	out := make([]Dump, 0, len(entries))
	for _, e := range entries {
		d := Dump{
			Kind: e.Location.Kind,
			ID:   e.Location.ID.String(),
			Name: e.Location.Name,
			Code: Tree(env, e.Code),
		}
		if t, ok := src.RequiredReturnType(e.Location); ok {
			d.Returns = types.Format(env, t)
		}
		out = append(out, d)
	}
	return out
}

// DumpJSON writes every location of src as an indented JSON array.
func DumpJSON(w io.Writer, env types.Env, src program.Source) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Dumps(env, src)); err != nil {
		return fmt.Errorf("encode dump: %w", err)
	}
	return nil
}

// Tree converts node and its descendants to their JSON form.
func Tree(env types.Env, node ast.Node) Object {
	obj := Object{"id": node.ID().String(), "kind": string(node.Kind())}
	switch n := node.(type) {
	case *ast.Block:
		obj["exprs"] = trees(env, n.Exprs)

	case *ast.Assignment:
		obj["name"] = n.Name
		obj["expr"] = Tree(env, n.Expr)

	case *ast.FunctionCall:
		obj["function"] = Tree(env, n.Func)
		args := make([]Object, len(n.Args))
		for i, a := range n.Args {
			args[i] = Tree(env, a)
		}
		obj["args"] = args

	case *ast.FunctionReference:
		obj["function_id"] = n.FunctionID.String()
		if fn, ok := env.FindFunction(n.FunctionID); ok {
			obj["name"] = fn.Name
		}

	case *ast.Argument:
		obj["arg_id"] = n.ArgDefID.String()
		obj["expr"] = Tree(env, n.Expr)

	case *ast.StructLiteral:
		obj["struct_id"] = n.StructID.String()
		if s, ok := env.FindStruct(n.StructID); ok {
			obj["struct"] = s.Name
		}
		fields := make([]Object, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = Tree(env, f)
		}
		obj["fields"] = fields

	case *ast.StructLiteralField:
		obj["field_id"] = n.FieldID.String()
		if f, ok := env.FindStructField(n.FieldID); ok {
			obj["field"] = f.Name
		}
		obj["expr"] = Tree(env, n.Expr)

	case *ast.VariableReference:
		obj["assignment_id"] = n.AssignmentID.String()

	case *ast.StringLiteral:
		obj["value"] = n.Value

	case *ast.NumberLiteral:
		obj["value"] = n.Value

	case *ast.NullLiteral:

	case *ast.ListLiteral:
		obj["element_type"] = types.Format(env, n.ElementType)
		obj["elements"] = trees(env, n.Elements)

	case *ast.MapLiteral:
		obj["key_type"] = types.Format(env, n.KeyType)
		obj["value_type"] = types.Format(env, n.ValueType)

	case *ast.Conditional:
		obj["condition"] = Tree(env, n.Condition)
		obj["then"] = Tree(env, n.TrueBranch)
		if n.ElseBranch != nil {
			obj["else"] = Tree(env, n.ElseBranch)
		}

	case *ast.Match:
		obj["scrutinee"] = Tree(env, n.Scrutinee)
		branches := make([]Object, len(n.Branches))
		for i, b := range n.Branches {
			branch := Object{"variant_id": b.VariantID.String(), "body": Tree(env, b.Body)}
			if name, ok := variantName(env, b.VariantID); ok {
				branch["variant"] = name
			}
			branches[i] = branch
		}
		obj["branches"] = branches

	case *ast.StructFieldGet:
		obj["struct"] = Tree(env, n.StructExpr)
		obj["field_id"] = n.FieldID.String()
		if f, ok := env.FindStructField(n.FieldID); ok {
			obj["field"] = f.Name
		}

	case *ast.ListIndex:
		obj["list"] = Tree(env, n.ListExpr)
		obj["index"] = Tree(env, n.IndexExpr)

	case *ast.Placeholder:
		obj["description"] = n.Description
		obj["type"] = types.Format(env, n.Type)
	}
	return obj
}

func trees(env types.Env, nodes []ast.Node) []Object {
	out := make([]Object, len(nodes))
	for i, n := range nodes {
		out[i] = Tree(env, n)
	}
	return out
}

func variantName(env types.Env, id ast.ID) (string, bool) {
	for _, e := range env.Enums() {
		for _, v := range e.Variants {
			if v.ID == id {
				return v.Name, true
			}
		}
	}
	return "", false
}
