package workspace

import "sort"

// File is the YAML form of a workspace: the environment catalogue and every
// code location.
type File struct {
	Name       string          `yaml:"name" validate:"required"`
	Generics   []GenericSpec   `yaml:"generics" validate:"dive"`
	Structs    []StructSpec    `yaml:"structs" validate:"dive"`
	Enums      []EnumSpec      `yaml:"enums" validate:"dive"`
	Functions  []FunctionSpec  `yaml:"functions" validate:"dive"`
	Tests      []CodeSpec      `yaml:"tests" validate:"dive"`
	Scripts    []CodeSpec      `yaml:"scripts" validate:"dive"`
	Generators []GeneratorSpec `yaml:"generators" validate:"dive"`
}

// GenericSpec declares a generic type parameter.
type GenericSpec struct {
	ID   string `yaml:"id" validate:"required,uuid"`
	Name string `yaml:"name" validate:"required"`
}

// StructSpec declares a struct.
type StructSpec struct {
	ID     string      `yaml:"id" validate:"required,uuid"`
	Name   string      `yaml:"name" validate:"required"`
	Symbol string      `yaml:"symbol"`
	Fields []FieldSpec `yaml:"fields" validate:"dive"`
}

// FieldSpec declares a struct field. Type is a type expression such as
// "List<String>".
type FieldSpec struct {
	ID   string `yaml:"id" validate:"required,uuid"`
	Name string `yaml:"name" validate:"required"`
	Type string `yaml:"type" validate:"required"`
}

// EnumSpec declares an enum.
type EnumSpec struct {
	ID       string        `yaml:"id" validate:"required,uuid"`
	Name     string        `yaml:"name" validate:"required"`
	Symbol   string        `yaml:"symbol"`
	Variants []VariantSpec `yaml:"variants" validate:"required,dive"`
}

// VariantSpec declares an enum variant. An empty Type makes the variant
// carry the enum's next type parameter.
type VariantSpec struct {
	ID   string `yaml:"id" validate:"required,uuid"`
	Name string `yaml:"name" validate:"required"`
	Type string `yaml:"type"`
}

// FunctionSpec declares a function. Functions without a body are builtins.
type FunctionSpec struct {
	ID          string      `yaml:"id" validate:"required,uuid"`
	Name        string      `yaml:"name" validate:"required"`
	Description string      `yaml:"description"`
	Args        []ArgSpec   `yaml:"args" validate:"dive"`
	Returns     string      `yaml:"returns" validate:"required"`
	BodyID      string      `yaml:"body_id" validate:"omitempty,uuid"`
	Body        *[]NodeSpec `yaml:"body"`
}

// ArgSpec declares a function argument.
type ArgSpec struct {
	ID   string `yaml:"id" validate:"required,uuid"`
	Name string `yaml:"name" validate:"required"`
	Type string `yaml:"type" validate:"required"`
}

// CodeSpec is a test or script.
type CodeSpec struct {
	ID     string     `yaml:"id" validate:"required,uuid"`
	Name   string     `yaml:"name" validate:"required"`
	BodyID string     `yaml:"body_id" validate:"omitempty,uuid"`
	Body   []NodeSpec `yaml:"body"`
}

// GeneratorSpec is code that must produce a value of type Returns.
type GeneratorSpec struct {
	CodeSpec `yaml:",inline"`
	Returns  string `yaml:"returns" validate:"required"`
}

// NodeSpec is the YAML form of one code node. Exactly one kind field is
// set. References name an assignment, argument or match variant.
type NodeSpec struct {
	ID     string             `yaml:"id,omitempty"`
	Let    *LetSpec           `yaml:"let,omitempty"`
	Ref    string             `yaml:"ref,omitempty"`
	Call   *CallSpec          `yaml:"call,omitempty"`
	String *string            `yaml:"string,omitempty"`
	Number *int64             `yaml:"number,omitempty"`
	Null   bool               `yaml:"null,omitempty"`
	List   *ListSpec          `yaml:"list,omitempty"`
	Map    *MapSpec           `yaml:"map,omitempty"`
	Struct *StructLiteralSpec `yaml:"struct,omitempty"`
	If     *IfSpec            `yaml:"if,omitempty"`
	Match  *MatchSpec         `yaml:"match,omitempty"`
	Get    *GetSpec           `yaml:"get,omitempty"`
	Index  *IndexSpec         `yaml:"index,omitempty"`
	Hole   *HoleSpec          `yaml:"hole,omitempty"`
}

// LetSpec is an assignment.
type LetSpec struct {
	Name  string   `yaml:"name"`
	Value NodeSpec `yaml:"value"`
}

// CallSpec calls a function by name. Missing arguments become placeholders.
type CallSpec struct {
	Function string              `yaml:"function"`
	Args     map[string]NodeSpec `yaml:"args"`
}

// ListSpec is a list literal.
type ListSpec struct {
	Of    string     `yaml:"of"`
	Items []NodeSpec `yaml:"items"`
}

// MapSpec is an empty map literal.
type MapSpec struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// StructLiteralSpec is a struct literal. Fields are keyed by field name.
type StructLiteralSpec struct {
	Type   string              `yaml:"type"`
	Fields map[string]NodeSpec `yaml:"fields"`
}

// IfSpec is a conditional. A nil Else means there is no else branch.
type IfSpec struct {
	Cond NodeSpec   `yaml:"cond"`
	Then []NodeSpec `yaml:"then"`
	Else []NodeSpec `yaml:"else"`
}

// MatchSpec matches On against the variants of Enum. Cases are keyed by
// variant name; missing cases get empty branches.
type MatchSpec struct {
	Enum  string                `yaml:"enum"`
	On    NodeSpec              `yaml:"on"`
	Cases map[string][]NodeSpec `yaml:"cases"`
}

// GetSpec reads Field of the Struct value Of.
type GetSpec struct {
	Of     NodeSpec `yaml:"of"`
	Struct string   `yaml:"struct"`
	Field  string   `yaml:"field"`
}

// IndexSpec indexes into a list.
type IndexSpec struct {
	List NodeSpec `yaml:"list"`
	At   NodeSpec `yaml:"at"`
}

// HoleSpec is a placeholder.
type HoleSpec struct {
	Description string `yaml:"description"`
	Type        string `yaml:"type"`
}

// kinds lists the kind fields set on n.
func (n *NodeSpec) kinds() []string {
	var out []string
	add := func(set bool, kind string) {
		if set {
			out = append(out, kind)
		}
	}
	add(n.Let != nil, "let")
	add(n.Ref != "", "ref")
	add(n.Call != nil, "call")
	add(n.String != nil, "string")
	add(n.Number != nil, "number")
	add(n.Null, "null")
	add(n.List != nil, "list")
	add(n.Map != nil, "map")
	add(n.Struct != nil, "struct")
	add(n.If != nil, "if")
	add(n.Match != nil, "match")
	add(n.Get != nil, "get")
	add(n.Index != nil, "index")
	add(n.Hole != nil, "hole")
	return out
}

// walkSpecs calls fn for every node spec in specs, parents first. Map
// entries are visited in key order.
func walkSpecs(specs []NodeSpec, fn func(*NodeSpec)) {
	for i := range specs {
		walkSpec(&specs[i], fn)
	}
}

func walkSpec(n *NodeSpec, fn func(*NodeSpec)) {
	fn(n)
	switch {
	case n.Let != nil:
		walkSpec(&n.Let.Value, fn)
	case n.Call != nil:
		for _, k := range sortedKeys(n.Call.Args) {
			v := n.Call.Args[k]
			walkSpec(&v, fn)
		}
	case n.List != nil:
		walkSpecs(n.List.Items, fn)
	case n.Struct != nil:
		for _, k := range sortedKeys(n.Struct.Fields) {
			v := n.Struct.Fields[k]
			walkSpec(&v, fn)
		}
	case n.If != nil:
		walkSpec(&n.If.Cond, fn)
		walkSpecs(n.If.Then, fn)
		walkSpecs(n.If.Else, fn)
	case n.Match != nil:
		walkSpec(&n.Match.On, fn)
		for _, k := range sortedKeys(n.Match.Cases) {
			walkSpecs(n.Match.Cases[k], fn)
		}
	case n.Get != nil:
		walkSpec(&n.Get.Of, fn)
	case n.Index != nil:
		walkSpec(&n.Index.List, fn)
		walkSpec(&n.Index.At, fn)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
