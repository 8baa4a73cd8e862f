// Package workspace loads a program and its environment from a YAML file.
//
// A workspace declares generics, structs, enums and functions, which become a
// types.Catalog, and the code of every function body, test, script and
// generator, which becomes a program.Registry. Code is written as nested node
// specs that name variables, functions and fields instead of IDs; see
// testdata/shop.yaml for an example.
package workspace

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/program"
	"github.com/arbor-lang/arbor/internal/types"
)

// Workspace is a loaded program with its environment.
type Workspace struct {
	Name     string
	Env      *types.Catalog
	Programs *program.Registry
}

var validate = validator.New()

// Load reads and builds the workspace file at path.
func Load(path string) (*Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workspace: %w", err)
	}
	ws, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ws, nil
}

// Parse builds a workspace from YAML. Every bad declaration or node is
// reported in the returned error; code is only built once the declarations
// are sound.
func Parse(data []byte) (*Workspace, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode: %w: %w", ErrInvalidWorkspace, err)
	}
	if err := validate.Struct(&file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWorkspace, err)
	}

	l := &loader{
		env:   types.NewCatalog(),
		names: newTypeNames(),
		decls: &declarations{
			structs:   make(map[string]*types.Struct),
			enums:     make(map[string]*types.Enum),
			functions: make(map[string]*types.Function),
		},
		programs: program.NewRegistry(),
	}
	l.declare(&file)
	if err := l.errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	l.code(&file)
	if err := l.errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return &Workspace{Name: file.Name, Env: l.env, Programs: l.programs}, nil
}

type loader struct {
	env      *types.Catalog
	names    typeNames
	decls    *declarations
	programs *program.Registry
	bodies   []pendingBody

	errs *multierror.Error
}

// pendingBody is a function body waiting for every declaration to exist.
type pendingBody struct {
	fn   *types.Function
	body []NodeSpec
}

func (l *loader) fail(err error) {
	l.errs = multierror.Append(l.errs, err)
}

func (l *loader) parseType(where, expr string) types.Type {
	t, err := l.names.parse(expr)
	if err != nil {
		l.fail(fmt.Errorf("%s: %w", where, err))
		return types.AnyType()
	}
	return t
}

func (l *loader) claimName(kind, name string) bool {
	if _, ok := l.names[name]; ok {
		l.fail(fmt.Errorf("%s %s: name already declared: %w", kind, name, ErrInvalidWorkspace))
		return false
	}
	return true
}

// declare fills the catalogue. Type names are registered before any type
// expression is parsed, so declarations may refer to each other in any order.
func (l *loader) declare(file *File) {
	for _, g := range file.Generics {
		if l.claimName("generic", g.Name) {
			l.names.add(uuid.MustParse(g.ID), g.Name, 0, true)
		}
	}
	for _, s := range file.Structs {
		if l.claimName("struct", s.Name) {
			l.names.add(uuid.MustParse(s.ID), s.Name, 0, false)
		}
	}
	for _, e := range file.Enums {
		params := 0
		for _, v := range e.Variants {
			if v.Type == "" {
				params++
			}
		}
		if l.claimName("enum", e.Name) {
			l.names.add(uuid.MustParse(e.ID), e.Name, params, false)
		}
	}

	for _, g := range file.Generics {
		l.add(l.env.AddGeneric(uuid.MustParse(g.ID), g.Name))
	}
	for _, spec := range file.Structs {
		s := &types.Struct{ID: uuid.MustParse(spec.ID), Name: spec.Name, Symbol: spec.Symbol}
		for _, f := range spec.Fields {
			s.Fields = append(s.Fields, types.Field{
				ID:   uuid.MustParse(f.ID),
				Name: f.Name,
				Type: l.parseType("field "+spec.Name+"."+f.Name, f.Type),
			})
		}
		l.decls.structs[s.Name] = s
		l.add(l.env.AddStruct(s))
	}
	for _, spec := range file.Enums {
		e := &types.Enum{ID: uuid.MustParse(spec.ID), Name: spec.Name, Symbol: spec.Symbol}
		for _, v := range spec.Variants {
			variant := types.Variant{ID: uuid.MustParse(v.ID), Name: v.Name}
			if v.Type != "" {
				t := l.parseType("variant "+spec.Name+"."+v.Name, v.Type)
				variant.Type = &t
			}
			e.Variants = append(e.Variants, variant)
		}
		l.decls.enums[e.Name] = e
		l.add(l.env.AddEnum(e))
	}
	for _, spec := range file.Functions {
		fn := &types.Function{
			ID:          uuid.MustParse(spec.ID),
			Name:        spec.Name,
			Description: spec.Description,
			Returns:     l.parseType("function "+spec.Name, spec.Returns),
		}
		for _, a := range spec.Args {
			fn.Args = append(fn.Args, types.ArgumentDefinition{
				ID:   uuid.MustParse(a.ID),
				Name: a.Name,
				Type: l.parseType("argument "+spec.Name+"("+a.Name+")", a.Type),
			})
		}
		if spec.Body != nil {
			fn.BodyID = rootID(spec.BodyID)
			l.bodies = append(l.bodies, pendingBody{fn: fn, body: *spec.Body})
		}
		if _, ok := l.decls.functions[fn.Name]; ok {
			l.fail(fmt.Errorf("function %s: name already declared: %w", fn.Name, ErrInvalidWorkspace))
		}
		l.decls.functions[fn.Name] = fn
		l.add(l.env.AddFunction(fn))
	}
}

func (l *loader) add(err error) {
	if err != nil {
		l.fail(err)
	}
}

// code builds every location and registers it in order: function bodies,
// tests, scripts, generators.
func (l *loader) code(file *File) {
	for _, p := range l.bodies {
		loc := program.Location{Kind: program.KindFunction, ID: p.fn.ID, Name: p.fn.Name}
		returns := p.fn.Returns
		l.build(loc, p.fn.BodyID, p.body, p.fn.Args, &returns)
	}
	for _, spec := range file.Tests {
		loc := program.Location{Kind: program.KindTest, ID: uuid.MustParse(spec.ID), Name: spec.Name}
		l.build(loc, rootID(spec.BodyID), spec.Body, nil, nil)
	}
	for _, spec := range file.Scripts {
		loc := program.Location{Kind: program.KindScript, ID: uuid.MustParse(spec.ID), Name: spec.Name}
		l.build(loc, rootID(spec.BodyID), spec.Body, nil, nil)
	}
	for _, spec := range file.Generators {
		loc := program.Location{Kind: program.KindGenerator, ID: uuid.MustParse(spec.ID), Name: spec.Name}
		returns := l.parseType("generator "+spec.Name, spec.Returns)
		l.build(loc, rootID(spec.BodyID), spec.Body, nil, &returns)
	}
}

func (l *loader) build(loc program.Location, id ast.ID, body []NodeSpec, args []types.ArgumentDefinition, returns *types.Type) {
	b := newBuilder(loc.String(), l.names, l.decls, args)
	block, err := b.root(id, body)
	if err != nil {
		l.fail(err)
	}
	l.add(l.programs.Add(loc, block, returns))
}

// rootID returns the validated body ID, or a fresh one when none is given.
func rootID(raw string) ast.ID {
	if raw == "" {
		return ast.NewID()
	}
	return uuid.MustParse(raw)
}
