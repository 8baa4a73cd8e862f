package workspace

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/arbor-lang/arbor/internal/types"
)

// typeNames resolves typespec names used in type expressions.
type typeNames map[string]*types.TypeSpec

func newTypeNames() typeNames {
	names := make(typeNames)
	for _, spec := range types.Builtins() {
		names[spec.Name] = spec
	}
	return names
}

func (n typeNames) add(id uuid.UUID, name string, numParams int, generic bool) {
	n[name] = &types.TypeSpec{ID: id, Name: name, NumParams: numParams, Generic: generic}
}

// parse reads a type expression such as "Map<String, List<Number>>".
func (n typeNames) parse(expr string) (types.Type, error) {
	p := &typeParser{src: expr, names: n}
	t, err := p.typ()
	if err != nil {
		return types.Type{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return types.Type{}, fmt.Errorf("%q: trailing %q: %w", expr, p.src[p.pos:], ErrInvalidType)
	}
	return t, nil
}

type typeParser struct {
	src   string
	pos   int
	names typeNames
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune("<>, ", rune(p.src[p.pos])) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *typeParser) peek(c byte) bool {
	p.skipSpace()
	return p.pos < len(p.src) && p.src[p.pos] == c
}

func (p *typeParser) typ() (types.Type, error) {
	name := p.ident()
	if name == "" {
		return types.Type{}, fmt.Errorf("%q: expected a type name at %d: %w", p.src, p.pos, ErrInvalidType)
	}
	spec, ok := p.names[name]
	if !ok {
		return types.Type{}, fmt.Errorf("type %q: %w", name, ErrUnknownName)
	}

	var params []types.Type
	if p.peek('<') {
		p.pos++
		for {
			param, err := p.typ()
			if err != nil {
				return types.Type{}, err
			}
			params = append(params, param)
			if p.peek(',') {
				p.pos++
				continue
			}
			if p.peek('>') {
				p.pos++
				break
			}
			return types.Type{}, fmt.Errorf("%q: expected ',' or '>' at %d: %w", p.src, p.pos, ErrInvalidType)
		}
	}
	if len(params) != spec.NumParams {
		return types.Type{}, fmt.Errorf("%s takes %d params, got %d: %w", name, spec.NumParams, len(params), types.ErrWrongParamCount)
	}
	return types.Of(spec.ID, params...), nil
}
