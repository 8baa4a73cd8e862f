// Package program holds the code locations of a program: function bodies,
// tests, scripts and generators, each with an optional required return type.
package program

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/diag"
	"github.com/arbor-lang/arbor/internal/types"
)

// Kind is the sort of code a location holds.
type Kind string

const (
	KindFunction  Kind = "function"
	KindTest      Kind = "test"
	KindScript    Kind = "script"
	KindGenerator Kind = "generator"
)

var (
	// ErrUnknownLocation is returned when a location is not registered.
	ErrUnknownLocation = errors.New("unknown location")

	// ErrDuplicateLocation is returned when a location ID is registered twice.
	ErrDuplicateLocation = errors.New("duplicate location")
)

// Location identifies one top-level block.
type Location struct {
	Kind Kind
	ID   uuid.UUID
	Name string
}

// Diag returns the location in diagnostic form.
func (l Location) Diag() diag.Location {
	return diag.Location{Kind: string(l.Kind), Name: l.Name}
}

func (l Location) String() string { return l.Diag().String() }

// Entry pairs a location with its current code.
type Entry struct {
	Location Location
	Code     *ast.Block
}

// Source supplies every location of a program and accepts repaired code.
type Source interface {
	Locations() []Entry
	// RequiredReturnType reports the type the location's block must evaluate
	// to, if any.
	RequiredReturnType(loc Location) (types.Type, bool)
	UpdateCode(loc Location, code *ast.Block) error
}

type entry struct {
	loc      Location
	code     *ast.Block
	returns  types.Type
	required bool
}

// Registry is an in-memory Source. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*entry
	order   []uuid.UUID
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[uuid.UUID]*entry)}
}

// Add registers code at loc. A nil returns means the location has no
// required return type.
func (r *Registry) Add(loc Location, code *ast.Block, returns *types.Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[loc.ID]; ok {
		return fmt.Errorf("%s: %w", loc, ErrDuplicateLocation)
	}
	e := &entry{loc: loc, code: code}
	if returns != nil {
		e.returns = *returns
		e.required = true
	}
	r.entries[loc.ID] = e
	r.order = append(r.order, loc.ID)
	return nil
}

// Locations returns every entry in registration order.
func (r *Registry) Locations() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.order))
	for _, id := range r.order {
		e := r.entries[id]
		out = append(out, Entry{Location: e.loc, Code: e.code})
	}
	return out
}

func (r *Registry) RequiredReturnType(loc Location) (types.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[loc.ID]
	if !ok || !e.required {
		return types.Type{}, false
	}
	return e.returns, true
}

func (r *Registry) UpdateCode(loc Location, code *ast.Block) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[loc.ID]
	if !ok {
		return fmt.Errorf("update %s: %w", loc, ErrUnknownLocation)
	}
	e.code = code
	return nil
}

// Code returns the current block at the location with the given ID.
func (r *Registry) Code(id uuid.UUID) (*ast.Block, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return e.code, true
}

// Find returns the location with the given kind and name.
func (r *Registry) Find(kind Kind, name string) (Location, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if loc := r.entries[id].loc; loc.Kind == kind && loc.Name == name {
			return loc, true
		}
	}
	return Location{}, false
}

var _ Source = (*Registry)(nil)
