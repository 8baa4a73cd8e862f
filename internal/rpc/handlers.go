package rpc

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/diag"
	"github.com/arbor-lang/arbor/internal/editor"
	"github.com/arbor-lang/arbor/internal/program"
	"github.com/arbor-lang/arbor/internal/types"
	"github.com/arbor-lang/arbor/internal/validate"
	"github.com/arbor-lang/arbor/internal/workspace"
)

func (s *Server) initialize() InitializeResult {
	entries := s.ws.Programs.Locations()
	locs := make([]LocationInfo, 0, len(entries))
	for _, e := range entries {
		locs = append(locs, s.locationInfo(e.Location))
	}
	return InitializeResult{
		ServerInfo: ServerInfo{Name: "arbor", Version: s.version},
		Workspace:  s.ws.Name,
		Locations:  locs,
	}
}

func (s *Server) locationInfo(loc program.Location) LocationInfo {
	info := LocationInfo{Kind: string(loc.Kind), ID: loc.ID.String(), Name: loc.Name}
	if t, ok := s.ws.Programs.RequiredReturnType(loc); ok {
		info.Returns = types.Format(s.ws.Env, t)
	}
	return info
}

func (s *Server) check(ctx context.Context) (DiagnosticsResult, error) {
	report, err := validate.Run(ctx, s.ws.Env, s.ws.Programs, validate.WithLogger(s.logger))
	if err != nil {
		return DiagnosticsResult{}, err
	}
	return diagnosticsResult(report.Diagnostics), nil
}

func (s *Server) findLocation(p OpenParams) (program.Location, error) {
	if p.ID != "" {
		id, err := uuid.Parse(p.ID)
		if err != nil {
			return program.Location{}, &Error{Code: codeInvalidParams, Message: fmt.Sprintf("location id %q: %v", p.ID, err)}
		}
		for _, e := range s.ws.Programs.Locations() {
			if e.Location.ID == id {
				return e.Location, nil
			}
		}
		return program.Location{}, fmt.Errorf("location %s: %w", p.ID, program.ErrUnknownLocation)
	}
	loc, ok := s.ws.Programs.Find(program.Kind(p.Kind), p.Name)
	if !ok {
		return program.Location{}, fmt.Errorf("%s %q: %w", p.Kind, p.Name, program.ErrUnknownLocation)
	}
	return loc, nil
}

// open starts a session on a repaired copy of the location's code. The
// workspace itself is left as it is until the session saves.
func (s *Server) open(ctx context.Context, p OpenParams) (State, error) {
	loc, err := s.findLocation(p)
	if err != nil {
		return State{}, err
	}
	code, ok := s.ws.Programs.Code(loc.ID)
	if !ok {
		return State{}, fmt.Errorf("location %s: %w", loc, program.ErrUnknownLocation)
	}
	var required *types.Type
	if t, ok := s.ws.Programs.RequiredReturnType(loc); ok {
		required = &t
	}

	id := uuid.NewString()
	ed := editor.NewSession(s.ws.Env, code,
		editor.WithLogger(s.logger.With("session", id)),
		editor.WithLocation(loc, required))
	ds, err := ed.Settle(ctx)
	if err != nil {
		return State{}, err
	}
	s.sessions[id] = ed
	openSessions.Inc()
	s.logger.Info("session opened", "session", id, "location", loc.String(), "problems", len(ds))
	st := s.state(id, ed, false)
	st.Diagnostics = ds
	return st, nil
}

func (s *Server) session(id string) (*editor.Session, error) {
	ed, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, ErrUnknownSession)
	}
	return ed, nil
}

func (s *Server) close(id string) error {
	if _, err := s.session(id); err != nil {
		return err
	}
	delete(s.sessions, id)
	openSessions.Dec()
	return nil
}

// edit applies fn to a session and returns the resulting state. A changed
// tree is settled before the state is taken.
func (s *Server) edit(ctx context.Context, id string, fn func(*editor.Session) error) (State, error) {
	ed, err := s.session(id)
	if err != nil {
		return State{}, err
	}
	before := ed.Root()
	if err := fn(ed); err != nil {
		return State{}, err
	}
	if ed.Root() == before {
		return s.state(id, ed, false), nil
	}
	ds, err := ed.Settle(ctx)
	if err != nil {
		return State{}, err
	}
	st := s.state(id, ed, true)
	st.Diagnostics = ds
	return st, nil
}

func (s *Server) key(ctx context.Context, p KeyParams) (State, error) {
	if p.Key == "" {
		return State{}, &Error{Code: codeInvalidParams, Message: "missing key"}
	}
	kp := editor.ParseKeypress(p.Key)
	return s.edit(ctx, p.Session, func(ed *editor.Session) error { return ed.HandleKey(kp) })
}

func (s *Server) search(ctx context.Context, p SearchParams) (State, error) {
	return s.edit(ctx, p.Session, func(ed *editor.Session) error { return ed.SetSearch(p.Text) })
}

func (s *Server) selectNode(ctx context.Context, p SelectParams) (State, error) {
	var node ast.ID
	if p.Node != "" {
		id, err := uuid.Parse(p.Node)
		if err != nil {
			return State{}, &Error{Code: codeInvalidParams, Message: fmt.Sprintf("node id %q: %v", p.Node, err)}
		}
		node = id
	}
	return s.edit(ctx, p.Session, func(ed *editor.Session) error {
		if p.Node != "" {
			ed.Select(node)
		}
		for i := 0; i < p.Step; i++ {
			ed.SelectNext()
		}
		for i := 0; i > p.Step; i-- {
			ed.SelectPrev()
		}
		return nil
	})
}

func (s *Server) options(id string) ([]OptionGroup, error) {
	ed, err := s.session(id)
	if err != nil {
		return nil, err
	}
	groups, err := ed.Options()
	if err != nil {
		return nil, err
	}
	printer := ast.Printer{Env: s.ws.Env, Root: ed.Root()}
	out := make([]OptionGroup, 0, len(groups))
	for _, g := range groups {
		group := OptionGroup{Name: g.Name, Options: make([]OptionInfo, 0, len(g.Options))}
		for _, o := range g.Options {
			group.Options = append(group.Options, OptionInfo{
				Label:    printer.Print(o.Node),
				Kind:     string(o.Node.Kind()),
				Selected: o.Selected,
			})
		}
		out = append(out, group)
	}
	return out, nil
}

func (s *Server) validate(ctx context.Context, id string) (DiagnosticsResult, error) {
	ed, err := s.session(id)
	if err != nil {
		return DiagnosticsResult{}, err
	}
	ds, err := ed.Validate(ctx)
	if err != nil {
		return DiagnosticsResult{}, err
	}
	return diagnosticsResult(ds), nil
}

// save writes the session's tree back to the workspace and validates every
// location against it. Repairs to the saved location are pulled back into
// the session.
func (s *Server) save(ctx context.Context, id string) (State, error) {
	ed, err := s.session(id)
	if err != nil {
		return State{}, err
	}
	loc := ed.Location()
	if err := s.ws.Programs.UpdateCode(loc, ed.Root()); err != nil {
		return State{}, err
	}
	report, err := validate.Run(ctx, s.ws.Env, s.ws.Programs, validate.WithLogger(s.logger))
	if err != nil {
		return State{}, err
	}
	changed := false
	if code, ok := s.ws.Programs.Code(loc.ID); ok && code != ed.Root() {
		ed.Reload(code)
		changed = true
	}
	s.logger.Info("session saved", "session", id, "location", loc.String(),
		"updated", len(report.Updated), "problems", len(report.Diagnostics))
	st := s.state(id, ed, changed)
	st.Diagnostics = report.Diagnostics
	return st, nil
}

func (s *Server) state(id string, ed *editor.Session, changed bool) State {
	root := ed.Root()
	st := State{
		Session:   id,
		Location:  s.locationInfo(ed.Location()),
		Editing:   ed.Editing(),
		Input:     ed.Input(),
		Changed:   changed,
		History:   ed.History().Len(),
		Code:      workspace.Tree(s.ws.Env, root),
		Rendering: ast.Printer{Env: s.ws.Env, Root: root}.PrettyPrint(root),
	}
	if cursor := ed.Cursor(); cursor != ast.NoID {
		st.Cursor = cursor.String()
	}
	if point, ok := ed.InsertionPoint(); ok {
		st.Point = &Point{Kind: point.Kind.String(), ID: point.ID.String(), Pos: point.Pos}
	}
	return st
}

func diagnosticsResult(ds []diag.Diagnostic) DiagnosticsResult {
	if ds == nil {
		ds = []diag.Diagnostic{}
	}
	errs, warnings := diag.Counts(ds)
	return DiagnosticsResult{Diagnostics: ds, Errors: errs, Warnings: warnings}
}
