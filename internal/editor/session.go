// Package editor owns the mutable state of one code editor: the tree, the
// cursor, the insert menu and the undo history. Keypresses and menu actions
// are applied through the pure operations of the nav, mutation and
// insertmenu packages.
package editor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/diag"
	"github.com/arbor-lang/arbor/internal/genie"
	"github.com/arbor-lang/arbor/internal/insertmenu"
	"github.com/arbor-lang/arbor/internal/mutation"
	"github.com/arbor-lang/arbor/internal/nav"
	"github.com/arbor-lang/arbor/internal/program"
	"github.com/arbor-lang/arbor/internal/types"
	"github.com/arbor-lang/arbor/internal/validate"
)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithLocation tells the session which program location it edits and the
// return type that location requires, if any. Validation uses both.
func WithLocation(loc program.Location, required *types.Type) Option {
	return func(s *Session) {
		s.loc = loc
		s.required = required
	}
}

// Session is one open code editor. It is not safe for concurrent use.
type Session struct {
	env    types.Env
	logger *slog.Logger

	root    *ast.Block
	genie   *genie.Genie
	cursor  ast.ID
	editing bool
	point   *mutation.InsertionPoint
	menu    *insertmenu.Menu

	history   *mutation.History
	master    *mutation.Master
	validator *validate.Validator

	loc      program.Location
	required *types.Type
}

// NewSession opens root for editing.
func NewSession(env types.Env, root *ast.Block, opts ...Option) *Session {
	s := &Session{
		env:     env,
		logger:  slog.Default(),
		history: mutation.NewHistory(),
		loc:     program.Location{Kind: program.KindScript, ID: root.ID()},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.master = mutation.NewMaster(s.logger)
	s.validator = validate.New(env, validate.WithLogger(s.logger))
	s.replaceCode(root)
	return s
}

// Root returns the current tree.
func (s *Session) Root() *ast.Block { return s.root }

// Cursor returns the selected node, or ast.NoID.
func (s *Session) Cursor() ast.ID { return s.cursor }

// Editing reports whether text input goes to the menu or the edited node.
func (s *Session) Editing() bool { return s.editing }

// Location returns the program location being edited.
func (s *Session) Location() program.Location { return s.loc }

// History exposes the undo history.
func (s *Session) History() *mutation.History { return s.history }

// InsertionPoint returns where text input applies while editing.
func (s *Session) InsertionPoint() (mutation.InsertionPoint, bool) {
	if s.point == nil {
		return mutation.InsertionPoint{}, false
	}
	return *s.point, true
}

// SearchParams returns the search context of the open menu.
func (s *Session) SearchParams() (insertmenu.SearchParams, error) {
	if s.menu == nil {
		return insertmenu.SearchParams{}, ErrNoMenu
	}
	return s.menu.SearchParams(s.genie, s.env)
}

// Options returns the grouped, ranked options of the open menu.
func (s *Session) Options() ([]insertmenu.Group, error) {
	if s.menu == nil {
		return nil, ErrNoMenu
	}
	return s.menu.GroupedOptions(s.genie, s.env)
}

// Input returns the menu filter text, or "" when no menu is open.
func (s *Session) Input() string {
	if s.menu == nil {
		return ""
	}
	return s.menu.Input()
}

// Select moves the cursor to id.
func (s *Session) Select(id ast.ID) {
	s.cursor = id
}

// HandleKey applies one keypress. Keys with no meaning in the current state
// are ignored.
func (s *Session) HandleKey(kp Keypress) error {
	s.logger.Debug("keypress", "key", kp.String(), "editing", s.editing)

	if s.editing {
		switch {
		case kp.Key == KeyEscape:
			s.escapeEditing()
		case kp.Key == KeyEnter:
			if s.menu != nil {
				return s.InsertSelected()
			}
			s.stopEditing()
		case kp.Key == KeyTab && !kp.Shift, kp.Key == KeyDown:
			s.SelectNext()
		case kp.Key == KeyTab && kp.Shift, kp.Key == KeyUp:
			s.SelectPrev()
		}
		return nil
	}

	nv := nav.New(s.genie)
	switch {
	case kp.Key == KeyEscape:
		s.cursor = ast.NoID
	case kp.Ctrl && kp.Key == KeyR:
		s.Redo()
	case kp.Ctrl:
	case kp.Key == KeyJ && !kp.Shift, kp.Key == KeyDown:
		s.move(nv.Down)
	case kp.Key == KeyK && !kp.Shift, kp.Key == KeyUp:
		s.move(nv.Up)
	case kp.Key == KeyB && !kp.Shift, kp.Key == KeyH && !kp.Shift, kp.Key == KeyLeft:
		s.move(nv.Back)
	case kp.Key == KeyW && !kp.Shift, kp.Key == KeyL && !kp.Shift, kp.Key == KeyRight:
		s.move(nv.Forward)
	case kp.Key == KeyC && !kp.Shift:
		s.Change()
	case kp.Key == KeyD && !kp.Shift, kp.Key == KeyDelete:
		s.Delete()
	case kp.Key == KeyA && !kp.Shift:
		s.Append()
	case kp.Key == KeyE && kp.Shift:
		return s.Extract()
	case kp.Key == KeyW && kp.Shift:
		s.Wrap()
	case kp.Key == KeyR:
		s.Replace()
	case kp.Key == KeyO:
		s.OpenLine(kp.Shift)
	case kp.Key == KeyU:
		s.Undo()
	case kp.Key == KeyV && kp.Shift:
		s.SelectLine()
	}
	return nil
}

func (s *Session) move(step func(ast.ID) (ast.ID, bool)) {
	if id, ok := step(s.cursor); ok {
		s.cursor = id
	}
}

// MarkAsEditing opens the editor at point. The current state is saved first
// so escaping can undo whatever the menu inserted.
func (s *Session) MarkAsEditing(point mutation.InsertionPoint) {
	s.menu, _ = insertmenu.NewMenu(point)
	s.history.LogNewMutation(s.root, s.cursor)
	if id, ok := point.NodeToSelectWhenEditing(); ok {
		s.cursor = id
	} else {
		s.cursor = ast.NoID
	}
	s.point = &point
	s.editing = true
}

func (s *Session) stopEditing() {
	s.menu = nil
	s.point = nil
	s.editing = false
}

func (s *Session) escapeEditing() {
	if s.menu != nil {
		s.Undo()
	}
	s.stopEditing()
}

// SetSearch sets the menu filter text. When a node's own text is being
// edited, the text goes into the node instead.
func (s *Session) SetSearch(text string) error {
	if s.menu != nil {
		s.menu.SetSearch(text)
		return nil
	}
	if s.point == nil || s.point.Kind != mutation.KindEditing {
		return ErrNoMenu
	}
	node, err := s.genie.FindNode(s.point.ID)
	if err != nil {
		return err
	}
	var repl ast.Node
	switch n := node.(type) {
	case *ast.StringLiteral:
		repl = n.WithValue(text)
	case *ast.Assignment:
		repl = n.WithName(text)
	default:
		return fmt.Errorf("set text on %s: %w", node.Kind(), ErrNotEditable)
	}
	root, err := ast.ReplaceBlock(s.root, node.ID(), repl)
	if err != nil {
		return err
	}
	s.replaceCode(root)
	return nil
}

// SelectNext moves the menu selection down.
func (s *Session) SelectNext() {
	if s.menu != nil {
		s.menu.SelectNext()
	}
}

// SelectPrev moves the menu selection up.
func (s *Session) SelectPrev() {
	if s.menu != nil {
		s.menu.SelectPrev()
	}
}

// InsertSelected inserts the selected menu option, then moves the cursor
// or reopens the menu on the next hole to fill.
func (s *Session) InsertSelected() error {
	if s.menu == nil {
		return ErrNoMenu
	}
	opt, ok, err := s.menu.SelectedOption(s.genie, s.env)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoOption
	}
	point := s.menu.InsertionPoint()
	root, err := s.master.InsertCode([]ast.Node{opt.Node}, point, s.root)
	if err != nil {
		return err
	}
	s.stopEditing()
	s.replaceCode(root)

	action := insertmenu.PostInsertion(opt.Node, s.genie)
	if action.Edit {
		s.MarkAsEditing(action.Point)
		return nil
	}
	s.cursor = action.Select
	return nil
}

// Change edits the selected node in place: the text of strings and
// assignment names, or the contents of a slot.
func (s *Session) Change() {
	node, ok := s.genie.Lookup(s.cursor)
	if !ok {
		return
	}
	switch n := node.(type) {
	case *ast.StringLiteral, *ast.Assignment:
		s.MarkAsEditing(mutation.Editing(n.ID()))
	case *ast.StructLiteralField:
		s.MarkAsEditing(mutation.StructLiteralField(n.ID()))
	case *ast.Argument:
		s.MarkAsEditing(mutation.Replace(n.Expr.ID()))
	case *ast.ListLiteral:
		s.MarkAsEditing(mutation.ListLiteralElement(n.ID(), len(n.Elements)))
	}
}

// Delete removes the selected node if its position allows it.
func (s *Session) Delete() bool {
	if s.cursor == ast.NoID {
		return false
	}
	res, ok := s.master.DeleteCode(s.cursor, s.root, s.cursor)
	if !ok {
		return false
	}
	s.apply(res)
	return true
}

// Append opens the menu for a new list element: at the start of a selected
// list, or after a selected element.
func (s *Session) Append() {
	node, ok := s.genie.Lookup(s.cursor)
	if !ok {
		return
	}
	if list, ok := node.(*ast.ListLiteral); ok {
		s.MarkAsEditing(mutation.ListLiteralElement(list.ID(), 0))
		return
	}
	if parent, ok := s.genie.Parent(node.ID()); ok {
		if list, ok := parent.(*ast.ListLiteral); ok {
			s.MarkAsEditing(mutation.ListLiteralElement(list.ID(), ast.IndexOf(list, node.ID())+1))
		}
	}
}

// Extract moves the selected node into a new variable and starts editing
// its name.
func (s *Session) Extract() error {
	if s.cursor == ast.NoID {
		return nil
	}
	res, err := s.master.ExtractIntoVariable(s.cursor, s.root)
	if err != nil {
		return err
	}
	s.apply(res)
	return nil
}

// Wrap opens the menu to wrap the selected node.
func (s *Session) Wrap() {
	if s.cursor == ast.NoID {
		return
	}
	s.MarkAsEditing(mutation.Wrap(s.cursor))
}

// Replace opens the menu to replace the selected node.
func (s *Session) Replace() {
	if point, ok := mutation.InsertionPointForReplace(s.cursor, s.genie); ok {
		s.MarkAsEditing(point)
	}
}

// OpenLine opens the menu on a new line after the selected block
// expression, or before it when above is set. Without a selection the line
// goes at the start of the code.
func (s *Session) OpenLine(above bool) {
	if s.cursor == ast.NoID {
		s.MarkAsEditing(mutation.BeginningOfBlock(s.root.ID()))
		return
	}
	exprID, ok := s.genie.ExpressionInBlockContaining(s.cursor)
	if !ok {
		s.stopEditing()
		return
	}
	if above {
		s.MarkAsEditing(mutation.Before(exprID))
		return
	}
	s.MarkAsEditing(mutation.After(exprID))
}

// SelectLine selects the block expression holding the cursor.
func (s *Session) SelectLine() {
	if exprID, ok := s.genie.ExpressionInBlockContaining(s.cursor); ok {
		s.cursor = exprID
	}
}

// Undo restores the state before the last edit.
func (s *Session) Undo() bool {
	snap, ok := s.history.Undo(s.root, s.cursor)
	if !ok {
		return false
	}
	s.replaceCode(snap.Root)
	s.cursor = snap.Cursor
	return true
}

// Redo restores the state the last Undo left.
func (s *Session) Redo() bool {
	snap, ok := s.history.Redo()
	if !ok {
		return false
	}
	s.replaceCode(snap.Root)
	s.cursor = snap.Cursor
	return true
}

// Validate repairs the session's code and returns what was found. A repair
// is recorded in the history like any other edit.
func (s *Session) Validate(ctx context.Context) ([]diag.Diagnostic, error) {
	return s.validate(ctx, true)
}

// Settle repairs the tree after an edit. The repairs become part of that
// edit: undoing it goes straight back to the state before the edit.
func (s *Session) Settle(ctx context.Context) ([]diag.Diagnostic, error) {
	return s.validate(ctx, false)
}

func (s *Session) validate(ctx context.Context, record bool) ([]diag.Diagnostic, error) {
	report, err := s.validator.Run(ctx, sessionSource{s: s, record: record})
	if err != nil {
		return report.Diagnostics, err
	}
	if _, ok := s.genie.Lookup(s.cursor); !ok {
		s.cursor = ast.NoID
	}
	return report.Diagnostics, nil
}

// Reload replaces the tree with a newer version of the same location, such
// as one repaired by a workspace-wide validation. The change can be undone.
func (s *Session) Reload(root *ast.Block) {
	if root == s.root {
		return
	}
	s.history.LogNewMutation(s.root, s.cursor)
	s.replaceCode(root)
	if _, ok := s.genie.Lookup(s.cursor); !ok {
		s.cursor = ast.NoID
	}
}

func (s *Session) apply(res mutation.Result) {
	s.history.LogNewMutation(s.root, s.cursor)
	s.replaceCode(res.Root)
	s.cursor = res.Cursor
	if res.Editing {
		point := mutation.Editing(res.Cursor)
		s.point = &point
		s.menu = nil
		s.editing = true
	}
}

func (s *Session) replaceCode(root *ast.Block) {
	s.root = root
	s.genie = genie.New(root)
}

// sessionSource presents the session as a one-location program.
type sessionSource struct {
	s      *Session
	record bool
}

func (src sessionSource) Locations() []program.Entry {
	return []program.Entry{{Location: src.s.loc, Code: src.s.root}}
}

func (src sessionSource) RequiredReturnType(program.Location) (types.Type, bool) {
	if src.s.required == nil {
		return types.Type{}, false
	}
	return *src.s.required, true
}

func (src sessionSource) UpdateCode(_ program.Location, code *ast.Block) error {
	if src.record {
		src.s.history.LogNewMutation(src.s.root, src.s.cursor)
	}
	src.s.replaceCode(code)
	return nil
}
