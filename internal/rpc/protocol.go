package rpc

import (
	"github.com/goccy/go-json"

	"github.com/arbor-lang/arbor/internal/diag"
	"github.com/arbor-lang/arbor/internal/workspace"
)

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// Method names.
const (
	MethodInitialize      = "initialize"
	MethodShutdown        = "shutdown"
	MethodWorkspaceDump   = "workspace/dump"
	MethodWorkspaceCheck  = "workspace/check"
	MethodSessionOpen     = "session/open"
	MethodSessionClose    = "session/close"
	MethodSessionKey      = "session/key"
	MethodSessionSearch   = "session/search"
	MethodSessionOptions  = "session/options"
	MethodSessionInsert   = "session/insert"
	MethodSessionSelect   = "session/select"
	MethodSessionUndo     = "session/undo"
	MethodSessionRedo     = "session/redo"
	MethodSessionValidate = "session/validate"
	MethodSessionSave     = "session/save"
)

// message is a JSON-RPC 2.0 request, notification or response.
type message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

// InitializeResult describes the server and the loaded workspace.
type InitializeResult struct {
	ServerInfo ServerInfo     `json:"serverInfo"`
	Workspace  string         `json:"workspace"`
	Locations  []LocationInfo `json:"locations"`
}

// ServerInfo names the server.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// LocationInfo identifies one code location.
type LocationInfo struct {
	Kind    string `json:"kind"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Returns string `json:"returns,omitempty"`
}

// OpenParams names the location to edit, by ID or by kind and name.
type OpenParams struct {
	ID   string `json:"id,omitempty"`
	Kind string `json:"kind,omitempty"`
	Name string `json:"name,omitempty"`
}

// SessionParams addresses an open session.
type SessionParams struct {
	Session string `json:"session"`
}

// KeyParams sends a keypress in compact form, e.g. "shift+e".
type KeyParams struct {
	Session string `json:"session"`
	Key     string `json:"key"`
}

// SearchParams sets the insert menu text.
type SearchParams struct {
	Session string `json:"session"`
	Text    string `json:"text"`
}

// SelectParams moves the cursor to a node, or the menu selection when Step is
// non-zero.
type SelectParams struct {
	Session string `json:"session"`
	Node    string `json:"node,omitempty"`
	Step    int    `json:"step,omitempty"`
}

// State is a session snapshot returned after every edit.
type State struct {
	Session   string           `json:"session"`
	Location  LocationInfo     `json:"location"`
	Cursor    string           `json:"cursor,omitempty"`
	Editing   bool             `json:"editing"`
	Point     *Point           `json:"point,omitempty"`
	Input     string           `json:"input,omitempty"`
	Changed   bool             `json:"changed"`
	History   int              `json:"history"`
	Code      workspace.Object `json:"code"`
	Rendering string           `json:"rendering"`

	// Diagnostics lists what the validation that followed the request found.
	Diagnostics []diag.Diagnostic `json:"diagnostics,omitempty"`
}

// Point is an insertion point.
type Point struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
	Pos  int    `json:"pos,omitempty"`
}

// OptionGroup is one group of insert menu options.
type OptionGroup struct {
	Name    string       `json:"name"`
	Options []OptionInfo `json:"options"`
}

// OptionInfo is one insert menu option.
type OptionInfo struct {
	Label    string `json:"label"`
	Kind     string `json:"kind"`
	Selected bool   `json:"selected,omitempty"`
}

// DiagnosticsResult carries validator output.
type DiagnosticsResult struct {
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
	Errors      int               `json:"errors"`
	Warnings    int               `json:"warnings"`
}
