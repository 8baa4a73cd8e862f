// Package rpc serves editor sessions over JSON-RPC 2.0 with Content-Length
// framing, so an external renderer can drive the editor core over stdio.
package rpc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel/codes"

	"github.com/arbor-lang/arbor/internal/editor"
	"github.com/arbor-lang/arbor/internal/program"
	"github.com/arbor-lang/arbor/internal/workspace"
)

// methodExit is the notification that ends Serve.
const methodExit = "exit"

var (
	// ErrShutdown is returned for requests sent after shutdown.
	ErrShutdown = errors.New("server is shutting down")

	// ErrUnknownSession is returned when a request names a session that is
	// not open.
	ErrUnknownSession = errors.New("unknown session")
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithVersion sets the version reported by initialize.
func WithVersion(version string) Option {
	return func(s *Server) { s.version = version }
}

// Server holds a workspace and the editor sessions open on it.
type Server struct {
	ws      *workspace.Workspace
	logger  *slog.Logger
	version string

	// mu guards sessions and serialises every request that touches one.
	mu       sync.Mutex
	sessions map[string]*editor.Session
	shutdown bool
}

// NewServer returns a server for ws.
func NewServer(ws *workspace.Workspace, opts ...Option) *Server {
	s := &Server{
		ws:       ws,
		logger:   slog.Default(),
		version:  "dev",
		sessions: make(map[string]*editor.Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve reads framed messages from r and writes responses to w. It returns
// nil when r is exhausted or an exit notification arrives.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	reader := bufio.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		body, err := readFrame(reader)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, errBadHeader) {
			s.logger.Warn("dropping frame", "err", err)
			continue
		}
		if err != nil {
			return err
		}

		resp, exit := s.handleFrame(ctx, body)
		if resp != nil {
			if err := writeFrame(w, resp); err != nil {
				return err
			}
		}
		if exit {
			return nil
		}
	}
}

// handleFrame decodes and handles one message. It reports whether the
// message asked the server to exit.
func (s *Server) handleFrame(ctx context.Context, body []byte) (*message, bool) {
	var msg message
	if err := json.Unmarshal(body, &msg); err != nil {
		s.logger.Warn("malformed request", "err", err)
		return errorResponse(nil, &Error{Code: codeParseError, Message: fmt.Sprintf("parse error: %v", err)}), false
	}
	if msg.JSONRPC != "2.0" || msg.Method == "" {
		s.logger.Warn("invalid request", "jsonrpc", msg.JSONRPC, "method", msg.Method)
		if msg.ID == nil {
			return nil, false
		}
		return errorResponse(msg.ID, &Error{Code: codeInvalidRequest, Message: "invalid request"}), false
	}
	if msg.Method == methodExit {
		return nil, true
	}

	result, err := s.Handle(ctx, msg.Method, msg.Params)
	if msg.ID == nil {
		if err != nil {
			s.logger.Warn("notification failed", "method", msg.Method, "err", err)
		}
		return nil, false
	}
	if err != nil {
		return errorResponse(msg.ID, toError(err)), false
	}
	return &message{JSONRPC: "2.0", ID: msg.ID, Result: result}, false
}

// Handle runs one method with its raw params and returns the result.
func (s *Server) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	ctx, span := startRequestSpan(ctx, method)
	defer span.End()
	start := time.Now()

	result, err := s.dispatch(ctx, method, params)

	requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(method, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Debug("request failed", "method", method, "err", err)
		return nil, err
	}
	requestsTotal.WithLabelValues(method, "ok").Inc()
	span.SetStatus(codes.Ok, "")
	return result, nil
}

func (s *Server) dispatch(ctx context.Context, method string, params json.RawMessage) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shutdown {
		return nil, ErrShutdown
	}

	switch method {
	case MethodInitialize:
		return s.initialize(), nil
	case MethodShutdown:
		s.shutdown = true
		return nil, nil
	case MethodWorkspaceDump:
		return workspace.Dumps(s.ws.Env, s.ws.Programs), nil
	case MethodWorkspaceCheck:
		return s.check(ctx)
	case MethodSessionOpen:
		var p OpenParams
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return s.open(ctx, p)
	case MethodSessionClose:
		var p SessionParams
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return nil, s.close(p.Session)
	case MethodSessionKey:
		var p KeyParams
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return s.key(ctx, p)
	case MethodSessionSearch:
		var p SearchParams
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return s.search(ctx, p)
	case MethodSessionOptions:
		var p SessionParams
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return s.options(p.Session)
	case MethodSessionInsert:
		var p SessionParams
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return s.edit(ctx, p.Session, func(ed *editor.Session) error { return ed.InsertSelected() })
	case MethodSessionSelect:
		var p SelectParams
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return s.selectNode(ctx, p)
	case MethodSessionUndo:
		var p SessionParams
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return s.edit(ctx, p.Session, func(ed *editor.Session) error { ed.Undo(); return nil })
	case MethodSessionRedo:
		var p SessionParams
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return s.edit(ctx, p.Session, func(ed *editor.Session) error { ed.Redo(); return nil })
	case MethodSessionValidate:
		var p SessionParams
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return s.validate(ctx, p.Session)
	case MethodSessionSave:
		var p SessionParams
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return s.save(ctx, p.Session)
	}
	return nil, &Error{Code: codeMethodNotFound, Message: "method not found: " + method}
}

func decode(params json.RawMessage, v any) error {
	if len(params) == 0 {
		return &Error{Code: codeInvalidParams, Message: "missing params"}
	}
	if err := json.Unmarshal(params, v); err != nil {
		return &Error{Code: codeInvalidParams, Message: fmt.Sprintf("invalid params: %v", err)}
	}
	return nil
}

func errorResponse(id any, err *Error) *message {
	return &message{JSONRPC: "2.0", ID: id, Error: err}
}

// toError maps handler errors to JSON-RPC errors.
func toError(err error) *Error {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	switch {
	case errors.Is(err, ErrUnknownSession),
		errors.Is(err, program.ErrUnknownLocation):
		return &Error{Code: codeInvalidParams, Message: err.Error()}
	case errors.Is(err, ErrShutdown),
		errors.Is(err, editor.ErrNoMenu),
		errors.Is(err, editor.ErrNoOption),
		errors.Is(err, editor.ErrNotEditable):
		return &Error{Code: codeInvalidRequest, Message: err.Error()}
	}
	return &Error{Code: codeInternalError, Message: err.Error()}
}
