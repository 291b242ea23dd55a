// Package session runs the language-server message loop: it reads framed
// requests, dispatches them to a fixed set of handlers and writes the
// responses back on the same stream.
//
// Processing is strictly sequential. One message is fully handled,
// including its response, before the next one is read.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"

	"github.com/HendryAvila/unreal-lsp/internal/completion"
	"github.com/HendryAvila/unreal-lsp/internal/protocol"
)

// ServerName is reported in the initialize result.
const ServerName = "unreal-lsp"

// ActionProvider runs one named editor action and returns its text output.
type ActionProvider interface {
	RunAction(ctx context.Context, action string, params json.RawMessage) (string, error)
}

// Completer produces completion candidates for a word and its context.
type Completer interface {
	Complete(prefix, context string) []completion.Candidate
}

// Deps are the collaborators a session calls into.
type Deps struct {
	Completer Completer
	Actions   ActionProvider
	Logger    *zap.Logger
	// Version is reported as serverInfo.version.
	Version string
}

// Options tune protocol behavior.
type Options struct {
	// StrictErrors answers requests for unknown methods and commands with
	// a method-not-found error instead of dropping them.
	StrictErrors bool
}

// Option mutates Options.
type Option func(*Options)

// WithStrictErrors sets Options.StrictErrors.
func WithStrictErrors(on bool) Option {
	return func(o *Options) { o.StrictErrors = on }
}

// errNoReply tells dispatch that a request deliberately gets no response.
var errNoReply = errors.New("session: no reply")

type handlerFunc func(ctx context.Context, msg *protocol.Message) (any, error)

// Session is one client connection.
type Session struct {
	reader *protocol.Reader
	writer *protocol.Writer
	deps   Deps
	opts   Options
	log    *zap.Logger

	handlers map[string]handlerFunc

	mu   sync.RWMutex
	docs map[string]string

	shutdown bool
	exited   bool
}

// New creates a session reading from in and writing to out.
func New(in io.Reader, out io.Writer, deps Deps, opts ...Option) *Session {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		reader: protocol.NewReader(in),
		writer: protocol.NewWriter(out),
		deps:   deps,
		opts:   o,
		log:    log.Named("session"),
		docs:   make(map[string]string),
	}
	s.handlers = map[string]handlerFunc{
		"initialize":               s.handleInitialize,
		"textDocument/didOpen":     s.handleDidOpen,
		"textDocument/didChange":   s.handleDidChange,
		"textDocument/completion":  s.handleCompletion,
		"workspace/executeCommand": s.handleExecuteCommand,
		"shutdown":                 s.handleShutdown,
		"exit":                     s.handleExit,
	}
	return s
}

// Run processes messages until the input ends, an exit notification
// arrives or ctx is cancelled. A clean end of input returns nil.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		body, err := s.reader.Read()
		switch {
		case errors.Is(err, io.EOF):
			s.log.Debug("input closed")
			return nil
		case errors.Is(err, protocol.ErrBadHeader):
			s.log.Warn("skipping frame", zap.Error(err))
			continue
		case err != nil:
			return fmt.Errorf("session: %w", err)
		}

		msg, err := protocol.Decode(body)
		if err != nil {
			s.log.Warn("malformed message", zap.Error(err), zap.Int("bytes", len(body)))
			continue
		}
		s.dispatch(ctx, msg)
		if s.exited {
			return nil
		}
	}
}

// Document returns the stored text for uri.
func (s *Session) Document(uri string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.docs[uri]
	return text, ok
}

func (s *Session) dispatch(ctx context.Context, msg *protocol.Message) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("handler panic",
				zap.String("method", msg.Method),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()

	h, ok := s.handlers[msg.Method]
	if !ok {
		s.log.Debug("unhandled method", zap.String("method", msg.Method))
		if s.opts.StrictErrors {
			s.replyError(msg, &protocol.ResponseError{
				Code:    protocol.CodeMethodNotFound,
				Message: "method not found: " + msg.Method,
			})
		}
		return
	}

	result, err := h(ctx, msg)
	var rerr *protocol.ResponseError
	switch {
	case errors.Is(err, errNoReply):
		return
	case errors.As(err, &rerr):
		s.replyError(msg, rerr)
		return
	case err != nil:
		s.log.Warn("handler failed", zap.String("method", msg.Method), zap.Error(err))
		if s.opts.StrictErrors {
			s.replyError(msg, &protocol.ResponseError{Code: protocol.CodeInternalError, Message: err.Error()})
		}
		return
	}
	s.reply(msg, result)
}

func (s *Session) reply(msg *protocol.Message, result any) {
	if msg.IsNotification() {
		return
	}
	s.send(protocol.Response{JSONRPC: protocol.Version, ID: *msg.ID, Result: result})
}

func (s *Session) replyError(msg *protocol.Message, rerr *protocol.ResponseError) {
	if msg.IsNotification() {
		return
	}
	s.send(protocol.Response{JSONRPC: protocol.Version, ID: *msg.ID, Error: rerr})
}

func (s *Session) send(resp protocol.Response) {
	body, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("encode response", zap.Error(err))
		return
	}
	if err := s.writer.Write(body); err != nil {
		s.log.Error("write response", zap.Error(err))
	}
}
