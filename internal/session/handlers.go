package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/HendryAvila/unreal-lsp/internal/completion"
	"github.com/HendryAvila/unreal-lsp/internal/protocol"
)

// CommandPrefix namespaces every executable command.
const CommandPrefix = "unreal."

// Actions reachable through workspace/executeCommand, in advertised order.
var Actions = []string{
	"generateUClass",
	"generateBlueprintFunction",
	"syncHeaderSource",
	"analyzeLogs",
	"interpretErrors",
}

// TriggerCharacters are advertised in the completion capability.
var TriggerCharacters = []string{".", "::", "U", "A", "F"}

// Commands returns the advertised command names.
func Commands() []string {
	out := make([]string, len(Actions))
	for i, a := range Actions {
		out[i] = CommandPrefix + a
	}
	return out
}

// actionFor maps a command name to its action, or "" when unknown.
func actionFor(command string) string {
	name, ok := strings.CutPrefix(command, CommandPrefix)
	if !ok {
		return ""
	}
	for _, a := range Actions {
		if a == name {
			return a
		}
	}
	return ""
}

func (s *Session) handleInitialize(_ context.Context, msg *protocol.Message) (any, error) {
	var params struct {
		ClientInfo *struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"clientInfo"`
	}
	if err := json.Unmarshal(msg.Params, &params); err == nil && params.ClientInfo != nil {
		s.log.Info("client connected",
			zap.String("client", params.ClientInfo.Name),
			zap.String("client_version", params.ClientInfo.Version),
		)
	}

	return protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync:       protocol.SyncFull,
			CompletionProvider:     protocol.CompletionOptions{TriggerCharacters: TriggerCharacters},
			ExecuteCommandProvider: protocol.ExecuteCommandOptions{Commands: Commands()},
		},
		ServerInfo: &protocol.ServerInfo{Name: ServerName, Version: s.deps.Version},
	}, nil
}

func (s *Session) handleDidOpen(_ context.Context, msg *protocol.Message) (any, error) {
	var params protocol.DidOpenParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil, fmt.Errorf("didOpen params: %w", err)
	}
	s.mu.Lock()
	s.docs[params.TextDocument.URI] = params.TextDocument.Text
	s.mu.Unlock()
	s.log.Debug("document opened", zap.String("uri", params.TextDocument.URI))
	return nil, errNoReply
}

func (s *Session) handleDidChange(_ context.Context, msg *protocol.Message) (any, error) {
	var params protocol.DidChangeParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil, fmt.Errorf("didChange params: %w", err)
	}
	if len(params.ContentChanges) == 0 {
		return nil, errNoReply
	}
	// Full sync: the first change carries the whole text.
	s.mu.Lock()
	s.docs[params.TextDocument.URI] = params.ContentChanges[0].Text
	s.mu.Unlock()
	return nil, errNoReply
}

func (s *Session) handleCompletion(_ context.Context, msg *protocol.Message) (any, error) {
	var params protocol.CompletionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil, fmt.Errorf("completion params: %w", err)
	}
	text, ok := s.Document(params.TextDocument.URI)
	if !ok {
		s.log.Debug("completion for unknown document", zap.String("uri", params.TextDocument.URI))
		return nil, errNoReply
	}

	items := []protocol.CompletionItem{}
	if s.deps.Completer == nil {
		return items, nil
	}
	pos := params.Position
	word := completion.WordAt(text, pos.Line, pos.Character)
	scope := completion.ContextAt(text, pos.Line, pos.Character)
	for _, c := range s.deps.Completer.Complete(word, scope) {
		items = append(items, protocol.CompletionItem{
			Label:      c.Label,
			Kind:       c.Kind,
			Detail:     c.Detail,
			InsertText: c.InsertText,
			SortText:   c.SortText,
		})
	}
	return items, nil
}

func (s *Session) handleExecuteCommand(ctx context.Context, msg *protocol.Message) (any, error) {
	var params protocol.ExecuteCommandParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil, fmt.Errorf("executeCommand params: %w", err)
	}
	action := actionFor(params.Command)
	if action == "" {
		s.log.Debug("unknown command", zap.String("command", params.Command))
		if s.opts.StrictErrors {
			return nil, &protocol.ResponseError{
				Code:    protocol.CodeMethodNotFound,
				Message: "unknown command: " + params.Command,
			}
		}
		return nil, errNoReply
	}

	arg := json.RawMessage("{}")
	if len(params.Arguments) > 0 && len(params.Arguments[0]) > 0 {
		arg = params.Arguments[0]
	}
	if s.deps.Actions == nil {
		return "// Error: no action provider", nil
	}
	out, err := s.deps.Actions.RunAction(ctx, action, arg)
	if err != nil {
		s.log.Warn("action failed", zap.String("action", action), zap.Error(err))
		return "// Error: " + err.Error(), nil
	}
	return out, nil
}

func (s *Session) handleShutdown(context.Context, *protocol.Message) (any, error) {
	s.shutdown = true
	return json.RawMessage("null"), nil
}

func (s *Session) handleExit(context.Context, *protocol.Message) (any, error) {
	s.exited = true
	if !s.shutdown {
		s.log.Warn("exit without shutdown")
	}
	return nil, errNoReply
}
