// Package mcpserver exposes the completion resolver, engine discovery,
// header index and editor actions as MCP tools, prompts and resources, for
// assistants that speak MCP rather than LSP.
//
// Each tool is a small struct holding the narrow interface it needs and
// exposing Definition and Handle for registration with mcp-go.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/server"

	"github.com/HendryAvila/unreal-lsp/internal/completion"
	"github.com/HendryAvila/unreal-lsp/internal/engine"
	"github.com/HendryAvila/unreal-lsp/internal/headerindex"
)

// ServerName identifies the MCP server to clients.
const ServerName = "unreal-lsp"

// Completer produces completion candidates.
type Completer interface {
	Complete(prefix, context string) []completion.Candidate
}

// ActionRunner runs a named editor action.
type ActionRunner interface {
	RunAction(ctx context.Context, action string, params json.RawMessage) (string, error)
}

// EngineLister discovers engine installs.
type EngineLister interface {
	DiscoverAll() []engine.Version
}

// MethodSource answers version-aware class method lookups.
type MethodSource interface {
	ClassMethods(class string, v engine.Version) []string
}

// IndexReader is the read side of the header index.
type IndexReader interface {
	ClassMethods(class string) []string
	Ready() bool
	Stats() headerindex.Stats
}

// Deps are the components the tools read from.
type Deps struct {
	Completer Completer
	Actions   ActionRunner
	Engines   EngineLister
	Knowledge MethodSource
	Index     IndexReader
	// Version is the engine version the other components were built for.
	Version engine.Version
	// ServerVersion is reported to MCP clients.
	ServerVersion string
}

// New creates the MCP server with every tool registered.
func New(d Deps) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		d.ServerVersion,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions),
	)

	completeTool := NewCompleteTool(d.Completer)
	s.AddTool(completeTool.Definition(), completeTool.Handle)

	actionTool := NewRunActionTool(d.Actions)
	s.AddTool(actionTool.Definition(), actionTool.Handle)

	enginesTool := NewEnginesTool(d.Engines, d.Version)
	s.AddTool(enginesTool.Definition(), enginesTool.Handle)

	methodsTool := NewClassMethodsTool(d.Knowledge, d.Index, d.Version)
	s.AddTool(methodsTool.Definition(), methodsTool.Handle)

	statusTool := NewIndexStatusTool(d.Index)
	s.AddTool(statusTool.Definition(), statusTool.Handle)

	newClass := NewNewClassPrompt()
	s.AddPrompt(newClass.Definition(), newClass.Handle)

	fixBuild := NewFixBuildPrompt()
	s.AddPrompt(fixBuild.Definition(), fixBuild.Handle)

	status := NewStatusHandler(d.Version, d.Index)
	s.AddResource(status.Resource(), status.Handle)

	return s
}

const serverInstructions = `unreal-lsp answers Unreal Engine C++ questions for the engine version the
current project is associated with.

- ue_complete: completion candidates for a word, optionally qualified by a
  "Class::" context. Reflection macros come first, then class members.
- ue_class_methods: every known method of one class, from the built-in
  API tables and the engine's own headers.
- ue_engines: installed engines and which one is in use.
- ue_index_status: progress of the background header scan.
- ue_run_action: generateUClass, generateBlueprintFunction,
  syncHeaderSource, analyzeLogs, interpretErrors. Pass the action's
  parameters as a JSON object string.

The unreal://engine/status resource summarizes the engine in use.`
