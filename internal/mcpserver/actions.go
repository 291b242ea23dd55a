package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// RunActionTool handles the ue_run_action MCP tool.
type RunActionTool struct {
	runner ActionRunner
}

// NewRunActionTool creates a RunActionTool.
func NewRunActionTool(r ActionRunner) *RunActionTool {
	return &RunActionTool{runner: r}
}

// Definition returns the MCP tool definition for ue_run_action.
func (t *RunActionTool) Definition() mcp.Tool {
	return mcp.NewTool("ue_run_action",
		mcp.WithDescription(
			"Run an Unreal editor action and return its output: generated code, "+
				"a header/source diff, or a log or build-error report.",
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Action name"),
			mcp.Enum("generateUClass", "generateBlueprintFunction", "syncHeaderSource", "analyzeLogs", "interpretErrors"),
		),
		mcp.WithString("params_json",
			mcp.Description(
				`Action parameters as a JSON object, e.g. {"className":"AMyPawn","baseClass":"APawn"} `+
					`or {"textDocument":{"uri":"file:///path/Foo.h"},"position":{"line":12,"character":0}}`,
			),
		),
	)
}

// Handle processes the ue_run_action tool call.
func (t *RunActionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action := req.GetString("action", "")
	if action == "" {
		return mcp.NewToolResultError("'action' is required"), nil
	}

	raw := json.RawMessage(`{}`)
	if p := req.GetString("params_json", ""); p != "" {
		if !json.Valid([]byte(p)) {
			return mcp.NewToolResultError("'params_json' is not valid JSON"), nil
		}
		raw = json.RawMessage(p)
	}

	out, err := t.runner.RunAction(ctx, action, raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", action, err)), nil
	}
	return mcp.NewToolResultText(out), nil
}
