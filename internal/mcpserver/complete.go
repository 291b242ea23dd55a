package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/unreal-lsp/internal/completion"
)

// CompleteTool handles the ue_complete MCP tool.
type CompleteTool struct {
	completer Completer
}

// NewCompleteTool creates a CompleteTool.
func NewCompleteTool(c Completer) *CompleteTool {
	return &CompleteTool{completer: c}
}

// Definition returns the MCP tool definition for ue_complete.
func (t *CompleteTool) Definition() mcp.Tool {
	return mcp.NewTool("ue_complete",
		mcp.WithDescription(
			"List Unreal Engine completion candidates for a partial word. "+
				"Pass a context ending in 'Class::' to get that class's members.",
		),
		mcp.WithString("prefix",
			mcp.Description("The partial word to complete, e.g. 'UPR' or 'Get'. Empty matches everything."),
		),
		mcp.WithString("context",
			mcp.Description("Text before the word on the same line, e.g. 'AActor::'"),
		),
	)
}

// Handle processes the ue_complete tool call.
func (t *CompleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prefix := req.GetString("prefix", "")
	scope := req.GetString("context", "")

	cands := t.completer.Complete(prefix, scope)
	if len(cands) == 0 {
		return mcp.NewToolResultText("No candidates."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d candidates:\n\n", len(cands))
	for _, c := range cands {
		kind := "method"
		if c.Kind == completion.KindSnippet {
			kind = "macro"
		}
		fmt.Fprintf(&b, "- **%s** (%s) %s\n", c.Label, kind, c.Detail)
	}
	return mcp.NewToolResultText(b.String()), nil
}
