package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/unreal-lsp/internal/engine"
)

// EnginesTool handles the ue_engines MCP tool.
type EnginesTool struct {
	engines EngineLister
	active  engine.Version
}

// NewEnginesTool creates an EnginesTool. active is marked in the listing.
func NewEnginesTool(l EngineLister, active engine.Version) *EnginesTool {
	return &EnginesTool{engines: l, active: active}
}

// Definition returns the MCP tool definition for ue_engines.
func (t *EnginesTool) Definition() mcp.Tool {
	return mcp.NewTool("ue_engines",
		mcp.WithDescription("List installed Unreal Engine versions, newest first, and the one in use."),
	)
}

// Handle processes the ue_engines tool call.
func (t *EnginesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "**In use:** UE %s", t.active)
	if t.active.InstallPath != "" {
		fmt.Fprintf(&b, " at %s", t.active.InstallPath)
	} else {
		b.WriteString(" (no install, built-in tables only)")
	}
	b.WriteString("\n\n")

	found := t.engines.DiscoverAll()
	if len(found) == 0 {
		b.WriteString("No engine installs found.\n")
		return mcp.NewToolResultText(b.String()), nil
	}

	b.WriteString("| Version | Path | Status |\n")
	b.WriteString("|---------|------|--------|\n")
	for _, v := range found {
		status := "incomplete"
		if engine.Ready(v) {
			status = "ready"
		}
		if v.Equal(t.active) && v.InstallPath == t.active.InstallPath {
			status += " **← in use**"
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", v, v.InstallPath, status)
	}
	return mcp.NewToolResultText(b.String()), nil
}
