package mcpserver

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/unreal-lsp/internal/engine"
)

// ClassMethodsTool handles the ue_class_methods MCP tool.
type ClassMethodsTool struct {
	kb      MethodSource
	index   IndexReader
	version engine.Version
}

// NewClassMethodsTool creates a ClassMethodsTool.
func NewClassMethodsTool(kb MethodSource, index IndexReader, v engine.Version) *ClassMethodsTool {
	return &ClassMethodsTool{kb: kb, index: index, version: v}
}

// Definition returns the MCP tool definition for ue_class_methods.
func (t *ClassMethodsTool) Definition() mcp.Tool {
	return mcp.NewTool("ue_class_methods",
		mcp.WithDescription(
			"List the methods known for an Unreal class (e.g. AActor, UObject), "+
				"combining the built-in API tables with the engine headers.",
		),
		mcp.WithString("class",
			mcp.Required(),
			mcp.Description("Class name including its prefix letter, e.g. 'ACharacter'"),
		),
	)
}

// Handle processes the ue_class_methods tool call.
func (t *ClassMethodsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	class := strings.TrimSpace(req.GetString("class", ""))
	if class == "" {
		return mcp.NewToolResultError("'class' is required"), nil
	}

	builtin := t.kb.ClassMethods(class, t.version)
	indexed := t.index.ClassMethods(class)

	seen := make(map[string]bool, len(builtin)+len(indexed))
	var all []string
	for _, m := range append(builtin, indexed...) {
		if !seen[m] {
			seen[m] = true
			all = append(all, m)
		}
	}
	sort.Strings(all)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s (UE %s)\n\n", class, t.version)
	if !t.index.Ready() {
		b.WriteString("_Header scan still running; results may be incomplete._\n\n")
	}
	if len(all) == 0 {
		b.WriteString("No methods known for this class.\n")
		return mcp.NewToolResultText(b.String()), nil
	}
	fmt.Fprintf(&b, "%d methods (%d built-in, %d from headers):\n\n", len(all), len(builtin), len(indexed))
	for _, m := range all {
		fmt.Fprintf(&b, "- %s\n", m)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// IndexStatusTool handles the ue_index_status MCP tool.
type IndexStatusTool struct {
	index IndexReader
}

// NewIndexStatusTool creates an IndexStatusTool.
func NewIndexStatusTool(index IndexReader) *IndexStatusTool {
	return &IndexStatusTool{index: index}
}

// Definition returns the MCP tool definition for ue_index_status.
func (t *IndexStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("ue_index_status",
		mcp.WithDescription("Report progress and statistics of the background engine header scan."),
	)
}

// Handle processes the ue_index_status tool call.
func (t *IndexStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := t.index.Stats()

	var b strings.Builder
	b.WriteString("# Header Index\n\n")
	if t.index.Ready() {
		b.WriteString("**Status:** complete\n")
	} else {
		b.WriteString("**Status:** scanning\n")
	}
	fmt.Fprintf(&b, "**Headers:** %d\n", st.Files)
	fmt.Fprintf(&b, "**Classes:** %d\n", st.Classes)
	fmt.Fprintf(&b, "**Skipped:** %d\n", st.Skipped)
	fmt.Fprintf(&b, "**Errors:** %d\n", st.Errored)
	if st.Warm {
		b.WriteString("**Warm start:** yes\n")
	}
	if st.Duration > 0 {
		fmt.Fprintf(&b, "**Duration:** %s\n", st.Duration.Round(time.Millisecond))
	}
	for _, p := range st.Problems {
		reason := p.Reason
		if p.Err != nil {
			reason = p.Err.Error()
		}
		fmt.Fprintf(&b, "- %s: %s\n", p.Path, reason)
	}
	return mcp.NewToolResultText(b.String()), nil
}
