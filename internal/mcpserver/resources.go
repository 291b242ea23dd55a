package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/unreal-lsp/internal/engine"
)

// StatusURI addresses the engine status resource.
const StatusURI = "unreal://engine/status"

// StatusHandler serves the engine status resource.
type StatusHandler struct {
	version engine.Version
	index   IndexReader
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(v engine.Version, index IndexReader) *StatusHandler {
	return &StatusHandler{version: v, index: index}
}

// engineStatus is the JSON body of the status resource.
type engineStatus struct {
	Version     string `json:"version"`
	InstallPath string `json:"install_path"`
	Ready       bool   `json:"engine_ready"`
	Index       struct {
		Complete bool `json:"complete"`
		Files    int  `json:"files"`
		Classes  int  `json:"classes"`
		Skipped  int  `json:"skipped"`
		Errored  int  `json:"errored"`
		Warm     bool `json:"warm_start"`
	} `json:"index"`
}

// Resource returns the MCP resource definition.
func (h *StatusHandler) Resource() mcp.Resource {
	return mcp.NewResource(
		StatusURI,
		"Unreal Engine Status",
		mcp.WithResourceDescription("Engine version in use and header index statistics"),
		mcp.WithMIMEType("application/json"),
	)
}

// Handle returns the current status as JSON.
func (h *StatusHandler) Handle(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var st engineStatus
	st.Version = h.version.String()
	st.InstallPath = h.version.InstallPath
	st.Ready = engine.Ready(h.version)

	stats := h.index.Stats()
	st.Index.Complete = h.index.Ready()
	st.Index.Files = stats.Files
	st.Index.Classes = stats.Classes
	st.Index.Skipped = stats.Skipped
	st.Index.Errored = stats.Errored
	st.Index.Warm = stats.Warm

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling status: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
