package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// NewClassPrompt handles the ue-new-class MCP prompt. It walks the AI
// through generating a class header and choosing which engine methods to
// override.
type NewClassPrompt struct{}

// NewNewClassPrompt creates a NewClassPrompt.
func NewNewClassPrompt() *NewClassPrompt {
	return &NewClassPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *NewClassPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("ue-new-class",
		mcp.WithPromptDescription(
			"Create a new Unreal class: generate the header skeleton and pick "+
				"the base-class methods worth overriding.",
		),
		mcp.WithArgument("class_name",
			mcp.ArgumentDescription("Class name including its prefix letter, e.g. AEnemyPawn"),
		),
		mcp.WithArgument("base_class",
			mcp.ArgumentDescription("Base class, e.g. APawn. Default: AActor"),
		),
	)
}

// Handle processes the ue-new-class prompt request.
func (p *NewClassPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	className := "AMyActor"
	baseClass := "AActor"
	if args := req.Params.Arguments; args != nil {
		if v := args["class_name"]; v != "" {
			className = v
		}
		if v := args["base_class"]; v != "" {
			baseClass = v
		}
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("New Unreal class %s : %s", className, baseClass),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want a new Unreal class '%s' deriving from '%s'.\n\n"+
						"Please:\n"+
						"1. Run `ue_run_action` with action='generateUClass' and params_json='{\"className\":\"%s\",\"baseClass\":\"%s\"}'\n"+
						"2. Run `ue_class_methods` with class='%s' and suggest which methods I should override\n"+
						"3. Show me the final header, then ask whether to create the matching .cpp\n"+
						"4. Once the .cpp exists, run `ue_run_action` with action='syncHeaderSource' on the header to stub missing definitions",
					className, baseClass, className, baseClass, baseClass,
				)),
			},
		},
	}, nil
}

// FixBuildPrompt handles the ue-fix-build MCP prompt.
type FixBuildPrompt struct{}

// NewFixBuildPrompt creates a FixBuildPrompt.
func NewFixBuildPrompt() *FixBuildPrompt {
	return &FixBuildPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *FixBuildPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("ue-fix-build",
		mcp.WithPromptDescription(
			"Diagnose the last Unreal build: interpret compile errors and scan "+
				"the project logs, then propose fixes.",
		),
	)
}

// Handle processes the ue-fix-build prompt request.
func (p *FixBuildPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Fix the Unreal build",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"My Unreal build is failing.\n\n" +
						"Please:\n" +
						"1. Run `ue_run_action` with action='interpretErrors'\n" +
						"2. Run `ue_run_action` with action='analyzeLogs' for runtime issues\n" +
						"3. Group the problems by file, most confident solutions first\n" +
						"4. For each file, show the exact change you propose before editing anything",
				),
			},
		},
	}, nil
}
