// Package actions implements the editor commands exposed through
// workspace/executeCommand: class and wrapper generation, header/source
// syncing, and project log and build error reports.
//
// Every action returns C++-comment-friendly text meant to be shown or
// inserted by the editor as-is.
package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/HendryAvila/unreal-lsp/internal/engine"
)

// Action names.
const (
	GenerateUClass            = "generateUClass"
	GenerateBlueprintFunction = "generateBlueprintFunction"
	SyncHeaderSource          = "syncHeaderSource"
	AnalyzeLogs               = "analyzeLogs"
	InterpretErrors           = "interpretErrors"
)

// Params is the argument object every action receives. Each action reads
// only the fields it needs.
type Params struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
	Position struct {
		Line      int `json:"line"`
		Character int `json:"character"`
	} `json:"position"`
	ClassName string `json:"className"`
	BaseClass string `json:"baseClass"`
}

// Provider runs actions against one project.
type Provider struct {
	projectPath string
	version     engine.Version
	log         *zap.Logger
	now         func() time.Time
}

// New creates a provider for the project at projectPath.
func New(projectPath string, version engine.Version, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		projectPath: projectPath,
		version:     version,
		log:         logger.Named("actions"),
		now:         time.Now,
	}
}

// RunAction dispatches action with its raw JSON params. Unknown actions
// produce an explanatory comment rather than an error.
func (p *Provider) RunAction(ctx context.Context, action string, raw json.RawMessage) (string, error) {
	var params Params
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &params); err != nil {
			return "", fmt.Errorf("actions: %s params: %w", action, err)
		}
	}
	p.log.Debug("running action", zap.String("action", action))

	switch action {
	case GenerateUClass:
		return p.generateUClass(params), nil
	case GenerateBlueprintFunction:
		return p.generateBlueprintFunction(params)
	case SyncHeaderSource:
		return p.syncHeaderSource(params)
	case AnalyzeLogs:
		return p.analyzeLogs(ctx)
	case InterpretErrors:
		return p.interpretErrors(ctx)
	default:
		return "// Unknown action: " + action, nil
	}
}

func (p *Provider) generateUClass(params Params) string {
	t := ClassTemplate{
		ClassName:       params.ClassName,
		BaseClass:       params.BaseClass,
		ModuleName:      DefaultModuleName,
		BlueprintType:   true,
		Blueprintable:   true,
		LegacyBodyMacro: p.version.IsUE4(),
	}
	if t.ClassName == "" {
		t.ClassName = "MyActor"
	}
	if t.BaseClass == "" {
		t.BaseClass = "AActor"
	}
	return GenerateClass(t)
}

// uriPath turns a file URI, or a plain path, into a filesystem path.
func uriPath(uri string) string {
	if !strings.HasPrefix(uri, "file:") {
		return uri
	}
	u, err := url.Parse(uri)
	if err != nil {
		return strings.TrimPrefix(uri, "file://")
	}
	path := u.Path
	// file:///C:/Project/Foo.h
	if len(path) > 2 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path)
}
