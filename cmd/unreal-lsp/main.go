// unreal-lsp: Unreal Engine C++ language server.
//
// Resolves the engine version a project is associated with and serves
// version-aware completion and editor actions over LSP, or the same
// features as MCP tools for AI assistants.
//
// Usage:
//
//	unreal-lsp [serve]          # LSP over stdio (default)
//	unreal-lsp mcp              # MCP server over stdio
//	unreal-lsp engines          # list installed engines
//	unreal-lsp projects [dir]   # list Unreal projects under dir
//	unreal-lsp version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/unreal-lsp/internal/config"
	"github.com/HendryAvila/unreal-lsp/internal/logging"
	"github.com/HendryAvila/unreal-lsp/internal/server"
)

// app holds global flag values and the logger built from them.
type app struct {
	configPath  string
	projectPath string
	enginePath  string
	engineRoots []string
	noIndex     bool
	verbose     bool

	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "unreal-lsp",
		Short: "Unreal Engine C++ language server",
		Long: `unreal-lsp serves Unreal Engine aware completion and code actions.

It detects installed engines, resolves the version a project is
associated with, indexes that engine's public headers in the background
and answers completion requests for reflection macros and class members.

Run without a subcommand to start the LSP server on stdio.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			a.logger, err = logging.New(cfg.Logging)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: a.runServe,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default ~/.unreal-lsp/config.yaml)")
	root.PersistentFlags().StringVar(&a.projectPath, "project-path", "", "Unreal project directory (default: current)")
	root.PersistentFlags().StringVar(&a.enginePath, "engine-path", "", "Use this engine install instead of discovery")
	root.PersistentFlags().StringSliceVar(&a.engineRoots, "engine-root", nil, "Extra directory to search for engine installs")
	root.PersistentFlags().BoolVar(&a.noIndex, "no-index", false, "Disable the background header scan")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(a.serveCmd())
	root.AddCommand(a.mcpCmd())
	root.AddCommand(a.enginesCmd())
	root.AddCommand(a.projectsCmd())
	root.AddCommand(versionCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flag overrides on top of
// it. Flags win over environment variables, which win over the file.
func (a *app) loadConfig() (*config.Config, error) {
	path := a.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if a.projectPath != "" {
		cfg.ProjectPath = a.projectPath
	}
	if cfg.ProjectPath == "" {
		if wd, err := os.Getwd(); err == nil {
			cfg.ProjectPath = wd
		}
	}
	if a.enginePath != "" {
		cfg.EnginePath = a.enginePath
	}
	cfg.ExtraEngineRoots = append(cfg.ExtraEngineRoots, a.engineRoots...)
	if a.noIndex {
		cfg.Index.Enabled = false
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// components builds the shared components for a run.
func (a *app) components() (*server.Components, func(), error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	comps, cleanup, err := server.New(cfg, server.Options{Logger: a.logger})
	if err != nil {
		return nil, nil, fmt.Errorf("creating server: %w", err)
	}
	return comps, cleanup, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "unreal-lsp v%s\n", server.Version)
		},
	}
}
