package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	mcpsrv "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/unreal-lsp/internal/mcpserver"
	"github.com/HendryAvila/unreal-lsp/internal/server"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the LSP server on stdio",
		Long: `Speaks LSP over stdin/stdout with Content-Length framing.

Configure your editor to launch "unreal-lsp serve" for C++ files in an
Unreal project. Diagnostics go to stderr only.`,
		Args: cobra.NoArgs,
		RunE: a.runServe,
	}
}

func (a *app) runServe(cmd *cobra.Command, args []string) error {
	comps, cleanup, err := a.components()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info("serving LSP", zap.String("engine", comps.Version.String()))
	return comps.ServeLSP(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
}

func (a *app) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		Long: `Exposes completion, engine discovery, the header index and the
editor actions as MCP tools. Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "unreal": {
        "command": "unreal-lsp",
        "args": ["mcp", "--project-path", "/path/to/Game"]
      }
    }
  }`,
		Args: cobra.NoArgs,
		RunE: a.runMCP,
	}
}

func (a *app) runMCP(cmd *cobra.Command, args []string) error {
	comps, cleanup, err := a.components()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	comps.StartIndex(ctx)

	s := mcpserver.New(mcpserver.Deps{
		Completer:     comps.Resolver,
		Actions:       comps.Actions,
		Engines:       comps.Locator,
		Knowledge:     comps.Knowledge,
		Index:         comps.Index,
		Version:       comps.Version,
		ServerVersion: server.Version,
	})
	return mcpsrv.ServeStdio(s)
}
