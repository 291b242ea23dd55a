package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/unreal-lsp/internal/engine"
)

// projectSearchDepth bounds how far below the search path projects are
// looked for.
const projectSearchDepth = 3

func (a *app) enginesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "List installed Unreal Engine versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			loc := engine.NewLocator(engine.Config{
				ExtraRoots: cfg.ExtraEngineRoots,
				Logger:     a.logger,
			})

			out := cmd.OutOrStdout()
			found := loc.DiscoverAll()
			if len(found) == 0 {
				fmt.Fprintln(out, "No Unreal Engine installations found.")
				fmt.Fprintln(out, "Set UE_ROOT or pass --engine-root to search elsewhere.")
				return nil
			}
			fmt.Fprintf(out, "Found %d Unreal Engine installation(s):\n\n", len(found))
			for _, v := range found {
				status := "incomplete"
				if engine.Ready(v) {
					status = "ready"
				}
				fmt.Fprintf(out, "  UE %-10s %-10s %s\n", v, status, v.InstallPath)
			}
			return nil
		},
	}
}

func (a *app) projectsCmd() *cobra.Command {
	var searchPath string
	cmd := &cobra.Command{
		Use:   "projects [dir]",
		Short: "List Unreal projects and their engine versions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			root := searchPath
			if len(args) == 1 {
				root = args[0]
			}
			if root == "" {
				if root, err = os.Getwd(); err != nil {
					return fmt.Errorf("getting working directory: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			dirs := engine.FindProjects(root, projectSearchDepth)
			if len(dirs) == 0 {
				fmt.Fprintf(out, "No Unreal projects found under %s\n", root)
				return nil
			}

			loc := engine.NewLocator(engine.Config{
				ExtraRoots: cfg.ExtraEngineRoots,
				Logger:     a.logger,
			})
			fmt.Fprintf(out, "Found %d Unreal project(s):\n\n", len(dirs))
			for _, dir := range dirs {
				v := loc.ResolveForProject(dir)
				fmt.Fprintf(out, "  %-24s UE %-10s %s\n", engine.ProjectName(dir), v, dir)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&searchPath, "search-path", "", "Directory to search (default: current)")
	return cmd
}
