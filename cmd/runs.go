package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/ibesdash/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	runsWorkspace  string
	runsWorkspaces bool
	runsFormat     string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List workspaces or the runs recorded in one",
	RunE: func(cmd *cobra.Command, args []string) error {
		if runsWorkspaces {
			return listAllWorkspaces(cmd)
		}
		ws, err := openWorkspace(runsWorkspace)
		if err != nil {
			return err
		}
		g := grid{header: []string{"id", "input", "rows", "kept", "dropped columns", "anomalies", "created"}}
		for _, r := range ws.SortedRuns() {
			g.add(r.ID, r.Input, strconv.Itoa(r.RowsRaw), strconv.Itoa(r.RowsFiltered),
				strings.Join(r.ColumnsDropped, ","), strconv.Itoa(r.Anomalies),
				r.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return renderGrid(cmd.OutOrStdout(), g, runsFormat)
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the report of a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(runsWorkspace)
		if err != nil {
			return err
		}
		run, err := ws.FindRun(args[0])
		if err != nil {
			return err
		}
		b, err := os.ReadFile(run.ReportPath)
		if err != nil {
			return fmt.Errorf("read report: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

var runsRemoveCmd = &cobra.Command{
	Use:   "rm <run-id>",
	Short: "Remove a recorded run and its files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(runsWorkspace)
		if err != nil {
			return err
		}
		run, err := ws.FindRun(args[0])
		if err != nil {
			return err
		}
		if err := ws.Remove(run.ID); err != nil {
			return err
		}
		if err := ws.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed run %s\n", run.ID)
		return nil
	},
}

func listAllWorkspaces(cmd *cobra.Command) error {
	root, err := defaultWorkspacesDir()
	if err != nil {
		return err
	}
	dirs, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	found := false
	for _, e := range dirs {
		if !e.IsDir() {
			continue
		}
		if workspace.Exists(filepath.Join(root, e.Name())) {
			fmt.Fprintf(out, "- %s\n", e.Name())
			found = true
		}
	}
	if !found {
		fmt.Fprintln(out, "(no workspaces)")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsShowCmd, runsRemoveCmd)
	runsCmd.PersistentFlags().StringVarP(&runsWorkspace, "workspace", "w", "", "workspace name (default: enclosing workspace of the current directory)")
	runsCmd.Flags().BoolVar(&runsWorkspaces, "workspaces", false, "list workspaces instead of runs")
	runsCmd.Flags().StringVar(&runsFormat, "format", "table", "output format: table|csv|json")
}
