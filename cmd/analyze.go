package cmd

import (
	"fmt"
	"os"

	"github.com/KaramelBytes/ibesdash/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	anaInput      inputFlags
	anaWorkspace  string
	anaOutputPath string
	anaSampleRows int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Run the cleaning pipeline on an IBES file and print the report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		sample := settings().SampleRows
		if cmd.Flags().Changed("sample-rows") {
			sample = anaSampleRows
		}

		var ws *workspace.Workspace
		if anaWorkspace != "" {
			w, err := openWorkspace(anaWorkspace)
			if err != nil {
				return err
			}
			ws = w
		}

		res, err := anaInput.run(cmd.Context(), cmd, path, ws)
		if err != nil {
			return err
		}
		md := res.Markdown(sample)
		out := cmd.OutOrStdout()

		// Decide where to write: --output path, or attach to workspace, or stdout
		written := false
		if anaOutputPath != "" {
			if err := os.WriteFile(anaOutputPath, []byte(md), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote analysis to %s\n", anaOutputPath)
			written = true
		}
		if ws != nil {
			run, err := ws.Record(path, res, sample)
			if err != nil {
				return err
			}
			if err := ws.Save(); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Recorded run %s in workspace '%s'\n", run.ID, ws.Name)
			written = true
		}
		if !written {
			fmt.Fprintln(out, md)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaInput.register(analyzeCmd, false)
	analyzeCmd.Flags().StringVarP(&anaWorkspace, "workspace", "w", "", "workspace name to record the run in")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report (Markdown)")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 5, "number of cleaned rows to include in the report (0 disables)")
}
