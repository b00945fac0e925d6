package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/KaramelBytes/ibesdash/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	abInput      inputFlags
	abWorkspace  string
	abSampleRows int
	abKeepGoing  bool
	abQuiet      bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Run the pipeline on multiple CSV/TSV/XLSX files with progress and optional workspace recording",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		sample := settings().SampleRows
		if cmd.Flags().Changed("sample-rows") {
			sample = abSampleRows
		}

		var ws *workspace.Workspace
		if abWorkspace != "" {
			w, err := openWorkspace(abWorkspace)
			if err != nil {
				return err
			}
			ws = w
		}

		out := cmd.OutOrStdout()
		var failed []error
		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			res, err := abInput.run(cmd.Context(), cmd, path, ws)
			if err != nil {
				if !abKeepGoing {
					return err
				}
				logger.Error().Err(err).Str("file", path).Msg("run failed")
				failed = append(failed, err)
				continue
			}
			if ws != nil {
				run, err := ws.Record(path, res, sample)
				if err != nil {
					return err
				}
				// save after each file so completed runs survive a later failure
				if err := ws.Save(); err != nil {
					return err
				}
				if !abQuiet {
					fmt.Fprintf(out, "✓ Recorded run %s in workspace '%s'\n", run.ID, ws.Name)
				}
				continue
			}
			if !abQuiet {
				fmt.Fprintln(out, res.Markdown(sample))
			}
		}
		if len(failed) > 0 {
			return fmt.Errorf("%d of %d file(s) failed: %w", len(failed), total, errors.Join(failed...))
		}
		return nil
	},
}

// expandInputs resolves globs, drops duplicates and sorts the result.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	abInput.register(analyzeBatchCmd, false)
	analyzeBatchCmd.Flags().StringVarP(&abWorkspace, "workspace", "w", "", "workspace name to record runs in")
	analyzeBatchCmd.Flags().IntVar(&abSampleRows, "sample-rows", 5, "number of cleaned rows to include in each report (0 disables)")
	analyzeBatchCmd.Flags().BoolVar(&abKeepGoing, "keep-going", false, "continue with the next file when one fails")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
