package cmd

import (
	"fmt"
	"strconv"

	"github.com/KaramelBytes/ibesdash/internal/analysis"
	"github.com/KaramelBytes/ibesdash/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	wsName  string
	wsClear bool
)

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Manage per-workspace pipeline settings",
}

var workspaceSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set or clear a workspace override (zero_actual, stable_outliers)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(wsName)
		if err != nil {
			return err
		}
		if ws.Config == nil {
			ws.Config = &workspace.Settings{}
		}
		key := args[0]
		if !wsClear && len(args) < 2 {
			return fmt.Errorf("value is required unless --clear is set")
		}
		switch key {
		case "zero_actual":
			if wsClear {
				ws.Config.ZeroActual = ""
				break
			}
			p, err := analysis.ParseZeroActualPolicy(args[1])
			if err != nil {
				return err
			}
			ws.Config.ZeroActual = string(p)
		case "stable_outliers":
			if wsClear {
				ws.Config.StableOutlier = nil
				break
			}
			b, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("invalid bool for stable_outliers: %w", err)
			}
			ws.Config.StableOutlier = &b
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := ws.Save(); err != nil {
			return err
		}
		if wsClear {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared %s for workspace %s\n", key, ws.Name)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s for workspace %s: %s\n", key, ws.Name, args[1])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workspaceCmd)
	workspaceCmd.AddCommand(workspaceSetCmd)

	workspaceSetCmd.Flags().StringVarP(&wsName, "workspace", "w", "", "workspace name")
	workspaceSetCmd.Flags().BoolVar(&wsClear, "clear", false, "clear the workspace override")
}
