package cmd

import (
	"fmt"
	"strconv"

	"github.com/KaramelBytes/ibesdash/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	clsInput  inputFlags
	clsFormat string
)

var classifyCmd = &cobra.Command{
	Use:   "classify <file>",
	Short: "Show each column's kind, missing share and the resolver's decision",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := clsInput.load(args[0])
		if err != nil {
			return err
		}
		_, resolutions := analysis.ResolveMissing(t)
		g := grid{header: []string{"column", "kind", "missing", "missing %", "action", "fill"}}
		for _, r := range resolutions {
			g.add(r.Name, r.Kind.String(), strconv.Itoa(r.MissingCount),
				fmt.Sprintf("%.1f", r.MissingFraction*100), string(r.Action), r.Fill)
		}
		return renderGrid(cmd.OutOrStdout(), g, clsFormat)
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	clsInput.register(classifyCmd, false)
	classifyCmd.Flags().StringVar(&clsFormat, "format", "table", "output format: table|csv|json")
}
