package cmd

import (
	"fmt"
	"strconv"

	"github.com/KaramelBytes/ibesdash/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	trInput  inputFlags
	trFrom   int
	trTo     int
	trFormat string
)

var trendCmd = &cobra.Command{
	Use:   "trend <file>",
	Short: "Print the mean absolute forecast error per year",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if trFrom != 0 && trTo != 0 && trFrom > trTo {
			return fmt.Errorf("--from %d is after --to %d", trFrom, trTo)
		}
		res, err := trInput.run(cmd.Context(), cmd, args[0], nil)
		if err != nil {
			return err
		}
		series := analysis.FilterYears(res.YearErrors, trFrom, trTo)
		g := grid{header: []string{"year", "mean_error", "count"}}
		for _, ye := range series {
			g.add(strconv.Itoa(ye.Year), num(ye.MeanError), strconv.Itoa(ye.Count))
		}
		return renderGrid(cmd.OutOrStdout(), g, trFormat)
	},
}

func init() {
	rootCmd.AddCommand(trendCmd)
	trInput.register(trendCmd, false)
	trendCmd.Flags().IntVar(&trFrom, "from", 0, "first year to include (0 = no lower bound)")
	trendCmd.Flags().IntVar(&trTo, "to", 0, "last year to include (0 = no upper bound)")
	trendCmd.Flags().StringVar(&trFormat, "format", "table", "output format: table|csv|json")
}
