package cmd

import (
	"fmt"

	"github.com/KaramelBytes/ibesdash/internal/parser"
	"github.com/KaramelBytes/ibesdash/internal/table"
	"github.com/spf13/cobra"
)

var (
	clnInput  inputFlags
	clnOutput string
	clnStage  string
)

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Write the cleaned table (with YEAR and ERROR) as CSV",
	Long: `Runs the pipeline and writes one of its tables as CSV:
  resolved   missing values imputed or columns dropped
  filtered   resolved table after the outlier filter
  augmented  filtered table plus YEAR and ERROR (default)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := clnInput.run(cmd.Context(), cmd, args[0], nil)
		if err != nil {
			return err
		}
		var t *table.Table
		switch clnStage {
		case "resolved":
			t = res.Resolved
		case "filtered":
			t = res.Filtered
		case "", "augmented":
			t = res.Augmented
		default:
			return fmt.Errorf("unsupported --stage: %s (use resolved|filtered|augmented)", clnStage)
		}
		if clnOutput == "" || clnOutput == "-" {
			return parser.WriteCSV(cmd.OutOrStdout(), t)
		}
		if err := parser.WriteCSVFile(clnOutput, t); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d rows to %s\n", t.Rows(), clnOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	clnInput.register(cleanCmd, false)
	cleanCmd.Flags().StringVarP(&clnOutput, "output", "o", "", "CSV output path (default stdout)")
	cleanCmd.Flags().StringVar(&clnStage, "stage", "augmented", "table to write: resolved|filtered|augmented")
}
