package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/pivotree/internal/analysis"
	"github.com/KaramelBytes/pivotree/internal/dataset"
	"github.com/KaramelBytes/pivotree/internal/utils"
)

var (
	pivFlags      pivotFlags
	pivOutputPath string
)

var pivotCmd = &cobra.Command{
	Use:   "pivot <dataset>",
	Short: "Pivot a JSON/YAML/CSV dataset into a rolled-up tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		opt := pivFlags.options(cmd, c)
		out, numbers, err := pivFlags.renderer(c, opt)
		if err != nil {
			return err
		}
		dopt, err := pivFlags.datasetOptions(opt)
		if err != nil {
			return err
		}

		ds, err := dataset.Load(args[0], dopt)
		if err != nil {
			return err
		}
		rep, err := analysis.Run(cmd.Context(), ds, opt, log)
		if err != nil {
			return err
		}
		b, err := render(rep, out, numbers)
		if err != nil {
			return err
		}

		// Decide where to write: --output path or stdout
		if pivOutputPath != "" {
			if err := utils.SafeWriteFile(pivOutputPath, b); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote pivot of %s (%d rows) to %s\n", ds.Name, rep.Rows, pivOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pivotCmd)
	pivFlags.register(pivotCmd)
	pivotCmd.Flags().StringVarP(&pivOutputPath, "output", "o", "", "optional path to write the result")
}
