package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/factory-flow/factory-flow/sim"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the built-in catalog as YAML",
	Long:  "Print the built-in products, factories and trucks as YAML. Edit the output and pass it to `run --catalog`.",
	Run: func(cmd *cobra.Command, args []string) {
		if err := sim.DefaultCatalog().WriteYAML(cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Failed to write catalog: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
