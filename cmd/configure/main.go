package main

import (
	"fmt"
	"os"

	"github.com/soloflow/crm-api/cmd/configure/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "crm-configure",
		Short: "Operations tool for the CRM API",
		Long:  "CLI tool for running priority recalculations and inspecting scoring configuration",
	}

	rootCmd.AddCommand(commands.NewRecalcCmd())
	rootCmd.AddCommand(commands.NewTopCmd())
	rootCmd.AddCommand(commands.NewWeightsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
