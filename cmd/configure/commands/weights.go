package commands

import (
	"fmt"
	"os"

	"github.com/soloflow/crm-api/internal/priority"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewWeightsCmd creates the weights command
func NewWeightsCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Show the effective scoring weights",
		Long:  "Print the scoring weights as YAML, either the built-in defaults or a weights file (--file)",
		RunE: func(cmd *cobra.Command, args []string) error {
			weights := priority.DefaultWeights()
			if file == "" {
				file = os.Getenv("WEIGHTS_FILE")
			}
			if file != "" {
				var err error
				weights, err = priority.LoadWeightsFile(file)
				if err != nil {
					return fmt.Errorf("failed to load weights file: %w", err)
				}
				fmt.Printf("# %s\n", file)
			} else {
				fmt.Println("# built-in defaults")
			}

			out, err := yaml.Marshal(weights)
			if err != nil {
				return fmt.Errorf("failed to marshal weights: %w", err)
			}
			fmt.Print(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Weights file to load instead of the defaults")

	return cmd
}
