package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"bachat-planner/internal/core/mealplan"
)

// optionsCmd 輸出所有選項
var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Print the questionnaire option sets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := yaml.Marshal(mealplan.Options())
		if err != nil {
			return fmt.Errorf("failed to encode options: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}
