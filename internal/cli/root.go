package cli

import (
	"github.com/spf13/cobra"
)

// rootCmd bachat 根命令
var rootCmd = &cobra.Command{
	Use:     "bachat",
	Version: "dev",
	Short:   "Budget meal planner",
	Long: `bachat builds a multi-day Indian meal plan from a preferences file,
then prints the grocery list and writes a calendar file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// SetVersion 設定版本字串
func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// Execute 執行根命令
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(optionsCmd)
}
