package cmd

import (
	"fmt"
	"os"

	"supergithub/pkg/config"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize supergithub configuration",
	Long:  "Create a default configuration file for supergithub",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		printWarning(out, "Configuration file already exists at: %s", configPath)
		fmt.Fprint(out, "Do you want to overwrite it? (y/N): ")
		var response string
		_, _ = fmt.Fscanln(cmd.InOrStdin(), &response) // Ignore error for user input
		if response != "y" && response != "Y" {
			fmt.Fprintln(out, "Configuration initialization cancelled.")
			return nil
		}
	}

	// Save configuration
	if err := config.Default().SaveConfigToPath(configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	printSuccess(out, "Configuration file created at: %s", configPath)
	fmt.Fprintln(out, "📝 Add your GitHub token under github.token, or export GH_TOKEN.")

	return nil
}
