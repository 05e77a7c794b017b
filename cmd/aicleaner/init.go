package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/reab5555/AI-Data-Cleaner/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/aicleaner.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an aicleaner configuration file",
		Long: `Init writes a commented .aicleaner configuration file with the default
oracle, cleaning and output settings.

Examples:
  # Create .aicleaner in current directory
  aicleaner init

  # Create config file at a specific path
  aicleaner init -o cleaner.yaml

  # Overwrite an existing file
  aicleaner init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/aicleaner.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s in the environment or a .env file to enable the oracle.\n", config.APIKeyEnv)
	return nil
}
