package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/inkwell-dev/inkwell/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the inkwell config file interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Path()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s — edit it or use 'inkwell config set'", path)
		}

		providerName := "openai"
		model := ""
		apiKey := ""

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Completion provider").
					Options(
						huh.NewOption("OpenAI (hosted)", "openai"),
						huh.NewOption("Hugging Face (inference API)", "huggingface"),
						huh.NewOption("Mock (offline, for trying the demo)", "mock"),
					).
					Value(&providerName),
				huh.NewInput().
					Title("Model (leave empty for the provider default)").
					Value(&model),
				huh.NewInput().
					Title("API key (leave empty to supply via environment)").
					EchoMode(huh.EchoModePassword).
					Value(&apiKey),
			),
		)

		if err := form.Run(); err != nil {
			return fmt.Errorf("form cancelled: %w", err)
		}

		cfg := config.DefaultConfig()
		cfg.Provider.Name = providerName
		cfg.Provider.Model = model
		cfg.Provider.APIKey = apiKey

		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}
