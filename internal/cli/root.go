package cli

import (
	"fmt"

	"github.com/inkwell-dev/inkwell/internal/config"
	"github.com/inkwell-dev/inkwell/internal/logging"
	"github.com/inkwell-dev/inkwell/internal/provider"
	"github.com/inkwell-dev/inkwell/internal/provider/huggingface"
	"github.com/inkwell-dev/inkwell/internal/provider/openai"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	rootCmd = &cobra.Command{
		Use:   "inkwell",
		Short: "AI-assisted writing surface with animated continuations",
		Long:  `Inkwell serves and drives an editor session that continues your prose with an AI provider and reveals the result with a typing animation.`,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logging.Setup(verbose)
	}
}

func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves the merged configuration for a command invocation.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// defaultRegistry returns the provider registry with all bindings installed.
func defaultRegistry() *provider.Registry {
	r := provider.NewRegistry()
	r.Register("openai", openai.New)
	r.Register("huggingface", huggingface.New)
	r.Register("mock", func(provider.Settings) (provider.Provider, error) {
		return provider.NewMockProvider(), nil
	})
	return r
}

// buildProvider constructs the configured provider binding.
func buildProvider(cfg *config.Config) (provider.Provider, error) {
	reg := defaultRegistry()
	prov, err := reg.New(cfg.Provider.Name, provider.Settings{
		Model:   cfg.Provider.Model,
		APIKey:  cfg.Provider.APIKey,
		BaseURL: cfg.Provider.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("building provider: %w", err)
	}
	return prov, nil
}
