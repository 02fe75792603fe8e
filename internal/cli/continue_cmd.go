package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/inkwell-dev/inkwell/internal/provider"
	"github.com/spf13/cobra"
)

var (
	continueMaxTokens int
	continueReveal    bool
)

func init() {
	continueCmd.Flags().IntVar(&continueMaxTokens, "max-tokens", 0, "Token budget for the continuation (default from config)")
	continueCmd.Flags().BoolVar(&continueReveal, "reveal", false, "Animate the continuation character by character")
	rootCmd.AddCommand(continueCmd)
}

var continueCmd = &cobra.Command{
	Use:   "continue [file]",
	Short: "Continue a piece of text once",
	Long:  `Send the given file (or stdin) to the configured provider and print the continuation. With --reveal the output is paced like the editor's typing animation.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var data []byte
		if len(args) == 1 {
			data, err = os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
		} else {
			data, err = io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
		}

		text := string(data)
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("nothing to continue: input is empty")
		}

		prov, err := buildProvider(cfg)
		if err != nil {
			return err
		}

		maxTokens := continueMaxTokens
		if maxTokens <= 0 {
			maxTokens = cfg.Provider.MaxTokens
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Provider.ParseTimeout())
		defer cancel()

		out, err := prov.Complete(ctx, provider.Request{
			Prompt:    text,
			MaxTokens: maxTokens,
		})
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if !continueReveal {
			fmt.Fprintln(w, strings.TrimSpace(out))
			return nil
		}

		seq := sessionOptions(cfg).Sequencer
		seq.Run(out, func(ch string) {
			fmt.Fprint(w, ch)
		}, func() bool { return ctx.Err() != nil })
		fmt.Fprintln(w)
		return nil
	},
}
