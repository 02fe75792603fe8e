package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/inkwell-dev/inkwell/internal/config"
	"github.com/inkwell-dev/inkwell/internal/history"
	"github.com/spf13/cobra"
)

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of records to show")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent continuation requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := history.Open(config.DataDir(cfg))
		if err != nil {
			return err
		}
		defer store.Close()

		recs, err := store.Recent(historyLimit)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(recs) == 0 {
			fmt.Fprintln(w, "No continuations recorded.")
			return nil
		}

		headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
		cellStyle := lipgloss.NewStyle().Padding(0, 1)
		failStyle := cellStyle.Foreground(lipgloss.Color("9"))

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("238"))).
			Headers("When", "Provider", "Status", "In", "Out", "Duration", "Reason").
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				if col == 2 && row-1 < len(recs) && recs[row-1].Status == history.StatusFailed {
					return failStyle
				}
				return cellStyle
			})

		for _, rec := range recs {
			t = t.Row(
				rec.Created.Local().Format("2006-01-02 15:04:05"),
				rec.Provider,
				rec.Status,
				fmt.Sprintf("%d", rec.PromptChars),
				fmt.Sprintf("%d", rec.OutputChars),
				rec.Duration.Round(time.Millisecond).String(),
				truncate(rec.Reason, 48),
			)
		}

		fmt.Fprintln(w, t.String())
		return nil
	},
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
