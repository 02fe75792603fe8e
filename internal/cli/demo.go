package cli

import (
	"bufio"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/inkwell-dev/inkwell/internal/document"
	"github.com/inkwell-dev/inkwell/internal/provider"
	"github.com/inkwell-dev/inkwell/internal/session"
	"github.com/spf13/cobra"
)

var demoMock bool

func init() {
	demoCmd.Flags().BoolVar(&demoMock, "mock", false, "Use the built-in mock provider instead of the configured one")
	rootCmd.AddCommand(demoCmd)
}

var (
	demoHintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	demoErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	demoRevealStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	demoPromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run an interactive editor session in the terminal",
	Long: `Drive the full session protocol from the terminal: type prose, then use
/continue to request an AI continuation and watch it reveal character by
character. /reset clears the session, /quit exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var prov provider.Provider
		if demoMock {
			mock := provider.NewMockProvider()
			mock.Delay = 400 * time.Millisecond
			prov = mock
		} else {
			prov, err = buildProvider(cfg)
			if err != nil {
				return err
			}
		}

		doc := document.New("")
		ctrl := session.NewController(doc, prov, sessionOptions(cfg))

		out := cmd.OutOrStdout()

		// Print only what each reveal step appended, in the reveal color.
		// User-typed appends move the watermark without echoing.
		var printed int
		var printedMu sync.Mutex
		doc.OnChange(func(text string) {
			printedMu.Lock()
			defer printedMu.Unlock()
			if ctrl.State().Phase == session.PhaseRevealing && len(text) > printed {
				fmt.Fprint(out, demoRevealStyle.Render(text[printed:]))
			}
			printed = len(text)
		})

		fmt.Fprintln(out, demoHintStyle.Render("inkwell demo — type prose, then /continue, /reset, or /quit"))

		scanner := bufio.NewScanner(cmd.InOrStdin())
		for {
			fmt.Fprint(out, demoPromptStyle.Render("> "))
			if !scanner.Scan() {
				return scanner.Err()
			}
			line := scanner.Text()

			switch strings.TrimSpace(line) {
			case "/quit":
				return nil

			case "/reset":
				ctrl.Reset()
				fmt.Fprintln(out, demoHintStyle.Render("(session reset)"))

			case "/continue":
				if !ctrl.Submit(cmd.Context()) {
					fmt.Fprintln(out, demoHintStyle.Render("(nothing to continue yet, or too soon after the last request)"))
					continue
				}
				waitForSettle(ctrl)
				if msg := ctrl.State().ErrorMessage(); msg != "" {
					fmt.Fprintln(out, demoErrorStyle.Render("error: "+msg))
				} else {
					fmt.Fprintln(out)
				}

			default:
				if line != "" {
					sep := ""
					if doc.Len() > 0 {
						sep = "\n"
					}
					doc.Append(sep + line)
				}
			}
		}
	},
}

// waitForSettle blocks until the session leaves the requesting and revealing
// phases.
func waitForSettle(ctrl *session.Controller) {
	for {
		st := ctrl.State()
		if st.Phase != session.PhaseRequesting && st.Phase != session.PhaseRevealing {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
}
