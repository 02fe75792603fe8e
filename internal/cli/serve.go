package cli

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/inkwell-dev/inkwell/internal/config"
	"github.com/inkwell-dev/inkwell/internal/history"
	"github.com/inkwell-dev/inkwell/internal/server"
	"github.com/inkwell-dev/inkwell/internal/session"
	"github.com/spf13/cobra"
)

var servePortFlag int

func init() {
	serveCmd.Flags().IntVar(&servePortFlag, "port", 0, "Server port (default from config or 4820)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the continuation server",
	Long:  `Serve the HTTP continuation endpoint, health check, and the websocket editor-session bridge.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		port := servePortFlag
		if port == 0 {
			port = cfg.Server.Port
		}

		prov, err := buildProvider(cfg)
		if err != nil {
			return err
		}

		dataDir := config.DataDir(cfg)
		release, err := history.LockDataDir(dataDir, history.DefaultLockTimeout)
		if err != nil {
			return err
		}
		defer release()

		store, err := history.Open(dataDir)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := server.New(server.Options{
			Port:           port,
			Provider:       prov,
			History:        store,
			RequestTimeout: cfg.Provider.ParseTimeout(),
			MaxTokens:      cfg.Provider.MaxTokens,
			Session:        sessionOptions(cfg),
		})
		return srv.Run(ctx)
	},
}

// sessionOptions maps resolved configuration onto session protocol timings.
func sessionOptions(cfg *config.Config) session.Options {
	seq := session.NewSequencer()
	if cfg.Reveal.BaseDelayMs > 0 {
		seq.BaseDelay = time.Duration(cfg.Reveal.BaseDelayMs) * time.Millisecond
	}
	seq.Jitter = time.Duration(cfg.Reveal.JitterMs) * time.Millisecond

	return session.Options{
		RateLimit:      time.Duration(cfg.Session.RateLimitMs) * time.Millisecond,
		FailedDwell:    time.Duration(cfg.Session.FailedDwellMs) * time.Millisecond,
		RequestTimeout: cfg.Provider.ParseTimeout(),
		MaxTokens:      cfg.Provider.MaxTokens,
		Sequencer:      seq,
	}
}
