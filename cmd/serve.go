package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/prism/internal/assessment"
	"github.com/abhisek/prism/internal/config"
	"github.com/abhisek/prism/internal/llm"
	"github.com/abhisek/prism/internal/report"
	"github.com/abhisek/prism/internal/scoring"
	"github.com/abhisek/prism/internal/server"
	"github.com/abhisek/prism/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP assessment API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, err := config.LoadServer()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		provider, err := llm.NewProviderFromEnv(ctx, st.LLMEvents())
		if err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}

		engine := assessment.NewEngine(st, scoring.NewService(provider, scoring.DefaultConfig()))
		reports := report.NewService(provider, report.DefaultConfig())

		return server.New(engine, reports, cfg).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides PRISM_ADDR env var)")
}
