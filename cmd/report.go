package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/prism/internal/assessment"
	"github.com/abhisek/prism/internal/llm"
	"github.com/abhisek/prism/internal/report"
	"github.com/abhisek/prism/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report <session-id>",
	Short: "Show an assessment summary, or generate the full HTML report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sessionID := args[0]

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		// The report data lookup never needs the scorer.
		engine := assessment.NewEngine(st, nil)
		data, err := engine.Report(ctx, sessionID)
		if err != nil {
			return err
		}

		htmlOut, _ := cmd.Flags().GetString("html")
		if htmlOut == "" {
			summary, err := report.Summary(data)
			if err != nil {
				return err
			}
			fmt.Println(summary)
			return nil
		}

		provider, err := llm.NewProviderFromEnv(ctx, st.LLMEvents())
		if err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}
		svc := report.NewService(provider, report.DefaultConfig())

		html, degraded := svc.GenerateHTML(ctx, data)
		if degraded {
			fmt.Fprintln(os.Stderr, "warning: report generation degraded; writing error document")
		}

		if htmlOut == "-" {
			fmt.Println(html)
			return nil
		}
		if err := os.WriteFile(htmlOut, []byte(html), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Printf("Report written to %s\n", htmlOut)
		return nil
	},
}

func init() {
	reportCmd.Flags().String("html", "", "Generate the full HTML report to this file ('-' for stdout)")
}
