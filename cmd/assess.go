package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/prism/internal/assessment"
	"github.com/abhisek/prism/internal/llm"
	"github.com/abhisek/prism/internal/scoring"
	"github.com/abhisek/prism/internal/store"
	"github.com/abhisek/prism/internal/tui"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Run an assessment interactively in the terminal",
	Long: `Register a product (or resume an existing session with --session)
and answer the transparency questions one by one. Each answer is scored
as you go.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

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

		sessionID, _ := cmd.Flags().GetString("session")
		if sessionID != "" {
			return resumeSession(cmd, engine, st, sessionID)
		}

		in := assessment.RegisterInput{}
		in.CompanyName, _ = cmd.Flags().GetString("company")
		in.ProductName, _ = cmd.Flags().GetString("product")
		in.ProductKey, _ = cmd.Flags().GetString("product-id")
		in.Description, _ = cmd.Flags().GetString("description")
		in.Domain, _ = cmd.Flags().GetString("domain")

		reg, err := engine.Register(ctx, in)
		if err != nil {
			if errors.Is(err, assessment.ErrInvalidInput) {
				return fmt.Errorf("%w (all of --company, --product, --product-id, --description, --domain are required)", err)
			}
			return err
		}
		fmt.Printf("Session %s started for %s.\n", reg.SessionID, in.ProductName)

		return tui.Run(engine, reg.SessionID, in.ProductName, 1)
	},
}

func resumeSession(cmd *cobra.Command, engine *assessment.Engine, st *store.Store, sessionID string) error {
	ctx := cmd.Context()
	info, err := engine.Status(ctx, sessionID)
	if err != nil {
		return err
	}
	if info.Status == store.StatusCompleted {
		return fmt.Errorf("session %s is already completed", sessionID)
	}

	product, err := st.Products().Get(ctx, info.ProductKey)
	if err != nil {
		return fmt.Errorf("load product: %w", err)
	}
	return tui.Run(engine, sessionID, product.ProductName, info.CurrentQuestion)
}

func init() {
	assessCmd.Flags().String("session", "", "Resume an existing session by ID")
	assessCmd.Flags().String("company", "", "Company name")
	assessCmd.Flags().String("product", "", "Product name")
	assessCmd.Flags().String("product-id", "", "Unique product identifier")
	assessCmd.Flags().String("description", "", "Product description")
	assessCmd.Flags().String("domain", "", "Product domain/category")
}
