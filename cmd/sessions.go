package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/prism/internal/store"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List assessment sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		ctx := context.Background()
		sessions, err := s.Sessions().List(ctx, limit)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}

		if len(sessions) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		fmt.Printf("%-36s  %-20s  %-10s  %-9s  %-7s  %s\n",
			"Session", "Product", "Status", "Answered", "Final", "Updated")
		fmt.Println(strings.Repeat("─", 100))

		for _, sess := range sessions {
			final := "-"
			if sess.FinalScore != nil {
				final = fmt.Sprintf("%.1f", *sess.FinalScore)
			}
			product := sess.ProductKey
			if len(product) > 20 {
				product = product[:20]
			}
			fmt.Printf("%-36s  %-20s  %-10s  %-9d  %-7s  %s\n",
				sess.SessionID,
				product,
				sess.Status,
				len(sess.Answers),
				final,
				sess.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
			)
		}
		return nil
	},
}

func init() {
	sessionsCmd.Flags().IntP("limit", "n", 0, "Maximum number of sessions to show (0 = all)")
}
