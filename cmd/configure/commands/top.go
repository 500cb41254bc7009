package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/soloflow/crm-api/internal/priority"
	"github.com/spf13/cobra"
)

// NewTopCmd creates the top command
func NewTopCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "top <user-id>",
		Short: "Show the highest-priority items for a user",
		Long:  "Show a user's tasks and projects merged into one ranked list, highest score first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}

			svc, closeDB, err := newService()
			if err != nil {
				return err
			}
			defer closeDB()

			items, err := svc.TopItems(context.Background(), userID, limit)
			if err != nil {
				return fmt.Errorf("failed to fetch top items: %w", err)
			}

			if len(items) == 0 {
				fmt.Println("No items found")
				return nil
			}

			for i, item := range items {
				due := "-"
				if item.Due != nil {
					due = item.Due.Format("2006-01-02")
				}
				fmt.Printf("%2d. [%7s] %6.1f %-7s due %s  %s\n",
					i+1, item.Kind, item.Score, item.Label, due, item.Title)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", priority.DefaultTopItems, "Number of items to show (1-50)")

	return cmd
}
