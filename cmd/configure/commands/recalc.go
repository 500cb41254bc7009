package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/soloflow/crm-api/internal/config"
	"github.com/soloflow/crm-api/internal/database"
	"github.com/soloflow/crm-api/internal/logger"
	"github.com/soloflow/crm-api/internal/priority"
	"github.com/spf13/cobra"
)

// newService wires a priority service from the environment config. The
// returned close function releases the database connection.
func newService() (*priority.Service, func(), error) {
	cfg, err := config.LoadCLI()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}

	weights := priority.DefaultWeights()
	if cfg.WeightsFile != "" {
		weights, err = priority.LoadWeightsFile(cfg.WeightsFile)
		if err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("failed to load weights file: %w", err)
		}
	}

	zapLogger, err := logger.NewDevelopmentLogger(false)
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	svc := priority.NewService(
		database.NewTaskRepository(db),
		database.NewProjectRepository(db),
		database.NewUserRepository(db),
		weights,
		zapLogger,
	)
	return svc, closeDB, nil
}

// NewRecalcCmd creates the recalc command
func NewRecalcCmd() *cobra.Command {
	var userIDFlag string

	cmd := &cobra.Command{
		Use:   "recalc",
		Short: "Recalculate priority scores",
		Long:  "Recalculate priority scores for one user (--user) or for all users",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := newService()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx := context.Background()

			if userIDFlag != "" {
				userID, err := uuid.Parse(userIDFlag)
				if err != nil {
					return fmt.Errorf("invalid user id: %w", err)
				}
				result, err := svc.RecalculateUser(ctx, userID)
				if err != nil {
					return fmt.Errorf("recalculation failed: %w", err)
				}
				fmt.Printf("User %s: %d tasks and %d projects updated (%d/%d failed)\n",
					userID, result.TasksUpdated, result.ProjectsUpdated,
					result.TasksFailed, result.ProjectsFailed)
				return nil
			}

			batch, err := svc.RecalculateAll(ctx)
			if err != nil {
				return fmt.Errorf("recalculation failed: %w", err)
			}
			fmt.Printf("Recalculated %d users: %d succeeded, %d failed\n",
				batch.TotalUsers, batch.SuccessfulUsers, batch.FailedUsers)
			fmt.Printf("Updated %d tasks and %d projects\n",
				batch.TotalTasksUpdated, batch.TotalProjectsUpdated)
			for _, outcome := range batch.PerUser {
				if outcome.Error != "" {
					fmt.Printf("  user %s failed: %s\n", outcome.UserID, outcome.Error)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userIDFlag, "user", "", "Recalculate a single user by id")

	return cmd
}
