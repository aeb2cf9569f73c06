package system

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/caseservice/internal/repo/migrate"
	"github.com/Alijeyrad/caseservice/pkg/database"
)

func NewMigrateCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the cases table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}

			drv, err := database.NewDriver(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer drv.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			safe := cfg.Database.Migrations.SafeMode
			if err := database.Migrate(ctx, drv, safe, migrate.Tables...); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			cmd.Printf("Migrations applied (safe mode: %t).\n", safe)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "Maximum time the migration may take")
	return cmd
}
