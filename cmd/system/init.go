package system

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/caseservice/pkg/database"
)

func NewInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the service database if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}
			if err := database.InitializeDatabases(cmd.Context(), cfg); err != nil {
				return fmt.Errorf("failed to initialize databases: %w", err)
			}
			cmd.Println("Database initialized.")
			return nil
		},
	}
}
