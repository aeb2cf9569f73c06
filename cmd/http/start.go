package http

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/caseservice/config"
	httpapi "github.com/Alijeyrad/caseservice/internal/api/http"
)

func NewStartCommand() *cobra.Command {
	var shutdownTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP server and block until interrupted",
		Long: `Start the HTTP server. Configuration is read from --config and may be
overridden with CASESERVICE_* environment variables, for example
CASESERVICE_DATABASE_HOST or CASESERVICE_UMS_BASE_URL.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := config.ReadConfig(filepath.Dir(path))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			httpapi.Start(cfg, shutdownTimeout)
			return nil
		},
	}

	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second, "Maximum time to wait for in-flight requests on shutdown")
	return cmd
}
