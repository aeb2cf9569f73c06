package http

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/Alijeyrad/caseservice/config"
	"github.com/Alijeyrad/caseservice/internal/api/http/router"
	"github.com/Alijeyrad/caseservice/internal/app"
)

// Start runs the server until SIGINT or SIGTERM.
func Start(cfg *config.Config, timeout time.Duration) {
	fx.New(
		fx.Supply(cfg),
		app.InfraModule,
		app.ServiceModule,
		router.Module,
		Module,

		// fiber.App is only built when something depends on it, and
		// building it registers the OnStart hook.
		fx.Invoke(func(*fiber.App) {}),

		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return containerLogger(cfg, logger)
		}),
		fx.StopTimeout(timeout),
	).Run()
}

// containerLogger reports fx wiring events only at debug level.
func containerLogger(cfg *config.Config, logger *slog.Logger) fxevent.Logger {
	if !strings.EqualFold(cfg.Logging.Level, "debug") {
		return fxevent.NopLogger
	}
	return &fxevent.SlogLogger{Logger: logger.With("component", "fx")}
}
