package http

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/logger"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/caseservice/config"
	"github.com/Alijeyrad/caseservice/internal/api/http/handler"
	"github.com/Alijeyrad/caseservice/internal/api/http/middleware"
	"github.com/Alijeyrad/caseservice/internal/api/http/router"
	"github.com/Alijeyrad/caseservice/pkg/constants"
	"github.com/Alijeyrad/caseservice/pkg/observability"
)

// Module provides the HTTP Server to the fx graph.
var Module = fx.Module("http", fx.Provide(NewServer))

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       *config.Config
	Logger    *slog.Logger
	Redis     *redis.Client `optional:"true"`
	Router    *router.Router
	OTel      *observability.Provider `optional:"true"`
}

func NewServer(p Params) *fiber.App {
	app := NewApp(p.Cfg, p.Logger, p.Redis, p.OTel != nil)
	p.Router.Register(app)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			addr := fmt.Sprintf(":%d", p.Cfg.Server.Port)
			go func() {
				if err := app.Listen(addr); err != nil {
					p.Logger.Error("HTTP server error", "error", err)
				}
			}()
			p.Logger.Info("HTTP server listening", "addr", addr, "base_path", p.Cfg.Server.BasePath)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})

	return app
}

// NewApp builds the fiber app with the error envelope and the global
// middleware chain. Routes are registered by the caller.
func NewApp(cfg *config.Config, log *slog.Logger, rdb *redis.Client, tracing bool) *fiber.App {
	fc := fiber.Config{
		AppName:      constants.ServiceName,
		ErrorHandler: handler.ErrorHandler(log),
	}
	if cfg.Server.TimeoutSeconds > 0 {
		t := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
		fc.ReadTimeout = t
		fc.WriteTimeout = t
	}
	app := fiber.New(fc)

	if tracing && cfg.Observability.Tracing.Enabled {
		app.Use(observability.FiberMiddleware(cfg.Observability.ServiceName))
	}

	configureGlobalMiddleware(app, cfg, rdb)
	return app
}

func configureGlobalMiddleware(app *fiber.App, cfg *config.Config, rdb *redis.Client) {
	app.Use(middleware.RequestID())
	app.Use(recoverer.New())

	if cfg.Server.CORS.Enabled {
		app.Use(cors.New(corsConfig(cfg.Server.CORS)))
	}

	if cfg.IsProduction() {
		app.Use(helmet.New())
		app.Use(middleware.NewLimiter(cfg.Server.RateLimit, rdb))
	}

	app.Use(logger.New(logger.Config{
		Format: "${ip} - [${time}] [req_id=${locals:requestid}] ${method} ${url} ${status}\n",
	}))
}

func corsConfig(c config.CORSConfig) cors.Config {
	cc := cors.Config{
		AllowOrigins:     c.AllowOrigins,
		AllowMethods:     c.AllowMethods,
		AllowHeaders:     c.AllowHeaders,
		AllowCredentials: c.AllowCredentials,
		MaxAge:           c.MaxAgeSeconds,
	}
	if len(cc.AllowOrigins) == 0 {
		cc.AllowOrigins = []string{"*"}
	}
	// wildcard origins cannot be combined with credentials
	if cc.AllowCredentials {
		for _, o := range cc.AllowOrigins {
			if o == "*" {
				cc.AllowCredentials = false
				break
			}
		}
	}
	return cc
}
