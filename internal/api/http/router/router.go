package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/caseservice/config"
	"github.com/Alijeyrad/caseservice/internal/api/http/handler"
	"github.com/Alijeyrad/caseservice/internal/api/http/middleware"
	"github.com/Alijeyrad/caseservice/internal/repo"
	"github.com/Alijeyrad/caseservice/internal/service/auth"
	"github.com/Alijeyrad/caseservice/internal/service/cases"
	"github.com/Alijeyrad/caseservice/internal/service/catalog"
	"github.com/Alijeyrad/caseservice/internal/service/reference"
	"github.com/Alijeyrad/caseservice/pkg/authorize"
	redisx "github.com/Alijeyrad/caseservice/pkg/redis"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg        *config.Config
	Logger     *slog.Logger
	Redis      *redis.Client `optional:"true"`
	Auth       authorize.IAuthorization
	Store      repo.CaseStore
	AuthSvc    auth.Service
	CaseSvc    cases.Service
	RefSvc     reference.Service
	CatalogSvc catalog.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Initialize Middlewares
	authRequired := middleware.AuthRequired(r.p.AuthSvc)
	labScope := middleware.LabScope(r.p.AuthSvc)

	// Permission helper
	requirePerm := func(res authorize.Resource, act authorize.Action) fiber.Handler {
		return middleware.RequirePermission(r.p.Auth, res, act)
	}

	// 3. Initialize Handlers
	caseH := handler.NewCaseHandler(r.p.CaseSvc, r.p.Logger)
	catalogH := handler.NewCatalogHandler(r.p.CatalogSvc)
	directoryH := handler.NewDirectoryHandler(r.p.RefSvc, r.p.AuthSvc, r.p.Logger)

	basePath := r.p.Cfg.Server.BasePath
	if basePath == "" {
		basePath = "/api/v1"
	}
	api := app.Group(basePath)

	// 4. Delegate to sub-files
	r.registerCaseRoutes(api, caseH, catalogH, directoryH, authRequired, labScope, requirePerm)
}

// ready reports whether the case store and, when configured, Redis answer
// and the authorization policy is loaded.
func (r *Router) ready(c fiber.Ctx) bool {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	if err := r.p.Store.Ping(ctx); err != nil {
		r.p.Logger.WarnContext(ctx, "readiness: store unreachable", "error", err)
		return false
	}
	if r.p.Redis != nil && !redisx.Healthy(ctx, r.p.Redis) {
		r.p.Logger.WarnContext(ctx, "readiness: redis unreachable")
		return false
	}
	return r.p.Auth.Healthy()
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: r.ready,
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())
	app.Get("/health", handler.Health)

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
