package app

import (
	"context"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/caseservice/config"
	"github.com/Alijeyrad/caseservice/internal/repo"
	"github.com/Alijeyrad/caseservice/internal/repo/migrate"
	"github.com/Alijeyrad/caseservice/pkg/authorize"
	"github.com/Alijeyrad/caseservice/pkg/constants"
	"github.com/Alijeyrad/caseservice/pkg/database"
	"github.com/Alijeyrad/caseservice/pkg/events"
	"github.com/Alijeyrad/caseservice/pkg/httpclient"
	"github.com/Alijeyrad/caseservice/pkg/linkshub"
	"github.com/Alijeyrad/caseservice/pkg/logs"
	"github.com/Alijeyrad/caseservice/pkg/observability"
	redispkg "github.com/Alijeyrad/caseservice/pkg/redis"
	"github.com/Alijeyrad/caseservice/pkg/ums"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideLogger),
	fx.Provide(ProvideDriver),
	fx.Provide(ProvideCaseStore),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideNatsClient),
	fx.Provide(ProvideEventPublisher),
	fx.Provide(ProvideUMSClient),
	fx.Provide(ProvideLinksHubClient),
)

func ProvideLogger(cfg *config.Config) *slog.Logger {
	logger := logs.New(cfg)
	slog.SetDefault(logger)
	return logger
}

func ProvideDriver(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (*entsql.Driver, error) {
	drv, err := database.NewDriver(cfg.Database)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !cfg.Database.Migrations.AutoMigrate {
				return nil
			}
			logger.Info("running database migrations", "safe_mode", cfg.Database.Migrations.SafeMode)
			return database.Migrate(ctx, drv, cfg.Database.Migrations.SafeMode, migrate.Tables...)
		},
		OnStop: func(ctx context.Context) error {
			logger.Debug("closing main database connection")
			return drv.Close()
		},
	})
	return drv, nil
}

func ProvideCaseStore(drv *entsql.Driver) repo.CaseStore {
	return repo.NewPostgresStore(drv)
}

// ProvideRedis returns a nil client when Redis is disabled; consumers fall
// back to in-process state.
func ProvideRedis(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	rdb, err := redispkg.NewRedisFromCentral(context.Background(), cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideAuthorization(cfg *config.Config, logger *slog.Logger) (authorize.IAuthorization, error) {
	acfg := authorize.FromCentralConfig(cfg.Authorization)
	enforcer, err := authorize.NewEnforcer(acfg)
	if err != nil {
		return nil, err
	}
	base, err := authorize.NewAuthorization(enforcer)
	if err != nil {
		return nil, err
	}
	if err := authorize.SeedDefaultPolicies(context.Background(), base, logger); err != nil {
		return nil, err
	}
	if acfg.EnableAudit {
		return authorize.NewAuditedAuthorization(base, logger), nil
	}
	return base, nil
}

func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (*nats.Conn, error) {
	if !cfg.Nats.Enabled {
		return nil, nil
	}
	nc, err := nats.Connect(cfg.Nats.URL, nats.Name(constants.ServiceName))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvideEventPublisher(nc *nats.Conn, cfg *config.Config, logger *slog.Logger) events.Publisher {
	if nc == nil {
		return events.Nop{}
	}
	prefix := cfg.Nats.SubjectPrefix
	if prefix == "" {
		prefix = "caseservice"
	}
	var pub events.Publisher = events.NewNatsPublisher(nc, prefix, logger)
	if cfg.Observability.Enabled && cfg.Observability.Metrics.Enabled {
		pub = events.WithMetrics(pub)
	}
	return pub
}

func ProvideUMSClient(cfg *config.Config, logger *slog.Logger) *ums.Client {
	return ums.New(httpclient.FromCentralConfig(cfg.UMS), logger)
}

func ProvideLinksHubClient(cfg *config.Config, logger *slog.Logger) *linkshub.Client {
	return linkshub.New(httpclient.FromCentralConfig(cfg.LinksHub), logger)
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.FromCentralConfig(cfg))
	if err != nil {
		return nil, err
	}
	logger.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}
