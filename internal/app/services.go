package app

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/Alijeyrad/caseservice/config"
	"github.com/Alijeyrad/caseservice/internal/repo"
	"github.com/Alijeyrad/caseservice/internal/service/auth"
	"github.com/Alijeyrad/caseservice/internal/service/cases"
	"github.com/Alijeyrad/caseservice/internal/service/catalog"
	"github.com/Alijeyrad/caseservice/internal/service/reference"
	"github.com/Alijeyrad/caseservice/pkg/events"
	"github.com/Alijeyrad/caseservice/pkg/linkshub"
	"github.com/Alijeyrad/caseservice/pkg/ums"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideAuthService,
		ProvideReferenceService,
		ProvideCaseService,
		ProvideCatalogService,
	),
)

func ProvideAuthService(client *ums.Client, logger *slog.Logger) auth.Service {
	return auth.New(client, logger)
}

func ProvideReferenceService(client *linkshub.Client, logger *slog.Logger) reference.Service {
	return reference.New(client, logger)
}

func ProvideCaseService(
	store repo.CaseStore,
	refs reference.Service,
	publisher events.Publisher,
	cfg *config.Config,
	logger *slog.Logger,
) cases.Service {
	return cases.New(store, refs, publisher, cfg.Pagination, logger)
}

func ProvideCatalogService() (catalog.Service, error) {
	return catalog.New()
}
