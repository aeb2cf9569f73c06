package constants

const (
	ConfigName   = "config"
	ConfigFormat = "yaml"

	// EnvPrefix is prepended to every environment override, e.g.
	// CASESERVICE_DATABASE_HOST overrides database.host.
	EnvPrefix = "CASESERVICE"

	ServiceName    = "case_service"
	ServiceVersion = "1.0.0"
)
