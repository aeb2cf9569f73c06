package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Alijeyrad/caseservice/pkg/constants"
)

// Defaults seeds every key the service can run without. Keys that must be
// provided by the operator (upstream URLs, credentials) are left out.
func Defaults(v *viper.Viper) {
	v.SetDefault("server.port", 5001)
	v.SetDefault("server.timeout_seconds", 30)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.base_path", "/api/v1")
	v.SetDefault("server.cors.allow_origins", []string{"*"})
	v.SetDefault("server.rate_limit.max", 100)
	v.SetDefault("server.rate_limit.expiration_seconds", 60)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.dbname", "case_service")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.migrations.safe_mode", true)

	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("ums.base_url", "http://localhost:5000")
	v.SetDefault("ums.timeout_seconds", 5)
	v.SetDefault("linkshub.base_url", "https://core.linkstechnologies.io")
	v.SetDefault("linkshub.timeout_seconds", 5)

	v.SetDefault("pagination.default_page_size", 20)
	v.SetDefault("pagination.max_page_size", 100)

	v.SetDefault("observability.service_name", constants.ServiceName)
	v.SetDefault("observability.service_version", constants.ServiceVersion)
	v.SetDefault("observability.metrics.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output.stdout", true)

	v.SetDefault("nats.subject_prefix", "caseservice")
}

func ReadConfig(configPath string) (*Config, error) {
	v := viper.New()
	Defaults(v)

	v.SetConfigName(constants.ConfigName)
	v.SetConfigType(constants.ConfigFormat)
	v.AddConfigPath(configPath)

	// CASESERVICE_DATABASE_HOST overrides database.host
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The file is optional in containers where everything comes from env.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func MustReadConfig(path string) *Config {
	config, err := ReadConfig(path)
	if err != nil {
		panic(err)
	}
	return config
}
