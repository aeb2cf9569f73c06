package database

import (
	"time"

	"github.com/Alijeyrad/caseservice/config"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int

	// AutoMigrate creates or upgrades the cases table on startup. SafeMode
	// keeps the migrator from dropping columns and indexes.
	AutoMigrate bool
	SafeMode    bool
}

func (c Config) DSN() string {
	return buildDSN(c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

func (c Config) ConnMaxLifetime() time.Duration {
	if c.ConnMaxLifetimeMin <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.ConnMaxLifetimeMin) * time.Minute
}

func DefaultConfig() Config {
	return Config{
		Host:               "localhost",
		Port:               5432,
		DBName:             "case_service",
		SSLMode:            "disable",
		MaxOpenConns:       25,
		MaxIdleConns:       5,
		ConnMaxLifetimeMin: 5,
		SafeMode:           true,
	}
}

// FromCentralConfig fills unset connection fields from DefaultConfig.
func FromCentralConfig(c config.DatabaseConfig) Config {
	cfg := DefaultConfig()
	cfg.User = c.User
	cfg.Password = c.Password
	cfg.AutoMigrate = c.Migrations.AutoMigrate
	cfg.SafeMode = c.Migrations.SafeMode

	setString(&cfg.Host, c.Host)
	setString(&cfg.DBName, c.DBName)
	setString(&cfg.SSLMode, c.SSLMode)
	setInt(&cfg.Port, c.Port)
	setInt(&cfg.MaxOpenConns, c.Pool.MaxOpenConns)
	setInt(&cfg.MaxIdleConns, c.Pool.MaxIdleConns)
	setInt(&cfg.ConnMaxLifetimeMin, c.Pool.ConnMaxLifetimeMin)
	return cfg
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}
