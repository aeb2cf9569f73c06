package database

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	"github.com/Alijeyrad/caseservice/config"
)

// NewDriver opens a pooled Postgres connection and wraps it in an ent SQL driver.
func NewDriver(cfg config.DatabaseConfig) (*entsql.Driver, error) {
	return NewDriverFromConfig(FromCentralConfig(cfg))
}

func NewDriverFromConfig(cfg Config) (*entsql.Driver, error) {
	db, err := openSQLDB(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	return entsql.OpenDB(dialect.Postgres, db), nil
}

// Migrate creates or upgrades the given tables. In safe mode columns and
// indexes are never dropped.
func Migrate(ctx context.Context, drv dialect.Driver, safeMode bool, tables ...*schema.Table) error {
	m, err := schema.NewMigrate(drv,
		schema.WithDropColumn(!safeMode),
		schema.WithDropIndex(!safeMode),
	)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
