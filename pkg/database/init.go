package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Alijeyrad/caseservice/config"
)

// InitializeDatabases connects to the maintenance database "postgres" and
// creates every name in server.databases, falling back to database.dbname.
func InitializeDatabases(ctx context.Context, cfg *config.Config) error {
	names := cfg.Server.Databases
	if len(names) == 0 && cfg.Database.DBName != "" {
		names = []string{cfg.Database.DBName}
	}
	if len(names) == 0 {
		return errors.New("no database names provided")
	}

	admin := FromCentralConfig(cfg.Database)
	admin.DBName = "postgres"

	db, err := openSQLDB(ctx, admin)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres database: %w", err)
	}
	defer db.Close()

	for _, name := range names {
		if _, err := ensureDatabase(ctx, db, name); err != nil {
			return fmt.Errorf("database %q: %w", name, err)
		}
	}
	return nil
}

// ensureDatabase reports whether the database had to be created.
func ensureDatabase(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`, name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking existence: %w", err)
	}
	if exists {
		return false, nil
	}

	if _, err := db.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		return false, fmt.Errorf("creating: %w", err)
	}
	return true, nil
}
