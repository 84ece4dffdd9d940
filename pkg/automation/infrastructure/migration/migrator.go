// Package migration applies schema migrations to the audit store on startup
// using golang-migrate with an embedded migration source.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	gormadapter "github.com/creatorbridge/maestro/pkg/automation/adapter/database/gorm"
	logger "github.com/creatorbridge/maestro/pkg/automation/support/util/logger"
)

// migrationsTable tracks applied versions in the audit store itself.
const migrationsTable = "maestro_schema_migrations"

// Migrator applies schema migrations to the audit store.
type Migrator interface {
	// Up applies all pending migrations found under path in migrationFS.
	Up(ctx context.Context, migrationFS fs.FS, path string) error
}

type auditStoreMigrator struct {
	conn *gormadapter.SessionDB
}

// NewMigrator creates a Migrator bound to the audit store connection.
func NewMigrator(conn *gormadapter.SessionDB) Migrator {
	return &auditStoreMigrator{conn: conn}
}

// getDatabaseDriver builds a migrate/v4 driver for the connection's DB type.
func (m *auditStoreMigrator) getDatabaseDriver(sqlDB *sql.DB) (database.Driver, error) {
	switch m.conn.Type {
	case "postgres":
		return postgres.WithInstance(sqlDB, &postgres.Config{MigrationsTable: migrationsTable})
	case "mysql":
		return mysql.WithInstance(sqlDB, &mysql.Config{MigrationsTable: migrationsTable})
	case "sqlite":
		return sqlite.WithInstance(sqlDB, &sqlite.Config{MigrationsTable: migrationsTable})
	default:
		return nil, fmt.Errorf("unsupported database type for migration: %s", m.conn.Type)
	}
}

func (m *auditStoreMigrator) Up(ctx context.Context, migrationFS fs.FS, path string) error {
	logger.Infof("Applying audit store migrations (path: %s, db: %s).", path, m.conn.Type)

	sqlDB, err := m.conn.SQLDB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sourceDriver, err := iofs.New(migrationFS, path)
	if err != nil {
		return fmt.Errorf("failed to create iofs source driver for path %s: %w", path, err)
	}

	dbDriver, err := m.getDatabaseDriver(sqlDB)
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	mInstance, err := migrate.NewWithInstance("iofs", sourceDriver, m.conn.Type, dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := mInstance.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed (db: %s, path: %s): %w", m.conn.Type, path, err)
	}

	logger.Infof("Audit store migrations are up to date.")
	return nil
}
