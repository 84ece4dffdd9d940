// Package gorm opens GORM connections for the audit store. Driver-specific
// dialectors register themselves via the subpackages (sqlite, postgres,
// mysql); which one is used at runtime is decided purely by configuration.
package gorm

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	dbconfig "github.com/creatorbridge/maestro/pkg/automation/adapter/database/config"
	config "github.com/creatorbridge/maestro/pkg/automation/core/config"
	configbinder "github.com/creatorbridge/maestro/pkg/automation/support/util/configbinder"
	logger "github.com/creatorbridge/maestro/pkg/automation/support/util/logger"
)

// DialectorFactory generates a gorm.Dialector from a dbconfig.DatabaseConfig.
type DialectorFactory func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error)

var (
	dialectorRegistry = make(map[string]DialectorFactory)
	dialectorMutex    sync.RWMutex
)

// RegisterDialector registers a DialectorFactory for the given database type.
func RegisterDialector(dbType string, factory DialectorFactory) {
	dialectorMutex.Lock()
	defer dialectorMutex.Unlock()
	if _, exists := dialectorRegistry[dbType]; exists {
		logger.Warnf("Dialector for type '%s' already registered. Overwriting.", dbType)
	}
	dialectorRegistry[dbType] = factory
}

// GetDialectorFactory retrieves the DialectorFactory for the given DB type.
func GetDialectorFactory(dbType string) (DialectorFactory, error) {
	dialectorMutex.RLock()
	defer dialectorMutex.RUnlock()
	factory, ok := dialectorRegistry[dbType]
	if !ok {
		return nil, fmt.Errorf("no dialector registered for database type: %s", dbType)
	}
	return factory, nil
}

// SessionDB is an open connection to the audit store together with the
// metadata the migrator and the repository need.
type SessionDB struct {
	DB   *gorm.DB
	Type string
	Name string
}

// SQLDB returns the underlying *sql.DB of the connection.
func (c *SessionDB) SQLDB() (*sql.DB, error) {
	return c.DB.DB()
}

// Close closes the underlying database connection.
func (c *SessionDB) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// ResolveDatabaseConfig looks up the named entry under `maestro.database` and
// binds it onto a typed DatabaseConfig.
func ResolveDatabaseConfig(cfg *config.Config, name string) (dbconfig.DatabaseConfig, error) {
	var dbCfg dbconfig.DatabaseConfig
	raw, ok := cfg.Maestro.AdaptorConfigs[name]
	if !ok {
		return dbCfg, fmt.Errorf("database configuration '%s' not found under maestro.database", name)
	}
	props, ok := raw.(map[string]interface{})
	if !ok {
		return dbCfg, fmt.Errorf("database configuration '%s' is not a mapping", name)
	}
	if err := configbinder.Bind(props, &dbCfg); err != nil {
		return dbCfg, fmt.Errorf("failed to bind database config '%s': %w", name, err)
	}
	return dbCfg, nil
}

// Open establishes a GORM connection for the given database configuration and
// applies the configured pool settings.
func Open(dbCfg dbconfig.DatabaseConfig, logLevel string) (*gorm.DB, error) {
	factory, err := GetDialectorFactory(dbCfg.Type)
	if err != nil {
		return nil, err
	}
	dialector, err := factory(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create dialector for %s: %w", dbCfg.Type, err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: NewGormLogger(logLevel)})
	if err != nil {
		return nil, fmt.Errorf("failed to open GORM connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if dbCfg.Pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbCfg.Pool.MaxOpenConns)
	}
	if dbCfg.Pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbCfg.Pool.MaxIdleConns)
	}
	if dbCfg.Pool.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(dbCfg.Pool.ConnMaxLifetimeMinutes) * time.Minute)
	}

	return db, nil
}

// NewSessionDB opens the connection named by
// `maestro.infrastructure.session_repository_db_ref`.
func NewSessionDB(cfg *config.Config) (*SessionDB, error) {
	name := cfg.Maestro.Infrastructure.SessionRepositoryDBRef
	dbCfg, err := ResolveDatabaseConfig(cfg, name)
	if err != nil {
		return nil, err
	}
	db, err := Open(dbCfg, cfg.Maestro.System.Logging.Level)
	if err != nil {
		return nil, err
	}
	logger.Infof("Established audit store connection: %s (%s)", name, dbCfg.Type)
	return &SessionDB{DB: db, Type: dbCfg.Type, Name: name}, nil
}
