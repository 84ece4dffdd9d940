// Package postgres registers the GORM dialector for PostgreSQL audit stores.
package postgres

import (
	"fmt"

	"go.uber.org/fx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	dbconfig "github.com/creatorbridge/maestro/pkg/automation/adapter/database/config"
	gormadapter "github.com/creatorbridge/maestro/pkg/automation/adapter/database/gorm"
)

// init registers the PostgreSQL dialector factory with the GORM adapter.
func init() {
	gormadapter.RegisterDialector("postgres", func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		return postgres.Open(connectionString(cfg)), nil
	})
}

// connectionString generates the DSN expected by gorm.io/driver/postgres.
func connectionString(c dbconfig.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.Sslmode)
}

// Module pins the dialector registration into the Fx graph.
var Module = fx.Options()
