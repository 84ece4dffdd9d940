// Package sqlite registers the GORM dialector for SQLite audit stores.
package sqlite

import (
	"errors"

	"go.uber.org/fx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbconfig "github.com/creatorbridge/maestro/pkg/automation/adapter/database/config"
	gormadapter "github.com/creatorbridge/maestro/pkg/automation/adapter/database/gorm"
)

// init registers the SQLite dialector factory with the GORM adapter.
func init() {
	gormadapter.RegisterDialector("sqlite", func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		if cfg.Database == "" {
			return nil, errors.New("SQLite database path cannot be empty")
		}
		// The GORM SQLite dialector expects the file path directly.
		return sqlite.Open(cfg.Database), nil
	})
}

// Module pins the dialector registration into the Fx graph.
var Module = fx.Options()
