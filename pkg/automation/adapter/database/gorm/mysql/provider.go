// Package mysql registers the GORM dialector for MySQL audit stores.
package mysql

import (
	"fmt"

	gosqlmysql "github.com/go-sql-driver/mysql"
	"go.uber.org/fx"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	dbconfig "github.com/creatorbridge/maestro/pkg/automation/adapter/database/config"
	gormadapter "github.com/creatorbridge/maestro/pkg/automation/adapter/database/gorm"
)

// init registers the MySQL dialector factory with the GORM adapter.
func init() {
	gormadapter.RegisterDialector("mysql", func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		return mysql.Open(connectionString(cfg)), nil
	})
}

// connectionString builds the MySQL DSN through the driver's own config type
// so that credentials with reserved characters survive intact.
func connectionString(c dbconfig.DatabaseConfig) string {
	dsnCfg := gosqlmysql.NewConfig()
	dsnCfg.User = c.User
	dsnCfg.Passwd = c.Password
	dsnCfg.Net = "tcp"
	dsnCfg.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	dsnCfg.DBName = c.Database
	dsnCfg.ParseTime = true
	dsnCfg.Params = map[string]string{"charset": "utf8mb4"}
	return dsnCfg.FormatDSN()
}

// Module pins the dialector registration into the Fx graph.
var Module = fx.Options()
