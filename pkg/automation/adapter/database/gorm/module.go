package gorm

import (
	"go.uber.org/fx"
)

// Module provides the audit store connection to Fx. At least one driver
// subpackage module (sqlite, postgres, mysql) must be included alongside it
// so that a dialector for the configured database type is registered.
var Module = fx.Options(
	fx.Provide(NewSessionDB),
)
