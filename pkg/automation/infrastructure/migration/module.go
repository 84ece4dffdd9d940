package migration

import (
	"go.uber.org/fx"
)

// Module provides the audit store migrator to Fx. The application decides
// when to run it, typically in an fx.Invoke before serving traffic.
var Module = fx.Options(
	fx.Provide(NewMigrator),
)
