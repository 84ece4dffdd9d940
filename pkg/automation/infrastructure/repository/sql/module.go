package sql

import (
	"go.uber.org/fx"

	repository "github.com/creatorbridge/maestro/pkg/automation/core/domain/repository"
)

// Module provides the SQL session repository to Fx. It expects an audit
// store connection (adapter/database/gorm) in the graph.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewSQLSessionRepository,
		fx.As(new(repository.SessionRepository)),
	)),
)
