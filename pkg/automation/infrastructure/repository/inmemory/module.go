package inmemory

import (
	"go.uber.org/fx"

	repository "github.com/creatorbridge/maestro/pkg/automation/core/domain/repository"
)

// Module provides the in-memory session repository to Fx.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewInMemorySessionRepository,
		fx.As(new(repository.SessionRepository)),
	)),
)
