package integration

import (
	"go.uber.org/fx"

	capability "github.com/creatorbridge/maestro/pkg/automation/core/capability"
)

// Module provides the sandbox behind all four capability boundaries.
var Module = fx.Options(
	fx.Provide(NewSandbox),
	fx.Provide(func(s *Sandbox) capability.CreatorDirectory { return s }),
	fx.Provide(func(s *Sandbox) capability.CampaignStore { return s }),
	fx.Provide(func(s *Sandbox) capability.ContractService { return s }),
	fx.Provide(func(s *Sandbox) capability.MessageDispatcher { return s }),
)
