package capability

import "go.uber.org/fx"

// Module provides the capability registry to Fx. The collaborator boundaries
// (CreatorDirectory, CampaignStore, ContractService, MessageDispatcher) must
// be provided by the application or the integration layer.
var Module = fx.Options(
	fx.Provide(NewRegistry),
)
