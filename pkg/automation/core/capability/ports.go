package capability

import (
	"context"

	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
)

// SearchCriteria narrows a creator directory search.
type SearchCriteria struct {
	CampaignID     string  `json:"campaignId"`
	MinFollowers   int     `json:"minFollowers,omitempty"`
	MinEngagement  float64 `json:"minEngagement,omitempty"`
	RelevanceFloor float64 `json:"relevanceFloor,omitempty"`
}

// CampaignPatch is a partial update applied to a campaign record.
type CampaignPatch map[string]interface{}

// CreatorDirectory reads campaign-to-creator associations and creator
// profile/metric fields.
type CreatorDirectory interface {
	SearchCreators(ctx context.Context, criteria SearchCriteria) ([]model.Creator, error)
	GetCreatorAnalytics(ctx context.Context, creatorID string) (*model.AnalyticsSnapshot, error)
}

// CampaignStore reads and mutates campaign records.
type CampaignStore interface {
	GetCampaignDetail(ctx context.Context, campaignID string) (*model.CampaignDetail, error)
	UpdateCampaign(ctx context.Context, campaignID string, patch CampaignPatch) error
}

// ContractService produces contract artifacts for campaign/creator pairs.
type ContractService interface {
	DraftContract(ctx context.Context, campaignID, creatorID, terms string) (*model.ContractRef, error)
}

// MessageDispatcher sends a single outbound message to one creator's resolved
// channel. It returns delivery acceptance, not delivery confirmation.
type MessageDispatcher interface {
	DispatchOutreach(ctx context.Context, creatorID, message, campaignID string) error
}
