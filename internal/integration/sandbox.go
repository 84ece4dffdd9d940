// Package integration provides in-process implementations of the capability
// boundaries for running the orchestrator without live marketplace services.
package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	capability "github.com/creatorbridge/maestro/pkg/automation/core/capability"
	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
	logger "github.com/creatorbridge/maestro/pkg/automation/support/util/logger"
)

// seededCreator pairs a directory record with sandbox-only delivery behavior.
type seededCreator struct {
	creator     model.Creator
	unreachable bool
}

// Sandbox implements all four capability boundaries against seeded in-memory
// data. Creators marked unreachable reject outreach dispatch, which exercises
// the per-item failure isolation of the engine end to end.
type Sandbox struct {
	mu         sync.Mutex
	campaigns  map[string]model.CampaignDetail
	creators   map[string][]seededCreator
	patches    map[string][]capability.CampaignPatch
	dispatches []string
}

var (
	_ capability.CreatorDirectory  = (*Sandbox)(nil)
	_ capability.CampaignStore     = (*Sandbox)(nil)
	_ capability.ContractService   = (*Sandbox)(nil)
	_ capability.MessageDispatcher = (*Sandbox)(nil)
)

// NewSandbox seeds the sandbox with one demo campaign and a small creator
// roster covering the email, phone and no-preference cases.
func NewSandbox() *Sandbox {
	return &Sandbox{
		campaigns: map[string]model.CampaignDetail{
			"cmp_demo": {
				ID:      "cmp_demo",
				Name:    "Summer Launch",
				BrandID: "brd_demo",
				Budget:  25000,
				Status:  "ACTIVE",
			},
		},
		creators: map[string][]seededCreator{
			"cmp_demo": {
				{creator: model.Creator{
					ID: "cr_ava", Name: "Ava", Email: "ava@example.com",
					Metrics:           model.CreatorMetrics{Followers: 120000, EngagementRate: 0.041, RelevanceScore: 0.92},
					ContactPreference: model.ContactMethodEmail,
				}},
				{creator: model.Creator{
					ID: "cr_ben", Name: "Ben", Email: "ben@example.com", Phone: "+15550100",
					Metrics:           model.CreatorMetrics{Followers: 54000, EngagementRate: 0.063, RelevanceScore: 0.81},
					ContactPreference: model.ContactMethodEmail,
				}, unreachable: true},
				{creator: model.Creator{
					ID: "cr_cleo", Name: "Cleo", Phone: "+15550101",
					Metrics:           model.CreatorMetrics{Followers: 8000, EngagementRate: 0.12, RelevanceScore: 0.66},
					ContactPreference: model.ContactMethodPhone,
				}},
				{creator: model.Creator{
					ID: "cr_dia", Name: "Dia",
					Metrics: model.CreatorMetrics{Followers: 230000, EngagementRate: 0.018, RelevanceScore: 0.4},
				}},
			},
		},
		patches: make(map[string][]capability.CampaignPatch),
	}
}

// SearchCreators returns the seeded roster of a campaign, filtered by the
// criteria minima.
func (s *Sandbox) SearchCreators(ctx context.Context, criteria capability.SearchCriteria) ([]model.Creator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seeded, ok := s.creators[criteria.CampaignID]
	if !ok {
		return nil, fmt.Errorf("campaign '%s' has no creator roster", criteria.CampaignID)
	}
	out := make([]model.Creator, 0, len(seeded))
	for _, entry := range seeded {
		c := entry.creator
		if c.Metrics.Followers < criteria.MinFollowers {
			continue
		}
		if c.Metrics.EngagementRate < criteria.MinEngagement {
			continue
		}
		if c.Metrics.RelevanceScore < criteria.RelevanceFloor {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// ContactPreferences returns the operator preference sheet for a campaign,
// derived from the seeded roster. Creators without a channel are omitted, so
// the resolver leaves them at NONE.
func (s *Sandbox) ContactPreferences(campaignID string) []model.CreatorContactPreference {
	s.mu.Lock()
	defer s.mu.Unlock()
	var prefs []model.CreatorContactPreference
	for _, entry := range s.creators[campaignID] {
		method := entry.creator.ContactPreference
		if method == "" || method == model.ContactMethodNone {
			continue
		}
		prefs = append(prefs, model.CreatorContactPreference{
			CreatorID:     entry.creator.ID,
			ContactMethod: method,
		})
	}
	return prefs
}

// GetCreatorAnalytics returns a point-in-time analytics view for a creator.
func (s *Sandbox) GetCreatorAnalytics(ctx context.Context, creatorID string) (*model.AnalyticsSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, roster := range s.creators {
		for _, entry := range roster {
			if entry.creator.ID == creatorID {
				return &model.AnalyticsSnapshot{
					CreatorID:      creatorID,
					Followers:      entry.creator.Metrics.Followers,
					EngagementRate: entry.creator.Metrics.EngagementRate,
					ObservedAt:     time.Now(),
				}, nil
			}
		}
	}
	return nil, fmt.Errorf("creator '%s' not found", creatorID)
}

// GetCampaignDetail returns the seeded campaign record.
func (s *Sandbox) GetCampaignDetail(ctx context.Context, campaignID string) (*model.CampaignDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	detail, ok := s.campaigns[campaignID]
	if !ok {
		return nil, fmt.Errorf("campaign '%s' not found", campaignID)
	}
	return &detail, nil
}

// UpdateCampaign records the patch against the campaign.
func (s *Sandbox) UpdateCampaign(ctx context.Context, campaignID string, patch capability.CampaignPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[campaignID]; !ok {
		return fmt.Errorf("campaign '%s' not found", campaignID)
	}
	s.patches[campaignID] = append(s.patches[campaignID], patch)
	return nil
}

// DraftContract produces a contract artifact for a campaign/creator pair.
func (s *Sandbox) DraftContract(ctx context.Context, campaignID, creatorID, terms string) (*model.ContractRef, error) {
	return &model.ContractRef{
		ContractID: "con_" + model.NewID(),
		CreatorID:  creatorID,
		CampaignID: campaignID,
		DraftedAt:  time.Now(),
	}, nil
}

// DispatchOutreach accepts the message unless the creator is seeded as
// unreachable.
func (s *Sandbox) DispatchOutreach(ctx context.Context, creatorID, message, campaignID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, roster := range s.creators {
		for _, entry := range roster {
			if entry.creator.ID == creatorID && entry.unreachable {
				return fmt.Errorf("delivery to creator '%s' rejected by channel provider", creatorID)
			}
		}
	}
	s.dispatches = append(s.dispatches, creatorID)
	logger.Debugf("Sandbox dispatched outreach to creator '%s'.", creatorID)
	return nil
}

// Dispatches lists the creators that accepted outreach, in dispatch order.
func (s *Sandbox) Dispatches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.dispatches))
	copy(out, s.dispatches)
	return out
}
