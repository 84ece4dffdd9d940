package model

import "time"

// ContactMethod is the channel chosen for reaching a creator.
type ContactMethod string

const (
	ContactMethodEmail ContactMethod = "EMAIL"
	ContactMethodPhone ContactMethod = "PHONE"
	ContactMethodNone  ContactMethod = "NONE"
)

// String returns the string representation of the ContactMethod.
func (m ContactMethod) String() string {
	return string(m)
}

// CreatorMetrics carries the profile metrics projected from the directory.
type CreatorMetrics struct {
	Followers      int     `json:"followers"`
	EngagementRate float64 `json:"engagementRate"`
	RelevanceScore float64 `json:"relevanceScore"`
}

// Creator is the in-session projection of a directory record, not the full
// directory entry.
type Creator struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Email             string         `json:"email,omitempty"`
	Phone             string         `json:"phone,omitempty"`
	Metrics           CreatorMetrics `json:"metrics"`
	ContactPreference ContactMethod  `json:"contactPreference"`
}

// CreatorContactPreference is an operator-supplied channel choice for one
// creator, merged into the live projection at any point during a run.
type CreatorContactPreference struct {
	CreatorID     string        `json:"creatorId"`
	ContactMethod ContactMethod `json:"contactMethod"`
}

// ContractRef points at a drafted contract artifact.
type ContractRef struct {
	ContractID string    `json:"contractId"`
	CreatorID  string    `json:"creatorId"`
	CampaignID string    `json:"campaignId"`
	DraftedAt  time.Time `json:"draftedAt"`
}

// CommunicationRef records one outbound message attempt against a creator.
type CommunicationRef struct {
	CreatorID    string        `json:"creatorId"`
	Channel      ContactMethod `json:"channel"`
	Accepted     bool          `json:"accepted"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
	SentAt       time.Time     `json:"sentAt"`
}

// CampaignDetail is the campaign record returned by the directory boundary.
type CampaignDetail struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	BrandID     string  `json:"brandId"`
	Description string  `json:"description,omitempty"`
	Budget      float64 `json:"budget,omitempty"`
	Status      string  `json:"status,omitempty"`
}

// AnalyticsSnapshot is the point-in-time analytics view of a creator.
type AnalyticsSnapshot struct {
	CreatorID      string    `json:"creatorId"`
	Followers      int       `json:"followers"`
	EngagementRate float64   `json:"engagementRate"`
	ObservedAt     time.Time `json:"observedAt"`
}

// CampaignState is the live in-memory projection of a running session. It is
// what observers receive after every mutation; it is never persisted directly.
type CampaignState struct {
	SessionID          string                     `json:"sessionId"`
	CampaignID         string                     `json:"campaignId"`
	Status             SessionStatus              `json:"status"`
	SelectedCreators   []Creator                  `json:"selectedCreators"`
	SentContracts      []ContractRef              `json:"sentContracts"`
	Communications     []CommunicationRef         `json:"communications"`
	CreatorPreferences []CreatorContactPreference `json:"creatorPreferences"`
}

// NewCampaignState creates an empty projection for a session.
func NewCampaignState(sessionID, campaignID string) *CampaignState {
	return &CampaignState{
		SessionID:          sessionID,
		CampaignID:         campaignID,
		Status:             SessionStatusInitiated,
		SelectedCreators:   []Creator{},
		SentContracts:      []ContractRef{},
		Communications:     []CommunicationRef{},
		CreatorPreferences: []CreatorContactPreference{},
	}
}

// Snapshot returns a deep copy of the projection. Observers receive snapshots
// so a slow consumer never races the pipeline's next mutation.
func (s *CampaignState) Snapshot() *CampaignState {
	out := &CampaignState{
		SessionID:          s.SessionID,
		CampaignID:         s.CampaignID,
		Status:             s.Status,
		SelectedCreators:   make([]Creator, len(s.SelectedCreators)),
		SentContracts:      make([]ContractRef, len(s.SentContracts)),
		Communications:     make([]CommunicationRef, len(s.Communications)),
		CreatorPreferences: make([]CreatorContactPreference, len(s.CreatorPreferences)),
	}
	copy(out.SelectedCreators, s.SelectedCreators)
	copy(out.SentContracts, s.SentContracts)
	copy(out.Communications, s.Communications)
	copy(out.CreatorPreferences, s.CreatorPreferences)
	return out
}
