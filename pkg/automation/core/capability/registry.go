package capability

import (
	"context"
	"fmt"

	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
	logger "github.com/creatorbridge/maestro/pkg/automation/support/util/logger"
)

// Operation names exposed by the registry.
const (
	OpSearchCreators      = "SearchCreators"
	OpGetCampaignDetail   = "GetCampaignDetail"
	OpUpdateCampaign      = "UpdateCampaign"
	OpDraftContract       = "DraftContract"
	OpDispatchOutreach    = "DispatchOutreach"
	OpGetCreatorAnalytics = "GetCreatorAnalytics"
)

// operationFunc is the uniform shape every registered operation is adapted to.
type operationFunc func(ctx context.Context, request interface{}) (interface{}, error)

// Registry holds the fixed operation set. The registry performs no retries;
// retry policy belongs to the caller, because only the caller knows whether an
// operation is idempotent in context.
type Registry struct {
	ops map[string]operationFunc
}

// NewRegistry wires the collaborator boundaries into the fixed operation set.
func NewRegistry(
	directory CreatorDirectory,
	campaigns CampaignStore,
	contracts ContractService,
	dispatcher MessageDispatcher,
) *Registry {
	r := &Registry{ops: make(map[string]operationFunc)}

	r.ops[OpSearchCreators] = func(ctx context.Context, request interface{}) (interface{}, error) {
		criteria, ok := request.(SearchCriteria)
		if !ok {
			return nil, NewFailure(FailureKindRejected, fmt.Sprintf("SearchCreators: unexpected request type %T", request))
		}
		return directory.SearchCreators(ctx, criteria)
	}
	r.ops[OpGetCreatorAnalytics] = func(ctx context.Context, request interface{}) (interface{}, error) {
		creatorID, ok := request.(string)
		if !ok {
			return nil, NewFailure(FailureKindRejected, fmt.Sprintf("GetCreatorAnalytics: unexpected request type %T", request))
		}
		return directory.GetCreatorAnalytics(ctx, creatorID)
	}
	r.ops[OpGetCampaignDetail] = func(ctx context.Context, request interface{}) (interface{}, error) {
		campaignID, ok := request.(string)
		if !ok {
			return nil, NewFailure(FailureKindRejected, fmt.Sprintf("GetCampaignDetail: unexpected request type %T", request))
		}
		return campaigns.GetCampaignDetail(ctx, campaignID)
	}
	r.ops[OpUpdateCampaign] = func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(UpdateCampaignRequest)
		if !ok {
			return nil, NewFailure(FailureKindRejected, fmt.Sprintf("UpdateCampaign: unexpected request type %T", request))
		}
		return nil, campaigns.UpdateCampaign(ctx, req.CampaignID, req.Patch)
	}
	r.ops[OpDraftContract] = func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(DraftContractRequest)
		if !ok {
			return nil, NewFailure(FailureKindRejected, fmt.Sprintf("DraftContract: unexpected request type %T", request))
		}
		return contracts.DraftContract(ctx, req.CampaignID, req.CreatorID, req.Terms)
	}
	r.ops[OpDispatchOutreach] = func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(DispatchOutreachRequest)
		if !ok {
			return nil, NewFailure(FailureKindRejected, fmt.Sprintf("DispatchOutreach: unexpected request type %T", request))
		}
		return nil, dispatcher.DispatchOutreach(ctx, req.CreatorID, req.Message, req.CampaignID)
	}

	return r
}

// UpdateCampaignRequest is the structured request of the UpdateCampaign operation.
type UpdateCampaignRequest struct {
	CampaignID string
	Patch      CampaignPatch
}

// DraftContractRequest is the structured request of the DraftContract operation.
type DraftContractRequest struct {
	CampaignID string
	CreatorID  string
	Terms      string
}

// DispatchOutreachRequest is the structured request of the DispatchOutreach operation.
type DispatchOutreachRequest struct {
	CreatorID  string
	Message    string
	CampaignID string
}

// Invoke runs a named operation with panic and error translation. The result
// error, when non-nil, is always a *Failure.
func (r *Registry) Invoke(ctx context.Context, name string, request interface{}) (result interface{}, failure *Failure) {
	op, ok := r.ops[name]
	if !ok {
		return nil, NewFailure(FailureKindNotFound, fmt.Sprintf("unknown capability %q", name))
	}

	defer func() {
		if rec := recover(); rec != nil {
			logger.Errorf("Capability '%s' panicked: %v", name, rec)
			result = nil
			failure = NewFailure(FailureKindInternal, fmt.Sprintf("capability %q panicked: %v", name, rec))
		}
	}()

	out, err := op(ctx, request)
	if err != nil {
		return nil, AsFailure(err)
	}
	return out, nil
}

// SearchCreators invokes the SearchCreators operation with a typed result.
func (r *Registry) SearchCreators(ctx context.Context, criteria SearchCriteria) ([]model.Creator, *Failure) {
	out, failure := r.Invoke(ctx, OpSearchCreators, criteria)
	if failure != nil {
		return nil, failure
	}
	creators, ok := out.([]model.Creator)
	if !ok {
		return nil, NewFailure(FailureKindInternal, fmt.Sprintf("SearchCreators: unexpected result type %T", out))
	}
	return creators, nil
}

// GetCampaignDetail invokes the GetCampaignDetail operation with a typed result.
func (r *Registry) GetCampaignDetail(ctx context.Context, campaignID string) (*model.CampaignDetail, *Failure) {
	out, failure := r.Invoke(ctx, OpGetCampaignDetail, campaignID)
	if failure != nil {
		return nil, failure
	}
	detail, ok := out.(*model.CampaignDetail)
	if !ok {
		return nil, NewFailure(FailureKindInternal, fmt.Sprintf("GetCampaignDetail: unexpected result type %T", out))
	}
	return detail, nil
}

// UpdateCampaign invokes the UpdateCampaign operation.
func (r *Registry) UpdateCampaign(ctx context.Context, campaignID string, patch CampaignPatch) *Failure {
	_, failure := r.Invoke(ctx, OpUpdateCampaign, UpdateCampaignRequest{CampaignID: campaignID, Patch: patch})
	return failure
}

// DraftContract invokes the DraftContract operation with a typed result.
func (r *Registry) DraftContract(ctx context.Context, campaignID, creatorID, terms string) (*model.ContractRef, *Failure) {
	out, failure := r.Invoke(ctx, OpDraftContract, DraftContractRequest{CampaignID: campaignID, CreatorID: creatorID, Terms: terms})
	if failure != nil {
		return nil, failure
	}
	ref, ok := out.(*model.ContractRef)
	if !ok {
		return nil, NewFailure(FailureKindInternal, fmt.Sprintf("DraftContract: unexpected result type %T", out))
	}
	return ref, nil
}

// DispatchOutreach invokes the DispatchOutreach operation.
func (r *Registry) DispatchOutreach(ctx context.Context, creatorID, message, campaignID string) *Failure {
	_, failure := r.Invoke(ctx, OpDispatchOutreach, DispatchOutreachRequest{CreatorID: creatorID, Message: message, CampaignID: campaignID})
	return failure
}

// GetCreatorAnalytics invokes the GetCreatorAnalytics operation with a typed result.
func (r *Registry) GetCreatorAnalytics(ctx context.Context, creatorID string) (*model.AnalyticsSnapshot, *Failure) {
	out, failure := r.Invoke(ctx, OpGetCreatorAnalytics, creatorID)
	if failure != nil {
		return nil, failure
	}
	snapshot, ok := out.(*model.AnalyticsSnapshot)
	if !ok {
		return nil, NewFailure(FailureKindInternal, fmt.Sprintf("GetCreatorAnalytics: unexpected result type %T", out))
	}
	return snapshot, nil
}
