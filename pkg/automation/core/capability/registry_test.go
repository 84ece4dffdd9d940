package capability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	capability "github.com/creatorbridge/maestro/pkg/automation/core/capability"
	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
)

type mockDirectory struct{ mock.Mock }

func (m *mockDirectory) SearchCreators(ctx context.Context, criteria capability.SearchCriteria) ([]model.Creator, error) {
	args := m.Called(ctx, criteria)
	if v := args.Get(0); v != nil {
		return v.([]model.Creator), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDirectory) GetCreatorAnalytics(ctx context.Context, creatorID string) (*model.AnalyticsSnapshot, error) {
	args := m.Called(ctx, creatorID)
	if v := args.Get(0); v != nil {
		return v.(*model.AnalyticsSnapshot), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCampaigns struct{ mock.Mock }

func (m *mockCampaigns) GetCampaignDetail(ctx context.Context, campaignID string) (*model.CampaignDetail, error) {
	args := m.Called(ctx, campaignID)
	if v := args.Get(0); v != nil {
		return v.(*model.CampaignDetail), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCampaigns) UpdateCampaign(ctx context.Context, campaignID string, patch capability.CampaignPatch) error {
	args := m.Called(ctx, campaignID, patch)
	return args.Error(0)
}

type mockContracts struct{ mock.Mock }

func (m *mockContracts) DraftContract(ctx context.Context, campaignID, creatorID, terms string) (*model.ContractRef, error) {
	args := m.Called(ctx, campaignID, creatorID, terms)
	if v := args.Get(0); v != nil {
		return v.(*model.ContractRef), args.Error(1)
	}
	return nil, args.Error(1)
}

type panickingContracts struct{}

func (panickingContracts) DraftContract(ctx context.Context, campaignID, creatorID, terms string) (*model.ContractRef, error) {
	panic("document renderer exploded")
}

type mockDispatcher struct{ mock.Mock }

func (m *mockDispatcher) DispatchOutreach(ctx context.Context, creatorID, message, campaignID string) error {
	args := m.Called(ctx, creatorID, message, campaignID)
	return args.Error(0)
}

func newTestRegistry(t *testing.T) (*capability.Registry, *mockDirectory, *mockCampaigns, *mockContracts, *mockDispatcher) {
	t.Helper()
	dir := new(mockDirectory)
	camp := new(mockCampaigns)
	con := new(mockContracts)
	disp := new(mockDispatcher)
	return capability.NewRegistry(dir, camp, con, disp), dir, camp, con, disp
}

func TestRegistry_SearchCreators(t *testing.T) {
	registry, dir, _, _, _ := newTestRegistry(t)
	want := []model.Creator{{ID: "cr_1", Name: "Alex"}}
	dir.On("SearchCreators", mock.Anything, mock.Anything).Return(want, nil)

	got, failure := registry.SearchCreators(context.Background(), capability.SearchCriteria{CampaignID: "cmp_1"})
	require.Nil(t, failure)
	assert.Equal(t, want, got)
	dir.AssertExpectations(t)
}

func TestRegistry_TranslatesErrorsToTypedFailures(t *testing.T) {
	registry, _, _, _, disp := newTestRegistry(t)
	disp.On("DispatchOutreach", mock.Anything, "cr_1", "hello", "cmp_1").Return(assert.AnError)

	failure := registry.DispatchOutreach(context.Background(), "cr_1", "hello", "cmp_1")
	require.NotNil(t, failure)
	assert.Equal(t, capability.FailureKindInternal, failure.Kind)
	assert.Contains(t, failure.Message, assert.AnError.Error())
}

func TestRegistry_PreservesTypedFailureKind(t *testing.T) {
	registry, _, camp, _, _ := newTestRegistry(t)
	camp.On("GetCampaignDetail", mock.Anything, "cmp_missing").
		Return(nil, capability.NewFailure(capability.FailureKindNotFound, "no such campaign"))

	_, failure := registry.GetCampaignDetail(context.Background(), "cmp_missing")
	require.NotNil(t, failure)
	assert.Equal(t, capability.FailureKindNotFound, failure.Kind)
}

func TestRegistry_RecoversPanicsAsInternalFailures(t *testing.T) {
	dir := new(mockDirectory)
	camp := new(mockCampaigns)
	disp := new(mockDispatcher)
	registry := capability.NewRegistry(dir, camp, panickingContracts{}, disp)

	ref, failure := registry.DraftContract(context.Background(), "cmp_1", "cr_1", "terms")
	assert.Nil(t, ref)
	require.NotNil(t, failure)
	assert.Equal(t, capability.FailureKindInternal, failure.Kind)
	assert.Contains(t, failure.Message, "panicked")
}

func TestRegistry_UnknownOperation(t *testing.T) {
	registry, _, _, _, _ := newTestRegistry(t)
	_, failure := registry.Invoke(context.Background(), "TeleportCreator", nil)
	require.NotNil(t, failure)
	assert.Equal(t, capability.FailureKindNotFound, failure.Kind)
}

func TestRegistry_RejectsWrongRequestType(t *testing.T) {
	registry, _, _, _, _ := newTestRegistry(t)
	_, failure := registry.Invoke(context.Background(), capability.OpSearchCreators, 42)
	require.NotNil(t, failure)
	assert.Equal(t, capability.FailureKindRejected, failure.Kind)
}
