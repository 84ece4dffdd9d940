package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	usecase "github.com/creatorbridge/maestro/pkg/automation/core/application/usecase"
	capability "github.com/creatorbridge/maestro/pkg/automation/core/capability"
	config "github.com/creatorbridge/maestro/pkg/automation/core/config"
	dispatch "github.com/creatorbridge/maestro/pkg/automation/core/dispatch"
	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
	preference "github.com/creatorbridge/maestro/pkg/automation/core/preference"
	exception "github.com/creatorbridge/maestro/pkg/automation/support/util/exception"
	inmemory "github.com/creatorbridge/maestro/pkg/automation/infrastructure/repository/inmemory"
	listener "github.com/creatorbridge/maestro/pkg/automation/listener"
)

type fakeIntegrations struct {
	mu       sync.Mutex
	creators []model.Creator
}

func (f *fakeIntegrations) SearchCreators(ctx context.Context, criteria capability.SearchCriteria) ([]model.Creator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creators, nil
}

func (f *fakeIntegrations) GetCreatorAnalytics(ctx context.Context, creatorID string) (*model.AnalyticsSnapshot, error) {
	return &model.AnalyticsSnapshot{CreatorID: creatorID}, nil
}

func (f *fakeIntegrations) GetCampaignDetail(ctx context.Context, campaignID string) (*model.CampaignDetail, error) {
	return &model.CampaignDetail{ID: campaignID, Name: "Launch"}, nil
}

func (f *fakeIntegrations) UpdateCampaign(ctx context.Context, campaignID string, patch capability.CampaignPatch) error {
	return nil
}

func (f *fakeIntegrations) DraftContract(ctx context.Context, campaignID, creatorID, terms string) (*model.ContractRef, error) {
	return &model.ContractRef{ContractID: "con_" + creatorID, CreatorID: creatorID, CampaignID: campaignID}, nil
}

func (f *fakeIntegrations) DispatchOutreach(ctx context.Context, creatorID, message, campaignID string) error {
	return nil
}

func newService(t *testing.T) (*usecase.DefaultAutomationService, *fakeIntegrations, *listener.StatePublisher) {
	t.Helper()
	integrations := &fakeIntegrations{creators: []model.Creator{
		{ID: "cr_1", Name: "Alex", ContactPreference: model.ContactMethodEmail},
	}}
	publisher := listener.NewStatePublisher(64)
	t.Cleanup(publisher.Close)

	cfg := &config.AutomationConfig{
		ObserverBufferSize:      64,
		DefaultContractTerms:    "terms",
		OutreachMessageTemplate: "Hi {{creator}}",
	}
	service := usecase.NewDefaultAutomationService(usecase.ServiceDeps{
		Repo:      inmemory.NewInMemorySessionRepository(),
		Registry:  capability.NewRegistry(integrations, integrations, integrations, integrations),
		Resolver:  preference.NewResolver(),
		Engine:    dispatch.NewEngine(0, nil),
		Publisher: publisher,
		Config:    cfg,
	})
	return service, integrations, publisher
}

func TestStartAutomation_RunsToCompletion(t *testing.T) {
	service, _, _ := newService(t)
	ctx := context.Background()

	sessionID, err := service.StartAutomation(ctx, "cmp_1", "usr_1", model.ModeAutomatic, nil)
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)

	session, err := service.AwaitCompletion(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusCompleted, session.Status)
	assert.Len(t, session.StepLog, 5)
}

func TestStartAutomation_RejectsSecondRunForSameCampaign(t *testing.T) {
	service, _, _ := newService(t)
	ctx := context.Background()

	sessionID, err := service.StartAutomation(ctx, "cmp_1", "usr_1", model.ModeManual, nil)
	require.NoError(t, err)

	_, err = service.StartAutomation(ctx, "cmp_1", "usr_2", model.ModeAutomatic, nil)
	require.Error(t, err)
	assert.True(t, exception.IsConflict(err))

	// A different campaign is unaffected.
	otherID, err := service.StartAutomation(ctx, "cmp_2", "usr_1", model.ModeAutomatic, nil)
	require.NoError(t, err)

	_, err = service.AwaitCompletion(ctx, otherID)
	require.NoError(t, err)
	require.NoError(t, service.CancelAutomation(ctx, sessionID))
	_, err = service.AwaitCompletion(ctx, sessionID)
	require.NoError(t, err)
}

func TestStartAutomation_AllowsNewRunAfterCompletion(t *testing.T) {
	service, _, _ := newService(t)
	ctx := context.Background()

	first, err := service.StartAutomation(ctx, "cmp_1", "usr_1", model.ModeAutomatic, nil)
	require.NoError(t, err)
	_, err = service.AwaitCompletion(ctx, first)
	require.NoError(t, err)

	second, err := service.StartAutomation(ctx, "cmp_1", "usr_1", model.ModeAutomatic, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestStartAutomation_ValidatesInput(t *testing.T) {
	service, _, _ := newService(t)
	ctx := context.Background()

	_, err := service.StartAutomation(ctx, "", "usr_1", model.ModeAutomatic, nil)
	assert.Error(t, err)

	_, err = service.StartAutomation(ctx, "cmp_1", "", model.ModeAutomatic, nil)
	assert.Error(t, err)

	_, err = service.StartAutomation(ctx, "cmp_1", "usr_1", model.SessionMode("TURBO"), nil)
	assert.Error(t, err)
}

func TestObserver_ReceivesOnlyItsSessionStates(t *testing.T) {
	service, _, _ := newService(t)
	ctx := context.Background()

	var mu sync.Mutex
	var seen []model.SessionStatus
	observer := listener.StateObserverFunc(func(state *model.CampaignState) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, state.Status)
	})

	sessionID, err := service.StartAutomation(ctx, "cmp_1", "usr_1", model.ModeAutomatic, observer)
	require.NoError(t, err)
	_, err = service.AwaitCompletion(ctx, sessionID)
	require.NoError(t, err)

	// A second campaign's run must not leak into the first observer.
	otherID, err := service.StartAutomation(ctx, "cmp_2", "usr_1", model.ModeAutomatic, nil)
	require.NoError(t, err)
	_, err = service.AwaitCompletion(ctx, otherID)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0 && seen[len(seen)-1] == model.SessionStatusCompleted
	}, 2*time.Second, 5*time.Millisecond)
}

func TestManualFlow_AdvanceViaService(t *testing.T) {
	service, _, _ := newService(t)
	ctx := context.Background()

	sessionID, err := service.StartAutomation(ctx, "cmp_1", "usr_1", model.ModeManual, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		session, serr := service.GetAutomationStatus(ctx, sessionID)
		return serr == nil && session.Status == model.SessionStatusCreatorsLoaded
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, service.SetCreatorPreferences(ctx, sessionID, []model.CreatorContactPreference{
		{CreatorID: "cr_1", ContactMethod: model.ContactMethodPhone},
	}))

	require.NoError(t, service.AdvanceManualStage(ctx, sessionID))

	session, err := service.AwaitCompletion(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusCompleted, session.Status)
	assert.Equal(t, 1, session.Counters.CallsMade)
}

func TestComputeReport_FromService(t *testing.T) {
	service, _, _ := newService(t)
	ctx := context.Background()

	sessionID, err := service.StartAutomation(ctx, "cmp_1", "usr_1", model.ModeAutomatic, nil)
	require.NoError(t, err)
	_, err = service.AwaitCompletion(ctx, sessionID)
	require.NoError(t, err)

	report, err := service.ComputeReport(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 5, report.TotalSteps)
	assert.Equal(t, 5, report.CompletedSteps)
	assert.InDelta(t, 100.0, report.SuccessRate, 0.001)
}

func TestGetReport_UsesLatestSession(t *testing.T) {
	service, _, _ := newService(t)
	ctx := context.Background()

	first, err := service.StartAutomation(ctx, "cmp_1", "usr_1", model.ModeAutomatic, nil)
	require.NoError(t, err)
	_, err = service.AwaitCompletion(ctx, first)
	require.NoError(t, err)

	// The second run is cancelled during its manual halt, so the latest
	// session finished fewer steps than the first.
	second, err := service.StartAutomation(ctx, "cmp_1", "usr_1", model.ModeManual, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		session, serr := service.GetAutomationStatus(ctx, second)
		return serr == nil && session.Status == model.SessionStatusCreatorsLoaded
	}, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, service.CancelAutomation(ctx, second))
	_, err = service.AwaitCompletion(ctx, second)
	require.NoError(t, err)

	report, err := service.GetReport(ctx, "cmp_1")
	require.NoError(t, err)
	assert.Equal(t, 2, report.CompletedSteps, "the report reflects the cancelled run, not the completed one")

	_, err = service.GetReport(ctx, "cmp_unknown")
	require.Error(t, err)
}

func TestGetHistory_ListsAllRuns(t *testing.T) {
	service, _, _ := newService(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		sessionID, err := service.StartAutomation(ctx, "cmp_1", "usr_1", model.ModeAutomatic, nil)
		require.NoError(t, err)
		_, err = service.AwaitCompletion(ctx, sessionID)
		require.NoError(t, err)
	}

	history, err := service.GetHistory(ctx, "cmp_1")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
