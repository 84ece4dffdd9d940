package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	integration "github.com/creatorbridge/maestro/internal/integration"
	usecase "github.com/creatorbridge/maestro/pkg/automation/core/application/usecase"
	capability "github.com/creatorbridge/maestro/pkg/automation/core/capability"
	config "github.com/creatorbridge/maestro/pkg/automation/core/config"
	dispatch "github.com/creatorbridge/maestro/pkg/automation/core/dispatch"
	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
	preference "github.com/creatorbridge/maestro/pkg/automation/core/preference"
	inmemory "github.com/creatorbridge/maestro/pkg/automation/infrastructure/repository/inmemory"
)

func newSandboxService(t *testing.T) (*usecase.DefaultAutomationService, *integration.Sandbox) {
	t.Helper()
	sandbox := integration.NewSandbox()
	cfg := &config.AutomationConfig{
		ObserverBufferSize:      16,
		DefaultContractTerms:    "standard terms",
		OutreachMessageTemplate: "Hi {{creator}}, join {{campaign}}!",
	}
	service := usecase.NewDefaultAutomationService(usecase.ServiceDeps{
		Repo:     inmemory.NewInMemorySessionRepository(),
		Registry: capability.NewRegistry(sandbox, sandbox, sandbox, sandbox),
		Resolver: preference.NewResolver(),
		Engine:   dispatch.NewEngine(0, nil),
		Config:   cfg,
	})
	return service, sandbox
}

func TestContactPreferences_CoversOnlyCreatorsWithChannel(t *testing.T) {
	sandbox := integration.NewSandbox()

	prefs := sandbox.ContactPreferences("cmp_demo")
	require.Len(t, prefs, 3, "the creator without a channel is omitted")
	byCreator := make(map[string]model.ContactMethod, len(prefs))
	for _, p := range prefs {
		byCreator[p.CreatorID] = p.ContactMethod
	}
	assert.Equal(t, model.ContactMethodEmail, byCreator["cr_ava"])
	assert.Equal(t, model.ContactMethodEmail, byCreator["cr_ben"])
	assert.Equal(t, model.ContactMethodPhone, byCreator["cr_cleo"])
	assert.NotContains(t, byCreator, "cr_dia")

	assert.Empty(t, sandbox.ContactPreferences("cmp_unknown"))
}

// The seeded roster must actually be contacted once its preference sheet is
// handed to the run: three contracts drafted, two deliveries accepted and the
// unreachable creator failing without failing the session.
func TestSandboxRun_ContactsSeededRoster(t *testing.T) {
	service, sandbox := newSandboxService(t)
	ctx := context.Background()

	sessionID, err := service.StartAutomation(ctx, "cmp_demo", "usr_operator", model.ModeManual, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		session, serr := service.GetAutomationStatus(ctx, sessionID)
		return serr == nil && session.Status == model.SessionStatusCreatorsLoaded
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, service.SetCreatorPreferences(ctx, sessionID, sandbox.ContactPreferences("cmp_demo")))
	require.NoError(t, service.AdvanceManualStage(ctx, sessionID))

	session, err := service.AwaitCompletion(ctx, sessionID)
	require.NoError(t, err)

	assert.Equal(t, model.SessionStatusCompleted, session.Status)
	assert.Equal(t, 4, session.Counters.CreatorsFound)
	assert.Equal(t, 3, session.Counters.ContractsGenerated, "the creator without a channel is skipped")
	assert.Equal(t, 2, session.Counters.SuccessfulCommunications)
	assert.Equal(t, 1, session.Counters.FailedCommunications, "the unreachable creator fails per item, not the run")
	assert.Equal(t, 1, session.Counters.EmailsSent)
	assert.Equal(t, 1, session.Counters.CallsMade)
	assert.ElementsMatch(t, []string{"cr_ava", "cr_cleo"}, sandbox.Dispatches())
}
