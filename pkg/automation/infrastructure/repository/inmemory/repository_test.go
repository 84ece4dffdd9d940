package inmemory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
	repository "github.com/creatorbridge/maestro/pkg/automation/core/domain/repository"
	inmemory "github.com/creatorbridge/maestro/pkg/automation/infrastructure/repository/inmemory"
)

func TestSaveSession_RejectsSecondRunningSessionPerCampaign(t *testing.T) {
	repo := inmemory.NewInMemorySessionRepository()
	ctx := context.Background()

	first := model.NewAutomationSession("cmp_1", "usr_1", model.ModeAutomatic)
	require.NoError(t, repo.SaveSession(ctx, first))

	second := model.NewAutomationSession("cmp_1", "usr_2", model.ModeAutomatic)
	err := repo.SaveSession(ctx, second)
	assert.ErrorIs(t, err, repository.ErrSessionAlreadyRunning)

	other := model.NewAutomationSession("cmp_2", "usr_1", model.ModeAutomatic)
	assert.NoError(t, repo.SaveSession(ctx, other))
}

func TestSaveSession_AllowsNewRunAfterTerminalState(t *testing.T) {
	repo := inmemory.NewInMemorySessionRepository()
	ctx := context.Background()

	first := model.NewAutomationSession("cmp_1", "usr_1", model.ModeAutomatic)
	require.NoError(t, repo.SaveSession(ctx, first))
	first.MarkAsFailed()
	require.NoError(t, repo.UpdateSession(ctx, first))

	second := model.NewAutomationSession("cmp_1", "usr_1", model.ModeAutomatic)
	assert.NoError(t, repo.SaveSession(ctx, second))
}

func TestAppendStep_LogLengthMatchesAppendCalls(t *testing.T) {
	repo := inmemory.NewInMemorySessionRepository()
	ctx := context.Background()

	session := model.NewAutomationSession("cmp_1", "usr_1", model.ModeAutomatic)
	require.NoError(t, repo.SaveSession(ctx, session))

	for i, stepType := range model.PipelineStepTypes {
		record := model.NewStepRecord(stepType, stepType.String())
		record.Complete()
		require.NoError(t, repo.AppendStep(ctx, session.ID, record))

		loaded, err := repo.FindSessionByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Len(t, loaded.StepLog, i+1)
	}
}

func TestAppendError_IsIndependentFromStepLog(t *testing.T) {
	repo := inmemory.NewInMemorySessionRepository()
	ctx := context.Background()

	session := model.NewAutomationSession("cmp_1", "usr_1", model.ModeAutomatic)
	require.NoError(t, repo.SaveSession(ctx, session))

	require.NoError(t, repo.AppendError(ctx, session.ID, model.NewErrorRecord("DISPATCH_FAILURE", "boom", "OUTREACH")))

	loaded, err := repo.FindSessionByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.ErrorLog, 1)
	assert.Empty(t, loaded.StepLog)
}

func TestUpdateSession_PreservesLogsAndBumpsVersion(t *testing.T) {
	repo := inmemory.NewInMemorySessionRepository()
	ctx := context.Background()

	session := model.NewAutomationSession("cmp_1", "usr_1", model.ModeAutomatic)
	require.NoError(t, repo.SaveSession(ctx, session))

	record := model.NewStepRecord(model.StepTypeInitialization, "Initialization")
	record.Complete()
	require.NoError(t, repo.AppendStep(ctx, session.ID, record))

	session.Counters.CreatorsFound = 3
	session.CurrentStep = "Creator Search"
	require.NoError(t, repo.UpdateSession(ctx, session))
	assert.Equal(t, 1, session.Version)

	loaded, err := repo.FindSessionByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Counters.CreatorsFound)
	assert.Len(t, loaded.StepLog, 1, "counter updates must not clobber the audit log")
}

func TestFindSessionByID_ReturnsCopy(t *testing.T) {
	repo := inmemory.NewInMemorySessionRepository()
	ctx := context.Background()

	session := model.NewAutomationSession("cmp_1", "usr_1", model.ModeAutomatic)
	require.NoError(t, repo.SaveSession(ctx, session))

	loaded, err := repo.FindSessionByID(ctx, session.ID)
	require.NoError(t, err)
	loaded.Counters.CreatorsFound = 99

	reloaded, err := repo.FindSessionByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Zero(t, reloaded.Counters.CreatorsFound)
}

func TestFindLatestSessionByCampaign(t *testing.T) {
	repo := inmemory.NewInMemorySessionRepository()
	ctx := context.Background()

	old := model.NewAutomationSession("cmp_1", "usr_1", model.ModeAutomatic)
	old.StartTime = time.Now().Add(-time.Hour)
	old.MarkAsCompleted()
	require.NoError(t, repo.SaveSession(ctx, old))

	recent := model.NewAutomationSession("cmp_1", "usr_1", model.ModeAutomatic)
	require.NoError(t, repo.SaveSession(ctx, recent))

	latest, err := repo.FindLatestSessionByCampaign(ctx, "cmp_1")
	require.NoError(t, err)
	assert.Equal(t, recent.ID, latest.ID)

	_, err = repo.FindLatestSessionByCampaign(ctx, "cmp_unknown")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestFindSessionsByCampaign_MostRecentFirst(t *testing.T) {
	repo := inmemory.NewInMemorySessionRepository()
	ctx := context.Background()

	old := model.NewAutomationSession("cmp_1", "usr_1", model.ModeAutomatic)
	old.StartTime = time.Now().Add(-time.Hour)
	old.MarkAsCancelled()
	require.NoError(t, repo.SaveSession(ctx, old))

	recent := model.NewAutomationSession("cmp_1", "usr_1", model.ModeManual)
	require.NoError(t, repo.SaveSession(ctx, recent))

	sessions, err := repo.FindSessionsByCampaign(ctx, "cmp_1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, recent.ID, sessions[0].ID)
	assert.Equal(t, old.ID, sessions[1].ID)
}
