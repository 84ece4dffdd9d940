package sql_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	gormadapter "github.com/creatorbridge/maestro/pkg/automation/adapter/database/gorm"
	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
	repository "github.com/creatorbridge/maestro/pkg/automation/core/domain/repository"
	sqlrepo "github.com/creatorbridge/maestro/pkg/automation/infrastructure/repository/sql"
	exception "github.com/creatorbridge/maestro/pkg/automation/support/util/exception"
)

// setupRepo builds a repository backed by a mocked MySQL connection.
func setupRepo(t *testing.T) (sqlmock.Sqlmock, *sqlrepo.SQLSessionRepository) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	conn := &gormadapter.SessionDB{DB: gormDB, Type: "mysql", Name: "audit"}
	repo := sqlrepo.NewSQLSessionRepository(conn)
	t.Cleanup(func() {
		mock.ExpectClose()
		_ = repo.Close()
	})

	return mock, repo
}

func sessionRows(session *model.AutomationSession) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "campaign_id", "user_id", "mode", "status", "step_log", "error_log", "version"}).
		AddRow(session.ID, session.CampaignID, session.UserID, session.Mode.String(), session.Status.String(), []byte("[]"), []byte("[]"), session.Version)
}

func TestSQLSessionRepository_SaveSession(t *testing.T) {
	mock, repo := setupRepo(t)
	session := model.NewAutomationSession("cmp_1", "usr_1", model.ModeAutomatic)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count").
		WithArgs("cmp_1", "COMPLETED", "FAILED", "CANCELLED").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectExec("INSERT INTO `automation_session`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SaveSession(context.Background(), session))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSessionRepository_SaveSession_RejectsRunningCampaign(t *testing.T) {
	mock, repo := setupRepo(t)
	session := model.NewAutomationSession("cmp_1", "usr_1", model.ModeAutomatic)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.SaveSession(context.Background(), session)
	assert.ErrorIs(t, err, repository.ErrSessionAlreadyRunning)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSessionRepository_UpdateSession_BumpsVersion(t *testing.T) {
	mock, repo := setupRepo(t)
	session := model.NewAutomationSession("cmp_1", "usr_1", model.ModeAutomatic)
	session.Version = 3

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `automation_session` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateSession(context.Background(), session))
	assert.Equal(t, 4, session.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSessionRepository_UpdateSession_OptimisticLockFailure(t *testing.T) {
	mock, repo := setupRepo(t)
	session := model.NewAutomationSession("cmp_1", "usr_1", model.ModeAutomatic)
	session.Version = 2

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `automation_session` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.UpdateSession(context.Background(), session)
	require.Error(t, err)
	assert.True(t, exception.IsOptimisticLock(err))
	// The in-memory version must stay untouched when the update loses.
	assert.Equal(t, 2, session.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSessionRepository_AppendStep_RewritesWholeLog(t *testing.T) {
	mock, repo := setupRepo(t)
	session := model.NewAutomationSession("cmp_1", "usr_1", model.ModeAutomatic)

	mock.ExpectQuery("SELECT \\* FROM `automation_session` WHERE id = \\?").
		WillReturnRows(sessionRows(session))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `automation_session` SET `step_log`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	record := model.NewStepRecord(model.StepTypeInitialization, "Initialization")
	record.Complete()

	require.NoError(t, repo.AppendStep(context.Background(), session.ID, record))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSessionRepository_FindSessionByID_NotFound(t *testing.T) {
	mock, repo := setupRepo(t)

	mock.ExpectQuery("SELECT \\* FROM `automation_session` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindSessionByID(context.Background(), "ses_missing")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSessionRepository_FindSessionsByCampaign(t *testing.T) {
	mock, repo := setupRepo(t)
	session := model.NewAutomationSession("cmp_1", "usr_1", model.ModeManual)

	mock.ExpectQuery("SELECT \\* FROM `automation_session` WHERE campaign_id = \\?").
		WithArgs("cmp_1").
		WillReturnRows(sessionRows(session))

	sessions, err := repo.FindSessionsByCampaign(context.Background(), "cmp_1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, session.ID, sessions[0].ID)
	assert.Equal(t, model.ModeManual, sessions[0].Mode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
