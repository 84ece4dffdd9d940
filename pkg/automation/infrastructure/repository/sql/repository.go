package sql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	gormadapter "github.com/creatorbridge/maestro/pkg/automation/adapter/database/gorm"
	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
	repository "github.com/creatorbridge/maestro/pkg/automation/core/domain/repository"
	exception "github.com/creatorbridge/maestro/pkg/automation/support/util/exception"
	logger "github.com/creatorbridge/maestro/pkg/automation/support/util/logger"
)

const moduleName = "sql_session_repository"

// terminalStatuses are the statuses that release the per-campaign claim.
var terminalStatuses = []string{
	model.SessionStatusCompleted.String(),
	model.SessionStatusFailed.String(),
	model.SessionStatusCancelled.String(),
}

// SQLSessionRepository implements repository.SessionRepository on a
// relational database through GORM.
type SQLSessionRepository struct {
	conn *gormadapter.SessionDB
}

var _ repository.SessionRepository = (*SQLSessionRepository)(nil)

// NewSQLSessionRepository creates a new SQLSessionRepository.
func NewSQLSessionRepository(conn *gormadapter.SessionDB) *SQLSessionRepository {
	return &SQLSessionRepository{conn: conn}
}

// SaveSession inserts a new session row. The check for an existing running
// session and the insert run inside one transaction so that two concurrent
// starts for the same campaign cannot both win the claim.
func (r *SQLSessionRepository) SaveSession(ctx context.Context, session *model.AutomationSession) error {
	err := r.conn.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var running int64
		if err := tx.Model(&SessionEntity{}).
			Where("campaign_id = ? AND status NOT IN ?", session.CampaignID, terminalStatuses).
			Count(&running).Error; err != nil {
			return fmt.Errorf("failed to check for running sessions: %w", err)
		}
		if running > 0 {
			return repository.ErrSessionAlreadyRunning
		}
		if err := tx.Create(toSessionEntity(session)).Error; err != nil {
			return fmt.Errorf("failed to insert session '%s': %w", session.ID, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrSessionAlreadyRunning) {
			return err
		}
		return exception.New(moduleName, "failed to save session", err, exception.KindFatal)
	}
	logger.Debugf("Saved session '%s' for campaign '%s'.", session.ID, session.CampaignID)
	return nil
}

// UpdateSession updates the mutable fields of a session row using optimistic
// locking on the version column. The step and error log columns are owned by
// AppendStep and AppendError and are deliberately left out of the update.
func (r *SQLSessionRepository) UpdateSession(ctx context.Context, session *model.AutomationSession) error {
	originalVersion := session.Version
	now := time.Now()

	res := r.conn.DB.WithContext(ctx).Model(&SessionEntity{}).
		Where("id = ? AND version = ?", session.ID, originalVersion).
		Updates(map[string]interface{}{
			"status":                    session.Status.String(),
			"total_steps":               session.TotalSteps,
			"completed_steps":           session.CompletedSteps,
			"current_step":              session.CurrentStep,
			"creators_found":            session.Counters.CreatorsFound,
			"creators_contacted":        session.Counters.CreatorsContacted,
			"contracts_generated":       session.Counters.ContractsGenerated,
			"contracts_sent":            session.Counters.ContractsSent,
			"emails_sent":               session.Counters.EmailsSent,
			"calls_made":                session.Counters.CallsMade,
			"successful_communications": session.Counters.SuccessfulCommunications,
			"failed_communications":     session.Counters.FailedCommunications,
			"metrics":                   session.Metrics,
			"end_time":                  session.EndTime,
			"last_updated":              now,
			"version":                   originalVersion + 1,
		})
	if res.Error != nil {
		return exception.New(moduleName, fmt.Sprintf("failed to update session '%s'", session.ID), res.Error, exception.KindFatal)
	}
	if res.RowsAffected == 0 {
		return exception.NewOptimisticLockError(moduleName,
			fmt.Sprintf("session '%s' was modified concurrently (version %d)", session.ID, originalVersion), nil)
	}

	session.Version = originalVersion + 1
	session.LastUpdated = now
	return nil
}

// AppendStep appends one closed step record to the session's step log.
func (r *SQLSessionRepository) AppendStep(ctx context.Context, sessionID string, record *model.StepRecord) error {
	entity, err := r.findEntity(ctx, sessionID)
	if err != nil {
		return err
	}
	res := r.conn.DB.WithContext(ctx).Model(&SessionEntity{}).
		Where("id = ?", sessionID).
		Update("step_log", entity.StepLog.Append(record))
	if res.Error != nil {
		return exception.New(moduleName, fmt.Sprintf("failed to append step to session '%s'", sessionID), res.Error, exception.KindFatal)
	}
	return nil
}

// AppendError appends one error record to the session's error log.
func (r *SQLSessionRepository) AppendError(ctx context.Context, sessionID string, record *model.ErrorRecord) error {
	entity, err := r.findEntity(ctx, sessionID)
	if err != nil {
		return err
	}
	res := r.conn.DB.WithContext(ctx).Model(&SessionEntity{}).
		Where("id = ?", sessionID).
		Update("error_log", entity.ErrorLog.Append(record))
	if res.Error != nil {
		return exception.New(moduleName, fmt.Sprintf("failed to append error to session '%s'", sessionID), res.Error, exception.KindFatal)
	}
	return nil
}

// FindSessionByID loads one session, or repository.ErrSessionNotFound.
func (r *SQLSessionRepository) FindSessionByID(ctx context.Context, sessionID string) (*model.AutomationSession, error) {
	entity, err := r.findEntity(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return toDomainSession(entity), nil
}

// FindLatestSessionByCampaign loads the most recently started session for a
// campaign, or repository.ErrSessionNotFound.
func (r *SQLSessionRepository) FindLatestSessionByCampaign(ctx context.Context, campaignID string) (*model.AutomationSession, error) {
	var entity SessionEntity
	err := r.conn.DB.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("start_time DESC").
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}
		return nil, exception.New(moduleName, fmt.Sprintf("failed to load latest session for campaign '%s'", campaignID), err, exception.KindFatal)
	}
	return toDomainSession(&entity), nil
}

// FindSessionsByCampaign loads all sessions for a campaign, most recent first.
func (r *SQLSessionRepository) FindSessionsByCampaign(ctx context.Context, campaignID string) ([]*model.AutomationSession, error) {
	var entities []SessionEntity
	err := r.conn.DB.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("start_time DESC").
		Find(&entities).Error
	if err != nil {
		return nil, exception.New(moduleName, fmt.Sprintf("failed to load sessions for campaign '%s'", campaignID), err, exception.KindFatal)
	}
	sessions := make([]*model.AutomationSession, 0, len(entities))
	for i := range entities {
		sessions = append(sessions, toDomainSession(&entities[i]))
	}
	return sessions, nil
}

// Close closes the underlying database connection.
func (r *SQLSessionRepository) Close() error {
	return r.conn.Close()
}

func (r *SQLSessionRepository) findEntity(ctx context.Context, sessionID string) (*SessionEntity, error) {
	var entity SessionEntity
	err := r.conn.DB.WithContext(ctx).Where("id = ?", sessionID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}
		return nil, exception.New(moduleName, fmt.Sprintf("failed to load session '%s'", sessionID), err, exception.KindFatal)
	}
	return &entity, nil
}
