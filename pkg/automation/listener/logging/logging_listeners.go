package logging

import (
	"context"

	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
	listener "github.com/creatorbridge/maestro/pkg/automation/listener"
	logger "github.com/creatorbridge/maestro/pkg/automation/support/util/logger"
)

// --- Session Execution Listener ---

type LoggingSessionListener struct{}

func NewLoggingSessionListener() listener.SessionExecutionListener {
	return &LoggingSessionListener{}
}

func (l *LoggingSessionListener) BeforeSession(ctx context.Context, session *model.AutomationSession) {
	logger.Infof("SessionExecutionListener: BeforeSession - Campaign: %s, ID: %s, Mode: %s", session.CampaignID, session.ID, session.Mode)
}

func (l *LoggingSessionListener) AfterSession(ctx context.Context, session *model.AutomationSession) {
	logger.Infof("SessionExecutionListener: AfterSession - Campaign: %s, ID: %s, Status: %s, Steps: %d/%d, Errors: %d",
		session.CampaignID, session.ID, session.Status, session.CompletedSteps, session.TotalSteps, len(session.ErrorLog))
}

var _ listener.SessionExecutionListener = (*LoggingSessionListener)(nil)

// --- Stage Execution Listener ---

type LoggingStageListener struct{}

func NewLoggingStageListener() listener.StageExecutionListener {
	return &LoggingStageListener{}
}

func (l *LoggingStageListener) BeforeStage(ctx context.Context, sessionID string, record *model.StepRecord) {
	logger.Infof("StageExecutionListener: BeforeStage - Session: %s, Step: %s", sessionID, record.StepName)
}

func (l *LoggingStageListener) AfterStage(ctx context.Context, sessionID string, record *model.StepRecord) {
	logger.Infof("StageExecutionListener: AfterStage - Session: %s, Step: %s, Status: %s, Duration: %dms",
		sessionID, record.StepName, record.Status, record.DurationMs)
}

var _ listener.StageExecutionListener = (*LoggingStageListener)(nil)
