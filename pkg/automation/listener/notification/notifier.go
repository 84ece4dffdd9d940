package notification

import (
	"context"
	"fmt"
	"time"

	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
	listener "github.com/creatorbridge/maestro/pkg/automation/listener"
	logger "github.com/creatorbridge/maestro/pkg/automation/support/util/logger"
)

// LogNotifier is a Notifier implementation that only logs notifications.
// Real delivery channels (mail, chat webhooks) replace it in deployment
// wiring.
type LogNotifier struct{}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier() listener.Notifier {
	logger.Infof("Notification: Initializing log-only notifier.")
	return &LogNotifier{}
}

// NotifySessionCompletion logs the terminal state of a session.
func (n *LogNotifier) NotifySessionCompletion(ctx context.Context, session *model.AutomationSession) {
	duration := time.Duration(0)
	if session.EndTime != nil {
		duration = session.EndTime.Sub(session.StartTime)
	}

	message := fmt.Sprintf(
		"Session Notification: Campaign '%s' session '%s' finished with Status: %s. Duration: %s, Contacted: %d, Failures: %d",
		session.CampaignID,
		session.ID,
		session.Status,
		duration,
		session.Counters.CreatorsContacted,
		len(session.ErrorLog),
	)

	if session.Status == model.SessionStatusCompleted {
		logger.Infof(message)
	} else {
		logger.Warnf(message)
	}
}

var _ listener.Notifier = (*LogNotifier)(nil)

// NotifyingSessionListener adapts a Notifier to the SessionExecutionListener
// interface so notifications ride the normal listener chain.
type NotifyingSessionListener struct {
	notifier listener.Notifier
}

// NewNotifyingSessionListener creates a new NotifyingSessionListener.
func NewNotifyingSessionListener(notifier listener.Notifier) listener.SessionExecutionListener {
	return &NotifyingSessionListener{notifier: notifier}
}

// BeforeSession does nothing.
func (l *NotifyingSessionListener) BeforeSession(ctx context.Context, session *model.AutomationSession) {
}

// AfterSession sends the completion notification.
func (l *NotifyingSessionListener) AfterSession(ctx context.Context, session *model.AutomationSession) {
	l.notifier.NotifySessionCompletion(ctx, session)
}

var _ listener.SessionExecutionListener = (*NotifyingSessionListener)(nil)
