package archive

import (
	"context"

	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
	listener "github.com/creatorbridge/maestro/pkg/automation/listener"
	logger "github.com/creatorbridge/maestro/pkg/automation/support/util/logger"
)

// ArchivingSessionListener exports the audit trail of every terminal session.
// Export failures are logged, never propagated; archiving is best-effort and
// must not affect the session outcome.
type ArchivingSessionListener struct {
	exporter *Exporter
}

var _ listener.SessionExecutionListener = (*ArchivingSessionListener)(nil)

// NewArchivingSessionListener creates a new ArchivingSessionListener.
func NewArchivingSessionListener(exporter *Exporter) *ArchivingSessionListener {
	return &ArchivingSessionListener{exporter: exporter}
}

// BeforeSession does nothing.
func (l *ArchivingSessionListener) BeforeSession(ctx context.Context, session *model.AutomationSession) {
}

// AfterSession archives the session once it has reached a terminal state.
func (l *ArchivingSessionListener) AfterSession(ctx context.Context, session *model.AutomationSession) {
	if !session.Status.IsTerminal() {
		return
	}
	if err := l.exporter.Export(ctx, session); err != nil {
		logger.Errorf("Failed to archive session '%s': %v", session.ID, err)
	}
}
