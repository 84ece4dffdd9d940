package archive

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	config "github.com/creatorbridge/maestro/pkg/automation/core/config"
	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
	logger "github.com/creatorbridge/maestro/pkg/automation/support/util/logger"
)

// stepRow is the flattened Parquet representation of one step record.
type stepRow struct {
	SessionID    string `parquet:"name=session_id,type=BYTE_ARRAY,convertedtype=UTF8"`
	CampaignID   string `parquet:"name=campaign_id,type=BYTE_ARRAY,convertedtype=UTF8"`
	StepName     string `parquet:"name=step_name,type=BYTE_ARRAY,convertedtype=UTF8"`
	StepType     string `parquet:"name=step_type,type=BYTE_ARRAY,convertedtype=UTF8"`
	Status       string `parquet:"name=status,type=BYTE_ARRAY,convertedtype=UTF8"`
	StartedAt    int64  `parquet:"name=started_at,type=INT64,convertedtype=TIMESTAMP_MILLIS"`
	CompletedAt  int64  `parquet:"name=completed_at,type=INT64,convertedtype=TIMESTAMP_MILLIS"`
	DurationMs   int64  `parquet:"name=duration_ms,type=INT64"`
	ErrorMessage string `parquet:"name=error_message,type=BYTE_ARRAY,convertedtype=UTF8"`
}

// Exporter converts the audit trail of a finished session into a Parquet
// object and uploads it to the configured storage backend.
type Exporter struct {
	storage Storage
	prefix  string
}

// NewExporter creates an Exporter writing under the configured object prefix.
func NewExporter(storage Storage, cfg *config.ArchiveConfig) *Exporter {
	return &Exporter{storage: storage, prefix: cfg.Prefix}
}

// Export archives the session's step log. The object is partitioned by the
// session's start date so downstream engines can prune by day.
func (e *Exporter) Export(ctx context.Context, session *model.AutomationSession) error {
	if len(session.StepLog) == 0 {
		logger.Warnf("Session '%s' has no step records to archive.", session.ID)
		return nil
	}

	buf := new(bytes.Buffer)
	pw, err := writer.NewParquetWriterFromWriter(buf, new(stepRow), 1)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer for session '%s': %w", session.ID, err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, record := range session.StepLog {
		if err := pw.Write(toStepRow(session, record)); err != nil {
			return fmt.Errorf("failed to write step record '%s' to parquet: %w", record.ID, err)
		}
	}

	// WriteStop can panic inside the parquet library; contain it.
	var stopErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				stopErr = fmt.Errorf("parquet writer panicked: %v", r)
			}
		}()
		stopErr = pw.WriteStop()
	}()
	if stopErr != nil {
		return fmt.Errorf("failed to finalize parquet data for session '%s': %w", session.ID, stopErr)
	}

	objectName := fmt.Sprintf("%s/dt=%s/session_%s.parquet",
		e.prefix, session.StartTime.Format("2006-01-02"), session.ID)
	if err := e.storage.Upload(ctx, objectName, buf, "application/octet-stream"); err != nil {
		return fmt.Errorf("failed to upload archive for session '%s': %w", session.ID, err)
	}

	logger.Infof("Archived session '%s' (%d step records, %d bytes) to '%s'.",
		session.ID, len(session.StepLog), buf.Len(), objectName)
	return nil
}

func toStepRow(session *model.AutomationSession, record *model.StepRecord) stepRow {
	row := stepRow{
		SessionID:    session.ID,
		CampaignID:   session.CampaignID,
		StepName:     record.StepName,
		StepType:     string(record.StepType),
		Status:       string(record.Status),
		StartedAt:    record.StartedAt.UnixMilli(),
		DurationMs:   record.DurationMs,
		ErrorMessage: record.ErrorMessage,
	}
	if record.CompletedAt != nil {
		row.CompletedAt = record.CompletedAt.UnixMilli()
	}
	return row
}
