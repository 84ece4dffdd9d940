package archive_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/creatorbridge/maestro/pkg/automation/core/config"
	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
	archive "github.com/creatorbridge/maestro/pkg/automation/infrastructure/archive"
)

func newExporter(t *testing.T) (*archive.Exporter, string) {
	t.Helper()
	dir := t.TempDir()
	storage, err := archive.NewLocalStorage(dir)
	require.NoError(t, err)
	exporter := archive.NewExporter(storage, &config.ArchiveConfig{Prefix: "sessions"})
	return exporter, dir
}

func terminalSession() *model.AutomationSession {
	session := model.NewAutomationSession("cmp_1", "usr_1", model.ModeAutomatic)
	record := model.NewStepRecord(model.StepTypeInitialization, "Initialization")
	record.Complete()
	session.StepLog = session.StepLog.Append(record)
	failed := model.NewStepRecord(model.StepTypeOutreach, "Outreach")
	failed.Fail(assert.AnError)
	session.StepLog = session.StepLog.Append(failed)
	return session
}

func TestExporter_WritesParquetObject(t *testing.T) {
	exporter, dir := newExporter(t)
	session := terminalSession()

	require.NoError(t, exporter.Export(context.Background(), session))

	objectPath := filepath.Join(dir, "sessions",
		"dt="+session.StartTime.Format("2006-01-02"),
		"session_"+session.ID+".parquet")
	info, err := os.Stat(objectPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExporter_SkipsEmptyStepLog(t *testing.T) {
	exporter, dir := newExporter(t)
	session := model.NewAutomationSession("cmp_1", "usr_1", model.ModeAutomatic)

	require.NoError(t, exporter.Export(context.Background(), session))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStorage_RejectsEscapingObjectName(t *testing.T) {
	storage, err := archive.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	err = storage.Upload(context.Background(), "../outside.bin", nil, "application/octet-stream")
	assert.Error(t, err)
}
