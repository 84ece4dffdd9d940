package archive

import (
	"go.uber.org/fx"

	config "github.com/creatorbridge/maestro/pkg/automation/core/config"
	listener "github.com/creatorbridge/maestro/pkg/automation/listener"
)

// newStorageProvider attaches the storage backend to the Fx lifecycle so the
// GCS client is closed on shutdown.
func newStorageProvider(lc fx.Lifecycle, cfg *config.ArchiveConfig) (Storage, error) {
	storage, err := NewStorage(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(storage.Close))
	return storage, nil
}

// Module provides the archive exporter and its session listener to Fx.
// Applications include it only when archiving is enabled.
var Module = fx.Options(
	fx.Provide(newStorageProvider),
	fx.Provide(NewExporter),
	fx.Provide(fx.Annotate(
		NewArchivingSessionListener,
		fx.As(new(listener.SessionExecutionListener)),
		fx.ResultTags(`group:"session_listeners"`),
	)),
)
