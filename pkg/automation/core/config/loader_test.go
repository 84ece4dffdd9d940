package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/creatorbridge/maestro/pkg/automation/core/config"
)

const testYAML = `
maestro:
  automation:
    dispatch_interval_ms: 250
    observer_buffer_size: 16
  system:
    timezone: Asia/Tokyo
    logging:
      level: DEBUG
  infrastructure:
    session_repository_db_ref: audit
  database:
    audit:
      type: sqlite
      database: ":memory:"
`

func TestLoadConfig_MergesYAMLOverDefaults(t *testing.T) {
	cfg, err := config.LoadConfig("", config.EmbeddedConfig(testYAML))
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.Maestro.Automation.DispatchIntervalMs)
	assert.Equal(t, 16, cfg.Maestro.Automation.ObserverBufferSize)
	assert.Equal(t, "Asia/Tokyo", cfg.Maestro.System.Timezone)
	assert.Equal(t, "DEBUG", cfg.Maestro.System.Logging.Level)
	assert.Equal(t, "audit", cfg.Maestro.Infrastructure.SessionRepositoryDBRef)
	assert.Contains(t, cfg.Maestro.AdaptorConfigs, "audit")
}

func TestLoadConfig_DefaultsSurviveSparseYAML(t *testing.T) {
	cfg, err := config.LoadConfig("", config.EmbeddedConfig("maestro:\n  system:\n    timezone: UTC\n"))
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Maestro.Automation.DispatchIntervalMs)
	assert.Equal(t, 64, cfg.Maestro.Automation.ObserverBufferSize)
	assert.Equal(t, "INFO", cfg.Maestro.System.Logging.Level)
	assert.Equal(t, "local", cfg.Maestro.Archive.StorageType)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("MAESTRO_AUTOMATION_DISPATCH_INTERVAL_MS", "5")
	t.Setenv("MAESTRO_SYSTEM_LOGGING_LEVEL", "WARN")

	cfg, err := config.LoadConfig("", config.EmbeddedConfig(testYAML))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Maestro.Automation.DispatchIntervalMs)
	assert.Equal(t, "WARN", cfg.Maestro.System.Logging.Level)
}

func TestLoadConfig_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("AUDIT_DB_NAME", "maestro_audit")

	yaml := "maestro:\n  database:\n    audit:\n      database: ${AUDIT_DB_NAME}\n"
	cfg, err := config.LoadConfig("", config.EmbeddedConfig(yaml))
	require.NoError(t, err)

	audit, ok := cfg.Maestro.AdaptorConfigs["audit"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "maestro_audit", audit["database"])
}

func TestLoadConfig_RejectsMalformedYAML(t *testing.T) {
	_, err := config.LoadConfig("", config.EmbeddedConfig("maestro: [unbalanced"))
	assert.Error(t, err)
}
