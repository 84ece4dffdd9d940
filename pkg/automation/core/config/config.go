package config

// Package config provides structures and utilities for managing application configuration.

// EmbeddedConfig holds the content of the configuration file, typically passed from main.go.
type EmbeddedConfig []byte

// AutomationConfig holds configuration specific to the orchestration engine.
type AutomationConfig struct {
	// DispatchIntervalMs is the minimum delay in milliseconds between
	// successive fan-out invocations.
	DispatchIntervalMs int `yaml:"dispatch_interval_ms"`
	// ObserverBufferSize is the buffer size of the campaign state publisher.
	// When the buffer is full further state pushes are dropped, not awaited.
	ObserverBufferSize int `yaml:"observer_buffer_size"`
	// DefaultContractTerms is the terms template used when the caller supplies none.
	DefaultContractTerms string `yaml:"default_contract_terms"`
	// OutreachMessageTemplate is the message template used for outreach dispatch.
	OutreachMessageTemplate string `yaml:"outreach_message_template"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level (e.g., "INFO", "DEBUG").
	Level string `yaml:"level"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	// Timezone is the application timezone (e.g., "UTC", "Asia/Tokyo").
	Timezone string `yaml:"timezone"`
	// Logging is the logging configuration.
	Logging LoggingConfig `yaml:"logging"`
}

// InfrastructureConfig holds logical dependency settings for infrastructure components.
type InfrastructureConfig struct {
	// SessionRepositoryDBRef is the name of the database connection used by the
	// session repository (e.g., "audit").
	SessionRepositoryDBRef string `yaml:"session_repository_db_ref"`
}

// ArchiveConfig holds settings for the session archive exporter.
type ArchiveConfig struct {
	// Enabled toggles archive export on session completion.
	Enabled bool `yaml:"enabled"`
	// StorageType selects the archive destination ("local" or "gcs").
	StorageType string `yaml:"storage_type"`
	// LocalDir is the destination directory for the "local" storage type.
	LocalDir string `yaml:"local_dir"`
	// Bucket is the destination bucket for the "gcs" storage type.
	Bucket string `yaml:"bucket"`
	// Prefix is prepended to every exported object name.
	Prefix string `yaml:"prefix"`
}

// TracingConfig holds OpenTelemetry exporter settings.
type TracingConfig struct {
	// Enabled toggles span export.
	Enabled bool `yaml:"enabled"`
	// Endpoint is the OTLP HTTP collector endpoint (host:port).
	Endpoint string `yaml:"endpoint"`
	// ServiceName is reported as the otel service.name resource attribute.
	ServiceName string `yaml:"service_name"`
}

// MaestroConfig holds all configuration under the "maestro" top-level key.
type MaestroConfig struct {
	// Automation contains orchestration engine configurations.
	Automation AutomationConfig `yaml:"automation"`
	// System contains system-wide configurations.
	System SystemConfig `yaml:"system"`
	// Infrastructure contains infrastructure-related configurations.
	Infrastructure InfrastructureConfig `yaml:"infrastructure"`
	// Archive contains session archive exporter configurations.
	Archive ArchiveConfig `yaml:"archive"`
	// Tracing contains OpenTelemetry configurations.
	Tracing TracingConfig `yaml:"tracing"`
	// AdaptorConfigs holds configurations for database connections, keyed by name.
	AdaptorConfigs map[string]interface{} `yaml:"database"`
}

// Config is the root structure for the entire application configuration.
type Config struct {
	// Maestro contains the top-level configuration for the automation engine.
	Maestro MaestroConfig `yaml:"maestro"`
	// EmbeddedConfig holds configuration loaded from an embedded source, not from YAML.
	EmbeddedConfig EmbeddedConfig `yaml:"-"`
}

// NewConfig returns a Config populated with defaults. YAML and environment
// variables are merged on top of these values.
func NewConfig() *Config {
	return &Config{
		Maestro: MaestroConfig{
			Automation: AutomationConfig{
				DispatchIntervalMs:      1000,
				ObserverBufferSize:      64,
				DefaultContractTerms:    "standard collaboration terms",
				OutreachMessageTemplate: "Hi {{creator}}, we would love to work with you on {{campaign}}.",
			},
			System: SystemConfig{
				Timezone: "UTC",
				Logging:  LoggingConfig{Level: "INFO"},
			},
			Infrastructure: InfrastructureConfig{
				SessionRepositoryDBRef: "audit",
			},
			Archive: ArchiveConfig{
				Enabled:     false,
				StorageType: "local",
				LocalDir:    "./archive",
				Prefix:      "sessions",
			},
			Tracing: TracingConfig{
				Enabled:     false,
				Endpoint:    "localhost:4318",
				ServiceName: "maestro",
			},
		},
	}
}
