package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"go.uber.org/fx"

	exception "github.com/creatorbridge/maestro/pkg/automation/support/util/exception"
	logger "github.com/creatorbridge/maestro/pkg/automation/support/util/logger"
)

// Package config provides utilities for loading and managing application
// configuration from YAML files and environment variables.

const moduleName = "config"

// ConfigParams defines the dependencies for NewConfigProvider.
type ConfigParams struct {
	fx.In
	// EmbeddedConfig contains the raw bytes of the configuration file.
	EmbeddedConfig EmbeddedConfig
	// EnvFilePath is the path to the .env file, if any.
	EnvFilePath string `name:"envFilePath" optional:"true"`
	// Expander expands environment variable placeholders in the raw YAML.
	Expander EnvironmentExpander
}

// loadConfig loads configuration from an embedded YAML document and
// environment variables. It is intended to be called once during startup.
func loadConfig(envFilePath string, embeddedConfig EmbeddedConfig, expander EnvironmentExpander) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Warnf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	} else {
		if err := godotenv.Load(); err != nil {
			logger.Debugf(".env file not found or could not be loaded: %v", err)
		}
	}

	cfg := NewConfig()

	expanded, err := expander.Expand(embeddedConfig)
	if err != nil {
		return nil, exception.New(moduleName, "failed to expand environment variables in embedded config", err, exception.KindConfig)
	}

	var yamlConfig Config
	if err := yaml.Unmarshal(expanded, &yamlConfig); err != nil {
		return nil, exception.New(moduleName, "failed to unmarshal embedded config", err, exception.KindConfig)
	}

	mergeConfig(cfg, &yamlConfig)

	if err := loadStructFromEnv(reflect.ValueOf(cfg).Elem(), ""); err != nil {
		return nil, exception.New(moduleName, "failed to load config from environment variables", err, exception.KindConfig)
	}
	return cfg, nil
}

// NewConfigProvider is an Fx provider that loads and provides *Config.
// It loads defaults, merges the embedded YAML on top, overrides from
// environment variables and sets the global logger level.
func NewConfigProvider(params ConfigParams) (*Config, error) {
	cfg, err := loadConfig(params.EnvFilePath, params.EmbeddedConfig, params.Expander)
	if err != nil {
		return nil, err
	}

	logger.SetLogLevel(cfg.Maestro.System.Logging.Level)
	logger.Infof("Log level set to: %s", cfg.Maestro.System.Logging.Level)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadConfig loads configuration without going through Fx. Used by tests and
// one-shot tooling.
func LoadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	return loadConfig(envFilePath, embeddedConfig, NewOsEnvironmentExpander())
}

// validate rejects configurations the engine cannot run with.
func validate(cfg *Config) error {
	if cfg.Maestro.Automation.DispatchIntervalMs < 0 {
		return exception.Newf(moduleName, exception.KindConfig,
			"automation.dispatch_interval_ms must be >= 0, got %d", cfg.Maestro.Automation.DispatchIntervalMs)
	}
	if cfg.Maestro.Automation.ObserverBufferSize <= 0 {
		return exception.Newf(moduleName, exception.KindConfig,
			"automation.observer_buffer_size must be > 0, got %d", cfg.Maestro.Automation.ObserverBufferSize)
	}
	if cfg.Maestro.Archive.Enabled {
		switch cfg.Maestro.Archive.StorageType {
		case "local", "gcs":
		default:
			return exception.Newf(moduleName, exception.KindConfig,
				"archive.storage_type must be 'local' or 'gcs', got %q", cfg.Maestro.Archive.StorageType)
		}
	}
	return nil
}

// mergeConfig performs a deep merge from sourceConfig into destConfig.
// Values in sourceConfig overwrite corresponding values in destConfig when
// they are not zero values for their type.
func mergeConfig(destConfig, sourceConfig *Config) {
	mergeMaestroConfig(&destConfig.Maestro, &sourceConfig.Maestro)
}

func mergeMaestroConfig(dest, source *MaestroConfig) {
	if source.Automation.DispatchIntervalMs != 0 {
		dest.Automation.DispatchIntervalMs = source.Automation.DispatchIntervalMs
	}
	if source.Automation.ObserverBufferSize != 0 {
		dest.Automation.ObserverBufferSize = source.Automation.ObserverBufferSize
	}
	if source.Automation.DefaultContractTerms != "" {
		dest.Automation.DefaultContractTerms = source.Automation.DefaultContractTerms
	}
	if source.Automation.OutreachMessageTemplate != "" {
		dest.Automation.OutreachMessageTemplate = source.Automation.OutreachMessageTemplate
	}

	mergeSystemConfig(&dest.System, &source.System)

	if source.Infrastructure.SessionRepositoryDBRef != "" {
		dest.Infrastructure.SessionRepositoryDBRef = source.Infrastructure.SessionRepositoryDBRef
	}

	mergeArchiveConfig(&dest.Archive, &source.Archive)
	mergeTracingConfig(&dest.Tracing, &source.Tracing)

	if source.AdaptorConfigs != nil {
		if dest.AdaptorConfigs == nil {
			dest.AdaptorConfigs = make(map[string]interface{})
		}
		for key, value := range source.AdaptorConfigs {
			dest.AdaptorConfigs[key] = value
		}
	}
}

func mergeSystemConfig(dest, source *SystemConfig) {
	if source.Timezone != "" {
		dest.Timezone = source.Timezone
	}
	if source.Logging.Level != "" {
		dest.Logging.Level = source.Logging.Level
	}
}

func mergeArchiveConfig(dest, source *ArchiveConfig) {
	if source.Enabled {
		dest.Enabled = true
	}
	if source.StorageType != "" {
		dest.StorageType = source.StorageType
	}
	if source.LocalDir != "" {
		dest.LocalDir = source.LocalDir
	}
	if source.Bucket != "" {
		dest.Bucket = source.Bucket
	}
	if source.Prefix != "" {
		dest.Prefix = source.Prefix
	}
}

func mergeTracingConfig(dest, source *TracingConfig) {
	if source.Enabled {
		dest.Enabled = true
	}
	if source.Endpoint != "" {
		dest.Endpoint = source.Endpoint
	}
	if source.ServiceName != "" {
		dest.ServiceName = source.ServiceName
	}
}

// loadStructFromEnv recursively loads configuration values into a struct from
// environment variables, using the "yaml" tag to derive the variable name.
// Example: maestro.automation.dispatch_interval_ms is overridden by
// MAESTRO_AUTOMATION_DISPATCH_INTERVAL_MS.
func loadStructFromEnv(val reflect.Value, prefix string) error {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		yamlTag := fieldType.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		envVarName := strings.ToUpper(prefix + yamlTag)

		if field.Kind() == reflect.Struct {
			if err := loadStructFromEnv(field, envVarName+"_"); err != nil {
				return err
			}
			continue
		}

		envValue, exists := os.LookupEnv(envVarName)
		if !exists {
			continue
		}

		if err := setField(field, envValue); err != nil {
			return exception.Newf(moduleName, exception.KindConfig,
				"failed to set field '%s' from env var '%s': %v", fieldType.Name, envVarName, err)
		}
	}
	return nil
}

// setField sets a scalar struct field from its string representation.
func setField(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	}
	return nil
}
