// Package config provides core configuration structures and utilities for the
// automation engine. This file defines Fx providers for configuration-related
// components.
package config

import "go.uber.org/fx"

// NewLoggingConfigProvider extracts and provides *LoggingConfig from *Config,
// so components can depend on the logging configuration alone.
func NewLoggingConfigProvider(cfg *Config) *LoggingConfig {
	return &cfg.Maestro.System.Logging
}

// NewAutomationConfigProvider extracts and provides *AutomationConfig from *Config.
func NewAutomationConfigProvider(cfg *Config) *AutomationConfig {
	return &cfg.Maestro.Automation
}

// NewArchiveConfigProvider extracts and provides *ArchiveConfig from *Config.
func NewArchiveConfigProvider(cfg *Config) *ArchiveConfig {
	return &cfg.Maestro.Archive
}

// Module provides configuration-related components to Fx.
var Module = fx.Options(
	fx.Provide(NewConfigProvider),
	fx.Provide(NewLoggingConfigProvider),
	fx.Provide(NewAutomationConfigProvider),
	fx.Provide(NewArchiveConfigProvider),
	fx.Provide(func() EnvironmentExpander {
		return NewOsEnvironmentExpander()
	}),
)
