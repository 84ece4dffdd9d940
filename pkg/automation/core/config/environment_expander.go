// Package config provides core configuration structures and utilities for the
// automation engine. This file defines an interface and implementation for
// expanding environment variables within configuration data.
package config

import (
	"os"
)

// EnvironmentExpander provides functionality to expand environment variable
// placeholders within an input byte slice.
type EnvironmentExpander interface {
	// Expand takes a byte slice as input, expands any environment variable
	// placeholders (e.g., ${VAR} or $VAR) within it, and returns the expanded
	// byte slice.
	Expand(input []byte) ([]byte, error)
}

// OsEnvironmentExpander expands environment variables using os.ExpandEnv.
type OsEnvironmentExpander struct{}

// NewOsEnvironmentExpander creates and returns a new OsEnvironmentExpander.
func NewOsEnvironmentExpander() *OsEnvironmentExpander {
	return &OsEnvironmentExpander{}
}

// Expand uses os.ExpandEnv to expand environment variables within the input.
// Unset variables are replaced by an empty string; the returned error is
// always nil.
func (e *OsEnvironmentExpander) Expand(input []byte) ([]byte, error) {
	return []byte(os.ExpandEnv(string(input))), nil
}
