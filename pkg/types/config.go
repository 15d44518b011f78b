// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for the search client.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero means no client timeout;
	// a hung search then blocks the action until the context is cancelled.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "kelvin/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries is the number of retries on HTTP 429/503 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// SearchConfig holds settings for the paper search collaborator.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Backend selects the search service: "vespa" (default) or "openalex".
	Backend string `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Endpoint overrides the backend's search URL (for Vespa, e.g.
	// "http://localhost:8080/search/").
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// APIKey is an optional bearer token sent to the search endpoint.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Email is sent to OpenAlex as the mailto parameter for polite pool
	// access.
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`

	// FixtureFile, when set, answers every search from a saved result
	// document instead of the network.
	FixtureFile string `json:"fixture_file,omitempty" yaml:"fixture_file,omitempty" mapstructure:"fixture_file"`
}

// WorkspaceConfig holds settings for the local card history.
type WorkspaceConfig struct {
	// Dir is the directory holding the workspace database.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// Config groups every setting the CLI reads.
type Config struct {
	Search    SearchConfig    `json:"search" yaml:"search" mapstructure:"search"`
	Workspace WorkspaceConfig `json:"workspace" yaml:"workspace" mapstructure:"workspace"`

	// LogLevel is one of debug, info, warn, error (default info).
	LogLevel string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
}
