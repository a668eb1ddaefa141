// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// AIConfig holds settings for the chat-completion endpoint.
type AIConfig struct {
	// Model is the chat model identifier (e.g. "gpt-4-0125-preview").
	Model string `json:"model" yaml:"model"`

	// APIKey is the credential sent as a bearer token. Never serialized.
	APIKey string `json:"-" yaml:"-"`

	// BaseURL overrides the API root for OpenAI-compatible endpoints.
	// Empty means the public OpenAI API.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// UserAgent is the User-Agent header sent with every request
	// (e.g. "paper-analysis/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AnalysisConfig is the immutable configuration for one process. It is built
// once at startup and passed by value into each component.
type AnalysisConfig struct {
	AIConfig `yaml:",inline"`

	// OutputDir is the directory that receives <stem>_analysis.txt files.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// HistoryDB is the SQLite file recording analysis runs. Empty disables history.
	HistoryDB string `json:"history_db,omitempty" yaml:"history_db,omitempty"`

	// MetricsFile receives Prometheus text-format metrics after each run.
	// Empty disables the metrics file.
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`

	// LogLevel selects diagnostic verbosity: debug, info, warn, or error.
	LogLevel string `json:"log_level" yaml:"log_level"`
}
