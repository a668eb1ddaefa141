// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config builds the process-wide AnalysisConfig from viper settings
// and resolves the API credential.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/paper-analysis/internal/secrets"
	"github.com/pdiddy/paper-analysis/pkg/types"
)

// Settings keys, shared by the config file, PAPER_ANALYSIS_* variables and flags.
const (
	KeyModel       = "model"
	KeyBaseURL     = "base_url"
	KeyOutputDir   = "output_dir"
	KeyEnvFile     = "env_file"
	KeyHistoryDB   = "history_db"
	KeyMetricsFile = "metrics_file"
	KeyLogLevel    = "log_level"
)

const (
	// APIKeyEnv is the variable that carries the credential.
	APIKeyEnv = "OPENAI_API_KEY"

	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "gpt-4-0125-preview"

	// DefaultSecretsDir is searched last for an "openai-api-key" file.
	DefaultSecretsDir = ".secrets/"

	apiKeySecret = "openai-api-key"
	dotenvName   = ".env"
	appName      = "paper-analysis"
)

// SetDefaults registers default values for every settings key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyModel, DefaultModel)
	v.SetDefault(KeyBaseURL, "")
	v.SetDefault(KeyOutputDir, ".")
	v.SetDefault(KeyEnvFile, "")
	v.SetDefault(KeyHistoryDB, "")
	v.SetDefault(KeyMetricsFile, "")
	v.SetDefault(KeyLogLevel, "info")
}

// Loader resolves configuration. Its fields are the ambient inputs, so tests
// can supply their own environment and directories.
type Loader struct {
	// Getenv looks up process environment variables.
	Getenv func(string) string

	// WorkDir and HomeDir anchor the default dotenv locations.
	WorkDir string
	HomeDir string

	// SecretsDir is the secrets directory consulted last.
	SecretsDir string
}

// NewLoader returns a Loader backed by the real process environment.
func NewLoader() Loader {
	home, _ := os.UserHomeDir()
	return Loader{
		Getenv:     os.Getenv,
		WorkDir:    ".",
		HomeDir:    home,
		SecretsDir: DefaultSecretsDir,
	}
}

// Load builds the AnalysisConfig. It fails with a configuration error when no
// credential can be found.
func (l Loader) Load(v *viper.Viper, userAgent string) (types.AnalysisConfig, error) {
	key, err := l.APIKey(v.GetString(KeyEnvFile))
	if err != nil {
		return types.AnalysisConfig{}, err
	}

	model := strings.TrimSpace(v.GetString(KeyModel))
	if model == "" {
		model = DefaultModel
	}
	outputDir := v.GetString(KeyOutputDir)
	if outputDir == "" {
		outputDir = "."
	}

	return types.AnalysisConfig{
		AIConfig: types.AIConfig{
			Model:     model,
			APIKey:    key,
			BaseURL:   strings.TrimSpace(v.GetString(KeyBaseURL)),
			UserAgent: userAgent,
		},
		OutputDir:   outputDir,
		HistoryDB:   v.GetString(KeyHistoryDB),
		MetricsFile: v.GetString(KeyMetricsFile),
		LogLevel:    v.GetString(KeyLogLevel),
	}, nil
}

// APIKey returns the first non-blank credential found, in order: the process
// environment; the explicit dotenv file when given (it must exist), otherwise
// ./.env then ~/.config/paper-analysis/.env; the secrets directory.
func (l Loader) APIKey(envFile string) (string, error) {
	if key := strings.TrimSpace(l.getenv(APIKeyEnv)); key != "" {
		return key, nil
	}

	for _, path := range l.dotenvFiles(envFile) {
		values, err := secrets.LoadDotenv(path)
		if err != nil {
			if path != envFile && os.IsNotExist(err) {
				continue
			}
			return "", types.Wrap(types.KindConfiguration, "reading env file "+path, err)
		}
		if key, ok := values[APIKeyEnv]; ok {
			return key, nil
		}
	}

	if l.SecretsDir != "" {
		s, err := secrets.Load(l.SecretsDir)
		if err != nil {
			return "", types.Wrap(types.KindConfiguration, "loading secrets", err)
		}
		if key, ok := s[apiKeySecret]; ok {
			return key, nil
		}
	}

	return "", types.Wrap(types.KindConfiguration, "loading credential",
		fmt.Errorf("%s is not set; check the environment or the .env file", APIKeyEnv))
}

func (l Loader) getenv(key string) string {
	if l.Getenv == nil {
		return ""
	}
	return l.Getenv(key)
}

// dotenvFiles lists dotenv candidates in discovery order.
func (l Loader) dotenvFiles(explicit string) []string {
	if explicit != "" {
		return []string{explicit}
	}
	var files []string
	if l.WorkDir != "" {
		files = append(files, filepath.Join(l.WorkDir, dotenvName))
	}
	if l.HomeDir != "" {
		files = append(files, filepath.Join(l.HomeDir, ".config", appName, dotenvName))
	}
	return files
}
