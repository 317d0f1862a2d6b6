// Package config loads and validates application configuration from YAML
// files and environment variables.
package config

// Config represents the full application configuration.
type Config struct {
	GitHub     GitHubConfig              `yaml:"github"`
	Criteria   CriteriaConfig            `yaml:"criteria"`
	Providers  map[string]ProviderConfig `yaml:"providers"`
	AI         AIConfig                  `yaml:"ai"`
	HTTP       HTTPConfig                `yaml:"http"`
	IgnoreFile string                    `yaml:"ignoreFile"`
	Store      StoreConfig               `yaml:"store"`
	Output     OutputConfig              `yaml:"output"`
	Logging    LoggingConfig             `yaml:"logging"`
	Editor     string                    `yaml:"editor"`
}

// GitHubConfig identifies the repository to triage and how to reach it.
// Owner and Repo default to the local clone's origin remote when empty.
type GitHubConfig struct {
	Token    string `yaml:"token"`
	Owner    string `yaml:"owner"`
	Repo     string `yaml:"repo"`
	Assignee string `yaml:"assignee"`
	BaseURL  string `yaml:"baseURL"`
}

// CriteriaConfig holds the simple-PR thresholds. Zero values fall back to
// the built-in defaults.
type CriteriaConfig struct {
	MaxAdditions    int `yaml:"maxAdditions"`
	MaxDeletions    int `yaml:"maxDeletions"`
	MaxChangedFiles int `yaml:"maxChangedFiles"`
	MaxLinesChanged int `yaml:"maxLinesChanged"`
}

// ProviderConfig configures a single LLM provider.
type ProviderConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"apiKey"`
}

// AIConfig selects the provider the reviewer uses and its completion token
// limit.
type AIConfig struct {
	Provider  string `yaml:"provider"`
	MaxTokens int    `yaml:"maxTokens"`
}

// HTTPConfig holds global HTTP client settings.
type HTTPConfig struct {
	Timeout           string  `yaml:"timeout"`
	MaxRetries        int     `yaml:"maxRetries"`
	InitialBackoff    string  `yaml:"initialBackoff"`
	MaxBackoff        string  `yaml:"maxBackoff"`
	BackoffMultiplier float64 `yaml:"backoffMultiplier"`
}

// StoreConfig configures the decision history database.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// OutputConfig configures the session report.
type OutputConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Directory string `yaml:"directory"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Level         string `yaml:"level"`  // debug, info, error
	Format        string `yaml:"format"` // json, human
	RedactAPIKeys bool   `yaml:"redactAPIKeys"`
}
