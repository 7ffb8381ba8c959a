package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config represents the supergithub configuration
type Config struct {
	GitHub    GitHubConfig    `yaml:"github"`
	Organizer OrganizerConfig `yaml:"organizer"`
	Documents DocumentsConfig `yaml:"documents"`
}

// GitHubConfig represents GitHub API client configuration
type GitHubConfig struct {
	Token       string        `yaml:"token,omitempty" env:"GH_TOKEN"`
	BaseURL     string        `yaml:"base_url,omitempty" env:"GH_API_URL"`
	Timeout     time.Duration `yaml:"timeout" env:"SUPERGITHUB_TIMEOUT"`
	Concurrency int           `yaml:"concurrency" env:"SUPERGITHUB_CONCURRENCY"`
	MaxPages    int           `yaml:"max_pages" env:"SUPERGITHUB_MAX_PAGES"`
	ReadRetries int           `yaml:"read_retries" env:"SUPERGITHUB_READ_RETRIES"`
}

// OrganizerConfig holds the repository classification rules
type OrganizerConfig struct {
	DeletePrefixes    []string `yaml:"delete_prefixes" env:"SUPERGITHUB_DELETE_PREFIXES" envSeparator:","`
	DeleteAfterDays   int      `yaml:"delete_after_days" env:"SUPERGITHUB_DELETE_AFTER_DAYS"`
	ArchiveAfterDays  int      `yaml:"archive_after_days" env:"SUPERGITHUB_ARCHIVE_AFTER_DAYS"`
	DescriptionPrefix string   `yaml:"description_prefix" env:"SUPERGITHUB_DESCRIPTION_PREFIX"`
}

// DocumentsConfig represents document generation settings
type DocumentsConfig struct {
	TemplateDir    string        `yaml:"template_dir,omitempty" env:"SUPERGITHUB_TEMPLATE_DIR"`
	Compiler       string        `yaml:"compiler" env:"SUPERGITHUB_LATEX"`
	Passes         int           `yaml:"passes" env:"SUPERGITHUB_LATEX_PASSES"`
	CompileTimeout time.Duration `yaml:"compile_timeout" env:"SUPERGITHUB_LATEX_TIMEOUT"`
}

// ErrTokenMissing is returned when no GitHub token is configured
var ErrTokenMissing = errors.New("GitHub token not found: set GH_TOKEN or github.token in the config file")

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		GitHub: GitHubConfig{
			Timeout:     10 * time.Second,
			Concurrency: 4,
			MaxPages:    10,
		},
		Organizer: OrganizerConfig{
			DeletePrefixes:    []string{"temp-", "test-", "demo-", "experiment-"},
			DeleteAfterDays:   90,
			ArchiveAfterDays:  365,
			DescriptionPrefix: "Projeto: ",
		},
		Documents: DocumentsConfig{
			Compiler:       "pdflatex",
			Passes:         2,
			CompileTimeout: 30 * time.Second,
		},
	}
}

// LoadConfig loads configuration from the default location and overlays
// environment variables
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	config, err := LoadConfigFromPath(configPath)
	if err != nil {
		return nil, err
	}

	if err := config.ApplyEnv(nil); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadConfigFromPath loads configuration from a specific path. Values missing
// from the file keep their defaults.
func LoadConfigFromPath(path string) (*Config, error) {
	config := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// ApplyEnv overrides configuration values with environment variables. A nil
// environ reads the process environment.
func (c *Config) ApplyEnv(environ map[string]string) error {
	if err := env.ParseWithOptions(c, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("failed to parse environment variables: %w", err)
	}

	return nil
}

// SaveConfig saves configuration to the default location
func (c *Config) SaveConfig() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	return c.SaveConfigToPath(configPath)
}

// SaveConfigToPath saves configuration to a specific path
func (c *Config) SaveConfigToPath(path string) error {
	// Create config directory if it doesn't exist
	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold a token
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".supergithub", "config.yaml"), nil
}

// RequireToken returns ErrTokenMissing when no token was configured
func (c *Config) RequireToken() error {
	if c.GitHub.Token == "" {
		return ErrTokenMissing
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.GitHub.Timeout <= 0 {
		return fmt.Errorf("github timeout must be positive")
	}

	if c.GitHub.Concurrency < 1 {
		return fmt.Errorf("github concurrency must be at least 1")
	}

	if c.GitHub.MaxPages < 1 {
		return fmt.Errorf("github max_pages must be at least 1")
	}

	if c.GitHub.ReadRetries < 0 {
		return fmt.Errorf("github read_retries cannot be negative")
	}

	if c.Organizer.DeleteAfterDays < 0 || c.Organizer.ArchiveAfterDays < 0 {
		return fmt.Errorf("organizer age thresholds cannot be negative")
	}

	if c.Documents.Passes < 1 {
		return fmt.Errorf("documents passes must be at least 1")
	}

	if c.Documents.CompileTimeout <= 0 {
		return fmt.Errorf("documents compile_timeout must be positive")
	}

	return nil
}
