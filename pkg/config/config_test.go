package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	// Create a temporary directory for testing
	tempDir := t.TempDir()

	// Create test config file
	configPath := filepath.Join(tempDir, "config.yaml")
	configContent := `github:
  token: "ghp_test_token"
  base_url: "https://github.example.com/api/v3/"
  timeout: 15s
  concurrency: 8
organizer:
  delete_prefixes: ["tmp-", "scratch-"]
  archive_after_days: 180
documents:
  template_dir: /opt/templates
  passes: 3
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	// Load config
	config, err := LoadConfigFromPath(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify GitHub config values
	if config.GitHub.Token != "ghp_test_token" {
		t.Errorf("Expected GitHub Token = ghp_test_token, got %s", config.GitHub.Token)
	}

	if config.GitHub.BaseURL != "https://github.example.com/api/v3/" {
		t.Errorf("Expected BaseURL = https://github.example.com/api/v3/, got %s", config.GitHub.BaseURL)
	}

	if config.GitHub.Timeout != 15*time.Second {
		t.Errorf("Expected Timeout = 15s, got %s", config.GitHub.Timeout)
	}

	if config.GitHub.Concurrency != 8 {
		t.Errorf("Expected Concurrency = 8, got %d", config.GitHub.Concurrency)
	}

	// Values absent from the file keep their defaults
	if config.GitHub.MaxPages != 10 {
		t.Errorf("Expected default MaxPages = 10, got %d", config.GitHub.MaxPages)
	}

	if !reflect.DeepEqual(config.Organizer.DeletePrefixes, []string{"tmp-", "scratch-"}) {
		t.Errorf("Unexpected DeletePrefixes %v", config.Organizer.DeletePrefixes)
	}

	if config.Organizer.ArchiveAfterDays != 180 {
		t.Errorf("Expected ArchiveAfterDays = 180, got %d", config.Organizer.ArchiveAfterDays)
	}

	if config.Organizer.DeleteAfterDays != 90 {
		t.Errorf("Expected default DeleteAfterDays = 90, got %d", config.Organizer.DeleteAfterDays)
	}

	if config.Documents.TemplateDir != "/opt/templates" || config.Documents.Passes != 3 {
		t.Errorf("Unexpected documents config %+v", config.Documents)
	}

	if config.Documents.Compiler != "pdflatex" {
		t.Errorf("Expected default Compiler = pdflatex, got %s", config.Documents.Compiler)
	}
}

func TestLoadConfigNonExistent(t *testing.T) {
	// Test loading non-existent config file
	config, err := LoadConfigFromPath("/non/existent/path")
	if err != nil {
		t.Fatalf("Expected no error for non-existent config, got: %v", err)
	}

	// Should return defaults
	if !reflect.DeepEqual(config, Default()) {
		t.Errorf("Expected default config, got %+v", config)
	}

	if config.GitHub.Token != "" {
		t.Error("Expected empty Token for non-existent config")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("github: [broken"), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	_, err := LoadConfigFromPath(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid YAML")
	}

	if !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestSaveConfig(t *testing.T) {
	// Create a temporary directory for testing
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "nested", "config.yaml")

	// Create and save config
	config := Default()
	config.GitHub.Token = "ghp_save_test_token"
	config.GitHub.ReadRetries = 2
	config.Organizer.DescriptionPrefix = "Project: "

	err := config.SaveConfigToPath(configPath)
	if err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	// Verify file was created without group or world access
	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Config file was not created: %v", err)
	}

	if info.Mode().Perm()&0077 != 0 {
		t.Errorf("Expected config file to be private, got %v", info.Mode().Perm())
	}

	// Load and verify saved config
	loadedConfig, err := LoadConfigFromPath(configPath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if !reflect.DeepEqual(loadedConfig, config) {
		t.Errorf("Round trip mismatch:\nsaved  %+v\nloaded %+v", config, loadedConfig)
	}
}

func TestApplyEnv(t *testing.T) {
	config := Default()
	config.GitHub.Token = "ghp_from_file"

	err := config.ApplyEnv(map[string]string{
		"GH_TOKEN":                    "ghp_from_env",
		"GH_API_URL":                  "http://localhost:8080/",
		"SUPERGITHUB_CONCURRENCY":     "2",
		"SUPERGITHUB_TEMPLATE_DIR":    "/tmp/templates",
		"SUPERGITHUB_DELETE_PREFIXES": "old-,wip-",
		"SUPERGITHUB_LATEX_TIMEOUT":   "1m",
	})
	if err != nil {
		t.Fatalf("ApplyEnv() failed: %v", err)
	}

	// Environment wins over the file
	if config.GitHub.Token != "ghp_from_env" {
		t.Errorf("Expected Token from environment, got %s", config.GitHub.Token)
	}

	if config.GitHub.BaseURL != "http://localhost:8080/" {
		t.Errorf("Expected BaseURL from environment, got %s", config.GitHub.BaseURL)
	}

	if config.GitHub.Concurrency != 2 {
		t.Errorf("Expected Concurrency = 2, got %d", config.GitHub.Concurrency)
	}

	if config.Documents.TemplateDir != "/tmp/templates" {
		t.Errorf("Expected TemplateDir from environment, got %s", config.Documents.TemplateDir)
	}

	if !reflect.DeepEqual(config.Organizer.DeletePrefixes, []string{"old-", "wip-"}) {
		t.Errorf("Unexpected DeletePrefixes %v", config.Organizer.DeletePrefixes)
	}

	if config.Documents.CompileTimeout != time.Minute {
		t.Errorf("Expected CompileTimeout = 1m, got %s", config.Documents.CompileTimeout)
	}

	// Unset variables leave values untouched
	if config.GitHub.MaxPages != 10 {
		t.Errorf("Expected MaxPages to keep default, got %d", config.GitHub.MaxPages)
	}
}

func TestApplyEnvKeepsFileToken(t *testing.T) {
	config := Default()
	config.GitHub.Token = "ghp_from_file"

	if err := config.ApplyEnv(map[string]string{}); err != nil {
		t.Fatalf("ApplyEnv() failed: %v", err)
	}

	if config.GitHub.Token != "ghp_from_file" {
		t.Errorf("Expected file token to survive, got %s", config.GitHub.Token)
	}
}

func TestApplyEnvInvalidValue(t *testing.T) {
	config := Default()

	err := config.ApplyEnv(map[string]string{"SUPERGITHUB_CONCURRENCY": "many"})
	if err == nil {
		t.Fatal("Expected error for non-numeric concurrency")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.GitHub.Concurrency = 0 },
			wantErr: true,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.GitHub.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "zero max pages",
			mutate:  func(c *Config) { c.GitHub.MaxPages = 0 },
			wantErr: true,
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.GitHub.ReadRetries = -1 },
			wantErr: true,
		},
		{
			name: "zero ages are allowed",
			mutate: func(c *Config) {
				c.Organizer.ArchiveAfterDays = 0
				c.Organizer.DeleteAfterDays = 0
			},
			wantErr: false,
		},
		{
			name:    "negative archive age",
			mutate:  func(c *Config) { c.Organizer.ArchiveAfterDays = -1 },
			wantErr: true,
		},
		{
			name:    "zero passes",
			mutate:  func(c *Config) { c.Documents.Passes = 0 },
			wantErr: true,
		},
		{
			name:    "zero compile timeout",
			mutate:  func(c *Config) { c.Documents.CompileTimeout = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)

			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequireToken(t *testing.T) {
	config := Default()

	if err := config.RequireToken(); !errors.Is(err, ErrTokenMissing) {
		t.Errorf("RequireToken() error = %v, want ErrTokenMissing", err)
	}

	config.GitHub.Token = "ghp_test_token"
	if err := config.RequireToken(); err != nil {
		t.Errorf("RequireToken() unexpected error = %v", err)
	}
}

func TestGetConfigPath(t *testing.T) {
	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() failed: %v", err)
	}

	if path == "" {
		t.Error("GetConfigPath() returned empty path")
	}

	if !filepath.IsAbs(path) {
		t.Error("GetConfigPath() should return absolute path")
	}

	if filepath.Base(filepath.Dir(path)) != ".supergithub" {
		t.Errorf("GetConfigPath() should live in .supergithub, got %s", path)
	}
}
