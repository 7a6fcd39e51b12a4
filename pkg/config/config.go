package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed config.toml.sample
var configTemplate string

// Config holds all process-wide settings. It is loaded once at startup and
// treated as immutable afterwards; components receive the values they need
// at construction time.
type Config struct {
	// DatabasePath is the SQLite database holding the document archive.
	DatabasePath string `toml:"database_path"`

	// PDFBaseURL is prepended to percent-encoded document filenames when
	// building PDF links for results.
	PDFBaseURL string `toml:"pdf_base_url"`

	// ArchiveURIPrefix is the s3:// prefix rewritten to PDFBaseURL when a
	// document carries a source URI from the archive bucket.
	ArchiveURIPrefix string `toml:"archive_uri_prefix"`

	// ContextWords is the number of words shown before and after the first
	// matched term in a result snippet.
	ContextWords int `toml:"context_words"`

	// DefaultLimit is the page size used when the caller does not specify one.
	DefaultLimit int `toml:"default_limit"`

	// MaxLimit caps the page size a caller may request.
	MaxLimit int `toml:"max_limit"`

	// ListenAddr is the address the HTTP server binds to.
	ListenAddr string `toml:"listen_addr"`
}

// GetDefaultConfig returns a config populated with defaults.
func GetDefaultConfig() *Config {
	return &Config{
		DatabasePath:     "archive.db",
		PDFBaseURL:       "https://example-transformations-mlk-archive.s3.amazonaws.com/mlk-archive/",
		ArchiveURIPrefix: "s3://example-transformations-mlk-archive/mlk-archive/",
		ContextWords:     10,
		DefaultLimit:     50,
		MaxLimit:         100,
		ListenAddr:       "localhost:8080",
	}
}

// LoadConfig reads a TOML config file, filling in defaults for missing
// values. A missing file yields the default config.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	defaults := GetDefaultConfig()
	if config.DatabasePath == "" {
		config.DatabasePath = defaults.DatabasePath
	}
	if config.PDFBaseURL == "" {
		config.PDFBaseURL = defaults.PDFBaseURL
	}
	if config.ArchiveURIPrefix == "" {
		config.ArchiveURIPrefix = defaults.ArchiveURIPrefix
	}
	if config.ContextWords <= 0 {
		config.ContextWords = defaults.ContextWords
	}
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = defaults.DefaultLimit
	}
	if config.MaxLimit <= 0 {
		config.MaxLimit = defaults.MaxLimit
	}
	if config.ListenAddr == "" {
		config.ListenAddr = defaults.ListenAddr
	}

	return &config, nil
}

// SaveConfig writes the config to configPath as TOML.
func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// SaveTemplateConfig writes the annotated sample config to configPath.
func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(configPath, []byte(configTemplate), 0644)
}

// GetConfigDir returns the configuration directory for archivesearch.
func GetConfigDir() (string, error) {
	// Use XDG_CONFIG_HOME if set, otherwise use ~/.config
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "archivesearch"), nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
