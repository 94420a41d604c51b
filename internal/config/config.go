// Package config provides YAML-based configuration for self-contained
// deployment: one file next to the binary, created with defaults on first
// run.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AppConfig is the root configuration structure.
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Processing ProcessingConfig `yaml:"processing"`
	Web        WebConfig        `yaml:"web"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int    `yaml:"port"`
	BindAddress  string `yaml:"bindAddress"`
	EnableCORS   bool   `yaml:"enableCors"`
	AllowOrigins string `yaml:"allowOrigins"`
	ReadTimeout  int    `yaml:"readTimeoutSeconds"`
	WriteTimeout int    `yaml:"writeTimeoutSeconds"`
	IdleTimeout  int    `yaml:"idleTimeoutSeconds"`
	BodyLimit    string `yaml:"bodyLimit"`
}

// StorageConfig selects and locates the session store.
type StorageConfig struct {
	DataDirectory string `yaml:"dataDirectory"`
	// Backend is "file" (msgpack snapshot on disk) or "duckdb".
	Backend string `yaml:"backend"`
}

// ProcessingConfig tunes ingestion.
type ProcessingConfig struct {
	MaxParallelIngest int     `yaml:"maxParallelIngest"`
	PreviewScale      float64 `yaml:"previewScale"`
}

// WebConfig covers the static frontend.
type WebConfig struct {
	// BasePath is the URL prefix the frontend assets are served under.
	BasePath string `yaml:"basePath"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8090,
			BindAddress:  "127.0.0.1",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  60,
			WriteTimeout: 60,
			IdleTimeout:  120,
			BodyLimit:    "512M",
		},
		Storage: StorageConfig{
			DataDirectory: "./data",
			Backend:       "file",
		},
		Processing: ProcessingConfig{
			MaxParallelIngest: 4,
			PreviewScale:      0.3,
		},
		Web: WebConfig{
			BasePath: "/",
		},
	}
}

// LoadConfig loads configuration from a YAML file, writing the defaults
// out first when the file does not exist yet.
func LoadConfig(configPath string) (*AppConfig, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := cfg.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *AppConfig) Save(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// EnsureDirectories creates the data directory tree.
func (c *AppConfig) EnsureDirectories() error {
	return os.MkdirAll(c.Storage.DataDirectory, 0755)
}

// GetServerAddr returns the listen address.
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// GetDataDir returns the absolute data directory.
func (c *AppConfig) GetDataDir() string {
	abs, err := filepath.Abs(c.Storage.DataDirectory)
	if err != nil {
		return c.Storage.DataDirectory
	}
	return abs
}
