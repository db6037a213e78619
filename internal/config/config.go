package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/urlhider/config.yaml"

// Config holds all urlhider configuration.
type Config struct {
	History   HistoryConfig   `yaml:"history"`
	Window    WindowConfig    `yaml:"window"`
	Storage   StorageConfig   `yaml:"storage"`
	Messaging MessagingConfig `yaml:"messaging"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type HistoryConfig struct {
	MaxRecords      int    `yaml:"max_records"`
	StorageKey      string `yaml:"storage_key"`
	ChartTopDomains int    `yaml:"chart_top_domains"`
}

type WindowConfig struct {
	Backend        string `yaml:"backend"` // playwright | system
	MaxWidth       int    `yaml:"max_width"`
	MaxHeight      int    `yaml:"max_height"`
	Inset          int    `yaml:"inset"`
	Margin         int    `yaml:"margin"`
	BrowserChannel string `yaml:"browser_channel"`
	Headless       bool   `yaml:"headless"`
	InstallBrowser bool   `yaml:"install_browser"`
	ScreenWidth    int    `yaml:"screen_width"`
	ScreenHeight   int    `yaml:"screen_height"`
}

type StorageConfig struct {
	Backend    string `yaml:"backend"` // sqlite | memory
	Path       string `yaml:"path"`
	SQLiteFile string `yaml:"sqlite_file"`
}

type MessagingConfig struct {
	NoticeSeconds   int `yaml:"notice_seconds"`
	MaxMessageBytes int `yaml:"max_message_bytes"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Format string `yaml:"format"` // text | json
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read, contains invalid YAML, or
// holds invalid values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch c.Window.Backend {
	case "playwright", "system":
	default:
		return fmt.Errorf("window.backend must be playwright or system, got %q", c.Window.Backend)
	}
	switch c.Storage.Backend {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("storage.backend must be sqlite or memory, got %q", c.Storage.Backend)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	positive := []struct {
		name  string
		value int
	}{
		{"history.max_records", c.History.MaxRecords},
		{"history.chart_top_domains", c.History.ChartTopDomains},
		{"window.max_width", c.Window.MaxWidth},
		{"window.max_height", c.Window.MaxHeight},
		{"messaging.notice_seconds", c.Messaging.NoticeSeconds},
		{"messaging.max_message_bytes", c.Messaging.MaxMessageBytes},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", p.name, p.value)
		}
	}
	if c.History.StorageKey == "" {
		return fmt.Errorf("history.storage_key must not be empty")
	}
	return nil
}

// DBPath returns the SQLite database file path with ~ expanded.
func (c *Config) DBPath() (string, error) {
	dir, err := expandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.SQLiteFile), nil
}

// LogPath returns the log file path. A relative Logging.File is placed in
// the storage directory; an empty one means no file.
func (c *Config) LogPath() (string, error) {
	if c.Logging.File == "" {
		return "", nil
	}
	file, err := expandPath(c.Logging.File)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(file) {
		return file, nil
	}
	dir, err := expandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, file), nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}
