// ABOUTME: Habits configuration management loaded through viper.
// ABOUTME: Handles data dir, listen address, AI provider credentials, and telemetry flags.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/habits/internal/storage"
	"github.com/spf13/viper"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = "0.0.0.0:8000"

// Provider preferences accepted by AIConfig.Provider.
const (
	ProviderAuto = "auto"
	ProviderQwen = "qwen"
	ProviderGLM  = "glm"
)

// Config stores habits tool configuration.
type Config struct {
	// DataDir is the root directory for data storage. habits.db and logs/ live here.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/habits.
	DataDir string `json:"data_dir,omitempty" mapstructure:"data_dir"`

	// Addr is the HTTP listen address for `habits serve`.
	Addr string `json:"addr,omitempty" mapstructure:"addr"`

	AI        AIConfig        `json:"ai" mapstructure:"ai"`
	Telemetry TelemetryConfig `json:"telemetry" mapstructure:"telemetry"`
}

// AIConfig selects and configures the insight provider.
type AIConfig struct {
	// Provider is auto, qwen, or glm.
	Provider string `json:"provider,omitempty" mapstructure:"provider"`

	// ProviderFile holds per-provider credentials. Defaults to ~/.claude/config.json.
	ProviderFile string `json:"provider_file,omitempty" mapstructure:"provider_file"`

	// Providers is keyed by provider name. Entries here override the provider file.
	Providers map[string]ProviderConfig `json:"providers,omitempty" mapstructure:"providers"`

	// ProviderErr records why the provider file could not be read. It is
	// reported when an insight client is built, not by Load.
	ProviderErr error `json:"-" mapstructure:"-"`
}

// ProviderConfig is one provider's credentials, in the provider file's key style.
type ProviderConfig struct {
	APIKey       string `json:"apiKey" mapstructure:"apiKey"`
	DefaultModel string `json:"defaultModel,omitempty" mapstructure:"defaultModel"`
	BaseURL      string `json:"baseUrl,omitempty" mapstructure:"baseUrl"`
}

// TelemetryConfig toggles OpenTelemetry export.
type TelemetryConfig struct {
	Enabled      bool   `json:"enabled,omitempty" mapstructure:"enabled"`
	Stdout       bool   `json:"stdout,omitempty" mapstructure:"stdout"`
	OTLPEndpoint string `json:"otlp_endpoint,omitempty" mapstructure:"otlp_endpoint"`
}

// Preference returns the normalized provider preference, defaulting to auto.
func (a AIConfig) Preference() string {
	p := strings.ToLower(strings.TrimSpace(a.Provider))
	if p == "" {
		return ProviderAuto
	}
	return p
}

// Lookup returns a provider's config if it has an API key.
func (a AIConfig) Lookup(name string) (ProviderConfig, bool) {
	pc, ok := a.Providers[name]
	if !ok || strings.TrimSpace(pc.APIKey) == "" {
		return ProviderConfig{}, false
	}
	return pc, true
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetAddr returns the listen address, defaulting to DefaultAddr.
func (c *Config) GetAddr() string {
	if c.Addr == "" {
		return DefaultAddr
	}
	return c.Addr
}

// DBPath returns the SQLite database path inside the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.GetDataDir(), "habits.db")
}

// OpenStorage opens the SQLite database under the configured data directory.
func (c *Config) OpenStorage() (*storage.DB, error) {
	return storage.Open(c.DBPath())
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "habits", "config.json")
}

// DefaultProviderFile returns the shared provider credentials file.
func DefaultProviderFile() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", "config.json")
}

// Load reads config from disk, applies environment overrides, and merges
// provider credentials. A bad provider file does not fail Load; see
// AIConfig.ProviderErr.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")

	for key, env := range map[string]string{
		"data_dir":                "HABITS_DATA_DIR",
		"addr":                    "HABITS_ADDR",
		"ai.provider":             "AI_PROVIDER",
		"ai.provider_file":        "HABITS_PROVIDER_CONFIG",
		"telemetry.enabled":       "HABITS_OTEL_ENABLED",
		"telemetry.stdout":        "HABITS_OTEL_STDOUT",
		"telemetry.otlp_endpoint": "OTEL_EXPORTER_OTLP_ENDPOINT",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	path := GetConfigPath()
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	providerFile := cfg.AI.ProviderFile
	if providerFile == "" {
		providerFile = DefaultProviderFile()
	}
	fromFile, err := LoadProviders(ExpandPath(providerFile))
	if err != nil {
		cfg.AI.ProviderErr = err
		fromFile = map[string]ProviderConfig{}
	}
	for name, pc := range cfg.AI.Providers {
		fromFile[name] = pc
	}
	cfg.AI.Providers = fromFile

	return &cfg, nil
}

// LoadProviders reads the `providers` block of a credentials file. A missing
// file yields an empty map.
func LoadProviders(path string) (map[string]ProviderConfig, error) {
	providers := map[string]ProviderConfig{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return providers, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read provider config %s: %w", path, err)
	}
	if err := v.UnmarshalKey("providers", &providers); err != nil {
		return nil, fmt.Errorf("decode provider config: %w", err)
	}
	return providers, nil
}

// Save writes config to disk. Provider credentials are never written.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	out := *c
	out.AI.Providers = nil
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
