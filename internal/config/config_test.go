// ABOUTME: Tests for habits configuration management.
// ABOUTME: Covers load, save, env overrides, provider credentials, and path expansion.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points config and provider lookups at empty temp dirs.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv("HABITS_PROVIDER_CONFIG", filepath.Join(tmpDir, "providers.json"))
	t.Setenv("HABITS_DATA_DIR", "")
	t.Setenv("HABITS_ADDR", "")
	t.Setenv("AI_PROVIDER", "")
	return tmpDir
}

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0600))
}

func TestGetDataDirDefault(t *testing.T) {
	cfg := &Config{}
	assert.NotEmpty(t, cfg.GetDataDir())
}

func TestGetDataDirExpandsTilde(t *testing.T) {
	home, _ := os.UserHomeDir()

	cfg := &Config{DataDir: "~/habit-data"}
	assert.Equal(t, filepath.Join(home, "habit-data"), cfg.GetDataDir())
	assert.Equal(t, filepath.Join(home, "habit-data", "habits.db"), cfg.DBPath())
}

func TestGetAddrDefault(t *testing.T) {
	assert.Equal(t, DefaultAddr, (&Config{}).GetAddr())
	assert.Equal(t, "127.0.0.1:9000", (&Config{Addr: "127.0.0.1:9000"}).GetAddr())
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/tmp/foo", "/tmp/foo"},
		{"~", home},
		{"~/data/habits", filepath.Join(home, "data/habits")},
		{"data/habits", "data/habits"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpandPath(tt.in), "ExpandPath(%q)", tt.in)
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Empty(t, cfg.DataDir)
	assert.Equal(t, ProviderAuto, cfg.AI.Preference())
	assert.Empty(t, cfg.AI.Providers)
}

func TestSaveAndLoad(t *testing.T) {
	isolate(t)

	cfg := &Config{
		DataDir: "/tmp/habits-data",
		Addr:    "127.0.0.1:8080",
		AI:      AIConfig{Provider: "glm"},
	}
	require.NoError(t, cfg.Save())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/habits-data", loaded.DataDir)
	assert.Equal(t, "127.0.0.1:8080", loaded.Addr)
	assert.Equal(t, ProviderGLM, loaded.AI.Preference())
}

func TestSaveOmitsCredentials(t *testing.T) {
	tmpDir := isolate(t)

	cfg := &Config{AI: AIConfig{Providers: map[string]ProviderConfig{"qwen": {APIKey: "secret"}}}}
	require.NoError(t, cfg.Save())

	data, err := os.ReadFile(filepath.Join(tmpDir, "habits", "config.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("HABITS_DATA_DIR", "/srv/habits")
	t.Setenv("HABITS_ADDR", ":9999")
	t.Setenv("AI_PROVIDER", "QWEN")
	t.Setenv("HABITS_OTEL_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/habits", cfg.DataDir)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, ProviderQwen, cfg.AI.Preference())
	assert.True(t, cfg.Telemetry.Enabled)
}

func TestLoadProviderFile(t *testing.T) {
	tmpDir := isolate(t)

	writeJSON(t, filepath.Join(tmpDir, "providers.json"), map[string]any{
		"providers": map[string]any{
			"qwen": map[string]any{"apiKey": "qwen-key", "defaultModel": "qwen-max"},
			"glm":  map[string]any{"apiKey": "glm-key", "baseUrl": "http://localhost:9999"},
		},
	})

	cfg, err := Load()
	require.NoError(t, err)

	qwen, ok := cfg.AI.Lookup(ProviderQwen)
	require.True(t, ok)
	assert.Equal(t, "qwen-key", qwen.APIKey)
	assert.Equal(t, "qwen-max", qwen.DefaultModel)

	glm, ok := cfg.AI.Lookup(ProviderGLM)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:9999", glm.BaseURL)
}

func TestLoadConfigProvidersOverrideFile(t *testing.T) {
	tmpDir := isolate(t)

	writeJSON(t, filepath.Join(tmpDir, "providers.json"), map[string]any{
		"providers": map[string]any{"glm": map[string]any{"apiKey": "from-file"}},
	})
	writeJSON(t, filepath.Join(tmpDir, "habits", "config.json"), map[string]any{
		"ai": map[string]any{
			"providers": map[string]any{"glm": map[string]any{"apiKey": "from-config"}},
		},
	})

	cfg, err := Load()
	require.NoError(t, err)

	glm, ok := cfg.AI.Lookup(ProviderGLM)
	require.True(t, ok)
	assert.Equal(t, "from-config", glm.APIKey)
}

func TestLoadMalformedProviderFile(t *testing.T) {
	tmpDir := isolate(t)

	path := filepath.Join(tmpDir, "providers.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"providers": {"qwen": {"apiKey": "k",}}`), 0600))
	writeJSON(t, filepath.Join(tmpDir, "habits", "config.json"), map[string]any{
		"addr": "127.0.0.1:9000",
		"ai": map[string]any{
			"providers": map[string]any{"glm": map[string]any{"apiKey": "from-config"}},
		},
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Error(t, cfg.AI.ProviderErr)

	_, ok := cfg.AI.Lookup(ProviderQwen)
	assert.False(t, ok)
	glm, ok := cfg.AI.Lookup(ProviderGLM)
	require.True(t, ok)
	assert.Equal(t, "from-config", glm.APIKey)
}

func TestLookupRequiresKey(t *testing.T) {
	ai := AIConfig{Providers: map[string]ProviderConfig{"qwen": {DefaultModel: "qwen-plus"}}}

	_, ok := ai.Lookup(ProviderQwen)
	assert.False(t, ok)
	_, ok = ai.Lookup(ProviderGLM)
	assert.False(t, ok)
}

func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := isolate(t)

	configDir := filepath.Join(tmpDir, "habits")
	require.NoError(t, os.MkdirAll(configDir, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.json"), []byte("invalid json"), 0600))

	_, err := Load()
	assert.Error(t, err)
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	assert.Equal(t, filepath.Join("/tmp/xdg-config", "habits", "config.json"), GetConfigPath())
}
