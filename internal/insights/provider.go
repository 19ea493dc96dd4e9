// ABOUTME: Provider interface and selection from configuration.
// ABOUTME: Selection happens once at startup; auto prefers qwen, then glm.
package insights

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/harperreed/habits/internal/config"
)

// NoInsightsText is returned when a provider answers without any text.
const NoInsightsText = "No insights generated"

// Provider generates insight text from a prompt.
type Provider interface {
	Name() string
	Model() string
	Style() PromptStyle
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrNoProvider is wrapped by every ConfigurationError.
var ErrNoProvider = errors.New("no AI provider configured")

// ConfigurationError reports why no provider could be selected.
type ConfigurationError struct {
	Preference string
	Reason     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s (AI_PROVIDER=%s): %s", ErrNoProvider, e.Preference, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrNoProvider
}

// SelectProvider resolves the configured preference to a provider. Only
// providers with an API key are considered.
func SelectProvider(cfg config.AIConfig, httpClient *http.Client) (Provider, error) {
	pref := cfg.Preference()

	if cfg.ProviderErr != nil && len(cfg.Providers) == 0 {
		return nil, &ConfigurationError{Preference: pref, Reason: cfg.ProviderErr.Error()}
	}

	var order []string
	switch pref {
	case config.ProviderAuto:
		order = []string{config.ProviderQwen, config.ProviderGLM}
	case config.ProviderQwen, config.ProviderGLM:
		order = []string{pref}
	default:
		return nil, &ConfigurationError{Preference: pref, Reason: "unknown provider; use auto, qwen, or glm"}
	}

	for _, name := range order {
		pc, ok := cfg.Lookup(name)
		if !ok {
			continue
		}
		switch name {
		case config.ProviderQwen:
			return NewDashScopeProvider(pc.APIKey, pc.DefaultModel, pc.BaseURL, httpClient), nil
		case config.ProviderGLM:
			return NewAnthropicProvider(pc.APIKey, pc.DefaultModel, pc.BaseURL, httpClient), nil
		}
	}

	return nil, &ConfigurationError{
		Preference: pref,
		Reason:     "set providers.qwen.apiKey or providers.glm.apiKey in " + providerFile(cfg),
	}
}

func providerFile(cfg config.AIConfig) string {
	if cfg.ProviderFile != "" {
		return cfg.ProviderFile
	}
	return config.DefaultProviderFile()
}
