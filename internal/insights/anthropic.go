// ABOUTME: Insight provider for Anthropic-compatible messages endpoints.
// ABOUTME: Defaults to the GLM endpoint and sends a single user message.
package insights

import (
	"context"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	// DefaultGLMBaseURL is the Anthropic-compatible GLM endpoint root.
	DefaultGLMBaseURL = "https://open.bigmodel.cn/api/anthropic"
	// DefaultGLMModel is used when no model is configured.
	DefaultGLMModel = "glm-4.7"

	glmMaxTokens = 1000
)

// AnthropicProvider calls a messages endpoint through the Anthropic SDK.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

// NewAnthropicProvider creates a provider. Empty model and baseURL use the
// GLM defaults. A nil httpClient uses the SDK default.
func NewAnthropicProvider(apiKey, model, baseURL string, httpClient *http.Client) *AnthropicProvider {
	if model == "" {
		model = DefaultGLMModel
	}
	if baseURL == "" {
		baseURL = DefaultGLMBaseURL
	}

	// The SDK reads ANTHROPIC_API_KEY into X-Api-Key; that key must never
	// reach a non-Anthropic endpoint.
	opts := []option.RequestOption{
		option.WithHeaderDel("X-Api-Key"),
		option.WithAuthToken(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

// Name implements Provider.
func (p *AnthropicProvider) Name() string { return "glm" }

// Model implements Provider.
func (p *AnthropicProvider) Model() string { return p.model }

// Style implements Provider.
func (p *AnthropicProvider) Style() PromptStyle { return StyleCoach }

// Generate sends the prompt as one user message and returns the first
// content block's text.
func (p *AnthropicProvider) Generate(ctx context.Context, prompt string) (string, error) {
	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: glmMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("glm messages: %w", err)
	}

	if len(message.Content) == 0 {
		return NoInsightsText, nil
	}
	content := message.Content[0]
	if content.Type != "text" || content.Text == "" {
		return NoInsightsText, nil
	}
	return content.Text, nil
}
