// ABOUTME: Insight provider for the DashScope text-generation API (Qwen).
// ABOUTME: Sends a system and user message pair and reads output.text.
package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	// DefaultQwenURL is the DashScope generation endpoint.
	DefaultQwenURL = "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation"
	// DefaultQwenModel is used when no model is configured.
	DefaultQwenModel = "qwen-plus"

	// errorBodyLimit bounds how much of an error response is kept.
	errorBodyLimit = 512
)

// DashScopeProvider calls the DashScope generation endpoint.
type DashScopeProvider struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
}

// NewDashScopeProvider creates a provider. Empty model and url use the Qwen
// defaults. A nil httpClient uses http.DefaultClient.
func NewDashScopeProvider(apiKey, model, url string, httpClient *http.Client) *DashScopeProvider {
	if model == "" {
		model = DefaultQwenModel
	}
	if url == "" {
		url = DefaultQwenURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &DashScopeProvider{apiKey: apiKey, model: model, url: url, httpClient: httpClient}
}

// Name implements Provider.
func (p *DashScopeProvider) Name() string { return "qwen" }

// Model implements Provider.
func (p *DashScopeProvider) Model() string { return p.model }

// Style implements Provider.
func (p *DashScopeProvider) Style() PromptStyle { return StyleData }

type dashScopeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type dashScopeRequest struct {
	Model string `json:"model"`
	Input struct {
		Messages []dashScopeMessage `json:"messages"`
	} `json:"input"`
	Parameters struct {
		ResultFormat string `json:"result_format"`
	} `json:"parameters"`
}

type dashScopeResponse struct {
	Output struct {
		Text    string `json:"text"`
		Choices []struct {
			Message dashScopeMessage `json:"message"`
		} `json:"choices"`
	} `json:"output"`
}

// Generate posts the prompt and returns output.text, or the first choice's
// message content when text is empty.
func (p *DashScopeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	var body dashScopeRequest
	body.Model = p.model
	body.Input.Messages = []dashScopeMessage{
		{Role: "system", Content: SystemPrompt},
		{Role: "user", Content: prompt},
	}
	body.Parameters.ResultFormat = "message"

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode qwen request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create qwen request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("qwen request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return "", fmt.Errorf("qwen API error: %d - %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out dashScopeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode qwen response: %w", err)
	}

	if out.Output.Text != "" {
		return out.Output.Text, nil
	}
	if len(out.Output.Choices) > 0 && out.Output.Choices[0].Message.Content != "" {
		return out.Output.Choices[0].Message.Content, nil
	}
	return NoInsightsText, nil
}
