package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"research-paper-ai/internal/domain/ports/adapter"

	"github.com/pkoukk/tiktoken-go"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.GenerationAdapter = (*AnthropicAdapter)(nil)

// AnthropicAdapter implements adapter.GenerationAdapter against the Messages
// API with raw HTTP: x-api-key auth, pinned anthropic-version header, and the
// provider timeout as the only timeout boundary of a stage call.
type AnthropicAdapter struct {
	apiKey    string
	base      string // e.g., https://api.anthropic.com
	model     string
	maxTokens int
	client    *http.Client
}

func NewAnthropicAdapter(apiKey, base, model string, maxTokens int, timeout time.Duration) (*AnthropicAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic api key empty")
	}
	if base == "" {
		base = "https://api.anthropic.com"
	}
	base = strings.TrimRight(base, "/")
	base = strings.TrimSuffix(base, "/v1")
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &AnthropicAdapter{
		apiKey:    apiKey,
		base:      base,
		model:     model,
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

func (a *AnthropicAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{a.model}, nil
}

func (a *AnthropicAdapter) GetModelInfo(model string) (adapter.ModelInfo, error) {
	if model == "" {
		model = a.model
	}
	return adapter.ModelInfo{
		Name:        model,
		Description: "Anthropic Messages API model",
		MaxTokens:   a.maxTokens,
		Supports:    []string{"text"},
	}, nil
}

func (a *AnthropicAdapter) DefaultModel() string { return a.model }

// CountTokens estimates with cl100k_base; Anthropic has no public local
// tokenizer, so this is a best-effort budget guard, not an exact count.
func (a *AnthropicAdapter) CountTokens(ctx context.Context, text string) (int, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

func (a *AnthropicAdapter) Generate(ctx context.Context, role, context_, task string) (string, error) {
	type message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	reqBody := struct {
		Model     string    `json:"model"`
		MaxTokens int       `json:"max_tokens"`
		System    string    `json:"system,omitempty"`
		Messages  []message `json:"messages"`
	}{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System:    systemPrompt(role),
		Messages:  []message{{Role: "user", Content: composeInput(context_, task)}},
	}

	b, _ := json.Marshal(reqBody)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, a.base+"/v1/messages", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("anthropic http %d", resp.StatusCode)
	}

	var payload struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	for _, c := range payload.Content {
		if c.Text != "" {
			return c.Text, nil
		}
	}
	return "", errors.New("no content in response")
}
