// Package generation turns a prompt into parsed JSON through one of three interchangeable
// model backends.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"launchkit-backend-go/internal/config"
	"launchkit-backend-go/internal/llmjson"
	"launchkit-backend-go/internal/models"
)

var (
	// ErrNotConfigured is returned when a backend's credentials are missing.
	ErrNotConfigured = errors.New("generation backend not configured")
	// ErrUpstream marks failures talking to a model backend.
	ErrUpstream = errors.New("AI provider request failed")
)

const (
	maxTokens        = 4096
	temperature      = 0.7
	maxErrorBodySize = 512
	systemPrompt     = "You are an expert startup go-to-market strategist. Always respond with a single valid JSON object and no prose."
)

// Generator produces parsed JSON for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (any, error)
	Name() string
}

// APIError is a non-2xx response from a model backend.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (HTTP %d): %s", e.Provider, e.StatusCode, e.Body)
}

func (e *APIError) Is(target error) bool { return target == ErrUpstream }

// Config carries backend endpoints and credentials.
type Config struct {
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIModel      string
	AnthropicAPIKey  string
	AnthropicBaseURL string
	AnthropicModel   string
	AgentAPIURL      string
	AgentAPIKey      string
	AgentID          string
	AgentUserID      string
	Timeout          time.Duration
}

// ConfigFrom maps application configuration to backend configuration.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		OpenAIAPIKey:     cfg.OpenAIAPIKey,
		OpenAIBaseURL:    cfg.OpenAIBaseURL,
		OpenAIModel:      cfg.OpenAIModel,
		AnthropicAPIKey:  cfg.AnthropicAPIKey,
		AnthropicBaseURL: cfg.AnthropicBaseURL,
		AnthropicModel:   cfg.AnthropicModel,
		AgentAPIURL:      cfg.AgentAPIURL,
		AgentAPIKey:      cfg.AgentAPIKey,
		AgentID:          cfg.AgentID,
		AgentUserID:      cfg.AgentUserID,
		Timeout:          cfg.LLMTimeout(),
	}
}

// Selector picks a Generator from a user's settings.
type Selector struct {
	openai    Generator
	anthropic Generator
	agent     Generator
}

// NewSelector builds the three production backends sharing one HTTP client.
func NewSelector(cfg Config, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	return &Selector{
		openai:    NewOpenAIGenerator(cfg, client, logger),
		anthropic: NewAnthropicGenerator(cfg, client, logger),
		agent:     NewAgentGenerator(cfg, client, logger),
	}
}

// NewSelectorWith builds a Selector from explicit backends.
func NewSelectorWith(openai, anthropic, agent Generator) *Selector {
	return &Selector{openai: openai, anthropic: anthropic, agent: agent}
}

// For returns the agent backend when aiMode is agent, otherwise the backend for aiProvider,
// defaulting to OpenAI. Nil settings mean defaults.
func (s *Selector) For(settings *models.Settings) Generator {
	if settings == nil {
		return s.openai
	}
	if settings.AIMode == models.AIModeAgent {
		return s.agent
	}
	if settings.AIProvider == models.AIProviderAnthropic {
		return s.anthropic
	}
	return s.openai
}

// postJSON sends body as JSON and decodes a 2xx response into out.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUpstream, provider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read %s response: %w", ErrUpstream, provider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(respBody)
		if len(snippet) > maxErrorBodySize {
			snippet = snippet[:maxErrorBodySize]
		}
		return &APIError{Provider: provider, StatusCode: resp.StatusCode, Body: snippet}
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: failed to decode %s response: %w", ErrUpstream, provider, err)
	}
	return nil
}

func parseOutput(provider, text string) (any, error) {
	v, err := llmjson.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%s output: %w", provider, err)
	}
	return v, nil
}
