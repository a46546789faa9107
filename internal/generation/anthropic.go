package generation

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const anthropicVersion = "2023-06-01"

// AnthropicGenerator calls the Messages API.
type AnthropicGenerator struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

func NewAnthropicGenerator(cfg Config, client *http.Client, logger *zap.Logger) *AnthropicGenerator {
	baseURL := cfg.AnthropicBaseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	model := cfg.AnthropicModel
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	return &AnthropicGenerator{
		apiKey:  cfg.AnthropicAPIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  client,
		logger:  logger,
	}
}

func (g *AnthropicGenerator) Name() string { return "anthropic" }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (any, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY is not set", ErrNotConfigured)
	}

	start := time.Now()
	var resp anthropicResponse
	err := postJSON(ctx, g.client, "Anthropic", g.baseURL+"/v1/messages",
		map[string]string{
			"x-api-key":         g.apiKey,
			"anthropic-version": anthropicVersion,
		},
		anthropicRequest{
			Model:     g.model,
			MaxTokens: maxTokens,
			System:    systemPrompt,
			Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
		}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("%w: Anthropic returned no content", ErrUpstream)
	}
	if resp.Content[0].Type != "text" {
		return nil, fmt.Errorf("%w: unexpected Anthropic content block type %q", ErrUpstream, resp.Content[0].Type)
	}

	g.logger.Debug("Anthropic generation completed",
		zap.String("model", g.model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("outputLength", len(resp.Content[0].Text)))
	return parseOutput("Anthropic", resp.Content[0].Text)
}
