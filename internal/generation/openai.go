package generation

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// OpenAIGenerator calls the chat completions API in JSON object mode.
type OpenAIGenerator struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

func NewOpenAIGenerator(cfg Config, client *http.Client, logger *zap.Logger) *OpenAIGenerator {
	baseURL := cfg.OpenAIBaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	model := cfg.OpenAIModel
	if model == "" {
		model = "gpt-4o"
	}
	return &OpenAIGenerator{
		apiKey:  cfg.OpenAIAPIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  client,
		logger:  logger,
	}
}

func (g *OpenAIGenerator) Name() string { return "openai" }

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model          string            `json:"model"`
	Messages       []openAIMessage   `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (any, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrNotConfigured)
	}

	start := time.Now()
	var resp openAIResponse
	err := postJSON(ctx, g.client, "OpenAI", g.baseURL+"/v1/chat/completions",
		map[string]string{"Authorization": "Bearer " + g.apiKey},
		openAIRequest{
			Model: g.model,
			Messages: []openAIMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: prompt},
			},
			ResponseFormat: map[string]string{"type": "json_object"},
			Temperature:    temperature,
			MaxTokens:      maxTokens,
		}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: OpenAI returned no choices", ErrUpstream)
	}

	g.logger.Debug("OpenAI generation completed",
		zap.String("model", g.model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("outputLength", len(resp.Choices[0].Message.Content)))
	return parseOutput("OpenAI", resp.Choices[0].Message.Content)
}
