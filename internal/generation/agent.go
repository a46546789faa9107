package generation

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AgentGenerator calls a hosted agent chat endpoint. Every call opens a fresh session.
type AgentGenerator struct {
	apiURL  string
	apiKey  string
	agentID string
	userID  string
	client  *http.Client
	logger  *zap.Logger
	now     func() time.Time
}

func NewAgentGenerator(cfg Config, client *http.Client, logger *zap.Logger) *AgentGenerator {
	userID := cfg.AgentUserID
	if userID == "" {
		userID = "launchkit"
	}
	return &AgentGenerator{
		apiURL:  cfg.AgentAPIURL,
		apiKey:  cfg.AgentAPIKey,
		agentID: cfg.AgentID,
		userID:  userID,
		client:  client,
		logger:  logger,
		now:     time.Now,
	}
}

func (g *AgentGenerator) Name() string { return "agent" }

type agentRequest struct {
	UserID    string `json:"user_id"`
	AgentID   string `json:"agent_id"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type agentResponse struct {
	Response string `json:"response"`
}

// SessionID returns {agentId}-{unixMillis}-{random}.
func (g *AgentGenerator) SessionID() string {
	return fmt.Sprintf("%s-%d-%s", g.agentID, g.now().UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (g *AgentGenerator) Generate(ctx context.Context, prompt string) (any, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("%w: AGENT_API_KEY is not set", ErrNotConfigured)
	}
	if g.agentID == "" {
		return nil, fmt.Errorf("%w: AGENT_ID is not set", ErrNotConfigured)
	}
	if g.apiURL == "" {
		return nil, fmt.Errorf("%w: AGENT_API_URL is not set", ErrNotConfigured)
	}

	start := time.Now()
	sessionID := g.SessionID()
	var resp agentResponse
	err := postJSON(ctx, g.client, "Agent", g.apiURL,
		map[string]string{"x-api-key": g.apiKey},
		agentRequest{
			UserID:    g.userID,
			AgentID:   g.agentID,
			SessionID: sessionID,
			Message:   prompt,
		}, &resp)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("Agent generation completed",
		zap.String("sessionId", sessionID),
		zap.Duration("latency", time.Since(start)),
		zap.Int("outputLength", len(resp.Response)))
	return parseOutput("Agent", resp.Response)
}
