package models

import "time"

type AIMode string

const (
	AIModeDirect AIMode = "direct"
	AIModeAgent  AIMode = "agent"
)

type AIProvider string

const (
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderAnthropic AIProvider = "anthropic"
)

// Settings is one user's generation preferences. The document id is the user id.
type Settings struct {
	UserID     string     `json:"userId" firestore:"-"`
	AIMode     AIMode     `json:"aiMode" firestore:"aiMode"`
	AIProvider AIProvider `json:"aiProvider" firestore:"aiProvider"`
	CreatedAt  time.Time  `json:"createdAt" firestore:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt" firestore:"updatedAt"`
}

// DefaultSettings are used for anonymous callers and on first read.
func DefaultSettings(userID string) *Settings {
	return &Settings{UserID: userID, AIMode: AIModeDirect, AIProvider: AIProviderOpenAI}
}

// UpdateSettingsRequest is the body of PATCH /api/settings.
type UpdateSettingsRequest struct {
	AIProvider AIProvider `json:"aiProvider" binding:"required,oneof=openai anthropic"`
	AIMode     *AIMode    `json:"aiMode,omitempty" binding:"omitempty,oneof=direct agent"`
}
