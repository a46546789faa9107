package models

import "time"

// GTMStrategy holds the three generated stages derived from one ICPAnalysis.
type GTMStrategy struct {
	ID              string                 `json:"id" firestore:"-"`
	UserID          string                 `json:"userId,omitempty" firestore:"userId"`
	ICPAnalysisID   string                 `json:"icpAnalysisId" firestore:"icpAnalysisId"`
	GTMResult       map[string]interface{} `json:"gtmResult,omitempty" firestore:"gtmResult"`
	MessagingResult map[string]interface{} `json:"messagingResult,omitempty" firestore:"messagingResult"`
	ChecklistResult map[string]interface{} `json:"checklistResult,omitempty" firestore:"checklistResult"`
	CreatedAt       time.Time              `json:"createdAt" firestore:"createdAt"`

	// ICPAnalysis is joined in for detail reads; never stored.
	ICPAnalysis *ICPAnalysis `json:"icpAnalysis,omitempty" firestore:"-"`
}

// Summary returns a copy without the generated payloads.
func (s *GTMStrategy) Summary() *GTMStrategy {
	return &GTMStrategy{
		ID:            s.ID,
		UserID:        s.UserID,
		ICPAnalysisID: s.ICPAnalysisID,
		CreatedAt:     s.CreatedAt,
	}
}

// StrategyFilter narrows GET /api/gtm-strategy.
type StrategyFilter struct {
	ICPAnalysisID  string
	Limit          int
	IncludeDetails bool
}

// GenerateStrategyRequest is the body of POST /api/gtm-strategy.
type GenerateStrategyRequest struct {
	ICPAnalysisID string `json:"icpAnalysisId" binding:"required"`
}

// GenerateCardRequest is the body of POST /api/icp-card.
type GenerateCardRequest struct {
	ICPAnalysisID string `json:"icpAnalysisId" binding:"required"`
}
