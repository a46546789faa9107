package models

import "time"

// AnalysisStatus is the lifecycle state of an ICPAnalysis.
type AnalysisStatus string

const (
	AnalysisPending   AnalysisStatus = "pending"
	AnalysisCompleted AnalysisStatus = "completed"
	AnalysisFailed    AnalysisStatus = "failed"
	// AnalysisRetrying is part of the stored schema and the admin aggregation but no code
	// path writes it.
	AnalysisRetrying AnalysisStatus = "retrying"
)

// AllAnalysisStatuses lists every status the admin dashboard aggregates over.
var AllAnalysisStatuses = []AnalysisStatus{AnalysisPending, AnalysisCompleted, AnalysisFailed, AnalysisRetrying}

// ICPAnalysis is one ideal-customer-profile run for a website.
// UserID is empty for anonymous callers.
type ICPAnalysis struct {
	ID                 string                 `json:"id" firestore:"-"`
	UserID             string                 `json:"userId,omitempty" firestore:"userId"`
	URL                string                 `json:"url" firestore:"url"`
	ProductDescription string                 `json:"productDescription,omitempty" firestore:"productDescription,omitempty"`
	TargetRegion       string                 `json:"targetRegion,omitempty" firestore:"targetRegion,omitempty"`
	Status             AnalysisStatus         `json:"status" firestore:"status"`
	ScrapedContent     string                 `json:"scrapedContent,omitempty" firestore:"scrapedContent,omitempty"` // JSON string
	ICPResult          map[string]interface{} `json:"icpResult,omitempty" firestore:"icpResult,omitempty"`
	PrimaryICP         string                 `json:"primaryICP,omitempty" firestore:"primaryICP,omitempty"`
	ConfidenceScore    *int                   `json:"confidenceScore,omitempty" firestore:"confidenceScore,omitempty"`
	ErrorMessage       string                 `json:"errorMessage,omitempty" firestore:"errorMessage,omitempty"`
	CreatedAt          time.Time              `json:"createdAt" firestore:"createdAt"`
	UpdatedAt          time.Time              `json:"updatedAt" firestore:"updatedAt"`
}

// OwnedBy reports whether userID may read the analysis. Anonymous analyses are
// readable by anyone holding the id.
func (a *ICPAnalysis) OwnedBy(userID string) bool {
	return a.UserID == "" || a.UserID == userID
}

// CreateAnalysisRequest is the body of POST /api/icp-scrape.
type CreateAnalysisRequest struct {
	URL                string `json:"url" binding:"required,max=2048"`
	ProductDescription string `json:"productDescription,omitempty" binding:"max=2000"`
	TargetRegion       string `json:"targetRegion,omitempty" binding:"max=200"`
}
