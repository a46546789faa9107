package api

import "launchkit-backend-go/internal/models"

// ErrorResponse is the body of every error returned by the API handlers.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	// Analysis is set when an analysis was stored before the request failed.
	Analysis *models.ICPAnalysis `json:"analysis,omitempty"`
}

type AnalysisResponse struct {
	Success  bool                `json:"success"`
	Analysis *models.ICPAnalysis `json:"analysis"`
}

type AnalysisListResponse struct {
	Analyses []*models.ICPAnalysis `json:"analyses"`
}

type StrategyResponse struct {
	Success  bool                `json:"success"`
	Strategy *models.GTMStrategy `json:"strategy"`
}

type StrategyListResponse struct {
	Strategies []*models.GTMStrategy `json:"strategies"`
}

type CardResponse struct {
	Success bool           `json:"success"`
	Card    map[string]any `json:"card"`
}

type SettingsResponse struct {
	Settings *models.Settings `json:"settings"`
}

type WaitlistResponse struct {
	Success bool                  `json:"success"`
	Entry   *models.WaitlistEntry `json:"entry"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
