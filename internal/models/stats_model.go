package models

// DailyCount is one point of a per-day time series (date is YYYY-MM-DD, UTC).
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// AdminStats is the response of GET /api/admin/stats.
type AdminStats struct {
	TotalUsers        int                    `json:"totalUsers"`
	ProUsers          int                    `json:"proUsers"`
	TotalAnalyses     int                    `json:"totalAnalyses"`
	AnalysesByStatus  map[AnalysisStatus]int `json:"analysesByStatus"`
	TotalStrategies   int                    `json:"totalStrategies"`
	TotalWaitlist     int                    `json:"totalWaitlist"`
	AnalysesPerDay    []DailyCount           `json:"analysesPerDay"`
	StrategiesPerDay  []DailyCount           `json:"strategiesPerDay"`
	SignupsPerDay     []DailyCount           `json:"signupsPerDay"`
	AverageConfidence float64                `json:"averageConfidence"`
}

// WaitlistStats is the response of GET /api/waitlist/stats.
type WaitlistStats struct {
	Total         int              `json:"total"`
	Last7Days     int              `json:"last7Days"`
	EntriesPerDay []DailyCount     `json:"entriesPerDay"`
	Recent        []*WaitlistEntry `json:"recent"`
}

// Dashboard is the response of GET /api/dashboard.
type Dashboard struct {
	Plan             PlanInfo       `json:"plan"`
	AnalysisCount    int            `json:"analysisCount"`
	StrategyCount    int            `json:"strategyCount"`
	RecentAnalyses   []*ICPAnalysis `json:"recentAnalyses"`
	RecentStrategies []*GTMStrategy `json:"recentStrategies"`
}
