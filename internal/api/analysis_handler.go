package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"launchkit-backend-go/internal/core"
	"launchkit-backend-go/internal/middleware"
	"launchkit-backend-go/internal/models"
)

// AnalysisHandler handles the ICP analysis endpoints.
type AnalysisHandler struct {
	analysisService core.AnalysisService
	logger          *zap.Logger
}

func NewAnalysisHandler(as core.AnalysisService, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{analysisService: as, logger: logger}
}

// callerFrom builds the core caller from the auth middleware's context values.
func callerFrom(c *gin.Context) core.Caller {
	return core.Caller{UserID: middleware.UserID(c), Email: middleware.UserEmail(c)}
}

// parseLimit reads ?limit=N. Zero means the service default.
func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
		return 0, false
	}
	return limit, true
}

// Create handles POST /api/icp-scrape
func (h *AnalysisHandler) Create(c *gin.Context) {
	var req models.CreateAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	analysis, err := h.analysisService.Create(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		respondError(c, h.logger, err, analysis)
		return
	}
	c.JSON(http.StatusCreated, AnalysisResponse{Success: true, Analysis: analysis})
}

// List handles GET /api/icp-scrape
func (h *AnalysisHandler) List(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	analyses, err := h.analysisService.List(c.Request.Context(), callerFrom(c), limit)
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}
	if analyses == nil {
		analyses = []*models.ICPAnalysis{}
	}
	c.JSON(http.StatusOK, AnalysisListResponse{Analyses: analyses})
}

// Get handles GET /api/icp-scrape/:id
func (h *AnalysisHandler) Get(c *gin.Context) {
	analysis, err := h.analysisService.Get(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": analysis})
}
