package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"launchkit-backend-go/internal/core"
	"launchkit-backend-go/internal/middleware"
	"launchkit-backend-go/internal/models"
)

// AccountHandler serves the signed-in user's settings, plan and dashboard.
type AccountHandler struct {
	settingsService core.SettingsService
	planService     core.PlanService
	statsService    core.StatsService
	logger          *zap.Logger
}

func NewAccountHandler(ss core.SettingsService, ps core.PlanService, sts core.StatsService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{settingsService: ss, planService: ps, statsService: sts, logger: logger}
}

// GetSettings handles GET /api/settings
func (h *AccountHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}
	c.JSON(http.StatusOK, SettingsResponse{Settings: settings})
}

// UpdateSettings handles PATCH /api/settings
func (h *AccountHandler) UpdateSettings(c *gin.Context) {
	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	settings, err := h.settingsService.Update(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}
	c.JSON(http.StatusOK, SettingsResponse{Settings: settings})
}

// GetPlan handles GET /api/plan
func (h *AccountHandler) GetPlan(c *gin.Context) {
	info, err := h.planService.Info(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}
	c.JSON(http.StatusOK, info)
}

// GetDashboard handles GET /api/dashboard
func (h *AccountHandler) GetDashboard(c *gin.Context) {
	dash, err := h.statsService.Dashboard(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondInternal(c, h.logger, "Failed to load dashboard", err)
		return
	}
	c.JSON(http.StatusOK, dash)
}
