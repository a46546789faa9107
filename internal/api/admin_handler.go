package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"launchkit-backend-go/internal/core"
)

// AdminHandler serves the admin-only aggregate endpoints.
type AdminHandler struct {
	statsService    core.StatsService
	waitlistService core.WaitlistService
	logger          *zap.Logger
}

func NewAdminHandler(sts core.StatsService, ws core.WaitlistService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{statsService: sts, waitlistService: ws, logger: logger}
}

// GetStats handles GET /api/admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.Admin(c.Request.Context())
	if err != nil {
		respondInternal(c, h.logger, "Failed to load admin statistics", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetWaitlistStats handles GET /api/waitlist/stats
func (h *AdminHandler) GetWaitlistStats(c *gin.Context) {
	stats, err := h.waitlistService.Stats(c.Request.Context())
	if err != nil {
		respondInternal(c, h.logger, "Failed to load waitlist statistics", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
