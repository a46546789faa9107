package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"launchkit-backend-go/internal/core"
	"launchkit-backend-go/internal/models"
)

type WaitlistHandler struct {
	waitlistService core.WaitlistService
	logger          *zap.Logger
}

func NewWaitlistHandler(ws core.WaitlistService, logger *zap.Logger) *WaitlistHandler {
	return &WaitlistHandler{waitlistService: ws, logger: logger}
}

// Join handles POST /api/waitlist
func (h *WaitlistHandler) Join(c *gin.Context) {
	var req models.JoinWaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	entry, err := h.waitlistService.Join(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}
	c.JSON(http.StatusCreated, WaitlistResponse{Success: true, Entry: entry})
}
