package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"launchkit-backend-go/internal/core"
	"launchkit-backend-go/internal/models"
)

// StrategyHandler handles GTM strategy and ICP card endpoints.
type StrategyHandler struct {
	strategyService core.StrategyService
	cardService     core.CardService
	logger          *zap.Logger
}

func NewStrategyHandler(ss core.StrategyService, cs core.CardService, logger *zap.Logger) *StrategyHandler {
	return &StrategyHandler{strategyService: ss, cardService: cs, logger: logger}
}

// Generate handles POST /api/gtm-strategy. An existing strategy is answered with 200,
// a new one with 201.
func (h *StrategyHandler) Generate(c *gin.Context) {
	var req models.GenerateStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	strategy, created, err := h.strategyService.Generate(c.Request.Context(), callerFrom(c), req.ICPAnalysisID)
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, StrategyResponse{Success: true, Strategy: strategy})
}

// List handles GET /api/gtm-strategy
func (h *StrategyHandler) List(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	filter := models.StrategyFilter{ICPAnalysisID: c.Query("icpAnalysisId"), Limit: limit}
	if raw := c.Query("includeDetails"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "includeDetails must be true or false"})
			return
		}
		filter.IncludeDetails = include
	}

	strategies, err := h.strategyService.List(c.Request.Context(), callerFrom(c), filter)
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}
	if strategies == nil {
		strategies = []*models.GTMStrategy{}
	}
	c.JSON(http.StatusOK, StrategyListResponse{Strategies: strategies})
}

// Get handles GET /api/gtm-strategy/:id
func (h *StrategyHandler) Get(c *gin.Context) {
	strategy, err := h.strategyService.Get(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"strategy": strategy})
}

// GenerateCard handles POST /api/icp-card
func (h *StrategyHandler) GenerateCard(c *gin.Context) {
	var req models.GenerateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	card, err := h.cardService.Generate(c.Request.Context(), callerFrom(c), req.ICPAnalysisID)
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}
	c.JSON(http.StatusOK, CardResponse{Success: true, Card: card})
}
