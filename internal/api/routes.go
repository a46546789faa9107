package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"launchkit-backend-go/internal/core"
	"launchkit-backend-go/internal/middleware"
)

// Services bundles the core services the handlers depend on.
type Services struct {
	Analyses   core.AnalysisService
	Strategies core.StrategyService
	Cards      core.CardService
	Settings   core.SettingsService
	Plans      core.PlanService
	Users      core.UserService
	Waitlist   core.WaitlistService
	Stats      core.StatsService
}

// SetupRoutes registers every route. Global middleware (logging, recovery, CORS) is applied
// to the router by the caller beforehand.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	verifier middleware.TokenVerifier,
	webhookVerifier WebhookVerifier,
	services Services,
) {
	useJSONFieldNames()
	authMW := middleware.NewAuthMiddleware(verifier, logger)
	requireAdmin := middleware.RequireAdmin(services.Users, logger)

	analysisHandler := NewAnalysisHandler(services.Analyses, logger)
	strategyHandler := NewStrategyHandler(services.Strategies, services.Cards, logger)
	accountHandler := NewAccountHandler(services.Settings, services.Plans, services.Stats, logger)
	adminHandler := NewAdminHandler(services.Stats, services.Waitlist, logger)
	waitlistHandler := NewWaitlistHandler(services.Waitlist, logger)
	webhookHandler := NewWebhookHandler(webhookVerifier, services.Users, logger)

	api := router.Group("/api")
	{
		api.POST("/icp-scrape", authMW.OptionalAuth(), analysisHandler.Create)
		api.GET("/icp-scrape", authMW.RequireAuth(), analysisHandler.List)
		api.GET("/icp-scrape/:id", authMW.OptionalAuth(), analysisHandler.Get)

		api.POST("/gtm-strategy", authMW.OptionalAuth(), strategyHandler.Generate)
		api.GET("/gtm-strategy", authMW.RequireAuth(), strategyHandler.List)
		api.GET("/gtm-strategy/:id", authMW.OptionalAuth(), strategyHandler.Get)

		api.POST("/icp-card", authMW.OptionalAuth(), strategyHandler.GenerateCard)

		api.GET("/settings", authMW.RequireAuth(), accountHandler.GetSettings)
		api.PATCH("/settings", authMW.RequireAuth(), accountHandler.UpdateSettings)
		api.GET("/plan", authMW.RequireAuth(), accountHandler.GetPlan)
		api.GET("/dashboard", authMW.RequireAuth(), accountHandler.GetDashboard)

		api.GET("/admin/stats", authMW.RequireAuth(), requireAdmin, adminHandler.GetStats)
		api.GET("/waitlist/stats", authMW.RequireAuth(), requireAdmin, adminHandler.GetWaitlistStats)

		// Public. Webhook deliveries are authenticated by their signature.
		api.POST("/waitlist", waitlistHandler.Join)
		api.POST("/webhooks/clerk", webhookHandler.HandleClerk)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "LaunchKit backend is healthy."})
	})

	logger.Info("API routes configured successfully under /api and /health.")
}
