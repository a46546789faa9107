package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"launchkit-backend-go/internal/api"
	"launchkit-backend-go/internal/auth"
	"launchkit-backend-go/internal/config"
	"launchkit-backend-go/internal/core"
	"launchkit-backend-go/internal/db"
	"launchkit-backend-go/internal/events"
	"launchkit-backend-go/internal/generation"
	"launchkit-backend-go/internal/logger"
	"launchkit-backend-go/internal/middleware"
	"launchkit-backend-go/internal/prompts"
	"launchkit-backend-go/internal/scraper"
	"launchkit-backend-go/pkg/cache"
	"launchkit-backend-go/pkg/messagequeue"
)

func main() {
	// --- 1. Load Application Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	// --- 2. Initialize Logger (Zap) ---
	zapLogger, err := logger.New(appConfig.IsProduction())
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Application configuration loaded.", zap.String("appEnv", appConfig.AppEnv))

	// --- 3. Initialize Firestore ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	if err := db.InitFirestore(initCtx, appConfig, zapLogger); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firestore", zap.Error(err))
	}
	defer func() {
		if err := db.CloseFirestore(); err != nil {
			zapLogger.Warn("Failed to close Firestore client", zap.Error(err))
		}
	}()
	firestoreClient := db.GetFirestoreClient()

	// --- 4. Optional infrastructure: stats cache and event broker ---
	var statsCache cache.Cache = cache.NopCache{}
	if appConfig.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(initCtx, cache.NewRedisCacheConfig{
			Address:  appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
			Prefix:   "launchkit:",
		}, zapLogger)
		if err != nil {
			zapLogger.Warn("Redis unavailable, stats caching disabled", zap.Error(err))
		} else {
			statsCache = redisCache
			defer redisCache.Close()
		}
	}

	var publisher events.Publisher = events.NopPublisher{}
	if appConfig.RabbitMQURL != "" {
		mq, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: appConfig.RabbitMQURL}, zapLogger)
		if err != nil {
			zapLogger.Warn("RabbitMQ unavailable, domain events disabled", zap.Error(err))
		} else {
			publisher = events.NewQueuePublisher(mq, appConfig.EventsQueue, zapLogger)
			defer mq.Close()
		}
	}

	// --- 5. Initialize Repositories ---
	userRepo := db.NewFirestoreUserRepository(firestoreClient)
	analysisRepo := db.NewFirestoreAnalysisRepository(firestoreClient)
	strategyRepo := db.NewFirestoreStrategyRepository(firestoreClient)
	settingsRepo := db.NewFirestoreSettingsRepository(firestoreClient)
	waitlistRepo := db.NewFirestoreWaitlistRepository(firestoreClient)

	// --- 6. Initialize Services ---
	catalog := prompts.Default()
	selector := generation.NewSelector(generation.ConfigFrom(appConfig), zapLogger)
	extractor := scraper.NewHTTPExtractor(nil, zapLogger)

	userService := core.NewUserService(userRepo, appConfig.AdminEmailList(), zapLogger)
	settingsService := core.NewSettingsService(settingsRepo, zapLogger)
	planService := core.NewPlanService(userRepo, analysisRepo, strategyRepo, userService, appConfig.TrialMaxCreations, zapLogger)
	services := api.Services{
		Analyses:   core.NewAnalysisService(analysisRepo, extractor, catalog, selector, settingsService, planService, publisher, zapLogger),
		Strategies: core.NewStrategyService(strategyRepo, analysisRepo, catalog, selector, settingsService, planService, publisher, zapLogger),
		Cards:      core.NewCardService(analysisRepo, catalog, selector, settingsService, zapLogger),
		Settings:   settingsService,
		Plans:      planService,
		Users:      userService,
		Waitlist:   core.NewWaitlistService(waitlistRepo, publisher, zapLogger),
		Stats: core.NewStatsService(userRepo, analysisRepo, strategyRepo, waitlistRepo, planService,
			statsCache, appConfig.StatsCacheTTL(), zapLogger),
	}

	// --- 7. Session token and webhook verification ---
	verifier, err := auth.NewVerifier(context.Background(), appConfig.ClerkIssuer, appConfig.ClerkJWKSURL, appConfig.ClientOrigins())
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize session token verifier", zap.Error(err))
	}
	webhookVerifier, err := api.NewClerkWebhookVerifier(appConfig.ClerkWebhookSecret)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize webhook verifier", zap.Error(err))
	}

	// --- 8. Setup Gin HTTP Engine ---
	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger, appConfig.IsDevelopment()))
	if appConfig.ClientURL != "" {
		router.Use(middleware.CORSMiddleware(appConfig))
		zapLogger.Info("CORS Middleware enabled", zap.Strings("origins", appConfig.ClientOrigins()))
	} else {
		zapLogger.Warn("CORS Middleware SKIPPED: CLIENT_URL is not configured.")
	}

	api.SetupRoutes(router, zapLogger, verifier, webhookVerifier, services)

	// --- 9. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 10. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	// Generation requests can run for minutes.
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exiting gracefully.")
}
