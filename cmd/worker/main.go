package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"launchkit-backend-go/internal/config"
	"launchkit-backend-go/internal/logger"
	"launchkit-backend-go/internal/worker"
	"launchkit-backend-go/pkg/mailer"
	"launchkit-backend-go/pkg/messagequeue"
)

func main() {
	appConfig, err := config.LoadWorkerConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load worker configuration: %v", err)
	}
	zapLogger, err := logger.New(appConfig.IsProduction())
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	m, err := mailer.New(mailer.Config{
		Host:     appConfig.SMTPHost,
		Port:     appConfig.SMTPPort,
		User:     appConfig.SMTPUser,
		Password: appConfig.SMTPPass,
		From:     appConfig.MailFrom,
	})
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to configure mailer", zap.Error(err))
	}

	mq, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: appConfig.RabbitMQURL}, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer mq.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := worker.NewMailHandler(m, zapLogger)
	zapLogger.Info("Mail worker started", zap.String("queue", appConfig.EventsQueue))
	if err := mq.Consume(ctx, appConfig.EventsQueue, handler.Handle); err != nil && !errors.Is(err, context.Canceled) {
		zapLogger.Error("Mail worker stopped", zap.Error(err))
		return
	}
	zapLogger.Info("Mail worker exiting gracefully.")
}
