package db

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"launchkit-backend-go/internal/config"
)

// fsClient is the process-wide Firestore client.
var fsClient *firestore.Client

// InitFirestore initializes the Firebase Admin SDK and sets up the Firestore client.
// Credentials come from a service account file, a base64 encoded service account JSON,
// or Application Default Credentials, in that order.
func InitFirestore(ctx context.Context, appConfig *config.Config, logger *zap.Logger) error {
	if appConfig == nil {
		return errors.New("InitFirestore: appConfig cannot be nil")
	}
	if fsClient != nil {
		return nil
	}

	var opts []option.ClientOption
	switch {
	case appConfig.GoogleApplicationCredentials != "":
		logger.Info("Initializing Firebase with credentials file", zap.String("path", appConfig.GoogleApplicationCredentials))
		if _, err := os.Stat(appConfig.GoogleApplicationCredentials); os.IsNotExist(err) {
			logger.Warn("Credentials file does not exist; falling back to ambient credentials",
				zap.String("path", appConfig.GoogleApplicationCredentials))
		}
		opts = append(opts, option.WithCredentialsFile(appConfig.GoogleApplicationCredentials))
	case appConfig.FirebaseServiceAccountJSONBase64 != "":
		logger.Info("Initializing Firebase with base64 encoded service account JSON")
		decoded, err := base64.StdEncoding.DecodeString(appConfig.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return fmt.Errorf("failed to decode FIREBASE_SERVICE_ACCOUNT_JSON_BASE64: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(decoded))
	default:
		logger.Info("Initializing Firebase using Application Default Credentials")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: appConfig.FirebaseProjectID}, opts...)
	if err != nil {
		return fmt.Errorf("firebase.NewApp: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return fmt.Errorf("app.Firestore: %w", err)
	}
	fsClient = client
	logger.Info("Firestore client initialized", zap.String("projectId", appConfig.FirebaseProjectID))
	return nil
}

// GetFirestoreClient returns the process-wide Firestore client, or nil before InitFirestore.
func GetFirestoreClient() *firestore.Client {
	return fsClient
}

// SetFirestoreClient replaces the process-wide client. Tests use it to point repositories
// at the emulator.
func SetFirestoreClient(client *firestore.Client) {
	fsClient = client
}

// CloseFirestore releases the process-wide client. Safe to call more than once.
func CloseFirestore() error {
	if fsClient == nil {
		return nil
	}
	err := fsClient.Close()
	fsClient = nil
	return err
}
