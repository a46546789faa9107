package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	svix "github.com/svix/svix-webhooks/go"
	"go.uber.org/zap"

	"launchkit-backend-go/internal/core"
	"launchkit-backend-go/internal/models"
)

const maxWebhookBodySize = 1 << 20

// WebhookVerifier checks a delivery's signature headers. *svix.Webhook satisfies it.
type WebhookVerifier interface {
	Verify(payload []byte, headers http.Header) error
}

// NewClerkWebhookVerifier returns a verifier for the identity provider's signing secret
// ("whsec_..." as shown in its dashboard).
func NewClerkWebhookVerifier(secret string) (WebhookVerifier, error) {
	if secret == "" {
		return nil, errors.New("webhook signing secret is empty")
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook signing secret: %w", err)
	}
	return wh, nil
}

// WebhookHandler mirrors identity provider users into the users collection.
type WebhookHandler struct {
	verifier    WebhookVerifier
	userService core.UserService
	logger      *zap.Logger
}

func NewWebhookHandler(verifier WebhookVerifier, us core.UserService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, userService: us, logger: logger}
}

type clerkEvent struct {
	Type string    `json:"type"`
	Data clerkUser `json:"data"`
}

type clerkEmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type clerkUser struct {
	ID                    string              `json:"id"`
	EmailAddresses        []clerkEmailAddress `json:"email_addresses"`
	PrimaryEmailAddressID string              `json:"primary_email_address_id"`
	FirstName             string              `json:"first_name"`
	LastName              string              `json:"last_name"`
	ImageURL              string              `json:"image_url"`
}

// primaryEmail returns the address flagged primary, else the first one.
func (u clerkUser) primaryEmail() string {
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

// HandleClerk handles POST /api/webhooks/clerk
func (h *WebhookHandler) HandleClerk(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodySize))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to read webhook body"})
		return
	}
	if err := h.verifier.Verify(payload, c.Request.Header); err != nil {
		h.logger.Warn("Rejected webhook with invalid signature", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid webhook signature"})
		return
	}

	var event clerkEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid webhook payload"})
		return
	}
	if event.Data.ID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Webhook payload has no user id"})
		return
	}

	log := h.logger.With(zap.String("eventType", event.Type), zap.String("userID", event.Data.ID))
	switch event.Type {
	case "user.created", "user.updated":
		_, err = h.userService.Upsert(c.Request.Context(), &models.User{
			ID:        event.Data.ID,
			Email:     event.Data.primaryEmail(),
			FirstName: event.Data.FirstName,
			LastName:  event.Data.LastName,
			ImageURL:  event.Data.ImageURL,
		})
	case "user.deleted":
		err = h.userService.Delete(c.Request.Context(), event.Data.ID)
	default:
		log.Debug("Ignoring webhook event")
		c.JSON(http.StatusOK, SuccessResponse{Success: true})
		return
	}
	if err != nil {
		respondInternal(c, log, "Failed to process webhook", err)
		return
	}
	log.Info("Processed webhook event")
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
