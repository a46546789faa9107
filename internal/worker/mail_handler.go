// Package worker consumes domain events off the queue and performs their side effects.
package worker

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"launchkit-backend-go/internal/events"
	"launchkit-backend-go/pkg/messagequeue"
)

// WelcomeMailer sends the waitlist confirmation. *mailer.Mailer satisfies it.
type WelcomeMailer interface {
	SendWaitlistWelcome(recipient, ventureName string) error
}

// MailHandler turns events into transactional email.
type MailHandler struct {
	mailer WelcomeMailer
	logger *zap.Logger
}

func NewMailHandler(m WelcomeMailer, logger *zap.Logger) *MailHandler {
	return &MailHandler{mailer: m, logger: logger}
}

// Handle is a messagequeue.Handler. A returned error dead-letters the message.
func (h *MailHandler) Handle(_ context.Context, msg messagequeue.Message) error {
	event, err := events.Decode(msg.Body)
	if err != nil {
		return err
	}

	switch event.Type {
	case events.WaitlistJoined:
		email, _ := event.Data["email"].(string)
		if email == "" {
			return errors.New("waitlist event has no email")
		}
		ventureName, _ := event.Data["ventureName"].(string)
		if err := h.mailer.SendWaitlistWelcome(email, ventureName); err != nil {
			return fmt.Errorf("failed to send waitlist welcome for event %s: %w", event.ID, err)
		}
		h.logger.Info("Sent waitlist welcome", zap.String("eventId", event.ID))
	default:
		h.logger.Debug("No mail for event", zap.String("type", event.Type), zap.String("eventId", event.ID))
	}
	return nil
}
