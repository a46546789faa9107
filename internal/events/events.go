// Package events publishes domain events for asynchronous consumers such as the mail worker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"launchkit-backend-go/pkg/messagequeue"
)

// Event types.
const (
	WaitlistJoined    = "waitlist.joined"
	AnalysisCompleted = "analysis.completed"
	AnalysisFailed    = "analysis.failed"
	StrategyCreated   = "strategy.created"
)

// Event is the JSON envelope placed on the queue.
type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurredAt"`
	Data       map[string]any `json:"data"`
}

// New stamps an event with a fresh ID and the current time.
func New(eventType string, data map[string]any) Event {
	return Event{ID: uuid.NewString(), Type: eventType, OccurredAt: time.Now().UTC(), Data: data}
}

// Decode parses a queue message body.
func Decode(body []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return Event{}, fmt.Errorf("invalid event payload: %w", err)
	}
	return e, nil
}

// Publisher emits events. Publishing is best effort; callers log and continue on error.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// QueuePublisher publishes events onto a single queue.
type QueuePublisher struct {
	mq     messagequeue.MessageQueue
	queue  string
	logger *zap.Logger
}

func NewQueuePublisher(mq messagequeue.MessageQueue, queue string, logger *zap.Logger) *QueuePublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueuePublisher{mq: mq, queue: queue, logger: logger}
}

func (p *QueuePublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", e.Type, err)
	}
	if err := p.mq.Publish(ctx, p.queue, messagequeue.Message{ID: e.ID, Type: e.Type, Body: body}); err != nil {
		return err
	}
	p.logger.Debug("Event published", zap.String("type", e.Type), zap.String("id", e.ID))
	return nil
}
