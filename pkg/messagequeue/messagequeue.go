package messagequeue

import "context"

// Message is one delivery handed to a consumer handler.
type Message struct {
	ID   string
	Type string
	Body []byte
}

// Handler processes a delivery. Returning an error rejects the message without requeue.
type Handler func(ctx context.Context, msg Message) error

// MessageQueue defines the interface for message queue services.
type MessageQueue interface {
	Publish(ctx context.Context, queueName string, msg Message) error
	// Consume blocks until ctx is done or the delivery channel closes.
	Consume(ctx context.Context, queueName string, handler Handler) error
	Close() error
}
