package core

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/example/trademind/pkg/messagequeue"
)

// Event types emitted by the services.
const (
	EventUserSignedUp   = "user.signed_up"
	EventUserSignedIn   = "user.signed_in"
	EventUserSignedOut  = "user.signed_out"
	EventTokenRefreshed = "user.token_refreshed"
	EventProfileCreated = "profile.created"
	EventProfileUpdated = "profile.updated"
	EventRecordAdded    = "record.added"
	EventAlertDisabled  = "alert.deactivated"
)

// Event is an activity notification published after a successful operation.
type Event struct {
	Type       string            `json:"type"`
	UserID     string            `json:"userId"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
}

// EventPublisher delivers events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// QueuePublisher publishes JSON encoded events to a message queue.
type QueuePublisher struct {
	mq     messagequeue.MessageQueue
	queue  string
	logger *zap.Logger
}

// NewQueuePublisher creates a QueuePublisher writing to queue.
func NewQueuePublisher(mq messagequeue.MessageQueue, queue string, logger *zap.Logger) *QueuePublisher {
	return &QueuePublisher{mq: mq, queue: queue, logger: logger}
}

func (p *QueuePublisher) Publish(_ context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.mq.Publish(p.queue, body)
}

// LogPublisher writes events to the log. It is used when no message queue is configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	p.logger.Debug("Event", zap.String("type", event.Type), zap.String("userID", event.UserID), zap.Any("attributes", event.Attributes))
	return nil
}

// publish sends an event and logs, but otherwise ignores, delivery failures.
func publish(ctx context.Context, publisher EventPublisher, logger *zap.Logger, eventType, userID string, attrs map[string]string) {
	if publisher == nil {
		return
	}
	event := Event{Type: eventType, UserID: userID, Attributes: attrs, OccurredAt: time.Now().UTC()}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event", zap.String("type", eventType), zap.String("userID", userID), zap.Error(err))
	}
}
