package cleanup

import (
	"context"
	"encoding/json"
	"errors"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/luminastudio/studio-backend/pkg/logger"
)

type objectDeleter interface {
	DeleteAll(ctx context.Context, objects []string) error
}

type processResult struct {
	ack  bool
	nack bool
}

// Consumer drains the cleanup subscription and deletes the referenced
// storage objects. Deletion is idempotent: objects already removed
// out-of-band count as deleted.
type Consumer struct {
	storage      objectDeleter
	subscription *pubsub.Subscriber
	logg         *logger.Logger
}

// NewConsumer wires the storage sweeper's dependencies.
func NewConsumer(storage objectDeleter, subscription *pubsub.Subscriber, logg *logger.Logger) (*Consumer, error) {
	if storage == nil {
		return nil, errors.New("storage client is required")
	}
	if subscription == nil {
		return nil, errors.New("cleanup subscription is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Consumer{
		storage:      storage,
		subscription: subscription,
		logg:         logg,
	}, nil
}

// Run processes cleanup events until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": msg.Attributes[eventTypeAttribute],
	})

	if msg.Attributes[eventTypeAttribute] != EventTypeStorageCleanup {
		c.logg.Info(logCtx, "skipping non-cleanup event")
		return processResult{ack: true}
	}

	var event CleanupEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		c.logg.Error(logCtx, "failed to unmarshal cleanup event", err)
		return processResult{ack: true}
	}
	if len(event.Paths) == 0 {
		c.logg.Warn(logCtx, "cleanup event carries no paths")
		return processResult{ack: true}
	}

	logCtx = c.logg.WithFields(logCtx, map[string]any{"paths": len(event.Paths)})

	if err := c.storage.DeleteAll(ctx, event.Paths); err != nil {
		// Retry via redelivery; deletes are idempotent so a partial
		// failure is safe to replay.
		c.logg.Error(logCtx, "storage cleanup failed", err)
		return processResult{nack: true}
	}

	c.logg.Info(logCtx, "storage objects reclaimed")
	return processResult{ack: true}
}
