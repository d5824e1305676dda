package cleanup

import (
	"context"
	"encoding/json"
	"errors"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/luminastudio/studio-backend/pkg/logger"
)

const eventTypeAttribute = "event_type"

// EventTypeStorageCleanup marks messages carrying storage paths to delete.
const EventTypeStorageCleanup = "STORAGE_CLEANUP"

// CleanupEvent is the wire payload published to the cleanup topic.
type CleanupEvent struct {
	Paths []string `json:"paths"`
}

// Publisher enqueues storage paths for asynchronous deletion. Publishing
// is best-effort: a failed publish is logged and the orphaned objects
// stay in the bucket until the next delete touches them.
type Publisher struct {
	topic *pubsub.Publisher
	logg  *logger.Logger
}

// NewPublisher wires a cleanup publisher to the configured topic.
func NewPublisher(topic *pubsub.Publisher, logg *logger.Logger) (*Publisher, error) {
	if topic == nil {
		return nil, errors.New("cleanup topic publisher is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Publisher{topic: topic, logg: logg}, nil
}

// EnqueueDeletes publishes one cleanup event for the given paths.
func (p *Publisher) EnqueueDeletes(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		return
	}

	data, err := json.Marshal(CleanupEvent{Paths: paths})
	if err != nil {
		p.logg.Error(ctx, "marshal cleanup event", err)
		return
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{eventTypeAttribute: EventTypeStorageCleanup},
	})
	if _, err := result.Get(ctx); err != nil {
		logCtx := p.logg.WithFields(ctx, map[string]any{"paths": len(paths)})
		p.logg.Error(logCtx, "publish cleanup event failed", err)
	}
}
