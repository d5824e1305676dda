package cleanup

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/luminastudio/studio-backend/pkg/logger"
)

type recordingDeleter struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (r *recordingDeleter) DeleteAll(ctx context.Context, objects []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, objects)
	return r.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func buildMessage(t *testing.T, paths []string) *pubsub.Message {
	t.Helper()
	data, err := json.Marshal(CleanupEvent{Paths: paths})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{eventTypeAttribute: EventTypeStorageCleanup},
	}
}

func newTestConsumer(t *testing.T, deleter *recordingDeleter) *Consumer {
	t.Helper()
	consumer, err := NewConsumer(deleter, &pubsub.Subscriber{}, testLogger())
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}
	return consumer
}

func TestNewConsumerRequiresDeps(t *testing.T) {
	logg := testLogger()
	if _, err := NewConsumer(nil, &pubsub.Subscriber{}, logg); err == nil {
		t.Fatal("expected error without storage")
	}
	if _, err := NewConsumer(&recordingDeleter{}, nil, logg); err == nil {
		t.Fatal("expected error without subscription")
	}
	if _, err := NewConsumer(&recordingDeleter{}, &pubsub.Subscriber{}, nil); err == nil {
		t.Fatal("expected error without logger")
	}
}

func TestConsumerDeletesAndAcks(t *testing.T) {
	deleter := &recordingDeleter{}
	consumer := newTestConsumer(t, deleter)

	paths := []string{
		"events/free/2026-08-14/1_ab_photo.jpg",
		"events/free/2026-08-14/1_ab_photo_thumb_150.jpg",
	}
	result := consumer.process(context.Background(), buildMessage(t, paths))

	if !result.ack || result.nack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(deleter.calls) != 1 || len(deleter.calls[0]) != 2 {
		t.Fatalf("expected one delete call with 2 paths, got %v", deleter.calls)
	}
}

func TestConsumerNacksOnDeleteFailure(t *testing.T) {
	// Deletes are idempotent, so redelivery after a partial failure is safe.
	deleter := &recordingDeleter{err: errors.New("storage down")}
	consumer := newTestConsumer(t, deleter)

	result := consumer.process(context.Background(), buildMessage(t, []string{"events/free/x.jpg"}))
	if !result.nack {
		t.Fatalf("expected nack, got %+v", result)
	}
}

func TestConsumerAcksForeignEvents(t *testing.T) {
	deleter := &recordingDeleter{}
	consumer := newTestConsumer(t, deleter)

	msg := buildMessage(t, []string{"events/free/x.jpg"})
	msg.Attributes[eventTypeAttribute] = "SOMETHING_ELSE"

	result := consumer.process(context.Background(), msg)
	if !result.ack {
		t.Fatalf("expected ack for foreign event, got %+v", result)
	}
	if len(deleter.calls) != 0 {
		t.Fatalf("expected no deletes, got %v", deleter.calls)
	}
}

func TestConsumerAcksMalformedPayload(t *testing.T) {
	// A payload that cannot parse will never parse; retrying is noise.
	deleter := &recordingDeleter{}
	consumer := newTestConsumer(t, deleter)

	msg := &pubsub.Message{
		Data:       []byte("{not json"),
		Attributes: map[string]string{eventTypeAttribute: EventTypeStorageCleanup},
	}
	result := consumer.process(context.Background(), msg)
	if !result.ack {
		t.Fatalf("expected ack for malformed payload, got %+v", result)
	}
	if len(deleter.calls) != 0 {
		t.Fatalf("expected no deletes, got %v", deleter.calls)
	}
}

func TestConsumerAcksEmptyPaths(t *testing.T) {
	deleter := &recordingDeleter{}
	consumer := newTestConsumer(t, deleter)

	result := consumer.process(context.Background(), buildMessage(t, nil))
	if !result.ack {
		t.Fatalf("expected ack for empty paths, got %+v", result)
	}
	if len(deleter.calls) != 0 {
		t.Fatalf("expected no deletes, got %v", deleter.calls)
	}
}
