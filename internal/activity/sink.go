// Package activity records append-only audit events for auth transitions.
// Recording is fire-and-forget: the primary login/logout path never waits
// on the activity log, and a failed write never changes the outcome the
// user already received.
package activity

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mindwell-hq/mindwell/internal/domain"
)

// Event is the wire-in shape handed to Record before it becomes a stored
// [domain.Activity] row.
type Event struct {
	UserID      uuid.UUID
	Type        domain.ActivityType
	Description string
	Metadata    map[string]string
	OccurredAt  time.Time
}

func (e Event) toActivity() *domain.Activity {
	occurred := e.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	return &domain.Activity{
		ID:          uuid.New(),
		UserID:      e.UserID,
		Type:        e.Type,
		Description: e.Description,
		Metadata:    e.Metadata,
		CreatedAt:   occurred,
	}
}

// Sink receives events from the recorder's worker.
type Sink interface {
	Emit(ctx context.Context, event Event) error
}

// NoopSink discards everything.
type NoopSink struct{}

func (NoopSink) Emit(context.Context, Event) error { return nil }

// Appender is the slice of the activity store the StoreSink needs.
type Appender interface {
	Append(ctx context.Context, activity *domain.Activity) error
}

// StoreSink persists events through an activity store.
type StoreSink struct {
	store Appender
}

func NewStoreSink(store Appender) *StoreSink {
	return &StoreSink{store: store}
}

func (s *StoreSink) Emit(ctx context.Context, event Event) error {
	return s.store.Append(ctx, event.toActivity())
}

// JSONWriterSink writes one JSON object per event, useful for tests and
// for shipping the log to stdout in development.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{writer: w}
}

func (s *JSONWriterSink) Emit(_ context.Context, event Event) error {
	if s == nil || s.writer == nil {
		return nil
	}
	record := struct {
		UserID      string            `json:"user_id"`
		Type        string            `json:"type"`
		Description string            `json:"description"`
		Metadata    map[string]string `json:"metadata,omitempty"`
		OccurredAt  time.Time         `json:"occurred_at"`
	}{
		UserID:      event.UserID.String(),
		Type:        string(event.Type),
		Description: event.Description,
		Metadata:    event.Metadata,
		OccurredAt:  event.OccurredAt,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.writer.Write(data); err != nil {
		return err
	}
	_, err = s.writer.Write([]byte("\n"))
	return err
}
