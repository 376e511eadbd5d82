package activity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mindwell-hq/mindwell/internal/domain"
)

type collectSink struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (s *collectSink) Emit(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *collectSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

type blockSink struct {
	release chan struct{}
}

func (s *blockSink) Emit(context.Context, Event) error {
	<-s.release
	return nil
}

func loginEvent() Event {
	return Event{
		UserID:      uuid.New(),
		Type:        domain.ActivityLogin,
		Description: "Alice logged in",
		Metadata:    map[string]string{"ip_address": "203.0.113.7"},
	}
}

func TestRecordDeliversToSink(t *testing.T) {
	sink := &collectSink{}
	rec := NewRecorder(Config{BufferSize: 4}, sink, nil)

	rec.Record(loginEvent())
	rec.Close()

	if got := sink.len(); got != 1 {
		t.Fatalf("expected 1 delivered event, got %d", got)
	}
	if rec.Dropped() != 0 {
		t.Fatalf("expected no drops, got %d", rec.Dropped())
	}
}

func TestCloseDrainsBufferedEvents(t *testing.T) {
	sink := &collectSink{}
	rec := NewRecorder(Config{BufferSize: 16}, sink, nil)

	for i := 0; i < 10; i++ {
		rec.Record(loginEvent())
	}
	rec.Close()

	if got := sink.len(); got != 10 {
		t.Fatalf("expected all 10 events drained on close, got %d", got)
	}
}

func TestRecordNeverBlocksWhenBufferFull(t *testing.T) {
	sink := &blockSink{release: make(chan struct{})}
	var drops int
	rec := NewRecorder(Config{BufferSize: 1, OnDrop: func() { drops++ }}, sink, nil)

	// One event occupies the worker, one fills the buffer; everything
	// after that must come back immediately as a drop.
	finished := make(chan struct{})
	go func() {
		for i := 0; i < 8; i++ {
			rec.Record(loginEvent())
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Record blocked on a full buffer")
	}

	close(sink.release)
	rec.Close()

	if rec.Dropped() == 0 {
		t.Fatal("expected dropped events to be counted")
	}
	if uint64(drops) != rec.Dropped() {
		t.Fatalf("OnDrop fired %d times, dropped counter is %d", drops, rec.Dropped())
	}
}

func TestRecordAfterCloseDrops(t *testing.T) {
	sink := &collectSink{}
	rec := NewRecorder(Config{BufferSize: 4}, sink, nil)
	rec.Close()

	rec.Record(loginEvent())
	if rec.Dropped() != 1 {
		t.Fatalf("expected 1 drop after close, got %d", rec.Dropped())
	}
}

func TestSinkFailureIsSwallowed(t *testing.T) {
	sink := &collectSink{err: errors.New("db down")}
	rec := NewRecorder(Config{BufferSize: 4}, sink, nil)

	rec.Record(loginEvent())
	rec.Close()
	// No panic, no error surfaced; failure only goes to the log.
}

func TestRecordSyncReturnsSinkError(t *testing.T) {
	sink := &collectSink{err: errors.New("db down")}
	rec := NewRecorder(Config{BufferSize: 4}, sink, nil)
	defer rec.Close()

	if err := rec.RecordSync(context.Background(), loginEvent()); err == nil {
		t.Fatal("expected sync record to surface the sink error")
	}
}
