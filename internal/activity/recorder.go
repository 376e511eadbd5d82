package activity

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Config controls the recorder's buffering behavior.
type Config struct {
	// BufferSize is the channel capacity between Record and the worker.
	BufferSize int
	// OnDrop, when set, is invoked once per dropped event (full buffer or
	// closed recorder). Used to feed a metrics counter.
	OnDrop func()
}

// Recorder dispatches activity events to a sink on a background goroutine.
// Record never blocks the caller: a full buffer drops the event and counts
// the drop instead. Delivery may complete after the HTTP response that
// triggered it has already been sent.
type Recorder struct {
	cfg       Config
	sink      Sink
	log       *zap.Logger
	ch        chan Event
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewRecorder starts the background worker. A nil sink falls back to
// [NoopSink].
func NewRecorder(cfg Config, sink Sink, log *zap.Logger) *Recorder {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 64
	}
	if sink == nil {
		sink = NoopSink{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	r := &Recorder{
		cfg:  cfg,
		sink: sink,
		log:  log.Named("activity"),
		ch:   make(chan Event, cfg.BufferSize),
		done: make(chan struct{}),
	}

	r.wg.Add(1)
	go r.run()

	return r
}

func (r *Recorder) run() {
	defer r.wg.Done()

	for {
		select {
		case event := <-r.ch:
			r.emit(event)
		case <-r.done:
			for {
				select {
				case event := <-r.ch:
					r.emit(event)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) emit(event Event) {
	if err := r.sink.Emit(context.Background(), event); err != nil {
		r.log.Warn("activity record failed",
			zap.String("type", string(event.Type)),
			zap.String("user_id", event.UserID.String()),
			zap.Error(err))
	}
}

// Record enqueues an event without blocking. Events offered to a full
// buffer or a closed recorder are dropped and counted.
func (r *Recorder) Record(event Event) {
	if r == nil || r.closed.Load() {
		r.drop()
		return
	}

	select {
	case r.ch <- event:
	case <-r.done:
		r.drop()
	default:
		r.drop()
	}
}

// RecordSync writes an event straight through the sink, bypassing the
// queue. Registration uses this: its activity row is part of the success
// path, unlike login's.
func (r *Recorder) RecordSync(ctx context.Context, event Event) error {
	if r == nil {
		return nil
	}
	return r.sink.Emit(ctx, event)
}

func (r *Recorder) drop() {
	if r == nil {
		return
	}
	r.dropped.Add(1)
	if r.cfg.OnDrop != nil {
		r.cfg.OnDrop()
	}
}

// Close stops the worker after draining any buffered events.
func (r *Recorder) Close() {
	if r == nil {
		return
	}
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		close(r.done)
		r.wg.Wait()
	})
}

// Dropped reports how many events were discarded since startup.
func (r *Recorder) Dropped() uint64 {
	if r == nil {
		return 0
	}
	return r.dropped.Load()
}
