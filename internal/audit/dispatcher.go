package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int
	// DropIfFull sheds events under backpressure instead of blocking the
	// request path.
	DropIfFull bool
}

// Dispatcher decouples producers from sink latency: Emit enqueues and
// returns, one goroutine delivers in order. Events are stamped on enqueue,
// not on delivery, so queueing delay never skews the recorded time.
type Dispatcher struct {
	cfg     Config
	sink    Sink
	queue   chan Event
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	dropped atomic.Uint64
	once    sync.Once
}

// NewDispatcher returns nil when auditing is disabled; a nil Dispatcher is
// safe to Emit on and does nothing.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		cfg:    cfg,
		sink:   sink,
		queue:  make(chan Event, cfg.BufferSize),
		ctx:    ctx,
		cancel: cancel,
	}

	d.wg.Add(1)
	go d.deliver()

	return d
}

func (d *Dispatcher) deliver() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(d.ctx, event)
		case <-d.ctx.Done():
			d.drainRemaining()
			return
		}
	}
}

// drainRemaining flushes events that were queued before Close. The
// dispatcher context is already canceled at this point, so deliver with a
// fresh one to keep context-aware sinks from skipping the tail.
func (d *Dispatcher) drainRemaining() {
	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

// Emit queues event for delivery. A zero Timestamp is stamped here, so no
// event reaches a sink unstamped regardless of how it was constructed.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.ctx.Err() != nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if d.cfg.DropIfFull {
		select {
		case d.queue <- event:
		default:
			d.dropped.Add(1)
		}
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case d.queue <- event:
	case <-ctx.Done():
	case <-d.ctx.Done():
	}
}

// Close flushes buffered events and stops the dispatch goroutine.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() {
		d.cancel()
		d.wg.Wait()
	})
}

// Dropped reports events discarded under DropIfFull backpressure.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
