package audit

import (
	"context"
	"testing"
	"time"
)

func TestDispatcherDeliversInOrderAndStamps(t *testing.T) {
	sink := NewChannelSink(8)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8}, sink)
	defer d.Close()
	ctx := context.Background()

	d.Emit(ctx, Event{EventType: "first"})
	d.Emit(ctx, Event{EventType: "second"})

	for _, want := range []string{"first", "second"} {
		select {
		case got := <-sink.Events():
			if got.EventType != want {
				t.Fatalf("got %q, want %q", got.EventType, want)
			}
			if got.Timestamp.IsZero() {
				t.Fatalf("event %q delivered with zero timestamp", want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("event %q never delivered", want)
		}
	}
}

func TestDispatcherKeepsCallerTimestamp(t *testing.T) {
	sink := NewChannelSink(1)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1}, sink)
	defer d.Close()

	stamped := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d.Emit(context.Background(), Event{EventType: "login", Timestamp: stamped})

	select {
	case got := <-sink.Events():
		if !got.Timestamp.Equal(stamped) {
			t.Fatalf("timestamp rewritten: got %v, want %v", got.Timestamp, stamped)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event never delivered")
	}
}

// stallSink holds every delivery until released, to keep the queue full.
type stallSink struct {
	release chan struct{}
}

func (s *stallSink) Emit(ctx context.Context, _ Event) {
	select {
	case <-s.release:
	case <-ctx.Done():
	}
}

func TestDispatcherDropsUnderBackpressure(t *testing.T) {
	sink := &stallSink{release: make(chan struct{})}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		d.Emit(ctx, Event{EventType: "burst"})
	}

	if d.Dropped() == 0 {
		t.Fatal("no drops recorded under backpressure")
	}

	close(sink.release)
	d.Close()
}

func TestDispatcherCloseFlushesQueue(t *testing.T) {
	sink := NewChannelSink(4)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 4}, sink)

	d.Emit(context.Background(), Event{EventType: "pending"})
	d.Close()

	select {
	case got := <-sink.Events():
		if got.EventType != "pending" {
			t.Fatalf("got %q, want pending", got.EventType)
		}
	default:
		t.Fatal("queued event lost on close")
	}

	// Emitting after close is a no-op.
	d.Emit(context.Background(), Event{EventType: "late"})
}

func TestNilDispatcherIsInert(t *testing.T) {
	var d *Dispatcher
	d.Emit(context.Background(), Event{EventType: "event"})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher reported drops")
	}

	if got := NewDispatcher(Config{Enabled: false}, nil); got != nil {
		t.Fatal("disabled config must return a nil dispatcher")
	}
}
