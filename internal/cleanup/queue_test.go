package cleanup

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewQueue(client)
}

func TestEnqueueDrain(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	if err := q.Enqueue(ctx, "identity", "u1"); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := q.Enqueue(ctx, "profile", "u2"); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	// Duplicate enqueue must not grow the backlog.
	if err := q.Enqueue(ctx, "identity", "u1"); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	n, err := q.Len(ctx)
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 2 {
		t.Fatalf("backlog size %d, want 2", n)
	}

	orphans, err := q.Drain(ctx, 10)
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if len(orphans) != 2 {
		t.Fatalf("drained %d orphans, want 2", len(orphans))
	}
	seen := map[Orphan]bool{}
	for _, o := range orphans {
		seen[o] = true
	}
	if !seen[Orphan{Kind: "identity", ID: "u1"}] || !seen[Orphan{Kind: "profile", ID: "u2"}] {
		t.Fatalf("unexpected orphans: %v", orphans)
	}

	// Drained members are gone.
	n, _ = q.Len(ctx)
	if n != 0 {
		t.Fatalf("backlog size after drain %d, want 0", n)
	}
}

func TestDrainEmpty(t *testing.T) {
	q := newTestQueue(t)
	orphans, err := q.Drain(context.Background(), 5)
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if len(orphans) != 0 {
		t.Fatalf("drained %v from empty queue", orphans)
	}
}
