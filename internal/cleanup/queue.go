package cleanup

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const queueKey = "aorph"

// Orphan is a row that survived a failed compensation and still needs to be
// deleted from its backing table.
type Orphan struct {
	Kind string
	ID   string
}

func (o Orphan) member() string {
	return o.Kind + ":" + o.ID
}

// Queue is a Redis-set backlog of orphaned rows. Membership is a set on
// purpose: re-enqueueing the same orphan is idempotent, and the cleanup pass
// can run concurrently because SPOP hands each member to exactly one worker.
type Queue struct {
	redis redis.UniversalClient
}

func NewQueue(client redis.UniversalClient) *Queue {
	return &Queue{redis: client}
}

// Enqueue records an orphan for a later cleanup pass.
func (q *Queue) Enqueue(ctx context.Context, kind, id string) error {
	if err := q.redis.SAdd(ctx, queueKey, Orphan{Kind: kind, ID: id}.member()).Err(); err != nil {
		return fmt.Errorf("cleanup: enqueue orphan: %w", err)
	}
	return nil
}

// Drain pops up to max orphans. Popped members are gone from the queue; a
// caller that fails to resolve one must re-enqueue it.
func (q *Queue) Drain(ctx context.Context, max int) ([]Orphan, error) {
	members, err := q.redis.SPopN(ctx, queueKey, int64(max)).Result()
	if err != nil {
		return nil, fmt.Errorf("cleanup: drain orphans: %w", err)
	}
	orphans := make([]Orphan, 0, len(members))
	for _, m := range members {
		kind, id, ok := strings.Cut(m, ":")
		if !ok || kind == "" || id == "" {
			// Unparseable member, drop it rather than loop forever.
			continue
		}
		orphans = append(orphans, Orphan{Kind: kind, ID: id})
	}
	return orphans, nil
}

// Len reports the current backlog size.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.redis.SCard(ctx, queueKey).Result()
}
