package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, cfg), mr
}

func TestCheckIssueEnforcesWindowBudget(t *testing.T) {
	limiter, _ := newTestLimiter(t, Config{Enabled: true, MaxPerWindow: 3, Window: time.Hour})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := limiter.CheckIssue(ctx, "veem", "subject-1"); err != nil {
			t.Fatalf("issue %d: %v", i+1, err)
		}
	}
	if err := limiter.CheckIssue(ctx, "veem", "subject-1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("over budget: got %v, want ErrRateLimited", err)
	}

	// Other subjects and purposes count separately.
	if err := limiter.CheckIssue(ctx, "veem", "subject-2"); err != nil {
		t.Fatalf("different subject: %v", err)
	}
	if err := limiter.CheckIssue(ctx, "repw", "subject-1"); err != nil {
		t.Fatalf("different purpose: %v", err)
	}
}

func TestCheckIssueWindowExpires(t *testing.T) {
	limiter, mr := newTestLimiter(t, Config{Enabled: true, MaxPerWindow: 1, Window: time.Minute})
	ctx := context.Background()

	if err := limiter.CheckIssue(ctx, "repw", "subject-1"); err != nil {
		t.Fatalf("first issue: %v", err)
	}
	if err := limiter.CheckIssue(ctx, "repw", "subject-1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("second issue: got %v, want ErrRateLimited", err)
	}

	mr.FastForward(time.Minute + time.Second)

	if err := limiter.CheckIssue(ctx, "repw", "subject-1"); err != nil {
		t.Fatalf("after window: %v", err)
	}
}

func TestCheckIssueDisabledAndNil(t *testing.T) {
	limiter, _ := newTestLimiter(t, Config{Enabled: false, MaxPerWindow: 1, Window: time.Minute})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := limiter.CheckIssue(ctx, "veem", "subject-1"); err != nil {
			t.Fatalf("disabled limiter: %v", err)
		}
	}

	var nilLimiter *Limiter
	if err := nilLimiter.CheckIssue(ctx, "veem", "subject-1"); err != nil {
		t.Fatalf("nil limiter: %v", err)
	}
}

func TestCheckIssueRedisDown(t *testing.T) {
	limiter, mr := newTestLimiter(t, Config{Enabled: true, MaxPerWindow: 1, Window: time.Minute})
	mr.Close()

	if err := limiter.CheckIssue(context.Background(), "veem", "subject-1"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("redis down: got %v, want ErrRedisUnavailable", err)
	}
}
