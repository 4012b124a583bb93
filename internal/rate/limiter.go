package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRateLimited reports an exhausted issuance budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps Redis transport failures.
	ErrRedisUnavailable = errors.New("rate redis unavailable")
)

// Config holds issuance limiter tuning parameters.
type Config struct {
	Enabled      bool
	MaxPerWindow int
	Window       time.Duration
}

// Limiter bounds how often verification and reset tokens can be issued for
// one subject, so the outbound notifier cannot be driven as a mail cannon.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates an issuance [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// CheckIssue records one issuance for (purpose, subject) and reports whether
// the window budget is exceeded.
func (l *Limiter) CheckIssue(ctx context.Context, purpose, subject string) error {
	if l == nil || !l.config.Enabled {
		return nil
	}

	count, err := l.incrementWithTTL(ctx, issueKey(purpose, subject), l.config.Window)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxPerWindow) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}

func issueKey(purpose, subject string) string {
	return "ail:" + purpose + ":" + subject
}
