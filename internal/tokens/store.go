package tokens

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/authcore-io/authcore/internal"
)

// Purpose selects the key namespace and TTL of a token.
type Purpose string

const (
	// PurposeVerifyEmail tokens confirm ownership of a registration email.
	PurposeVerifyEmail Purpose = "veem"
	// PurposeResetPassword tokens authorize entry into the reset flow.
	PurposeResetPassword Purpose = "repw"
	// PurposeResetPending tickets bridge a redeemed reset token and the
	// password-change submission. Keyed by ticket, valued by subject id.
	PurposeResetPending Purpose = "repd"
)

var (
	// ErrTokenNotFound covers never-issued, expired, and already-consumed tokens.
	ErrTokenNotFound = errors.New("token not found")
	// ErrTokenMismatch is returned when a live token exists but the candidate differs.
	ErrTokenMismatch = errors.New("token mismatch")
	// ErrRedisUnavailable wraps transport and scripting failures.
	ErrRedisUnavailable = errors.New("token redis unavailable")
)

// redeemLua atomically performs GET -> compare -> DEL on a single-use token.
// Splitting those steps lets two concurrent redemptions both observe the
// stored value before either deletes it.
//
// KEYS[1] = token key
// ARGV[1] = candidate value
var redeemLua = redis.NewScript(`
local stored = redis.call('GET', KEYS[1])
if not stored then
  return {err='not_found'}
end
if stored ~= ARGV[1] then
  return {err='mismatch'}
end
redis.call('DEL', KEYS[1])
return stored
`)

// takeLua atomically fetches and deletes a ticket value.
//
// KEYS[1] = ticket key
var takeLua = redis.NewScript(`
local stored = redis.call('GET', KEYS[1])
if not stored then
  return {err='not_found'}
end
redis.call('DEL', KEYS[1])
return stored
`)

// Config carries externally tunable token policy.
type Config struct {
	// TTL per purpose. Missing purposes fall back to DefaultTTL.
	TTL map[Purpose]time.Duration
	// DefaultTTL applies when a purpose has no explicit TTL. The reference
	// policy is 8 hours.
	DefaultTTL time.Duration
	// TokenBytes is the entropy per token; rendered as 2x hex characters.
	TokenBytes int
}

// Store issues and redeems single-use, TTL-bound tokens keyed by purpose and
// subject. At most one token is live per (purpose, subject) pair.
type Store struct {
	redis redis.UniversalClient
	cfg   Config
}

func NewStore(redisClient redis.UniversalClient, cfg Config) *Store {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 8 * time.Hour
	}
	if cfg.TokenBytes <= 0 {
		cfg.TokenBytes = internal.TokenByteLength
	}
	return &Store{redis: redisClient, cfg: cfg}
}

func (s *Store) key(purpose Purpose, subject string) string {
	return string(purpose) + ":" + subject
}

func (s *Store) ttl(purpose Purpose) time.Duration {
	if ttl, ok := s.cfg.TTL[purpose]; ok && ttl > 0 {
		return ttl
	}
	return s.cfg.DefaultTTL
}

// Issue generates a fresh token for (purpose, subjectID), overwriting any
// pending token for the pair, and returns it.
func (s *Store) Issue(ctx context.Context, purpose Purpose, subjectID string) (string, error) {
	token, err := internal.NewToken(s.cfg.TokenBytes)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if err := s.redis.Set(ctx, s.key(purpose, subjectID), token, s.ttl(purpose)).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return token, nil
}

// Redeem consumes the token for (purpose, subjectID) if candidate matches.
// The compare-and-delete runs as one Lua script; a token can be redeemed
// exactly once no matter how many redemptions race.
func (s *Store) Redeem(ctx context.Context, purpose Purpose, subjectID, candidate string) error {
	result, err := redeemLua.Run(ctx, s.redis, []string{s.key(purpose, subjectID)}, candidate).Result()
	if err != nil {
		switch err.Error() {
		case "not_found":
			return ErrTokenNotFound
		case "mismatch":
			return ErrTokenMismatch
		default:
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	stored, ok := result.(string)
	if !ok {
		return fmt.Errorf("%w: unexpected lua result type", ErrRedisUnavailable)
	}

	// Final constant-time comparison in Go as defense-in-depth
	// (Lua already checked, but Lua string comparison is not constant-time)
	if subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) != 1 {
		return ErrTokenMismatch
	}
	return nil
}

// IssueTicket stores value under a fresh random ticket key and returns the
// ticket. Used for the reset-pending purpose, where the ticket is the lookup
// key and the subject id is the payload.
func (s *Store) IssueTicket(ctx context.Context, purpose Purpose, value string) (string, error) {
	ticket, err := internal.NewToken(s.cfg.TokenBytes)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if err := s.redis.Set(ctx, s.key(purpose, ticket), value, s.ttl(purpose)).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return ticket, nil
}

// RedeemTicket atomically fetches and deletes the value stored under ticket.
func (s *Store) RedeemTicket(ctx context.Context, purpose Purpose, ticket string) (string, error) {
	result, err := takeLua.Run(ctx, s.redis, []string{s.key(purpose, ticket)}).Result()
	if err != nil {
		if err.Error() == "not_found" {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	value, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("%w: unexpected lua result type", ErrRedisUnavailable)
	}
	return value, nil
}

// Drop discards any pending token for (purpose, subjectID).
func (s *Store) Drop(ctx context.Context, purpose Purpose, subjectID string) error {
	if err := s.redis.Del(ctx, s.key(purpose, subjectID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
