package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/authcore-io/authcore/internal"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionCorrupt is returned when a stored blob cannot be decoded.
	ErrSessionCorrupt = errors.New("session corrupt")
	// ErrRedisUnavailable wraps Redis transport failures.
	ErrRedisUnavailable = errors.New("session redis unavailable")
)

// regenerateLua moves a session blob from its old id to a new one in a
// single script, so the old id is never valid concurrently with the new one
// and a crash cannot leave both alive.
//
// KEYS[1] = old session key
// KEYS[2] = new session key
// ARGV[1] = fallback TTL in milliseconds
var regenerateLua = redis.NewScript(`
local blob = redis.call('GET', KEYS[1])
if not blob then
  return {err='not_found'}
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl <= 0 then
  ttl = tonumber(ARGV[1])
end
redis.call('DEL', KEYS[1])
redis.call('SET', KEYS[2], blob, 'PX', ttl)
return blob
`)

// Store is the Redis-backed session store. All mutating operations are
// single round trips or single scripts; there is no session state in
// process memory.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewStore creates a session store. prefix namespaces the keys; ttl is the
// session cookie lifetime.
func NewStore(redisClient redis.UniversalClient, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = "ases"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{
		redis:  redisClient,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *Store) key(id string) string {
	return s.prefix + ":" + id
}

// TTL reports the configured session lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create persists a fresh anonymous session with a new id and CSRF token.
func (s *Store) Create(ctx context.Context) (*Session, error) {
	sid, err := internal.NewSessionID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	csrf, err := internal.NewCSRFToken()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	now := time.Now()
	sess := &Session{
		ID:        sid.String(),
		CSRFToken: csrf,
		Data:      map[string]string{},
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}

	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get loads the session stored under id.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := internal.ParseSessionID(id); err != nil {
		return nil, ErrSessionNotFound
	}

	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sess, err := Decode(data)
	if err != nil {
		return nil, err
	}
	sess.ID = id
	return sess, nil
}

// Save writes the session back under its current id, preserving the
// remaining lifetime recorded in ExpiresAt.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	blob, err := Encode(sess)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionCorrupt, err)
	}

	ttl := time.Until(time.Unix(sess.ExpiresAt, 0))
	if ttl <= 0 {
		return ErrSessionNotFound
	}

	if err := s.redis.Set(ctx, s.key(sess.ID), blob, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Regenerate issues a new id for the session stored under oldID and
// invalidates the old id, atomically. Everything in the blob, including any
// non-auth data, is carried over. Callers attach the principal only after
// Regenerate returns.
func (s *Store) Regenerate(ctx context.Context, oldID string) (*Session, error) {
	if _, err := internal.ParseSessionID(oldID); err != nil {
		return nil, ErrSessionNotFound
	}

	sid, err := internal.NewSessionID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	newID := sid.String()

	result, err := regenerateLua.Run(ctx, s.redis,
		[]string{s.key(oldID), s.key(newID)},
		s.ttl.Milliseconds(),
	).Result()
	if err != nil {
		if err.Error() == "not_found" {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	blob, ok := result.(string)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected lua result type", ErrRedisUnavailable)
	}

	sess, err := Decode([]byte(blob))
	if err != nil {
		return nil, err
	}
	sess.ID = newID
	return sess, nil
}

// Destroy removes the session. Destroying an unknown id is not an error.
func (s *Store) Destroy(ctx context.Context, id string) error {
	if _, err := internal.ParseSessionID(id); err != nil {
		return nil
	}
	if err := s.redis.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
