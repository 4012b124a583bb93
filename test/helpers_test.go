//go:build integration
// +build integration

package test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	authcore "github.com/authcore-io/authcore"
	"github.com/authcore-io/authcore/password"
)

// newIntegrationEngine builds a full engine against miniredis with in-memory
// stores and a token-capturing notifier. Hash parameters are lowered so the
// suite stays fast.
func newIntegrationEngine(t *testing.T) (*authcore.Engine, *captureNotifier, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := authcore.DefaultConfig()
	cfg.Password = password.Config{
		Argon2:      password.Argon2Params{Memory: 8192, Time: 1, Parallelism: 1, KeyLength: 32},
		PBKDF2:      password.PBKDF2Params{Iterations: 10000, KeyLength: 32},
		SaltLength:  16,
		MaxInFlight: 4,
	}
	cfg.Audit.Enabled = false

	notifier := &captureNotifier{}

	engine, err := authcore.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithIdentityStore(newMemIdentityStore()).
		WithProfileStore(newMemProfileStore()).
		WithNotifier(notifier).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}

	return engine, notifier, func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	}
}

type captureNotifier struct {
	mu          sync.Mutex
	verifyToken string
	resetToken  string
}

func (n *captureNotifier) SendVerification(_ context.Context, _, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.verifyToken = token
	return nil
}

func (n *captureNotifier) SendPasswordReset(_ context.Context, _, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resetToken = token
	return nil
}

func (n *captureNotifier) lastVerify() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.verifyToken
}

func (n *captureNotifier) lastReset() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.resetToken
}

type memIdentityStore struct {
	mu      sync.RWMutex
	byID    map[string]authcore.Identity
	byEmail map[string]string
}

func newMemIdentityStore() *memIdentityStore {
	return &memIdentityStore{
		byID:    make(map[string]authcore.Identity),
		byEmail: make(map[string]string),
	}
}

func (s *memIdentityStore) Insert(_ context.Context, identity *authcore.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(identity.Email)
	if _, ok := s.byEmail[key]; ok {
		return authcore.ErrDuplicateEmail
	}
	s.byID[identity.ID] = *identity
	s.byEmail[key] = identity.ID
	return nil
}

func (s *memIdentityStore) GetByID(_ context.Context, id string) (*authcore.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.byID[id]
	if !ok {
		return nil, authcore.ErrStoreNotFound
	}
	return &identity, nil
}

func (s *memIdentityStore) GetByEmail(_ context.Context, email string) (*authcore.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, authcore.ErrStoreNotFound
	}
	identity := s.byID[id]
	return &identity, nil
}

func (s *memIdentityStore) Update(_ context.Context, identity *authcore.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.byID[identity.ID]
	if !ok {
		return authcore.ErrStoreNotFound
	}
	if prev.Email != identity.Email {
		delete(s.byEmail, strings.ToLower(prev.Email))
		s.byEmail[strings.ToLower(identity.Email)] = identity.ID
	}
	s.byID[identity.ID] = *identity
	return nil
}

func (s *memIdentityStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if identity, ok := s.byID[id]; ok {
		delete(s.byEmail, strings.ToLower(identity.Email))
		delete(s.byID, id)
	}
	return nil
}

type memProfileStore struct {
	mu   sync.RWMutex
	byID map[string]authcore.Profile
}

func newMemProfileStore() *memProfileStore {
	return &memProfileStore{byID: make(map[string]authcore.Profile)}
}

func (s *memProfileStore) Insert(_ context.Context, profile *authcore.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[profile.ID] = *profile
	return nil
}

func (s *memProfileStore) GetByID(_ context.Context, id string) (*authcore.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.byID[id]
	if !ok {
		return nil, authcore.ErrStoreNotFound
	}
	return &profile, nil
}

func (s *memProfileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

// waitToken polls for a captured token; notifier sends happen on the request
// goroutine so this normally returns immediately.
func waitToken(t *testing.T, get func() string) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if tok := get(); tok != "" {
			return tok
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("no token captured")
	return ""
}
