package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	authcore "github.com/authcore-io/authcore"
	"github.com/authcore-io/authcore/password"
)

/*
====================================
MINIMAL STORES
====================================
*/

type memIdentities struct {
	mu      sync.Mutex
	byID    map[string]*authcore.Identity
	byEmail map[string]string
}

func newMemIdentities() *memIdentities {
	return &memIdentities{byID: map[string]*authcore.Identity{}, byEmail: map[string]string{}}
}

func (s *memIdentities) Insert(ctx context.Context, id *authcore.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[id.Email]; ok {
		return authcore.ErrDuplicateEmail
	}
	cp := *id
	s.byID[id.ID] = &cp
	s.byEmail[id.Email] = id.ID
	return nil
}

func (s *memIdentities) GetByID(ctx context.Context, id string) (*authcore.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok {
		return nil, authcore.ErrStoreNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *memIdentities) GetByEmail(ctx context.Context, email string) (*authcore.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, authcore.ErrStoreNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *memIdentities) Update(ctx context.Context, id *authcore.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *id
	s.byID[id.ID] = &cp
	return nil
}

func (s *memIdentities) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

type memProfiles struct {
	mu sync.Mutex
	m  map[string]*authcore.Profile
}

func newMemProfiles() *memProfiles { return &memProfiles{m: map[string]*authcore.Profile{}} }

func (s *memProfiles) Insert(ctx context.Context, p *authcore.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.m[p.ID] = &cp
	return nil
}

func (s *memProfiles) GetByID(ctx context.Context, id string) (*authcore.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok {
		return nil, authcore.ErrStoreNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memProfiles) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

func newTestEngine(t *testing.T) *authcore.Engine {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	engine, err := authcore.New().
		WithConfig(testConfig()).
		WithRedis(client).
		WithIdentityStore(newMemIdentities()).
		WithProfileStore(newMemProfiles()).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func testConfig() authcore.Config {
	cfg := authcore.Config{}
	cfg.Password = password.Config{
		Argon2:      password.Argon2Params{Memory: 8192, Time: 1, Parallelism: 1, KeyLength: 32},
		PBKDF2:      password.PBKDF2Params{Iterations: 10000, KeyLength: 32},
		SaltLength:  16,
		MaxInFlight: 2,
	}
	cfg.Tokens.VerificationTTL = 8 * time.Hour
	cfg.Tokens.ResetTTL = 8 * time.Hour
	cfg.Tokens.ResetPendingTTL = 15 * time.Minute
	cfg.Tokens.TokenBytes = 20
	cfg.Session.RedisPrefix = "ases"
	cfg.Session.TTL = 24 * time.Hour
	cfg.Audit.Enabled = false
	return cfg
}

/*
====================================
SESSIONS MIDDLEWARE
====================================
*/

func echoSession() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok {
			http.Error(w, "no session", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(sess.ID))
	})
}

func TestSessionsCreatesAndReusesSession(t *testing.T) {
	engine := newTestEngine(t)
	handler := Sessions(engine, Config{})(echoSession())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("unexpected cookies: %v", cookies)
	}
	var sid, csrf *http.Cookie
	for _, c := range cookies {
		switch c.Name {
		case "asid":
			sid = c
		case "acsrf":
			csrf = c
		}
	}
	if sid == nil || !sid.HttpOnly {
		t.Fatalf("session cookie missing or readable: %v", cookies)
	}
	// The CSRF cookie must stay readable for scripts to echo it back.
	if csrf == nil || csrf.HttpOnly || csrf.Value == "" {
		t.Fatalf("csrf cookie missing or not readable: %v", cookies)
	}
	firstID := rec.Body.String()

	// Same cookie, same session, no Set-Cookie.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sid)
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req)
	if rec2.Body.String() != firstID {
		t.Fatal("session not reused")
	}
	if len(rec2.Result().Cookies()) != 0 {
		t.Fatal("cookie reissued for a live session")
	}
}

func TestSessionsReplacesUnknownCookie(t *testing.T) {
	engine := newTestEngine(t)
	handler := Sessions(engine, Config{})(echoSession())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "asid", Value: "AAAAAAAAAAAAAAAAAAAAAA"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if len(rec.Result().Cookies()) != 2 {
		t.Fatal("fresh cookies not issued for dead session")
	}
}

/*
====================================
GUARD
====================================
*/

type guardHarness struct {
	engine  *authcore.Engine
	handler http.Handler
	cookie  *http.Cookie
	csrf    string
}

func newGuardHarness(t *testing.T, cfg Config) *guardHarness {
	t.Helper()
	engine := newTestEngine(t)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	chain := Sessions(engine, cfg)(Guard(cfg)(ok))

	// Prime a session to get its cookie and CSRF token.
	sess, err := engine.StartSession(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return &guardHarness{
		engine:  engine,
		handler: chain,
		cookie:  &http.Cookie{Name: "asid", Value: sess.ID},
		csrf:    sess.CSRFToken,
	}
}

func (g *guardHarness) do(req *http.Request) *httptest.ResponseRecorder {
	req.AddCookie(g.cookie)
	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, req)
	return rec
}

func postReq(target, origin string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(""))
	req.Host = "example.com"
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestGuardPassesSafeMethodsUnchecked(t *testing.T) {
	g := newGuardHarness(t, Config{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if rec := g.do(req); rec.Code != http.StatusNoContent {
		t.Fatalf("GET blocked: %d", rec.Code)
	}
}

func TestGuardOriginMismatchRejected(t *testing.T) {
	g := newGuardHarness(t, Config{})

	req := postReq("/x", "https://evil.test")
	req.Header.Set("X-CSRF-Token", g.csrf)
	if rec := g.do(req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("cross-origin POST passed: %d", rec.Code)
	}

	// No Origin and no Referer is also a rejection.
	req = postReq("/x", "")
	req.Header.Set("X-CSRF-Token", g.csrf)
	if rec := g.do(req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("originless POST passed: %d", rec.Code)
	}
}

func TestGuardHonorsForwardedHost(t *testing.T) {
	g := newGuardHarness(t, Config{})

	req := postReq("/x", "https://public.example")
	req.Header.Set("X-Forwarded-Host", "public.example")
	req.Header.Set("X-CSRF-Token", g.csrf)
	if rec := g.do(req); rec.Code != http.StatusNoContent {
		t.Fatalf("forwarded-host POST blocked: %d", rec.Code)
	}
}

func TestGuardRefererFallback(t *testing.T) {
	g := newGuardHarness(t, Config{})

	req := postReq("/x", "")
	req.Header.Set("Referer", "https://example.com/login")
	req.Header.Set("X-CSRF-Token", g.csrf)
	if rec := g.do(req); rec.Code != http.StatusNoContent {
		t.Fatalf("referer POST blocked: %d", rec.Code)
	}
}

func TestGuardCSRFHeaderAndForm(t *testing.T) {
	g := newGuardHarness(t, Config{})

	// Header token passes.
	req := postReq("/x", "https://example.com")
	req.Header.Set("X-CSRF-Token", g.csrf)
	if rec := g.do(req); rec.Code != http.StatusNoContent {
		t.Fatalf("header token rejected: %d", rec.Code)
	}

	// Form token passes, for plain HTML posts.
	form := url.Values{"_csrf": {g.csrf}}
	req = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(form.Encode()))
	req.Host = "example.com"
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if rec := g.do(req); rec.Code != http.StatusNoContent {
		t.Fatalf("form token rejected: %d", rec.Code)
	}

	// Missing and wrong tokens fail.
	req = postReq("/x", "https://example.com")
	if rec := g.do(req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("tokenless POST passed: %d", rec.Code)
	}
	req = postReq("/x", "https://example.com")
	req.Header.Set("X-CSRF-Token", "not-the-token")
	if rec := g.do(req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token passed: %d", rec.Code)
	}
}

func TestGuardMobileSkipsCSRFNotOrigin(t *testing.T) {
	cfg := Config{
		IsMobile: func(r *http.Request) bool {
			return strings.Contains(r.Header.Get("User-Agent"), "Mobile")
		},
	}
	g := newGuardHarness(t, cfg)

	// Mobile with no CSRF token but same origin: allowed.
	req := postReq("/x", "https://example.com")
	req.Header.Set("User-Agent", "MyApp Mobile/1.0")
	if rec := g.do(req); rec.Code != http.StatusNoContent {
		t.Fatalf("mobile POST blocked: %d", rec.Code)
	}

	// Mobile cross-origin: still blocked.
	req = postReq("/x", "https://evil.test")
	req.Header.Set("User-Agent", "MyApp Mobile/1.0")
	if rec := g.do(req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("mobile cross-origin POST passed: %d", rec.Code)
	}
}

func TestGuardExemptPathSkipsCSRF(t *testing.T) {
	g := newGuardHarness(t, Config{ExemptPaths: []string{"/auth/login"}})

	req := postReq("/auth/login", "https://example.com")
	if rec := g.do(req); rec.Code != http.StatusNoContent {
		t.Fatalf("exempt path blocked: %d", rec.Code)
	}

	req = postReq("/auth/other", "https://example.com")
	if rec := g.do(req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("non-exempt path passed without token: %d", rec.Code)
	}
}

/*
====================================
REQUIRE AUTH
====================================
*/

func TestRequireAuth(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	chain := Sessions(engine, Config{})(RequireAuth(ok))

	// Anonymous session: rejected.
	anon, err := engine.StartSession(ctx)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "asid", Value: anon.ID})
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous session passed: %d", rec.Code)
	}

	// Authenticated session: allowed.
	id, err := engine.Register(ctx, "a@b.c", "a", "some password")
	if err != nil {
		t.Fatal(err)
	}
	sess, err := engine.EstablishSession(ctx, "", id)
	if err != nil {
		t.Fatal(err)
	}
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "asid", Value: sess.ID})
	rec = httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("authenticated session rejected: %d", rec.Code)
	}
}
