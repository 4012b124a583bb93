package middleware

import (
	"net/http"
	"time"

	authcore "github.com/authcore-io/authcore"
	"github.com/authcore-io/authcore/session"
)

// Config tunes the HTTP middleware chain.
type Config struct {
	// CookieName is the session cookie. Default "asid".
	CookieName string
	// CookieSecure marks the session cookie Secure. Leave off only for
	// local development over plain HTTP.
	CookieSecure bool
	// CSRFCookieName is the readable cookie exposing the session's CSRF
	// token for browser scripts and form templates to echo back. Default
	// "acsrf".
	CSRFCookieName string
	// CSRFHeader is the header carrying the double-submit token. Default
	// "X-CSRF-Token".
	CSRFHeader string
	// CSRFField is the form field consulted when the header is absent,
	// for plain HTML form posts. Default "_csrf".
	CSRFField string
	// ExemptPaths skip the CSRF check entirely (never the origin check).
	// Login and registration endpoints belong here: they run before the
	// client could have fetched a token.
	ExemptPaths []string
	// IsMobile identifies requests from the native app, which holds no
	// cookies a cross-site page could ride on. Mobile requests skip the
	// CSRF check but never the origin check. Nil means no exemption.
	IsMobile func(*http.Request) bool
}

func (c Config) withDefaults() Config {
	if c.CookieName == "" {
		c.CookieName = "asid"
	}
	if c.CSRFCookieName == "" {
		c.CSRFCookieName = "acsrf"
	}
	if c.CSRFHeader == "" {
		c.CSRFHeader = "X-CSRF-Token"
	}
	if c.CSRFField == "" {
		c.CSRFField = "_csrf"
	}
	return c
}

// Sessions resolves the session cookie and attaches the session to the
// request context, creating an anonymous session (and setting the cookie)
// when none exists. Handlers downstream use [SessionFromContext].
func Sessions(engine *authcore.Engine, cfg Config) func(http.Handler) http.Handler {
	cfg = cfg.withDefaults()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, fresh, err := resolveSession(engine, cfg, r)
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if fresh {
				ttl := engine.Sessions().TTL()
				http.SetCookie(w, sessionCookie(cfg, sess.ID, ttl))
				http.SetCookie(w, csrfCookie(cfg, sess.CSRFToken, ttl))
			}
			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
		})
	}
}

func resolveSession(engine *authcore.Engine, cfg Config, r *http.Request) (sess *session.Session, fresh bool, err error) {
	if cookie, cerr := r.Cookie(cfg.CookieName); cerr == nil && cookie.Value != "" {
		if existing, gerr := engine.GetSession(r.Context(), cookie.Value); gerr == nil {
			return existing, false, nil
		}
		// Unknown or corrupt cookie falls through to a fresh session.
	}
	created, err := engine.StartSession(r.Context())
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

func sessionCookie(cfg Config, id string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// csrfCookie is deliberately not HttpOnly so page scripts can read the
// token and echo it in the header or form field the guard checks.
func csrfCookie(cfg Config, token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.CSRFCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetSessionCookie refreshes both cookies after the session id changed,
// which happens on every login. Call it with the session returned by
// EstablishSession.
func SetSessionCookie(w http.ResponseWriter, engine *authcore.Engine, cfg Config, sess *session.Session) {
	cfg = cfg.withDefaults()
	ttl := engine.Sessions().TTL()
	http.SetCookie(w, sessionCookie(cfg, sess.ID, ttl))
	http.SetCookie(w, csrfCookie(cfg, sess.CSRFToken, ttl))
}

// ClearSessionCookie expires both cookies, for logout handlers.
func ClearSessionCookie(w http.ResponseWriter, cfg Config) {
	cfg = cfg.withDefaults()
	for _, name := range []string{cfg.CookieName, cfg.CSRFCookieName} {
		cookie := &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Secure:   cfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		}
		cookie.HttpOnly = name == cfg.CookieName
		http.SetCookie(w, cookie)
	}
}
