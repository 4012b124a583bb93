package social

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	authcore "github.com/authcore-io/authcore"
)

// fakeProvider spins up a stub OAuth2 server serving both the token and the
// userinfo endpoints.
func fakeProvider(t *testing.T, userInfo any, userInfoStatus int) (*provider, *httptest.Server) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"bearer"}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(userInfoStatus)
		_ = json.NewEncoder(w).Encode(userInfo)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p := &provider{
		name: "google",
		oauthConfig: oauth2.Config{
			ClientID:     "cid",
			ClientSecret: "secret",
			RedirectURL:  "http://localhost/callback",
			Endpoint: oauth2.Endpoint{
				AuthURL:  srv.URL + "/auth",
				TokenURL: srv.URL + "/token",
			},
		},
		userInfoURL: srv.URL + "/userinfo",
		decode: func(body []byte) (*authcore.SocialProfile, error) {
			info, err := decodeJSON[googleUserInfo](body)
			if err != nil {
				return nil, err
			}
			return &authcore.SocialProfile{Email: info.Email, Username: info.Name}, nil
		},
		httpClient: srv.Client(),
	}
	return p, srv
}

func TestExchangeResolvesProfile(t *testing.T) {
	p, _ := fakeProvider(t, googleUserInfo{Email: "a@b.c", Name: "Alice"}, http.StatusOK)

	profile, err := p.Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if profile.Email != "a@b.c" || profile.Username != "Alice" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestExchangeRejectsBadCode(t *testing.T) {
	p, _ := fakeProvider(t, googleUserInfo{}, http.StatusOK)
	if _, err := p.Exchange(context.Background(), "bad-code"); !errors.Is(err, ErrExchangeFailed) {
		t.Fatalf("got %v, want ErrExchangeFailed", err)
	}
}

func TestExchangeRejectsMissingEmail(t *testing.T) {
	p, _ := fakeProvider(t, googleUserInfo{Name: "NoEmail"}, http.StatusOK)
	if _, err := p.Exchange(context.Background(), "good-code"); !errors.Is(err, ErrExchangeFailed) {
		t.Fatalf("got %v, want ErrExchangeFailed", err)
	}
}

func TestExchangeRejectsUserInfoFailure(t *testing.T) {
	p, _ := fakeProvider(t, map[string]string{"error": "boom"}, http.StatusInternalServerError)
	if _, err := p.Exchange(context.Background(), "good-code"); !errors.Is(err, ErrExchangeFailed) {
		t.Fatalf("got %v, want ErrExchangeFailed", err)
	}
}

func TestAuthCodeURLCarriesState(t *testing.T) {
	p, _ := fakeProvider(t, googleUserInfo{}, http.StatusOK)
	u := p.AuthCodeURL("state-123")
	if !strings.Contains(u, "state=state-123") {
		t.Fatalf("state missing from %q", u)
	}
}

func TestProviderNames(t *testing.T) {
	if got := NewGoogle("c", "s", "u").Name(); got != "google" {
		t.Fatalf("google provider named %q", got)
	}
	if got := NewFacebook("c", "s", "u").Name(); got != "facebook" {
		t.Fatalf("facebook provider named %q", got)
	}
}
