package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	authcore "github.com/authcore-io/authcore"
)

// ErrExchangeFailed covers both a rejected authorization code and a userinfo
// fetch that did not produce a usable profile.
var ErrExchangeFailed = errors.New("social: code exchange failed")

// provider is the shared OAuth2 plumbing behind the concrete providers. Each
// provider contributes its endpoint, scopes, userinfo URL and a decoder from
// the provider's userinfo payload to the engine's profile shape.
type provider struct {
	name        string
	oauthConfig oauth2.Config
	userInfoURL string
	decode      func([]byte) (*authcore.SocialProfile, error)

	// httpClient overrides the userinfo fetch transport, for tests.
	httpClient *http.Client
}

// Name implements authcore.SocialProvider.
func (p *provider) Name() string {
	return p.name
}

// AuthCodeURL implements authcore.SocialProvider. State is caller-supplied
// and must be bound to the browser session by the transport layer.
func (p *provider) AuthCodeURL(state string) string {
	return p.oauthConfig.AuthCodeURL(state)
}

// Exchange implements authcore.SocialProvider. It trades the authorization
// code for an access token and resolves the provider's userinfo endpoint
// into a profile.
func (p *provider) Exchange(ctx context.Context, code string) (*authcore.SocialProfile, error) {
	token, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	body, err := p.fetchUserInfo(ctx, token)
	if err != nil {
		return nil, err
	}

	profile, err := p.decode(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("%w: provider returned no email", ErrExchangeFailed)
	}
	return profile, nil
}

func (p *provider) fetchUserInfo(ctx context.Context, token *oauth2.Token) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	token.SetAuthHeader(req)

	client := p.httpClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo status %d", ErrExchangeFailed, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

func decodeJSON[T any](body []byte) (T, error) {
	var v T
	err := json.Unmarshal(body, &v)
	return v, err
}
