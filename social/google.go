package social

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	authcore "github.com/authcore-io/authcore"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type googleUserInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// NewGoogle returns a Google sign-in provider. Its Name matches the "google"
// login type.
func NewGoogle(clientID, clientSecret, callbackURL string) authcore.SocialProvider {
	return &provider{
		name: "google",
		oauthConfig: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
		},
		userInfoURL: googleUserInfoURL,
		decode: func(body []byte) (*authcore.SocialProfile, error) {
			info, err := decodeJSON[googleUserInfo](body)
			if err != nil {
				return nil, err
			}
			return &authcore.SocialProfile{Email: info.Email, Username: info.Name}, nil
		},
	}
}
