package social

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"

	authcore "github.com/authcore-io/authcore"
)

const facebookUserInfoURL = "https://graph.facebook.com/me?fields=id,name,email"

type facebookUserInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// NewFacebook returns a Facebook login provider. Its Name matches the
// "facebook" login type.
//
// Facebook omits the email field for accounts registered by phone number;
// Exchange rejects those because the identity table is keyed by email.
func NewFacebook(clientID, clientSecret, callbackURL string) authcore.SocialProvider {
	return &provider{
		name: "facebook",
		oauthConfig: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Endpoint:     facebook.Endpoint,
			Scopes:       []string{"email", "public_profile"},
		},
		userInfoURL: facebookUserInfoURL,
		decode: func(body []byte) (*authcore.SocialProfile, error) {
			info, err := decodeJSON[facebookUserInfo](body)
			if err != nil {
				return nil, err
			}
			return &authcore.SocialProfile{Email: info.Email, Username: info.Name}, nil
		},
	}
}
