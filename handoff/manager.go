package handoff

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type SigningMethod string

const (
	MethodEd25519 SigningMethod = "ed25519"
	MethodHS256   SigningMethod = "hs256"
)

var (
	ErrTokenInvalid = errors.New("handoff: token invalid")
	ErrTokenExpired = errors.New("handoff: token expired")
)

// Config tunes handoff token issuance and verification.
type Config struct {
	TTL           time.Duration
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

// Claims is the signed payload a mobile client receives after a social
// login completes in the system browser. It carries just enough identity to
// bootstrap the app's own session and expires within minutes.
type Claims struct {
	Email     string `json:"email"`
	Username  string `json:"username,omitempty"`
	LoginType string `json:"lt"`
	jwt.RegisteredClaims
}

// Manager signs and verifies handoff tokens.
type Manager struct {
	config Config

	edPriv ed25519.PrivateKey
	edPub  ed25519.PublicKey
}

func NewManager(cfg Config) (*Manager, error) {
	if cfg.TTL <= 0 {
		return nil, errors.New("handoff: TTL must be positive")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("handoff: invalid leeway")
	}

	m := &Manager{config: cfg}
	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) < 32 {
			return nil, errors.New("handoff: hs256 requires a key of at least 32 bytes")
		}
	case MethodEd25519:
		var err error
		if m.edPriv, err = parseEdPrivateKey(cfg.PrivateKey); err != nil {
			return nil, err
		}
		if len(cfg.PublicKey) > 0 {
			if m.edPub, err = parseEdPublicKey(cfg.PublicKey); err != nil {
				return nil, err
			}
		} else {
			m.edPub = m.edPriv.Public().(ed25519.PublicKey)
		}
	default:
		return nil, errors.New("handoff: unsupported signing method")
	}
	return m, nil
}

// Issue signs a handoff token for the identity.
func (m *Manager) Issue(id, email, username, loginType string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:     email,
		Username:  username,
		LoginType: loginType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
		},
	}

	var token *jwt.Token
	var key any
	switch m.config.SigningMethod {
	case MethodHS256:
		token = jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		key = m.config.PrivateKey
	default:
		token = jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
		key = m.edPriv
	}

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("handoff: sign: %w", err)
	}
	return signed, nil
}

// Verify parses a handoff token, enforcing the configured signing method.
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithLeeway(m.config.Leeway),
		jwt.WithExpirationRequired(),
	}
	if m.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.config.Issuer))
	}
	switch m.config.SigningMethod {
	case MethodHS256:
		opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	default:
		opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}))
	}

	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if m.config.SigningMethod == MethodHS256 {
			return []byte(m.config.PrivateKey), nil
		}
		return m.edPub, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func parseEdPrivateKey(raw []byte) (ed25519.PrivateKey, error) {
	switch len(raw) {
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(raw), nil
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	default:
		return nil, errors.New("handoff: ed25519 private key must be a 32-byte seed or 64-byte key")
	}
}

func parseEdPublicKey(raw []byte) (ed25519.PublicKey, error) {
	if len(raw) != ed25519.PublicKeySize {
		return nil, errors.New("handoff: ed25519 public key must be 32 bytes")
	}
	return ed25519.PublicKey(raw), nil
}
