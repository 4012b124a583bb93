package authcore

import (
	"errors"
	"time"

	"github.com/authcore-io/authcore/internal/tokens"
	"github.com/authcore-io/authcore/password"
)

// Config is the engine's tunable surface. Instances are configured before
// [Builder.Build] and treated as immutable afterwards.
type Config struct {
	Password      password.Config
	Tokens        TokenConfig
	Session       SessionConfig
	IssuanceLimit IssuanceLimitConfig
	Handoff       HandoffConfig
	Audit         AuditConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig tunes the single-use token store.
type TokenConfig struct {
	// VerificationTTL bounds email-verification tokens. Default 8h.
	VerificationTTL time.Duration
	// ResetTTL bounds password-reset tokens. Default 8h.
	ResetTTL time.Duration
	// ResetPendingTTL bounds the ticket between reset-token redemption and
	// the password-change submission. Default 15m.
	ResetPendingTTL time.Duration
	// TokenBytes is the entropy per token (rendered as 2x hex chars).
	// Default 20.
	TokenBytes int
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig tunes the session store.
type SessionConfig struct {
	RedisPrefix string
	// TTL is the session cookie lifetime. Default 24h.
	TTL time.Duration
}

/*
====================================
ISSUANCE LIMIT CONFIG
====================================
*/

// IssuanceLimitConfig bounds verification/reset token issuance per subject.
// Disabled by default.
type IssuanceLimitConfig struct {
	Enabled      bool
	MaxPerWindow int
	Window       time.Duration
}

/*
====================================
HANDOFF CONFIG
====================================
*/

// HandoffConfig tunes the signed token handed to mobile clients after a
// social login. Disabled unless a key is configured.
type HandoffConfig struct {
	Enabled       bool
	TTL           time.Duration
	SigningMethod string // "ed25519" (default), "hs256" optional
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig tunes the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events under backpressure instead of blocking the
	// request path.
	DropIfFull bool
}

// DefaultConfig returns the configuration [New] starts from. Callers that
// only need to change a field or two can take this, mutate it, and pass it
// to [Builder.WithConfig].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Password: password.DefaultConfig(),
		Tokens: TokenConfig{
			VerificationTTL: 8 * time.Hour,
			ResetTTL:        8 * time.Hour,
			ResetPendingTTL: 15 * time.Minute,
			TokenBytes:      20,
		},
		Session: SessionConfig{
			RedisPrefix: "ases",
			TTL:         24 * time.Hour,
		},
		IssuanceLimit: IssuanceLimitConfig{
			Enabled:      false,
			MaxPerWindow: 5,
			Window:       time.Hour,
		},
		Handoff: HandoffConfig{
			Enabled:       false,
			TTL:           2 * time.Minute,
			SigningMethod: "ed25519",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
	}
}

func (c *Config) validate() error {
	if c.Tokens.VerificationTTL <= 0 || c.Tokens.ResetTTL <= 0 || c.Tokens.ResetPendingTTL <= 0 {
		return errors.New("authcore: token TTLs must be positive")
	}
	if c.Tokens.TokenBytes < 16 {
		return errors.New("authcore: token byte length must be >= 16")
	}
	if c.Session.TTL <= 0 {
		return errors.New("authcore: session TTL must be positive")
	}
	if c.IssuanceLimit.Enabled && (c.IssuanceLimit.MaxPerWindow <= 0 || c.IssuanceLimit.Window <= 0) {
		return errors.New("authcore: issuance limit requires positive budget and window")
	}
	return nil
}

func (c *Config) tokenStoreConfig() tokens.Config {
	return tokens.Config{
		TTL: map[tokens.Purpose]time.Duration{
			tokens.PurposeVerifyEmail:   c.Tokens.VerificationTTL,
			tokens.PurposeResetPassword: c.Tokens.ResetTTL,
			tokens.PurposeResetPending:  c.Tokens.ResetPendingTTL,
		},
		DefaultTTL: c.Tokens.VerificationTTL,
		TokenBytes: c.Tokens.TokenBytes,
	}
}
