package internal

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

// SessionID is an opaque 16-byte session identifier delivered via cookie.
type SessionID [16]byte

const (
	// TokenByteLength is the entropy of a single-use token. 20 random bytes
	// render as 40 hex characters.
	TokenByteLength = 20

	csrfTokenByteLength = 32
)

// NewSessionID returns a fresh random session identifier.
func NewSessionID() (SessionID, error) {
	var sid SessionID
	_, err := rand.Read(sid[:])
	return sid, err
}

func (s SessionID) Bytes() []byte {
	return s[:]
}

func (s SessionID) String() string {
	// base64url, no padding, compact
	return base64.RawURLEncoding.EncodeToString(s[:])
}

// ParseSessionID decodes the cookie form of a session identifier.
func ParseSessionID(sessionID string) (SessionID, error) {
	var sid SessionID

	raw, err := base64.RawURLEncoding.DecodeString(sessionID)
	if err != nil {
		return sid, err
	}
	if len(raw) != len(sid) {
		return sid, errors.New("invalid session id size")
	}

	copy(sid[:], raw)
	return sid, nil
}

// NewToken returns a single-use token: byteLength random bytes encoded as
// lowercase hex. Zero byteLength falls back to TokenByteLength.
func NewToken(byteLength int) (string, error) {
	if byteLength <= 0 {
		byteLength = TokenByteLength
	}

	raw := make([]byte, byteLength)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// NewCSRFToken returns an unguessable per-session CSRF token.
func NewCSRFToken() (string, error) {
	raw := make([]byte, csrfTokenByteLength)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
