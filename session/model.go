package session

// Session is the server-side record behind one opaque session id. The id is
// the Redis key, delivered to the client via cookie; it is never part of the
// encoded blob.
type Session struct {
	ID string

	// PrincipalID and Email are set only after a successful login, and only
	// after the id has been regenerated.
	PrincipalID string
	Email       string

	// CSRFToken is minted when the session is created and survives
	// regeneration.
	CSRFToken string

	// Data holds non-auth session state. It is carried over across login
	// regeneration.
	Data map[string]string

	CreatedAt int64
	ExpiresAt int64
}

// Authenticated reports whether a principal is attached.
func (s *Session) Authenticated() bool {
	return s != nil && s.PrincipalID != ""
}
