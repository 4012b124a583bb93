package flows

// IdentityRecord is the flow-local identity model. Store adapters convert to
// and from the host's identity type when wiring deps.
type IdentityRecord struct {
	ID             string
	Email          string
	Username       string
	PasswordDigest string
	LoginType      string
	EmailVerified  bool
}

// local reports whether the identity authenticates with a password.
func (r *IdentityRecord) local() bool {
	return r.LoginType == "local"
}

// Issuance purposes, matching the token store's key prefixes so the rate
// limiter and the token keyspace stay aligned.
const (
	purposeVerify = "veem"
	purposeReset  = "repw"
)

// SocialIdentity is the profile asserted by an upstream OAuth provider after
// code exchange.
type SocialIdentity struct {
	Provider string
	Email    string
	Username string
}
