// Package password implements password hashing and verification with
// Argon2id defaults and a PBKDF2-SHA256 legacy path.
//
// # Output format
//
// Digests are encoded in PHC string format so the algorithm and every
// parameter travel with the digest:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//	$pbkdf2-sha256$i=<iterations>,k=<keylen>$<salt>$<hash>
//
// [Hasher.Verify] dispatches on the algorithm id recorded in the digest,
// never on a caller-supplied one, and compares in constant time.
//
// # Architecture boundaries
//
// This package owns hashing, verification, and the digest codec only.
// Which identities may carry a digest, and when one is replaced, is decided
// by the engine.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive digests.
//   - Import any other authcore package.
//   - Log plaintext passwords or digests.
package password
