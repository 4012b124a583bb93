// Package session implements the server-side session record, its binary
// wire encoding, and the Redis-backed store.
//
// # Fixation protection
//
// [Store.Regenerate] moves a session to a fresh id in one Lua script: the
// old id is deleted and the blob rewritten under the new id atomically.
// Login flows regenerate first and attach the principal after, so an
// attacker-seeded id can never name an authenticated session.
//
// # Architecture boundaries
//
// This package owns session persistence and encoding. Cookie handling,
// CSRF validation, and the decision of when to regenerate belong to the
// middleware and the engine.
//
// # What this package must NOT do
//
//   - Read or write HTTP cookies.
//   - Keep per-session state in process memory.
package session
