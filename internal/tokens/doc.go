// Package tokens provides the Redis-backed, single-use token store behind
// email verification and password reset.
//
// # Design
//
// Keys are `<purpose-prefix>:<subjectId>`; values are fixed-length random
// hex strings with a per-purpose TTL. Redemption is one atomic Lua
// GET/compare/DEL so a token can be consumed exactly once, and a Go-side
// constant-time comparison backs the Lua equality check. Absent, expired,
// and consumed tokens are indistinguishable to callers of the engine.
//
// # What this package must NOT do
//
//   - Decide which flows may issue or redeem a purpose.
//   - Send tokens anywhere — delivery belongs to the notifier.
//   - Use non-constant-time comparisons for token matching.
package tokens
