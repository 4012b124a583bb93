// Package internal contains helper utilities that are intentionally private
// to authcore, including secure random generation for session identifiers,
// single-use tokens, and CSRF tokens.
//
// # Sub-packages
//
//   - audit — async auth event dispatch (Dispatcher + Sink implementations)
//   - cleanup — orphan queue for partially created identity/profile pairs
//   - flows — pure-function flow orchestrators for every Engine operation
//   - rate — Redis-backed fixed-window issuance limiter
//   - tokens — single-use, TTL-bound token store with atomic redemption
//
// # What this package must NOT do
//
//   - Export types that appear in the public authcore API.
//   - Be imported by any package outside the authcore module.
package internal
