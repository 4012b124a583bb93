// Package authcore provides the account-system core behind a web login
// surface: PHC-encoded password hashing, identity reconciliation across
// local and federated (Google, Facebook) login types, single-use
// email-verification and password-reset tokens, and Redis-backed sessions
// with fixation protection.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config],
// the store and notifier contracts, and value types. Flow orchestration,
// token atomics, rate limiting, and audit dispatch live under internal/ and
// are never exported. Session and password primitives are public
// sub-packages because transports and migration tools need them directly.
//
// # What this package must NOT do
//
//   - Reveal through its error surface whether an email address is
//     registered. [ErrBadCredentials] and [ErrLinkExpired] are deliberately
//     undifferentiated; the audit trail carries the real cause.
//   - Expose Redis clients, internal stores, or encoding details in its
//     public API.
//   - Speak HTTP. Cookies, headers, and redirects belong to the middleware
//     package and the host application.
//
// # Concurrency contract
//
// Token redemption and session regeneration are single-round-trip Redis
// scripts: concurrent redeems of the same token admit exactly one winner,
// and a regenerated session id is never valid at the same time as its
// predecessor.
package authcore
