// Package rate provides a Redis-backed fixed-window limiter for token
// issuance (verification and reset emails).
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Keys are
// prefixed "ail:" and scoped to purpose plus subject.
//
// # What this package must NOT do
//
//   - Make authentication decisions.
//   - Be imported outside the authcore module.
package rate
