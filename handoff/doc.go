/*
Package handoff issues the short-lived signed token a mobile client receives
after completing a social login in the system browser. The app presents the
token once to bootstrap its own session instead of scraping identity fields
out of a deep-link URL.

# Architecture boundaries

  - Handoff tokens are not sessions. They carry identity, not authorization,
    and expire within minutes.
  - Verification happens in the host application, so the signing key never
    needs to leave the login service when ed25519 is used.

# What this package must NOT do

  - No refresh, no revocation list. A lost token dies on its own.
*/
package handoff
