/*
Package middleware adapts the engine to net/http: session cookie handling,
origin checking, CSRF double-submit, and the authenticated-route guard. The
chain is Sessions, then Guard, then RequireAuth where a principal is
mandatory.

# What this package must NOT do

  - No business logic. Handlers call engine methods themselves; the
    middleware only establishes the session and rejects forged requests.
  - No error detail. Everything it refuses is a plain 401.
*/
package middleware
