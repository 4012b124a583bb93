/*
Package social implements the engine's federated login providers on top of
golang.org/x/oauth2. A provider turns an authorization code into a profile
assertion; the engine owns everything after that, including identity
reconciliation and conflict handling.

# What this package must NOT do

  - No HTTP handlers, no cookies, no state storage. The transport layer
    generates and validates the OAuth state parameter.
  - No writes. Providers only read from the upstream userinfo endpoint.
*/
package social
