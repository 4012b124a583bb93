/*
Package flows contains the identity reconciliation flows as free functions
over explicit dependency structs. Each RunXxx function is pure orchestration:
every side effect (store access, hashing, token issuance, notification)
arrives as a function field on its Deps struct, so every branch is testable
without Redis or a database.

# Architecture boundaries

  - Flows never import the root package. Outcomes are reported through
    flow-local sentinel errors; the root engine owns the mapping to its
    public error taxonomy.
  - Flows never talk to Redis or SQL directly. Store adapters are closures
    wired by the root builder.

# What this package must NOT do

  - No HTTP, no cookies, no session handling.
  - No audit emission. Flows return distinguishable errors and the engine
    decides what is safe to surface versus what goes to the audit trail.
*/
package flows
