// Package cleanup tracks rows stranded by failed saga compensations so the
// engine's periodic cleanup pass can finish the deletion later. The backlog
// lives in a Redis set keyed by "kind:id".
package cleanup
