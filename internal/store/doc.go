// Package store persists tagflow entities in SQLite.
//
// The store owns the schema for users, questions, music items, tasks, and
// records. It enforces data-level constraints only: uniqueness, foreign keys
// with cascading deletes, and compare-and-swap status updates. Workflow rules
// such as capability checks and selection validation live in the tagging
// package, which composes store calls inside a single transaction via
// Store.WithTx.
//
// The database runs in WAL mode with a single pooled connection. SQLITE_BUSY
// from other processes sharing the file (the CLI and the daemon) is retried
// with bounded backoff.
package store
