// Package daemon coordinates the long-running tagflow process.
//
// It wires configuration, the SQLite store, and the domain services into a
// single lifecycle with flock-based locking to prevent multiple instances
// from serving the same data directory. The daemon owns the HTTP API server
// and reports runtime status.
//
// Keep orchestration logic here: workflow rules live in internal/tagging and
// request handling in internal/server, while the daemon focuses on startup,
// shutdown, and high level coordination.
package daemon
