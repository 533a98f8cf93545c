// Package logs reads the daemon's JSON log file for the CLI.
//
// Tail returns the last N matching lines or everything written past an
// offset, and can block for a bounded wait until new lines arrive. Filters
// match on the structured fields the daemon writes (level, event_type,
// task_id) so `tagflow logs` can narrow output without a log server.
package logs
