// Package api defines wire-format types and converters for the HTTP API and
// the CLI's --json output. It translates store and engine models into
// transport-friendly DTOs so handlers and commands render the same shapes
// without coupling clients to internal types.
//
// # Key Types
//
// User, Question, Music, Task, Record: entity views. Password hashes never
// leave the store layer.
//
// TaskDetail: a task with its records in question order.
//
// TaskPage: a page of tasks with total count and paging echo.
//
// ImportResult, Drift, Session, Status: operation results.
//
// # Design Notes
//
// DTOs use snake_case JSON tags. Optional timestamps and ids are pointers so
// absent values render as null rather than zero. Timestamps use RFC3339 with
// milliseconds in UTC. Slices are always non-nil so empty collections encode
// as [] instead of null.
package api
