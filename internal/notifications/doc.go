// Package notifications pushes tagging workflow events to ntfy.
//
// NewService returns a no-op Service when no topic is configured, so
// callers publish unconditionally. Each Event maps to a fixed title, tag
// set, and message template; unknown events are dropped without a request.
package notifications
