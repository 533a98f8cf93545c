// Package textutil provides small text helpers shared across tagflow:
// Unicode-aware label folding for duplicate detection and keyword matching,
// and object-key segments for archived exports.
package textutil
