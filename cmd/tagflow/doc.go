// Package main hosts the tagflow CLI entrypoint and command graph.
//
// The Cobra command tree opens the workflow database directly and acts as
// the account named by --as, so administration works with or without a
// running daemon. `tagflow serve` runs the HTTP daemon in the foreground.
//
// Keep this package lean: add behavior to the internal packages first, then
// surface it through a command or flag here.
package main
