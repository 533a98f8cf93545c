// Package library ingests audio files into the music catalog and serves them
// back for playback.
//
// Import accepts a list of filesystem paths (typically a JSON array uploaded
// by an admin). Each path is validated independently: it must carry an .mp3
// or .wav extension, exist as a regular file, and not already be ingested.
// Relative paths resolve under paths.music_root. One bad path never blocks the
// rest; the result lists the ids created and the rejected paths with reasons.
package library
