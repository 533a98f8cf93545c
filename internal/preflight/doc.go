// Package preflight provides readiness checks for the filesystem paths,
// database, and optional object storage that tagflow depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll on startup and logs failures as warnings so an
//     operator sees a misconfigured music root before the first import fails.
//   - The CLI "tagflow status" command renders every Result as a table row.
//
// Each check is gated by its config toggle; disabled features report as
// passed with a "Disabled" detail.
package preflight
