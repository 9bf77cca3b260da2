// Package watch keeps a generated site current while its sources change. It
// watches directories with fsnotify, debounces bursts of events, serializes
// rebuilds, and can optionally rebuild on a fixed period and serve the output
// directory for local preview.
package watch
