// Package daemon coordinates the long-running watch service.
//
// A daemon owns the directory watcher, optionally the browser upload server,
// and enforces single-instance execution through a file lock. Conversions from
// every entry point flow through one shared worker pool so total converter
// parallelism never exceeds the configured ceiling.
package daemon
