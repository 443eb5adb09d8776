// Package watch decides when files dropped into the input directory are safe
// to convert.
//
// Filesystem notifications only say that something happened to a path; they
// can be coalesced, duplicated, or dropped, and they say nothing about
// whether a writer is finished. The Gate therefore trusts only periodic
// re-stats: a path is released for conversion once its size has been
// unchanged for a configured number of consecutive polls. The Watcher is a
// thin fsnotify event source feeding the Gate; one goroutine serializes event
// intake and polling, so gate state needs no locking.
package watch
