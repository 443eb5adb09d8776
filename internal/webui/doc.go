// Package webui exposes the browser upload surface over HTTP.
//
// The server accepts multipart DWFX uploads, runs them through the shared
// conversion pool, and serves finished PDFs for download, singly or zipped.
// Listings are always read from the output directory at request time, so the
// browser view matches what batch runs and the watcher produced on disk.
package webui
