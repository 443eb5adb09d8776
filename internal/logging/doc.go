// Package logging builds slog loggers for the converter CLI and daemon.
//
// It supports a human-oriented console format and a machine-oriented JSON
// format, optional log-file outputs alongside stdout/stderr, and small attr
// helpers so call sites stay terse. Obtain loggers through New or
// NewFromConfig; tests use NewNop.
package logging
