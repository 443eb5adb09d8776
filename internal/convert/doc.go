// Package convert invokes the external xpstopdf binary for single files.
//
// A Task describes one input/output pair; Execute runs the converter and
// reports an immutable Outcome classifying success, skip, or one of the
// failure kinds. Failures are data, never panics: callers decide whether and
// when to retry. The runner guards against converters that exit zero without
// producing output and removes partial output files so a retry starts clean.
package convert
