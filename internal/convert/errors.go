package convert

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a conversion failed.
type FailureKind string

const (
	// KindConverterNotFound means the xpstopdf binary could not be resolved.
	KindConverterNotFound FailureKind = "converter_not_found"
	// KindConverterCrashed means the converter exited non-zero.
	KindConverterCrashed FailureKind = "converter_crashed"
	// KindEmptyOutput means the converter exited zero but produced no usable output.
	KindEmptyOutput FailureKind = "empty_output"
	// KindIOError means the input was unreadable or the output location unwritable.
	KindIOError FailureKind = "io_error"
	// KindInternalError means an unexpected fault inside a worker, not the converter.
	KindInternalError FailureKind = "internal_error"
)

// Error is a classified conversion failure.
type Error struct {
	Kind    FailureKind
	Message string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Wrapped)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// ErrorKind returns the failure classification; it satisfies the interface
// used by the history store to persist outcome kinds.
func (e *Error) ErrorKind() string {
	return string(e.Kind)
}

func newError(kind FailureKind, message string, wrapped error) *Error {
	return &Error{Kind: kind, Message: message, Wrapped: wrapped}
}

// KindOf extracts the FailureKind from err, or KindInternalError when the
// error carries no classification.
func KindOf(err error) FailureKind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return KindInternalError
}
