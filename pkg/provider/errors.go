package provider

import "errors"

// Error represents a domain error from provider operations.
//
// These are business-logic errors (handle no longer resolves, grant revoked,
// type not viewable) as opposed to infrastructure errors (network failure,
// disk error). The gateway front end translates error codes to HTTP statuses
// at the boundary; nothing below the front end inspects HTTP concepts.
type Error struct {
	// Code is the error category.
	Code ErrorCode

	// Message is a human-readable error description.
	Message string

	// Handle is the opaque handle related to the error, if any. Useful for
	// logging; never rendered to clients.
	Handle string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Handle != "" {
		return e.Message + ": " + e.Handle
	}
	return e.Message
}

// ErrorCode represents the category of a provider error.
type ErrorCode int

const (
	// ErrInvalidHandle indicates a malformed handle or one the provider
	// rejects outright (typically a revoked tree grant).
	ErrInvalidHandle ErrorCode = iota

	// ErrResolution indicates a stale or unauthorized container handle
	// encountered while listing children. A resolution failure implies the
	// active grant is no longer valid and a fresh access request is needed.
	ErrResolution

	// ErrNotFound indicates a file handle that no longer resolves.
	ErrNotFound

	// ErrUnsupported indicates a MIME type that is neither inline-viewable
	// nor handled by an external viewer.
	ErrUnsupported

	// ErrDecode indicates non-UTF-8 bytes where text was expected.
	ErrDecode

	// ErrIO indicates an I/O failure while streaming content.
	ErrIO
)

// NewError builds a provider error with the given code and message.
func NewError(code ErrorCode, message string, h string) *Error {
	return &Error{Code: code, Message: message, Handle: h}
}

// CodeOf extracts the error code from err. The second return value reports
// whether err (or anything it wraps) is a provider error.
func CodeOf(err error) (ErrorCode, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code, true
	}
	return 0, false
}
