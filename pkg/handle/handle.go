// Package handle defines the opaque document handle type shared by every
// component of the gateway.
//
// Handles are issued by the document provider to identify trees, directories
// and files. The gateway never inspects or constructs handle contents; it only
// round-trips them between HTTP query parameters, the grant store and provider
// calls. Equality is the only operation with defined semantics.
//
// Modeling the handle as a distinct type (rather than a raw string) prevents
// accidental construction outside the provider issuance path: the only ways to
// obtain a Handle are Parse (from a wire string) and the provider itself.
package handle

import "fmt"

// Handle is an opaque, provider-issued identifier for a tree, directory or
// file. The zero value means "no handle".
type Handle string

// Parse converts a raw wire string into a Handle.
//
// The only validation performed here is rejecting the empty string; any
// further validation is deferred to the provider call that consumes the
// handle, where a stale or malformed value surfaces as a provider error.
func Parse(raw string) (Handle, error) {
	if raw == "" {
		return "", fmt.Errorf("handle: empty string")
	}
	return Handle(raw), nil
}

// String returns the exact wire representation of the handle.
//
// Round-trip identity holds for every handle obtained from the provider:
// Parse(h.String()) == h.
func (h Handle) String() string {
	return string(h)
}

// IsZero reports whether the handle is the zero value.
func (h Handle) IsZero() bool {
	return h == ""
}
