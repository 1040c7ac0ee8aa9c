// ABOUTME: Sentinel errors returned by the packet decoder.
// ABOUTME: Callers branch on them with errors.Is; the wrapped message names the offending byte.
package packet

import "errors"

// Decode error taxonomy. Every error returned by Decode wraps exactly one of
// these, so callers can branch with errors.Is.
var (
	ErrInvalidCommandType  = errors.New("invalid command type")
	ErrInvalidMetadataType = errors.New("invalid metadata type")
	ErrInvalidData         = errors.New("invalid data")
	ErrUnimplemented       = errors.New("unimplemented")
)
