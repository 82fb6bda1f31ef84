// Package apperr holds sentinel errors shared across layers. Handlers map
// them to HTTP status codes with errors.Is.
package apperr

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrUnknownKind      = errors.New("unknown record kind")
	ErrUnknownDimension = errors.New("unknown dimension")
)
