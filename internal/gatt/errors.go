package gatt

import "errors"

// Validation error classes. They are wrapped in *dsl.Error with the position of
// the offending record or field.
var (
	ErrMissingField        = errors.New("missing field")
	ErrUnknownField        = errors.New("unknown field")
	ErrInvalidValue        = errors.New("invalid value")
	ErrDuplicatePermission = errors.New("duplicate permission")
	ErrUnknownPermission   = errors.New("unknown permission flag")
	ErrInvalidUUID         = errors.New("invalid UUID")
)
