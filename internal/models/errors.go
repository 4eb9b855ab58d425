package models

import "errors"

// Core error taxonomy. Handlers map these onto transport status codes;
// everything below the routing layer compares with errors.Is.
var (
	// ErrNotFound indicates the requested resource id has no row.
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden indicates an authorization check failed. The message is
	// deliberately generic so callers cannot probe which check tripped.
	ErrForbidden = errors.New("insufficient permission")

	// ErrConflict indicates a unique field (group name, username, email)
	// already exists. Checked before insert so we never depend on
	// driver-specific constraint errors.
	ErrConflict = errors.New("duplicate resource")

	// ErrInvalidInput indicates a request value that fails domain
	// validation, such as an unknown task status.
	ErrInvalidInput = errors.New("invalid input")
)
