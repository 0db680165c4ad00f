package models

import (
	"errors"
)

var (
	// ErrResourceNotFound is returned when a query does not match any record.
	ErrResourceNotFound = errors.New("there is no")

	// ErrInvalid is returned when a record fails validation before save.
	ErrInvalid = errors.New("invalid")

	// ErrAlreadyExists is returned when a write collides with a unique index.
	ErrAlreadyExists = errors.New("already exists")

	// ErrGeneral replaces driver errors that the sender cannot act on. The
	// underlying error is logged before the replacement.
	ErrGeneral = errors.New("a database error occurred during your request")
)
