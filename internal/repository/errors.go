package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrStatusConflict is returned by a conditional update that matched no
	// row because the stored status no longer equals the expected one.
	ErrStatusConflict = errors.New("status changed concurrently")

	// ErrDuplicate is returned when a unique constraint rejects an insert.
	ErrDuplicate = errors.New("duplicate entity")
)
