package domain

import "errors"

var (
	// ErrNotFound means the record does not exist or is not visible to the caller.
	ErrNotFound = errors.New("record not found")

	// ErrForbidden is returned for any mutation on a list or task the caller
	// does not own. Nonexistent ids produce the same error.
	ErrForbidden = errors.New("this action is unauthorized")

	// ErrListNotOwned is returned by task writes whose target list is not
	// owned by the caller.
	ErrListNotOwned = errors.New("list not owned by user")
)
