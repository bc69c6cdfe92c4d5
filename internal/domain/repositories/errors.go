package repositories

import "errors"

// Domain-specific repository errors
var (
	// ErrIdentityNotFound is returned when no passwordless identity was saved for a client
	ErrIdentityNotFound = errors.New("passwordless identity not found")
)
