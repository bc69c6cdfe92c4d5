package services

import (
	"errors"

	"github.com/devilmonastery/lock/internal/domain/entities"
	"github.com/devilmonastery/lock/internal/domain/repositories"
)

// FailureReason returns a short reason string for errors surfaced by the services.
// This is used for log attributes and error responses.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, entities.ErrInvalidConnection):
		return "invalid_connection"
	case errors.Is(err, entities.ErrInvalidOptions):
		return "invalid_options"
	case errors.Is(err, repositories.ErrIdentityNotFound):
		return "identity_not_found"
	default:
		return "internal"
	}
}

// IsInvalidInput checks if the error was caused by malformed connections or options
func IsInvalidInput(err error) bool {
	return errors.Is(err, entities.ErrInvalidConnection) || errors.Is(err, entities.ErrInvalidOptions)
}
