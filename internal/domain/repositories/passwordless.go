package repositories

import (
	"context"

	"github.com/devilmonastery/lock/internal/domain/entities"
)

// PasswordlessIdentityRepository stores the last identity used for passwordless sign in,
// one record per client ID
type PasswordlessIdentityRepository interface {
	// Get returns the identity saved for the client, or ErrIdentityNotFound
	Get(ctx context.Context, clientID string) (*entities.PasswordlessIdentity, error)

	// Save creates or replaces the identity of identity.ClientID
	Save(ctx context.Context, identity *entities.PasswordlessIdentity) error

	// Delete removes the identity saved for the client. Deleting a missing identity is not an error.
	Delete(ctx context.Context, clientID string) error
}
