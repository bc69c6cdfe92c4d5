package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/devilmonastery/lock/internal/domain/entities"
	"github.com/devilmonastery/lock/internal/domain/repositories"
	"github.com/devilmonastery/lock/internal/pkg/metrics"
)

// PasswordlessIdentityService remembers the last identity used to sign in with a passwordless
// connection so the form can be prefilled and submitted on the next visit.
type PasswordlessIdentityService struct {
	repo     repositories.PasswordlessIdentityRepository
	clientID string
	mode     entities.PasswordlessMode
	logger   *slog.Logger
	now      func() time.Time
}

// NewPasswordlessIdentityService creates a service for one client and the passwordless mode
// currently in use.
func NewPasswordlessIdentityService(
	repo repositories.PasswordlessIdentityRepository,
	clientID string,
	mode entities.PasswordlessMode,
	logger *slog.Logger,
) *PasswordlessIdentityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PasswordlessIdentityService{
		repo:     repo,
		clientID: clientID,
		mode:     mode,
		logger:   logger.With("component", "passwordless_identity"),
		now:      time.Now,
	}
}

// SaveIdentity stores identity together with the current mode. country is only set for SMS identities.
func (s *PasswordlessIdentityService) SaveIdentity(ctx context.Context, identity string, country *entities.Country) error {
	record := &entities.PasswordlessIdentity{
		ClientID:  s.clientID,
		Identity:  identity,
		Mode:      s.mode,
		UpdatedAt: s.now().UTC(),
	}
	if country != nil {
		c := *country
		record.Country = &c
	}

	err := s.repo.Save(ctx, record)
	metrics.PasswordlessIdentities.WithLabelValues("save", status(err)).Inc()
	if err != nil {
		return fmt.Errorf("failed to save passwordless identity: %w", err)
	}

	s.logger.Debug("saved passwordless identity",
		slog.String("client_id", s.clientID),
		slog.String("mode", s.mode.String()))
	return nil
}

// Last returns the saved record, or nil when nothing was saved for the client
func (s *PasswordlessIdentityService) Last(ctx context.Context) (*entities.PasswordlessIdentity, error) {
	record, err := s.repo.Get(ctx, s.clientID)
	if errors.Is(err, repositories.ErrIdentityNotFound) {
		metrics.PasswordlessIdentities.WithLabelValues("get", "not_found").Inc()
		return nil, nil
	}
	metrics.PasswordlessIdentities.WithLabelValues("get", status(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("failed to get passwordless identity: %w", err)
	}
	return record, nil
}

// RecalledIdentity is a saved identity prepared for prefilling the passwordless form
type RecalledIdentity struct {
	// Identity has the dial code of Country stripped
	Identity       string
	Country        *entities.Country
	Mode           entities.PasswordlessMode
	LoggedInBefore bool
}

// Recall reads the saved record once and derives everything the form needs from it.
// It returns nil when nothing was saved.
func (s *PasswordlessIdentityService) Recall(ctx context.Context) (*RecalledIdentity, error) {
	record, err := s.Last(ctx)
	if err != nil || record == nil {
		return nil, err
	}
	identity := record.Identity
	if record.Country != nil {
		identity = strings.TrimPrefix(identity, record.Country.DialCode)
	}
	return &RecalledIdentity{
		Identity:       identity,
		Country:        record.Country,
		Mode:           record.Mode,
		LoggedInBefore: record.Mode != entities.PasswordlessModeDisabled && record.Mode == s.mode,
	}, nil
}

// LastIdentity returns the saved identity without the dial code of the saved country.
// It returns "" when nothing was saved.
func (s *PasswordlessIdentityService) LastIdentity(ctx context.Context) (string, error) {
	recalled, err := s.Recall(ctx)
	if err != nil || recalled == nil {
		return "", err
	}
	return recalled.Identity, nil
}

// LastCountry returns the country saved with the identity, or nil
func (s *PasswordlessIdentityService) LastCountry(ctx context.Context) (*entities.Country, error) {
	recalled, err := s.Recall(ctx)
	if err != nil || recalled == nil {
		return nil, err
	}
	return recalled.Country, nil
}

// HadLoggedInBefore reports whether an identity was saved while using the current mode
func (s *PasswordlessIdentityService) HadLoggedInBefore(ctx context.Context) (bool, error) {
	recalled, err := s.Recall(ctx)
	if err != nil || recalled == nil {
		return false, err
	}
	return recalled.LoggedInBefore, nil
}

// Forget removes the saved identity
func (s *PasswordlessIdentityService) Forget(ctx context.Context) error {
	err := s.repo.Delete(ctx, s.clientID)
	metrics.PasswordlessIdentities.WithLabelValues("delete", status(err)).Inc()
	if err != nil {
		return fmt.Errorf("failed to delete passwordless identity: %w", err)
	}
	return nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
