package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/devilmonastery/lock/internal/domain/entities"
	"github.com/devilmonastery/lock/internal/domain/repositories"
	"github.com/devilmonastery/lock/internal/pkg/metrics"
)

// PasswordlessIdentityRepository implements repositories.PasswordlessIdentityRepository for PostgreSQL
type PasswordlessIdentityRepository struct {
	db *sqlx.DB
}

// NewPasswordlessIdentityRepository creates a new PostgreSQL passwordless identity repository
func NewPasswordlessIdentityRepository(db *sqlx.DB) *PasswordlessIdentityRepository {
	return &PasswordlessIdentityRepository{db: db}
}

var _ repositories.PasswordlessIdentityRepository = (*PasswordlessIdentityRepository)(nil)

// passwordlessIdentityRow is the database representation of entities.PasswordlessIdentity
type passwordlessIdentityRow struct {
	ClientID        string         `db:"client_id"`
	Identity        string         `db:"identity"`
	CountryIsoCode  sql.NullString `db:"country_iso_code"`
	CountryDialCode sql.NullString `db:"country_dial_code"`
	Mode            string         `db:"mode"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func toPasswordlessIdentityRow(identity *entities.PasswordlessIdentity) passwordlessIdentityRow {
	row := passwordlessIdentityRow{
		ClientID:  identity.ClientID,
		Identity:  identity.Identity,
		Mode:      identity.Mode.String(),
		UpdatedAt: identity.UpdatedAt,
	}
	if identity.Country != nil {
		row.CountryIsoCode = sql.NullString{String: identity.Country.IsoCode, Valid: true}
		row.CountryDialCode = sql.NullString{String: identity.Country.DialCode, Valid: true}
	}
	return row
}

func (row passwordlessIdentityRow) toEntity() *entities.PasswordlessIdentity {
	identity := &entities.PasswordlessIdentity{
		ClientID:  row.ClientID,
		Identity:  row.Identity,
		Mode:      entities.ParsePasswordlessMode(row.Mode),
		UpdatedAt: row.UpdatedAt,
	}
	if row.CountryIsoCode.Valid || row.CountryDialCode.Valid {
		identity.Country = &entities.Country{
			IsoCode:  row.CountryIsoCode.String,
			DialCode: row.CountryDialCode.String,
		}
	}
	return identity
}

// Get retrieves the identity saved for a client
func (r *PasswordlessIdentityRepository) Get(ctx context.Context, clientID string) (*entities.PasswordlessIdentity, error) {
	start := time.Now()
	var err error
	rowCount := int64(0)
	defer func() {
		metrics.RecordDBOperation("passwordless_identity", "get", time.Since(start), rowCount, err)
	}()

	query := `
		SELECT client_id, identity, country_iso_code, country_dial_code, mode, updated_at
		FROM passwordless_identities
		WHERE client_id = $1
	`

	var row passwordlessIdentityRow
	err = r.db.GetContext(ctx, &row, query, clientID)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return nil, repositories.ErrIdentityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get passwordless identity: %w", err)
	}

	rowCount = 1
	return row.toEntity(), nil
}

// Save creates or replaces the identity of a client
func (r *PasswordlessIdentityRepository) Save(ctx context.Context, identity *entities.PasswordlessIdentity) error {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("passwordless_identity", "save", time.Since(start), 1, err)
	}()

	if identity.UpdatedAt.IsZero() {
		identity.UpdatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO passwordless_identities (client_id, identity, country_iso_code, country_dial_code, mode, updated_at)
		VALUES (:client_id, :identity, :country_iso_code, :country_dial_code, :mode, :updated_at)
		ON CONFLICT (client_id) DO UPDATE
		SET identity = EXCLUDED.identity,
		    country_iso_code = EXCLUDED.country_iso_code,
		    country_dial_code = EXCLUDED.country_dial_code,
		    mode = EXCLUDED.mode,
		    updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.NamedExecContext(ctx, query, toPasswordlessIdentityRow(identity))
	if err != nil {
		return fmt.Errorf("failed to save passwordless identity: %w", err)
	}
	return nil
}

// Delete removes the identity of a client
func (r *PasswordlessIdentityRepository) Delete(ctx context.Context, clientID string) error {
	start := time.Now()
	var err error
	rowsAffected := int64(-1)
	defer func() {
		metrics.RecordDBOperation("passwordless_identity", "delete", time.Since(start), rowsAffected, err)
	}()

	var result sql.Result
	result, err = r.db.ExecContext(ctx, `DELETE FROM passwordless_identities WHERE client_id = $1`, clientID)
	if err != nil {
		return fmt.Errorf("failed to delete passwordless identity: %w", err)
	}
	rowsAffected, _ = result.RowsAffected()
	return nil
}

// HealthCheck verifies the table is reachable
func (r *PasswordlessIdentityRepository) HealthCheck(ctx context.Context) error {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT 1 FROM passwordless_identities LIMIT 1`); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("passwordless identity store unhealthy: %w", err)
	}
	return nil
}
