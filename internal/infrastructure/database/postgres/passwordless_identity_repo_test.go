package postgres

import (
	"testing"
	"time"

	"github.com/devilmonastery/lock/internal/domain/entities"
)

func TestPasswordlessIdentityRowRoundTrip(t *testing.T) {
	updated := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	tests := []struct {
		name     string
		identity entities.PasswordlessIdentity
	}{
		{
			name: "sms with country",
			identity: entities.PasswordlessIdentity{
				ClientID:  "client",
				Identity:  "+541122334455",
				Country:   &entities.Country{IsoCode: "AR", DialCode: "+54"},
				Mode:      entities.PasswordlessModeSMSCode,
				UpdatedAt: updated,
			},
		},
		{
			name: "email",
			identity: entities.PasswordlessIdentity{
				ClientID:  "client",
				Identity:  "john@example.com",
				Mode:      entities.PasswordlessModeEmailLink,
				UpdatedAt: updated,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := toPasswordlessIdentityRow(&tt.identity)
			if row.CountryIsoCode.Valid != (tt.identity.Country != nil) {
				t.Errorf("country validity = %v", row.CountryIsoCode.Valid)
			}

			got := row.toEntity()
			if got.ClientID != tt.identity.ClientID || got.Identity != tt.identity.Identity ||
				got.Mode != tt.identity.Mode || !got.UpdatedAt.Equal(tt.identity.UpdatedAt) {
				t.Errorf("toEntity() = %+v, want %+v", got, tt.identity)
			}
			if (got.Country == nil) != (tt.identity.Country == nil) {
				t.Fatalf("Country = %+v, want %+v", got.Country, tt.identity.Country)
			}
			if got.Country != nil && *got.Country != *tt.identity.Country {
				t.Errorf("Country = %+v, want %+v", *got.Country, *tt.identity.Country)
			}
		})
	}
}

func TestPasswordlessIdentityRowUnknownMode(t *testing.T) {
	row := passwordlessIdentityRow{ClientID: "c", Identity: "x", Mode: "carrier_pigeon"}
	if got := row.toEntity().Mode; got != entities.PasswordlessModeDisabled {
		t.Errorf("Mode = %v, want disabled", got)
	}
}
