package filestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/devilmonastery/lock/internal/domain/entities"
	"github.com/devilmonastery/lock/internal/domain/repositories"
)

func TestPasswordlessIdentityStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "passwordless.json")
	store := NewPasswordlessIdentityStore(path)

	if _, err := store.Get(ctx, "client"); !errors.Is(err, repositories.ErrIdentityNotFound) {
		t.Fatalf("Get() on empty store error = %v, want ErrIdentityNotFound", err)
	}
	if err := store.Delete(ctx, "client"); err != nil {
		t.Fatalf("Delete() on empty store error: %v", err)
	}

	updated := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	identity := &entities.PasswordlessIdentity{
		ClientID:  "client",
		Identity:  "+541122334455",
		Country:   &entities.Country{IsoCode: "AR", DialCode: "+54"},
		Mode:      entities.PasswordlessModeSMSCode,
		UpdatedAt: updated,
	}
	if err := store.Save(ctx, identity); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := store.Save(ctx, &entities.PasswordlessIdentity{ClientID: "other", Identity: "a@b.c", Mode: entities.PasswordlessModeEmailLink}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	// mutations after save must not leak into the store
	identity.Country.DialCode = "+1"

	// a fresh store reads what the first one wrote
	got, err := NewPasswordlessIdentityStore(path).Get(ctx, "client")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Identity != "+541122334455" || got.Mode != entities.PasswordlessModeSMSCode || !got.UpdatedAt.Equal(updated) {
		t.Errorf("Get() = %+v", got)
	}
	if got.Country == nil || got.Country.DialCode != "+54" {
		t.Errorf("Country = %+v", got.Country)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !strings.Contains(string(data), `"mode": "sms_code"`) {
		t.Errorf("mode should be stored by name:\n%s", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("file mode = %v, want 0600", info.Mode().Perm())
	}

	if err := store.Delete(ctx, "client"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := store.Get(ctx, "client"); !errors.Is(err, repositories.ErrIdentityNotFound) {
		t.Errorf("Get() after delete error = %v", err)
	}
	if _, err := store.Get(ctx, "other"); err != nil {
		t.Errorf("Delete() removed the wrong record: %v", err)
	}
}

func TestPasswordlessIdentityStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passwordless.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	store := NewPasswordlessIdentityStore(path)

	if _, err := store.Get(context.Background(), "client"); err == nil || errors.Is(err, repositories.ErrIdentityNotFound) {
		t.Errorf("Get() error = %v, want parse error", err)
	}
	if err := store.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() should fail on a corrupt file")
	}
}
