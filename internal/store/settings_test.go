package store

import (
	"context"
	"testing"

	"github.com/erazemk/oprema/internal/db"
)

func TestGetSettingUnset(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	value, err := GetSetting(ctx, database, "no-such-key")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if value != "" {
		t.Errorf("expected empty value for unset key, got %q", value)
	}
}

func TestSetSettingOverwrites(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := SetSetting(ctx, database, SettingDefaultCurrency, "EUR"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := SetSetting(ctx, database, SettingDefaultCurrency, "USD"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}

	value, err := GetSetting(ctx, database, SettingDefaultCurrency)
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if value != "USD" {
		t.Errorf("expected 'USD', got %q", value)
	}
}

func TestGetJWTSecret_GeneratesAndPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// First call should generate a secret.
	secret1, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 == "" {
		t.Fatal("expected non-empty secret")
	}
	if len(secret1) != 64 { // 32 bytes = 64 hex chars
		t.Fatalf("expected 64 hex chars, got %d", len(secret1))
	}

	// Second call should return the same secret.
	secret2, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 != secret2 {
		t.Fatalf("expected same secret, got %q and %q", secret1, secret2)
	}
}
