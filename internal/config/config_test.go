package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `addr: ":9090"
database: /var/lib/oprema/oprema.sqlite3
default_currency: EUR
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("expected addr ':9090', got %q", cfg.Addr)
	}
	if cfg.Database != "/var/lib/oprema/oprema.sqlite3" {
		t.Errorf("unexpected database path %q", cfg.Database)
	}
	if cfg.DefaultCurrency != "EUR" {
		t.Errorf("expected default currency 'EUR', got %q", cfg.DefaultCurrency)
	}
	if cfg.JWTSecret != "" {
		t.Errorf("expected empty jwt secret, got %q", cfg.JWTSecret)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("addr: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid yaml")
	}
}
