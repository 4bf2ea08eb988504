package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("PLANK_TEST_SECRET", "s3cret")

	path := filepath.Join(t.TempDir(), "plank.yaml")
	content := `
server:
  port: 9090
auth:
  jwt_secret: ${PLANK_TEST_SECRET}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "s3cret" {
		t.Fatalf("expected env expansion, got %q", cfg.Auth.JWTSecret)
	}
	// Unset fields keep their defaults.
	if cfg.Auth.APIKeyHeader != "X-API-Key" {
		t.Fatalf("expected default api key header, got %q", cfg.Auth.APIKeyHeader)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Fatalf("expected default host, got %q", cfg.Server.Host)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plank.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("write default: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Fatalf("expected sqlite driver, got %q", cfg.Storage.Driver)
	}
}
