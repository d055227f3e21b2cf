package config

import (
	"os"
	"path/filepath"
	"testing"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBDriver != "postgres" {
		t.Errorf("driver = %q, want postgres", cfg.DBDriver)
	}
	if cfg.APIPrefix != "/api" {
		t.Errorf("prefix = %q, want /api", cfg.APIPrefix)
	}
	if cfg.JWTTTLHours != 168 {
		t.Errorf("ttl = %d, want 168", cfg.JWTTTLHours)
	}
	if cfg.RecentReviewsLimit != 6 {
		t.Errorf("recent limit = %d, want 6", cfg.RecentReviewsLimit)
	}
	if cfg.JWTSecret != "secret" {
		t.Errorf("secret = %q", cfg.JWTSecret)
	}
}

func TestLoadEnvFileAndOverrides(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	env := "DB_DRIVER=SQLite\nDATABASE_URL=vault.db\nAPI_PREFIX=v2/\nPORT=9090\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("driver = %q, want sqlite", cfg.DBDriver)
	}
	if cfg.DatabaseURL != "vault.db" {
		t.Errorf("dsn = %q", cfg.DatabaseURL)
	}
	if cfg.APIPrefix != "/v2" {
		t.Errorf("prefix = %q, want /v2", cfg.APIPrefix)
	}
	if cfg.Port != "7070" {
		t.Errorf("port = %q, want env override 7070", cfg.Port)
	}
}
