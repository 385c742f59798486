package store

import (
	"os"
	"path/filepath"
	"testing"

	"infini-cli/internal/model"
)

func withConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("INFINI_CONFIG_DIR", dir)
	return dir
}

func TestLoadConfig_MissingFileIsEmptyConfig(t *testing.T) {
	withConfigDir(t)
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Session != nil || cfg.Theme != "" || cfg.APIBase != "" {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	withConfigDir(t)

	s := &model.Session{
		Token: "tok-1",
		User:  model.User{ID: "u1", Email: "a@example.com", Name: "Ana"},
	}
	if err := SaveSession(s); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	got, err := RestoreSession()
	if err != nil {
		t.Fatalf("RestoreSession: %v", err)
	}
	if got == nil || got.Token != "tok-1" || got.User.Email != "a@example.com" {
		t.Fatalf("unexpected restored session: %+v", got)
	}
}

func TestRestoreSession_NoneWithoutLogin(t *testing.T) {
	withConfigDir(t)
	got, err := RestoreSession()
	if err != nil {
		t.Fatalf("RestoreSession: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no session, got %+v", got)
	}
}

func TestClearSession_IsIdempotent(t *testing.T) {
	withConfigDir(t)

	if err := SaveSession(&model.Session{Token: "tok"}); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if err := ClearSession(); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}
	if err := ClearSession(); err != nil {
		t.Fatalf("second ClearSession: %v", err)
	}
	got, err := RestoreSession()
	if err != nil {
		t.Fatalf("RestoreSession: %v", err)
	}
	if got != nil {
		t.Fatalf("expected session cleared, got %+v", got)
	}
}

func TestSaveConfig_KeepsBackupAndPrivatePerms(t *testing.T) {
	dir := withConfigDir(t)

	if err := SaveConfig(&Config{Theme: "dark"}); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	if err := SaveConfig(&Config{Theme: "light"}); err != nil {
		t.Fatalf("second SaveConfig: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.json.bak")); err != nil {
		t.Fatalf("expected backup file: %v", err)
	}
	st, err := os.Stat(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("stat config: %v", err)
	}
	if st.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 perms, got %v", st.Mode().Perm())
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Theme != "light" {
		t.Fatalf("expected latest config, got %+v", cfg)
	}
}
