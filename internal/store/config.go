package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"infini-cli/internal/model"
)

// Config is the client's persisted local state: the API endpoint, the theme
// preference, and the session from the last successful login. Sections and
// projects themselves live behind the remote API and are never stored here.
type Config struct {
	// APIBase overrides the gateway endpoint. Empty means the built-in default.
	APIBase string `json:"apiBase,omitempty"`

	// Theme is "light", "dark" or "" (auto-detect from the terminal).
	Theme string `json:"theme,omitempty"`

	// Session is the persisted identity. Restoring it does not validate the
	// token; the first unauthorized response is the actual validity check.
	Session *model.Session `json:"session,omitempty"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.infini).
	if v := strings.TrimSpace(os.Getenv("INFINI_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".infini"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func LoadConfig() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// Best-effort safety net: keep a copy of the previous config to make
	// recovery from accidental overwrites easier.
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.json.bak.*.tmp", path+".bak", prev, 0o644)
	}

	// Unique temp file name + rename avoids cross-process clobbering when a
	// CLI command and the TUI write config concurrently. The config holds a
	// bearer token, so keep it private.
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}

// RestoreSession rehydrates the session persisted by a prior login, if any.
func RestoreSession() (*model.Session, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Session == nil || strings.TrimSpace(cfg.Session.Token) == "" {
		return nil, nil
	}
	return cfg.Session, nil
}

// SaveSession persists the session from a successful login or registration.
func SaveSession(s *model.Session) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	cfg.Session = s
	return SaveConfig(cfg)
}

// ClearSession removes the persisted session. Clearing an already-clear
// config is a no-op, so logout is idempotent.
func ClearSession() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	if cfg.Session == nil {
		return nil
	}
	cfg.Session = nil
	return SaveConfig(cfg)
}
