package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_DRIVER", "")
	t.Setenv("BACKEND_BASE_URL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.BaseURL != "http://127.0.0.1:8000" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Session.Driver != SessionDriverFile {
		t.Errorf("Driver = %q, want %q", cfg.Session.Driver, SessionDriverFile)
	}
	if cfg.Session.TokenKey != "token" || cfg.Session.RoleKey != "userRole" {
		t.Errorf("session keys = %q/%q", cfg.Session.TokenKey, cfg.Session.RoleKey)
	}
	if cfg.Tickets.RevertOnFailure || cfg.Tickets.DedupeByID {
		t.Error("strict ticket modes should default to off")
	}
	if got := cfg.Backend.Timeout(); got != 15*time.Second {
		t.Errorf("Backend.Timeout() = %v", got)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dash.env")
	if err := os.WriteFile(path, []byte("TICKETS_REVERT_ON_FAILURE=true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// t.Setenv restores the variable afterwards; godotenv only fills unset ones.
	t.Setenv("TICKETS_REVERT_ON_FAILURE", "")
	os.Unsetenv("TICKETS_REVERT_ON_FAILURE")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Tickets.RevertOnFailure {
		t.Error("RevertOnFailure should be read from the env file")
	}
}

func TestLoadRejectsBadSession(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"SESSION_DRIVER": "cookie"}},
		{name: "same keys", env: map[string]string{"SESSION_TOKEN_KEY": "k", "SESSION_ROLE_KEY": "k"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(filepath.Join(t.TempDir(), "none.env")); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
