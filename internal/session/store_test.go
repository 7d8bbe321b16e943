package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/helpdesk-tools/ticket-dashboard/internal/domain"
)

type failingStorage struct {
	*MemoryStorage
	saveErr   error
	deleteErr error
}

func (f *failingStorage) Delete(ctx context.Context, keys ...string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.MemoryStorage.Delete(ctx, keys...)
}

func (f *failingStorage) Save(ctx context.Context, values map[string]string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.MemoryStorage.Save(ctx, values)
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name     string
		seed     map[string]string
		wantAuth bool
		wantRole domain.Role
	}{
		{name: "empty", seed: nil},
		{name: "complete", seed: map[string]string{"token": "T", "userRole": "Tech Team"}, wantAuth: true, wantRole: domain.RoleTechTeam},
		{name: "token only", seed: map[string]string{"token": "T"}},
		{name: "role only", seed: map[string]string{"userRole": "Admin"}},
		{name: "empty token", seed: map[string]string{"token": "", "userRole": "Admin"}},
		{name: "unknown role", seed: map[string]string{"token": "T", "userRole": "Root"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(NewMemoryStorage(tt.seed), DefaultKeys, nil)
			if err := store.Initialize(context.Background()); err != nil {
				t.Fatalf("Initialize: %v", err)
			}
			if got := store.IsAuthenticated(); got != tt.wantAuth {
				t.Errorf("IsAuthenticated() = %v, want %v", got, tt.wantAuth)
			}
			role, ok := store.CurrentRole()
			if ok != tt.wantAuth || role != tt.wantRole {
				t.Errorf("CurrentRole() = %q, %v", role, ok)
			}
			if !tt.wantAuth && store.Token() != "" {
				t.Errorf("Token() = %q on unauthenticated store", store.Token())
			}
		})
	}
}

func TestLoginLogout(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage(nil)
	store := NewStore(storage, DefaultKeys, nil)

	if err := store.Login(ctx, "T", domain.RoleAdmin); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got := store.Session(); got != (domain.Session{Token: "T", Role: domain.RoleAdmin}) {
		t.Errorf("Session() = %+v", got)
	}
	persisted, _ := storage.Load(ctx, "token", "userRole")
	if persisted["token"] != "T" || persisted["userRole"] != "Admin" {
		t.Errorf("persisted = %v", persisted)
	}

	if err := store.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if store.IsAuthenticated() {
		t.Error("still authenticated after logout")
	}
	persisted, _ = storage.Load(ctx, "token", "userRole")
	if len(persisted) != 0 {
		t.Errorf("persisted after logout = %v", persisted)
	}
}

func TestLoginRejectsIncompleteSession(t *testing.T) {
	store := NewStore(NewMemoryStorage(nil), DefaultKeys, nil)
	ctx := context.Background()
	if err := store.Login(ctx, "", domain.RoleUser); err == nil {
		t.Error("empty token accepted")
	}
	if err := store.Login(ctx, "T", domain.Role("Root")); err == nil {
		t.Error("unknown role accepted")
	}
	if store.IsAuthenticated() {
		t.Error("rejected login left the store authenticated")
	}
}

func TestLoginStorageFailureKeepsMemory(t *testing.T) {
	storage := &failingStorage{MemoryStorage: NewMemoryStorage(nil)}
	store := NewStore(storage, DefaultKeys, nil)
	ctx := context.Background()
	if err := store.Login(ctx, "T1", domain.RoleUser); err != nil {
		t.Fatal(err)
	}

	storage.saveErr = errors.New("disk full")
	if err := store.Login(ctx, "T2", domain.RoleAdmin); err == nil {
		t.Fatal("expected error")
	}
	if got := store.Session(); got.Token != "T1" || got.Role != domain.RoleUser {
		t.Errorf("Session() = %+v, want previous session", got)
	}
}

func TestLogoutStorageFailureKeepsSession(t *testing.T) {
	storage := &failingStorage{MemoryStorage: NewMemoryStorage(nil)}
	store := NewStore(storage, DefaultKeys, nil)
	ctx := context.Background()
	if err := store.Login(ctx, "T", domain.RoleAdmin); err != nil {
		t.Fatal(err)
	}

	storage.deleteErr = errors.New("connection reset")
	if err := store.Logout(ctx); err == nil {
		t.Fatal("expected error")
	}
	if !store.IsAuthenticated() {
		t.Error("memory cleared although the persisted session survived")
	}
	persisted, _ := storage.Load(ctx, "token", "userRole")
	if persisted["token"] != "T" {
		t.Errorf("persisted = %v", persisted)
	}

	storage.deleteErr = nil
	if err := store.Logout(ctx); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if store.IsAuthenticated() {
		t.Error("still authenticated after retried logout")
	}
}

func TestFileStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.yaml")
	keys := Keys{Token: "tok", Role: "role"}

	first := NewStore(NewFileStorage(path), keys, nil)
	if err := first.Initialize(ctx); err != nil {
		t.Fatalf("Initialize on missing file: %v", err)
	}
	if err := first.Login(ctx, "T", domain.RoleUser); err != nil {
		t.Fatalf("Login: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "role: User") {
		t.Errorf("file content = %q", data)
	}

	second := NewStore(NewFileStorage(path), keys, nil)
	if err := second.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	if role, ok := second.CurrentRole(); !ok || role != domain.RoleUser {
		t.Errorf("reloaded role = %q, %v", role, ok)
	}

	if err := second.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	third := NewStore(NewFileStorage(path), keys, nil)
	if err := third.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	if third.IsAuthenticated() {
		t.Error("session survived logout")
	}
}

func TestFileStorageCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	if err := os.WriteFile(path, []byte("token: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	store := NewStore(NewFileStorage(path), DefaultKeys, nil)
	if err := store.Initialize(context.Background()); err == nil {
		t.Error("expected parse error")
	}
}
