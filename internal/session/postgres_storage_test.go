package session

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/helpdesk-tools/ticket-dashboard/internal/persistence"
)

// newPostgresStorage connects to POSTGRES_DSN and skips when it is unset.
func newPostgresStorage(t *testing.T) (*PostgresStorage, func(string) string) {
	t.Helper()
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := persistence.RunMigrations(ctx, pool, zap.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	prefix := "test-" + uuid.NewString() + "-"
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM dashboard_state WHERE key LIKE $1`, prefix+"%")
	})
	return NewPostgresStorage(pool), func(k string) string { return prefix + k }
}

func TestPostgresStorageUpsertAndDelete(t *testing.T) {
	storage, key := newPostgresStorage(t)
	ctx := context.Background()
	token, role := key("token"), key("userRole")

	if err := storage.Save(ctx, map[string]string{token: "T1", role: "User"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := storage.Save(ctx, map[string]string{token: "T2", role: "Admin"}); err != nil {
		t.Fatalf("Save over existing keys: %v", err)
	}
	values, err := storage.Load(ctx, token, role)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if values[token] != "T2" || values[role] != "Admin" {
		t.Errorf("Load = %v", values)
	}

	if err := storage.Delete(ctx, role); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	values, err = storage.Load(ctx, token, role)
	if err != nil {
		t.Fatal(err)
	}
	if len(values) != 1 || values[token] != "T2" {
		t.Errorf("Load after partial delete = %v", values)
	}
}

func TestPostgresStorageSaveAllOrNothing(t *testing.T) {
	storage, key := newPostgresStorage(t)
	ctx := context.Background()
	token, role := key("token"), key("userRole")

	// Postgres rejects NUL bytes in text, failing one of the two upserts.
	err := storage.Save(ctx, map[string]string{token: "T", role: "Ad\x00min"})
	if err == nil {
		t.Fatal("expected error")
	}
	values, err := storage.Load(ctx, token, role)
	if err != nil {
		t.Fatal(err)
	}
	if len(values) != 0 {
		t.Errorf("failed save left rows behind: %v", values)
	}
}

func TestPostgresStoragePing(t *testing.T) {
	storage, _ := newPostgresStorage(t)
	if err := storage.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
	if err := NewPostgresStorage(nil).Ping(context.Background()); err == nil {
		t.Error("Ping without pool succeeded")
	}
}
