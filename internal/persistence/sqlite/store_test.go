package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/michalprusek/marianska-sub005/internal/persistence"
	"github.com/michalprusek/marianska-sub005/internal/persistence/sqlite"
	"github.com/michalprusek/marianska-sub005/internal/persistence/storetest"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "lodging.db")
	store, err := sqlite.Open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) persistence.Store {
		return openStore(t)
	})
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}

	var count int
	if err := store.DB().QueryRowContext(ctx, `SELECT COUNT(1) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 recorded migration, got %d", count)
	}
}

func TestLockRoomsRequiresTransaction(t *testing.T) {
	store := openStore(t)
	if err := store.LockRooms(context.Background(), []string{"1"}); err == nil {
		t.Fatal("expected error outside a transaction")
	}
}
