package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/michalprusek/marianska-sub005/internal/application"
	"github.com/michalprusek/marianska-sub005/internal/persistence/sqlite"
)

// NewSQLiteHarness builds a Harness over a migrated SQLite file in a temp
// directory. The store is closed by tb.Cleanup.
func NewSQLiteHarness(tb testing.TB, opts ...application.Option) *Harness {
	tb.Helper()
	return OpenSQLiteHarness(tb, SQLiteDSN(tb), opts...)
}

// SQLiteDSN returns a DSN for a fresh database file under tb.TempDir.
func SQLiteDSN(tb testing.TB) string {
	tb.Helper()
	return "file:" + filepath.Join(tb.TempDir(), "lodging.db")
}

// OpenSQLiteHarness opens its own connection to dsn. Several harnesses on one
// dsn behave like separate processes sharing the database file.
func OpenSQLiteHarness(tb testing.TB, dsn string, opts ...application.Option) *Harness {
	tb.Helper()

	store, err := sqlite.Open(context.Background(), dsn)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	tb.Cleanup(func() { _ = store.Close() })
	return newHarness(tb, store, opts...)
}
