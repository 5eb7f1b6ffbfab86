package database

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenAndMigrate(t *testing.T) {
	db := openTestDB(t)

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}

	// Schema application must be idempotent.
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate() error: %v", err)
	}

	// The devices table must exist and be queryable.
	var count int
	err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM devices").Scan(&count)
	if err != nil {
		t.Fatalf("querying devices: %v", err)
	}
	if count != 0 {
		t.Errorf("fresh database has %d devices, want 0", count)
	}
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error: %v", err)
	}
}
