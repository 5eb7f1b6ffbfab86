package device

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/nerrad567/gray-logic-vizio/internal/infrastructure/database"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	db, err := database.Open(context.Background(), database.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	return NewSQLiteRepository(db.DB)
}

func testTV() *TV {
	return &TV{
		ID:         "tv-living",
		Name:       "Living Room TV",
		Address:    "192.168.1.50",
		AuthToken:  "Zabc123",
		MACAddress: "aa:bb:cc:dd:ee:ff",
	}
}

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tv := testTV()
	if err := repo.Create(ctx, tv); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	got, err := repo.GetByID(ctx, "tv-living")
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}

	if got.Name != tv.Name || got.Address != tv.Address || got.AuthToken != tv.AuthToken {
		t.Errorf("GetByID() = %+v, want fields from %+v", got, tv)
	}
	if got.WOLPort != 9 {
		t.Errorf("WOLPort = %d, want default 9", got.WOLPort)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestCreateDuplicate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, testTV()); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	err := repo.Create(ctx, testTV())
	if !errors.Is(err, ErrDeviceExists) {
		t.Errorf("duplicate Create() = %v, want ErrDeviceExists", err)
	}
}

func TestCreateInvalid(t *testing.T) {
	repo := newTestRepo(t)

	tests := []struct {
		name   string
		mutate func(*TV)
	}{
		{"missing id", func(tv *TV) { tv.ID = "" }},
		{"uppercase id", func(tv *TV) { tv.ID = "TV-Living" }},
		{"missing address", func(tv *TV) { tv.Address = "" }},
		{"bad mac", func(tv *TV) { tv.MACAddress = "not-a-mac" }},
		{"bad broadcast", func(tv *TV) { tv.WOLBroadcast = "not-an-ip" }},
		{"bad port", func(tv *TV) { tv.WOLPort = 70000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tv := testTV()
			tt.mutate(tv)
			err := repo.Create(context.Background(), tv)
			if !errors.Is(err, ErrInvalidDevice) {
				t.Errorf("Create() = %v, want ErrInvalidDevice", err)
			}
		})
	}
}

func TestGetMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), "nope")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("GetByID() = %v, want ErrDeviceNotFound", err)
	}
}

func TestUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tv := testTV()
	if err := repo.Create(ctx, tv); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	tv.Name = "Lounge TV"
	tv.Address = "192.168.1.51"
	if err := repo.Update(ctx, tv); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	got, err := repo.GetByID(ctx, tv.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.Name != "Lounge TV" || got.Address != "192.168.1.51" {
		t.Errorf("after Update(): %+v", got)
	}
}

func TestUpdateMissing(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Update(context.Background(), testTV())
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Update() = %v, want ErrDeviceNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, testTV()); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := repo.SaveState(ctx, "tv-living", PowerStateOn, "HDMI-1"); err != nil {
		t.Fatalf("SaveState() error: %v", err)
	}

	if err := repo.Delete(ctx, "tv-living"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	if _, err := repo.GetByID(ctx, "tv-living"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("GetByID() after delete = %v, want ErrDeviceNotFound", err)
	}
	// Cascade removes the state row too.
	if _, err := repo.GetState(ctx, "tv-living"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("GetState() after delete = %v, want ErrDeviceNotFound", err)
	}
}

func TestUpdateAuthToken(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tv := testTV()
	tv.AuthToken = ""
	if err := repo.Create(ctx, tv); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if err := repo.UpdateAuthToken(ctx, tv.ID, "Znewtoken"); err != nil {
		t.Fatalf("UpdateAuthToken() error: %v", err)
	}

	got, err := repo.GetByID(ctx, tv.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.AuthToken != "Znewtoken" {
		t.Errorf("AuthToken = %q, want %q", got.AuthToken, "Znewtoken")
	}
}

func TestSaveAndGetState(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, testTV()); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if err := repo.SaveState(ctx, "tv-living", PowerStateOn, "HDMI-1"); err != nil {
		t.Fatalf("SaveState() error: %v", err)
	}

	st, err := repo.GetState(ctx, "tv-living")
	if err != nil {
		t.Fatalf("GetState() error: %v", err)
	}
	if st.State != PowerStateOn || st.Source != "HDMI-1" {
		t.Errorf("GetState() = %+v", st)
	}

	// Upsert replaces the row.
	if err := repo.SaveState(ctx, "tv-living", PowerStateOff, ""); err != nil {
		t.Fatalf("second SaveState() error: %v", err)
	}
	st, err = repo.GetState(ctx, "tv-living")
	if err != nil {
		t.Fatalf("GetState() error: %v", err)
	}
	if st.State != PowerStateOff || st.Source != "" {
		t.Errorf("after upsert: %+v", st)
	}
}
