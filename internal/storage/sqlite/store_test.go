package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/saadjs/gonext/internal/db"
	"github.com/saadjs/gonext/internal/storage/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gonext.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { sqldb.Close() })
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return sqldb
}

func TestStoreSaveLoadDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := sqlite.New(newTestDB(t))

	if _, ok, err := s.Load(ctx, "gonext_events"); err != nil || ok {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}
	if err := s.Save(ctx, "gonext_events", []byte(`[]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, "gonext_events", []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok, err := s.Load(ctx, "gonext_events")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if string(v) != `[{"id":"1"}]` {
		t.Fatalf("unexpected value %s", v)
	}
	if err := s.Delete(ctx, "gonext_events"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Load(ctx, "gonext_events"); ok {
		t.Fatalf("expected key to be gone")
	}
	if err := s.Delete(ctx, "gonext_events"); err != nil {
		t.Fatalf("delete missing key should be a no-op: %v", err)
	}
}

func TestStoreRejectsBlankKey(t *testing.T) {
	t.Parallel()

	s := sqlite.New(newTestDB(t))
	if err := s.Save(context.Background(), "  ", []byte(`x`)); err == nil {
		t.Fatalf("expected error for blank key")
	}
}

func TestStoreKeepsBoundedHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := sqlite.New(newTestDB(t))
	for i := 0; i < 15; i++ {
		if err := s.Save(ctx, "k", []byte(fmt.Sprintf("v%d", i))); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	// Saving an identical value does not add history.
	if err := s.Save(ctx, "k", []byte("v14")); err != nil {
		t.Fatalf("save same: %v", err)
	}
	history, err := s.History(ctx, "k")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 10 {
		t.Fatalf("expected 10 history rows, got %d", len(history))
	}
	if string(history[0]) != "v13" || string(history[9]) != "v4" {
		t.Fatalf("unexpected history order: first=%s last=%s", history[0], history[9])
	}
}
