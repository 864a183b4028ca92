package db_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/saadjs/gonext/internal/db"
)

func TestBackupAndRestoreRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "gonext.db")
	sqldb, err := db.Open(src)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := sqldb.Exec(`INSERT INTO kv_store(key, value) VALUES('gonext_events', '[]')`); err != nil {
		t.Fatalf("seed: %v", err)
	}

	out := filepath.Join(dir, "backups", "snap.db")
	info, err := db.Backup(context.Background(), sqldb, out)
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	if info.Checksum == "" || info.SizeBytes == 0 {
		t.Fatalf("unexpected backup info %+v", info)
	}
	if _, err := db.Backup(context.Background(), sqldb, out); err == nil {
		t.Fatalf("expected error when backup exists")
	}

	items, err := db.ListBackups(filepath.Dir(out))
	if err != nil {
		t.Fatalf("list backups: %v", err)
	}
	if len(items) != 1 || items[0].Checksum != info.Checksum {
		t.Fatalf("unexpected backup list %+v", items)
	}

	target := filepath.Join(dir, "restored.db")
	if err := db.RestoreBackup(out, target, false); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if err := db.RestoreBackup(out, target, false); err == nil {
		t.Fatalf("expected error without --force")
	}

	restored, err := db.Open(target)
	if err != nil {
		t.Fatalf("open restored: %v", err)
	}
	defer restored.Close()
	var value string
	if err := restored.QueryRow(`SELECT value FROM kv_store WHERE key = 'gonext_events'`).Scan(&value); err != nil {
		t.Fatalf("read restored value: %v", err)
	}
	if value != "[]" {
		t.Fatalf("unexpected restored value %q", value)
	}
}

func TestRestoreRejectsChecksumMismatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	backup := filepath.Join(dir, "snap.db")
	if err := os.WriteFile(backup, []byte("data"), 0o644); err != nil {
		t.Fatalf("write backup: %v", err)
	}
	if err := os.WriteFile(backup+".sha256", []byte("deadbeef\n"), 0o644); err != nil {
		t.Fatalf("write checksum: %v", err)
	}
	if err := db.RestoreBackup(backup, filepath.Join(dir, "out.db"), true); err == nil {
		t.Fatalf("expected checksum mismatch")
	}
}
