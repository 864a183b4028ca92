package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saadjs/gonext/internal/db"
	"github.com/saadjs/gonext/internal/service"
	"github.com/saadjs/gonext/internal/storage"
	"github.com/saadjs/gonext/internal/storage/sqlite"
)

func newSQLiteStore(t *testing.T) *sqlite.Store {
	t.Helper()
	sqldb, err := db.Open(filepath.Join(t.TempDir(), "gonext.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })
	require.NoError(t, db.ApplyMigrations(sqldb))
	return sqlite.New(sqldb)
}

func statuses(r service.DoctorReport) map[string]string {
	out := map[string]string{}
	for _, k := range r.Keys {
		out[k.Key] = k.Status
	}
	return out
}

func TestRunDoctorReportsCorruptKeys(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	require.NoError(t, s.Save(ctx, storage.KeyEvents, []byte(`[{"id":"1","date":"2026-10-16","mood":"work"}]`)))
	require.NoError(t, s.Save(ctx, storage.KeyFavorites, []byte(`{"oops"`)))

	report, err := service.RunDoctor(ctx, s, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		storage.KeySession:   service.KeyMissing,
		storage.KeyUsers:     service.KeyMissing,
		storage.KeyFavorites: service.KeyCorrupt,
		storage.KeyEvents:    service.KeyOK,
	}, statuses(report))
	assert.Equal(t, 1, report.Corrupt())

	// Without fix nothing changes.
	raw, _, err := s.Load(ctx, storage.KeyFavorites)
	require.NoError(t, err)
	assert.Equal(t, `{"oops"`, string(raw))
}

func TestRunDoctorFixRestoresFromHistory(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	good := `[{"id":"1","date":"2026-10-16","mood":"work","notified":false}]`
	require.NoError(t, s.Save(ctx, storage.KeyEvents, []byte(good)))
	require.NoError(t, s.Save(ctx, storage.KeyEvents, []byte(`[{"date":"bad"}]`)))
	require.NoError(t, s.Save(ctx, storage.KeyEvents, []byte(`not json`)))
	require.NoError(t, s.Save(ctx, storage.KeySession, []byte(`{"name":"x"}`)))

	report, err := service.RunDoctor(ctx, s, true)
	require.NoError(t, err)
	st := statuses(report)
	assert.Equal(t, service.KeyRestored, st[storage.KeyEvents])
	assert.Equal(t, service.KeyReset, st[storage.KeySession])
	assert.Zero(t, report.Corrupt())

	raw, ok, err := s.Load(ctx, storage.KeyEvents)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, good, string(raw))
	_, ok, err = s.Load(ctx, storage.KeySession)
	require.NoError(t, err)
	assert.False(t, ok)

	report, err = service.RunDoctor(ctx, s, false)
	require.NoError(t, err)
	assert.Zero(t, report.Corrupt())
}
