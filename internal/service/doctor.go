package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/saadjs/gonext/internal/model"
	"github.com/saadjs/gonext/internal/storage"
)

// HistoryStore is a storage.Store that keeps previous values per key.
type HistoryStore interface {
	storage.Store
	History(ctx context.Context, key string) ([][]byte, error)
}

// KeyStatus values reported by RunDoctor.
const (
	KeyOK       = "ok"
	KeyMissing  = "missing"
	KeyCorrupt  = "corrupt"
	KeyRestored = "restored"
	KeyReset    = "reset"
)

type KeyReport struct {
	Key    string `json:"key"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type DoctorReport struct {
	Keys []KeyReport `json:"keys"`
}

// Corrupt counts keys still corrupt after the run.
func (r DoctorReport) Corrupt() int {
	n := 0
	for _, k := range r.Keys {
		if k.Status == KeyCorrupt {
			n++
		}
	}
	return n
}

// RunDoctor decodes every application key with its schema. With fix, a
// corrupt key is restored from the newest valid history value, or deleted
// when none decodes.
func RunDoctor(ctx context.Context, s HistoryStore, fix bool) (DoctorReport, error) {
	report := DoctorReport{Keys: make([]KeyReport, 0, len(storage.Keys))}
	for _, key := range storage.Keys {
		kr, err := checkKey(ctx, s, key, fix)
		if err != nil {
			return report, err
		}
		report.Keys = append(report.Keys, kr)
	}
	return report, nil
}

func checkKey(ctx context.Context, s HistoryStore, key string, fix bool) (KeyReport, error) {
	raw, ok, err := s.Load(ctx, key)
	if err != nil {
		return KeyReport{}, fmt.Errorf("doctor load %s: %w", key, err)
	}
	if !ok {
		return KeyReport{Key: key, Status: KeyMissing}, nil
	}
	decodeErr := decodeKey(key, raw)
	if decodeErr == nil {
		return KeyReport{Key: key, Status: KeyOK}, nil
	}
	if !errors.Is(decodeErr, storage.ErrCorruptState) {
		return KeyReport{}, decodeErr
	}
	kr := KeyReport{Key: key, Status: KeyCorrupt, Detail: decodeErr.Error()}
	if !fix {
		return kr, nil
	}

	history, err := s.History(ctx, key)
	if err != nil {
		return kr, fmt.Errorf("doctor history %s: %w", key, err)
	}
	for i, prev := range history {
		if decodeKey(key, prev) != nil {
			continue
		}
		if err := s.Save(ctx, key, prev); err != nil {
			return kr, fmt.Errorf("doctor restore %s: %w", key, err)
		}
		kr.Status = KeyRestored
		kr.Detail = fmt.Sprintf("restored revision %d", i+1)
		return kr, nil
	}
	if err := s.Delete(ctx, key); err != nil {
		return kr, fmt.Errorf("doctor reset %s: %w", key, err)
	}
	kr.Status = KeyReset
	kr.Detail = "no valid history; key deleted"
	return kr, nil
}

func decodeKey(key string, raw []byte) error {
	switch key {
	case storage.KeySession:
		var v model.Session
		return storage.Decode(raw, &v)
	case storage.KeyUsers:
		var v []model.User
		return storage.Decode(raw, &v)
	case storage.KeyFavorites:
		var v []model.FavoritePlace
		return storage.Decode(raw, &v)
	case storage.KeyEvents:
		var v []model.CalendarEvent
		return storage.Decode(raw, &v)
	}
	return fmt.Errorf("unknown storage key %q", key)
}
