// Package storage defines the durable key/value collaborator used by the
// stores and the JSON codec that guards it against corrupt values.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

const (
	KeySession   = "gonext_session"
	KeyUsers     = "gonext_users"
	KeyFavorites = "gonext_favorites"
	KeyEvents    = "gonext_events"
)

// Keys lists every key the application owns.
var Keys = []string{KeySession, KeyUsers, KeyFavorites, KeyEvents}

// ErrCorruptState reports a stored value that cannot be decoded or fails validation.
var ErrCorruptState = errors.New("corrupt stored state")

// Store is a durable key/value store. A missing key is reported with ok=false.
type Store interface {
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var validate = validator.New()

// LoadJSON decodes key into out and validates it. A missing key leaves out
// untouched and returns found=false. Undecodable or invalid values return an
// error wrapping ErrCorruptState.
func LoadJSON(ctx context.Context, s Store, key string, out any) (bool, error) {
	raw, ok, err := s.Load(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := Decode(raw, out); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Decode unmarshals raw into out and runs struct validation on it.
func Decode(raw []byte, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if err := validateValue(out); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	return nil
}

// SaveJSON encodes v and writes it under key.
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Save(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func validateValue(out any) error {
	v := reflect.ValueOf(out)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		return validate.Struct(v.Interface())
	case reflect.Slice, reflect.Array:
		return validate.Var(v.Interface(), "dive")
	}
	return nil
}
