// Package session persists per-browser session state behind a single Store
// contract with two interchangeable backends: a Redis document store and a
// Postgres session table. The backend is selected once at startup from
// configuration.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// ErrStoreUnavailable wraps any backend I/O failure. Callers treat it as
// "fail closed": the request proceeds unauthenticated rather than trusting a
// session that could not be read.
var ErrStoreUnavailable = errors.New("session store unavailable")

// Payload is the serialized session state. Only the user id is persisted for
// authentication; the full user record is re-fetched on every load so role
// changes take effect on the next request. Values carries auxiliary
// middleware data (flash messages, CSRF material) under an explicit contract
// instead of an open-ended object.
type Payload struct {
	UserID string         `json:"userId,omitempty"`
	Values map[string]any `json:"values,omitempty"`
}

// Store is the session persistence contract. Get returns (nil, nil) when no
// session exists for sid; Destroy of an unknown sid is not an error.
type Store interface {
	Get(ctx context.Context, sid string) (*Payload, error)
	Set(ctx context.Context, sid string, payload *Payload) error
	Destroy(ctx context.Context, sid string) error
}

// encodePayload renders the payload as a JSON blob. The Values map is
// shallow-copied and entries that cannot be represented as JSON (a handle to
// the store itself, a live connection) are dropped, so the stored blob is
// always a plain document.
func encodePayload(payload *Payload) ([]byte, error) {
	clean := Payload{UserID: payload.UserID}
	if len(payload.Values) > 0 {
		clean.Values = make(map[string]any, len(payload.Values))
		for key, value := range payload.Values {
			if !portableValue(reflect.ValueOf(value)) {
				continue
			}
			if _, err := json.Marshal(value); err != nil {
				continue
			}
			clean.Values[key] = value
		}
	}

	blob, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("encode session payload: %w", err)
	}
	return blob, nil
}

// portableValue reports whether a value can survive a JSON round trip intact.
// json.Marshal silently skips unexported fields, so a handle wrapped in a
// struct encodes as "{}" without error; walking the value catches channels,
// funcs and raw pointers wherever they hide.
func portableValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Invalid:
		return true // untyped nil
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return false
	case reflect.Pointer, reflect.Interface:
		return v.IsNil() || portableValue(v.Elem())
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if !portableValue(v.Field(i)) {
				return false
			}
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if !portableValue(iter.Value()) {
				return false
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if !portableValue(v.Index(i)) {
				return false
			}
		}
	}
	return true
}

func decodePayload(blob []byte) (*Payload, error) {
	var payload Payload
	if err := json.Unmarshal(blob, &payload); err != nil {
		return nil, fmt.Errorf("decode session payload: %w", err)
	}
	return &payload, nil
}
