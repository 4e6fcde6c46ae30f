package session

import (
	"testing"
)

type unserializable struct {
	ch chan int
}

func TestEncodePayloadDropsUnserializableValues(t *testing.T) {
	payload := &Payload{
		UserID: "u-1",
		Values: map[string]any{
			"flash": "saved",
			"store": unserializable{ch: make(chan int)},
		},
	}

	blob, err := encodePayload(payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := decodePayload(blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded.UserID != "u-1" {
		t.Fatalf("user id lost: %q", decoded.UserID)
	}
	if _, ok := decoded.Values["store"]; ok {
		t.Fatal("unserializable value survived encoding")
	}
	if decoded.Values["flash"] != "saved" {
		t.Fatalf("serializable value lost: %+v", decoded.Values)
	}

	// The input payload is untouched.
	if _, ok := payload.Values["store"]; !ok {
		t.Fatal("encode mutated the input payload")
	}
}

func TestEncodePayloadDropsHandlesEverywhere(t *testing.T) {
	payload := &Payload{
		UserID: "u-2",
		Values: map[string]any{
			"conn":   make(chan struct{}),
			"hook":   func() {},
			"nested": []any{"ok", unserializable{ch: make(chan int)}},
			"inner":  map[string]any{"store": unserializable{ch: make(chan int)}},
			"count":  3,
			"empty":  map[string]any{},
		},
	}

	blob, err := encodePayload(payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := decodePayload(blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	for _, key := range []string{"conn", "hook", "nested", "inner"} {
		if _, ok := decoded.Values[key]; ok {
			t.Fatalf("%q survived encoding", key)
		}
	}
	if decoded.Values["count"] != float64(3) {
		t.Fatalf("plain value lost: %+v", decoded.Values)
	}
	if _, ok := decoded.Values["empty"]; !ok {
		t.Fatal("empty map dropped")
	}
}
