package session

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStoreTest(t *testing.T) (*RedisStore, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(rdb, "sessions", 7*24*time.Hour)
	return store, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _, done := newRedisStoreTest(t)
	defer done()
	ctx := context.Background()

	payload := &Payload{
		UserID: "u-1",
		Values: map[string]any{"flash": "welcome back"},
	}

	if err := store.Set(ctx, "sid-1", payload); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected payload, got nil")
	}
	if !reflect.DeepEqual(got, payload) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, payload)
	}
}

func TestRedisStoreMissingSessionIsNil(t *testing.T) {
	store, mr, done := newRedisStoreTest(t)
	defer done()
	ctx := context.Background()

	got, err := store.Get(ctx, "never-written")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil payload for missing session, got %+v", got)
	}

	// A document with an empty session field is also "no session".
	mr.HSet("sessions:empty", fieldSession, "")
	got, err = store.Get(ctx, "empty")
	if err != nil {
		t.Fatalf("get empty: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil payload for empty session field, got %+v", got)
	}
}

func TestRedisStoreDestroyIdempotent(t *testing.T) {
	store, _, done := newRedisStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Set(ctx, "sid-1", &Payload{UserID: "u-1"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Destroy(ctx, "sid-1"); err != nil {
		t.Fatalf("first destroy: %v", err)
	}
	if err := store.Destroy(ctx, "sid-1"); err != nil {
		t.Fatalf("second destroy: %v", err)
	}
	if err := store.Destroy(ctx, "never-existed"); err != nil {
		t.Fatalf("destroy of unknown sid: %v", err)
	}

	got, err := store.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get after destroy: %v", err)
	}
	if got != nil {
		t.Fatalf("session survived destroy: %+v", got)
	}
}

func TestRedisStoreSetsExpiry(t *testing.T) {
	store, mr, done := newRedisStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Set(ctx, "sid-1", &Payload{UserID: "u-1"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	ttl := mr.TTL("sessions:sid-1")
	if ttl <= 0 || ttl > 7*24*time.Hour {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	mr.FastForward(8 * 24 * time.Hour)

	got, err := store.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get after expiry: %v", err)
	}
	if got != nil {
		t.Fatalf("expected expired session to be gone, got %+v", got)
	}
}

func TestRedisStoreUnavailableBackend(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	store := NewRedisStore(rdb, "sessions", time.Hour)
	mr.Close() // backend gone before first use

	ctx := context.Background()
	if _, err := store.Get(ctx, "sid-1"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
