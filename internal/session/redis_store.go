package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	fieldSession   = "session"
	fieldUpdatedAt = "updatedAt"
)

// RedisStore keeps each session as a small hash document keyed by
// "<collection>:<sid>" with the encoded payload and a last-write timestamp.
// Documents expire with the cookie max-age, so abandoned sessions clean
// themselves up.
type RedisStore struct {
	client     *redis.Client
	collection string
	ttl        time.Duration

	connectOnce sync.Once
	connectErr  error
}

func NewRedisStore(client *redis.Client, collection string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client:     client,
		collection: collection,
		ttl:        ttl,
	}
}

// ensureConnected verifies the injected client once, on first use. The client
// itself is a long-lived process-wide handle constructed in main.
func (s *RedisStore) ensureConnected(ctx context.Context) error {
	s.connectOnce.Do(func() {
		if err := s.client.Ping(ctx).Err(); err != nil {
			s.connectErr = fmt.Errorf("%w: ping: %v", ErrStoreUnavailable, err)
		}
	})
	return s.connectErr
}

func (s *RedisStore) key(sid string) string {
	return s.collection + ":" + sid
}

func (s *RedisStore) Get(ctx context.Context, sid string) (*Payload, error) {
	if err := s.ensureConnected(ctx); err != nil {
		return nil, err
	}

	blob, err := s.client.HGet(ctx, s.key(sid), fieldSession).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // no session document
		}
		return nil, fmt.Errorf("%w: get %s: %v", ErrStoreUnavailable, sid, err)
	}
	if blob == "" {
		return nil, nil // document exists but holds no session
	}

	return decodePayload([]byte(blob))
}

func (s *RedisStore) Set(ctx context.Context, sid string, payload *Payload) error {
	if err := s.ensureConnected(ctx); err != nil {
		return err
	}

	blob, err := encodePayload(payload)
	if err != nil {
		return err
	}

	key := s.key(sid)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, fieldSession, string(blob), fieldUpdatedAt, time.Now().UnixMilli())
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrStoreUnavailable, sid, err)
	}
	return nil
}

func (s *RedisStore) Destroy(ctx context.Context, sid string) error {
	if err := s.ensureConnected(ctx); err != nil {
		return err
	}

	// DEL of a missing key is a no-op, which makes Destroy idempotent.
	if err := s.client.Del(ctx, s.key(sid)).Err(); err != nil {
		return fmt.Errorf("%w: destroy %s: %v", ErrStoreUnavailable, sid, err)
	}
	return nil
}
