package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is the slice of pgxpool.Pool the store needs. Narrowing the
// dependency keeps the store testable without a live database.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists sessions in a single shared table (sid primary key,
// encoded payload, expiry). The table is provisioned out-of-band; the store
// only reads and writes rows.
type PostgresStore struct {
	db    querier
	table string
	ttl   time.Duration
}

func NewPostgresStore(db querier, table string, ttl time.Duration) *PostgresStore {
	return &PostgresStore{
		db:    db,
		table: pgx.Identifier{table}.Sanitize(),
		ttl:   ttl,
	}
}

func (s *PostgresStore) Get(ctx context.Context, sid string) (*Payload, error) {
	query := fmt.Sprintf(`SELECT sess FROM %s WHERE sid = $1 AND expire > NOW()`, s.table)

	var blob []byte
	if err := s.db.QueryRow(ctx, query, sid).Scan(&blob); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get %s: %v", ErrStoreUnavailable, sid, err)
	}
	if len(blob) == 0 {
		return nil, nil
	}

	return decodePayload(blob)
}

func (s *PostgresStore) Set(ctx context.Context, sid string, payload *Payload) error {
	blob, err := encodePayload(payload)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (sid, sess, expire)
		VALUES ($1, $2, $3)
		ON CONFLICT (sid)
		DO UPDATE SET sess = EXCLUDED.sess, expire = EXCLUDED.expire
	`, s.table)

	if _, err := s.db.Exec(ctx, query, sid, blob, time.Now().Add(s.ttl)); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrStoreUnavailable, sid, err)
	}
	return nil
}

func (s *PostgresStore) Destroy(ctx context.Context, sid string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE sid = $1`, s.table)

	// Zero rows affected is fine; Destroy is idempotent.
	if _, err := s.db.Exec(ctx, query, sid); err != nil {
		return fmt.Errorf("%w: destroy %s: %v", ErrStoreUnavailable, sid, err)
	}
	return nil
}

// DeleteExpired removes rows whose expiry has passed. Called by the pruning
// job; the redis backend expires documents natively and needs no sweep.
func (s *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE expire <= NOW()`, s.table)

	cmd, err := s.db.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("%w: delete expired: %v", ErrStoreUnavailable, err)
	}
	return cmd.RowsAffected(), nil
}
