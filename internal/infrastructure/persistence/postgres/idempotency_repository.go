package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPopoola/payment-gateway/internal/application/idempotency"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// IdempotencyRepository implements idempotency.Store on two tables: one row
// per recorded response and one row per held lock. Lock takeover of a stale
// holder happens in a single upsert so concurrent callers see one winner.
type IdempotencyRepository struct {
	db          *DB
	responseTTL time.Duration
	lockTimeout time.Duration
	now         func() time.Time
}

type IdempotencyOption func(*IdempotencyRepository)

func WithResponseTTL(ttl time.Duration) IdempotencyOption {
	return func(r *IdempotencyRepository) {
		if ttl > 0 {
			r.responseTTL = ttl
		}
	}
}

func WithLockTimeout(timeout time.Duration) IdempotencyOption {
	return func(r *IdempotencyRepository) {
		if timeout > 0 {
			r.lockTimeout = timeout
		}
	}
}

func WithClock(now func() time.Time) IdempotencyOption {
	return func(r *IdempotencyRepository) {
		r.now = now
	}
}

func NewIdempotencyRepository(db *DB, opts ...IdempotencyOption) *IdempotencyRepository {
	r := &IdempotencyRepository{
		db:          db,
		responseTTL: idempotency.DefaultResponseTTL,
		lockTimeout: idempotency.DefaultLockTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ idempotency.Store = (*IdempotencyRepository)(nil)

func (r *IdempotencyRepository) Lookup(ctx context.Context, key string) (idempotency.Response, bool, error) {
	query := `
		SELECT key, status_code, body, content_type, headers, created_at
		FROM idempotency_responses
		WHERE key = $1
	`

	var row idempotencyResponseRow
	err := r.db.Pool.QueryRow(ctx, query, key).Scan(
		&row.Key,
		&row.StatusCode,
		&row.Body,
		&row.ContentType,
		&row.Headers,
		&row.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return idempotency.Response{}, false, nil
		}
		return idempotency.Response{}, false, fmt.Errorf("failed to look up idempotency key: %w", err)
	}

	if r.now().Sub(row.CreatedAt) > r.responseTTL {
		if _, err := r.db.Pool.Exec(ctx,
			`DELETE FROM idempotency_responses WHERE key = $1 AND created_at = $2`,
			key, row.CreatedAt,
		); err != nil {
			return idempotency.Response{}, false, fmt.Errorf("failed to evict expired idempotency key: %w", err)
		}
		return idempotency.Response{}, false, nil
	}

	return toResponse(row), true, nil
}

func (r *IdempotencyRepository) TryAcquire(ctx context.Context, key string) (bool, error) {
	query := `
		INSERT INTO idempotency_locks (key, holder, acquired_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET holder = EXCLUDED.holder, acquired_at = EXCLUDED.acquired_at
		WHERE idempotency_locks.acquired_at < $4
		RETURNING holder::text
	`

	now := r.now()
	holder := uuid.NewString()

	var got string
	err := r.db.Pool.QueryRow(ctx, query, key, holder, now, now.Add(-r.lockTimeout)).Scan(&got)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to acquire idempotency lock: %w", err)
	}

	return got == holder, nil
}

func (r *IdempotencyRepository) Release(ctx context.Context, key string) error {
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM idempotency_locks WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to release idempotency lock: %w", err)
	}
	return nil
}

func (r *IdempotencyRepository) Save(ctx context.Context, key string, resp idempotency.Response) error {
	query := `
		INSERT INTO idempotency_responses (key, status_code, body, content_type, headers, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (key) DO UPDATE
		SET status_code = EXCLUDED.status_code,
		    body = EXCLUDED.body,
		    content_type = EXCLUDED.content_type,
		    headers = EXCLUDED.headers,
		    created_at = EXCLUDED.created_at
	`

	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = r.now()
	}
	row := toResponseRow(key, resp)

	_, err := r.db.Pool.Exec(ctx, query,
		row.Key,
		row.StatusCode,
		row.Body,
		row.ContentType,
		row.Headers,
		row.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store idempotency response: %w", err)
	}
	return nil
}

func (r *IdempotencyRepository) SweepExpired(ctx context.Context) (idempotency.SweepResult, error) {
	now := r.now()
	var result idempotency.SweepResult

	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM idempotency_responses WHERE created_at < $1`,
		now.Add(-r.responseTTL),
	)
	if err != nil {
		return result, fmt.Errorf("failed to sweep idempotency responses: %w", err)
	}
	result.Responses = int(tag.RowsAffected())

	tag, err = r.db.Pool.Exec(ctx,
		`DELETE FROM idempotency_locks WHERE acquired_at < $1`,
		now.Add(-r.lockTimeout),
	)
	if err != nil {
		return result, fmt.Errorf("failed to sweep idempotency locks: %w", err)
	}
	result.Locks = int(tag.RowsAffected())

	return result, nil
}
