package postgres

import "time"

// idempotencyResponseRow mirrors a row of idempotency_responses.
type idempotencyResponseRow struct {
	Key         string
	StatusCode  int
	Body        []byte
	ContentType string
	Headers     map[string]string
	CreatedAt   time.Time
}
