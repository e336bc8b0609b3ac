package postgres_test

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DanielPopoola/payment-gateway/internal/application/idempotency"
	"github.com/DanielPopoola/payment-gateway/internal/domain"
	"github.com/DanielPopoola/payment-gateway/internal/infrastructure/crypto"
	"github.com/DanielPopoola/payment-gateway/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/payment-gateway/internal/infrastructure/persistence/postgres/testhelpers"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type PostgresSuite struct {
	suite.Suite
	db       *testhelpers.TestDatabase
	payments *postgres.PaymentRepository
	ctx      context.Context
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.db = testhelpers.SetupTestDatabase(s.T())
	s.ctx = context.Background()

	enc, err := crypto.NewAESEncryptor("postgres-suite-key")
	s.Require().NoError(err)
	s.payments = postgres.NewPaymentRepository(s.db.DB, enc)
}

func (s *PostgresSuite) SetupTest() {
	s.db.CleanTables(s.T())
}

func (s *PostgresSuite) newPayment(merchantID string) *domain.Payment {
	money, err := domain.NewMoney(1050, "USD")
	s.Require().NoError(err)

	payment, err := domain.NewPayment(uuid.NewString(), merchantID, domain.Card{
		Number:      "2222405343248877",
		Cvv:         "123",
		ExpiryMonth: 4,
		ExpiryYear:  2030,
	}, money, domain.StatusAuthorized, "0bf93f5a-1f7e-4d5c-9b69-1b7c8e2a9f11")
	s.Require().NoError(err)
	payment.CreatedAt = payment.CreatedAt.Truncate(time.Microsecond)
	return payment
}

func (s *PostgresSuite) TestPaymentRoundTrip() {
	payment := s.newPayment("merchant-a")

	created, err := s.payments.Create(s.ctx, payment)
	s.Require().NoError(err)
	s.True(created)

	found, err := s.payments.FindByID(s.ctx, payment.ID, "merchant-a")
	s.Require().NoError(err)
	s.Equal(payment.ID, found.ID)
	s.Equal(payment.CardNumber, found.CardNumber)
	s.Equal(payment.Cvv, found.Cvv)
	s.Equal(payment.CardLastFour, found.CardLastFour)
	s.Equal(payment.AuthorizationCode, found.AuthorizationCode)
	s.True(payment.CreatedAt.Equal(found.CreatedAt))
}

func (s *PostgresSuite) TestPaymentEncryptedAtRest() {
	payment := s.newPayment("merchant-a")
	_, err := s.payments.Create(s.ctx, payment)
	s.Require().NoError(err)

	row, err := s.payments.FindEncrypted(s.ctx, payment.ID)
	s.Require().NoError(err)
	s.NotContains(row.EncryptedCardNumber, payment.CardNumber)
	s.NotEqual(payment.Cvv, row.EncryptedCvv)
}

func (s *PostgresSuite) TestPaymentOwnerScoping() {
	payment := s.newPayment("merchant-a")
	_, err := s.payments.Create(s.ctx, payment)
	s.Require().NoError(err)

	_, err = s.payments.FindByID(s.ctx, payment.ID, "merchant-b")
	s.ErrorIs(err, domain.ErrPaymentNotFound)

	_, err = s.payments.FindByID(s.ctx, "not-a-uuid", "merchant-a")
	s.ErrorIs(err, domain.ErrPaymentNotFound)
}

func (s *PostgresSuite) TestPaymentLookupParsesID() {
	payment := s.newPayment("merchant-a")
	_, err := s.payments.Create(s.ctx, payment)
	s.Require().NoError(err)

	found, err := s.payments.FindByID(s.ctx, strings.ToUpper(payment.ID), "merchant-a")
	s.Require().NoError(err)
	s.Equal(payment.ID, found.ID)

	_, err = s.payments.FindByID(s.ctx, "", "merchant-a")
	s.ErrorIs(err, domain.ErrPaymentNotFound)

	_, err = s.payments.FindEncrypted(s.ctx, "not-a-uuid")
	s.ErrorIs(err, domain.ErrPaymentNotFound)
}

func (s *PostgresSuite) TestPaymentDuplicateID() {
	payment := s.newPayment("merchant-a")

	created, err := s.payments.Create(s.ctx, payment)
	s.Require().NoError(err)
	s.True(created)

	created, err = s.payments.Create(s.ctx, payment)
	s.Require().NoError(err)
	s.False(created)
}

func (s *PostgresSuite) TestIdempotencyLifecycle() {
	store := postgres.NewIdempotencyRepository(s.db.DB)
	key := "merchant-a:" + uuid.NewString()

	_, found, err := store.Lookup(s.ctx, key)
	s.Require().NoError(err)
	s.False(found)

	acquired, err := store.TryAcquire(s.ctx, key)
	s.Require().NoError(err)
	s.True(acquired)

	acquired, err = store.TryAcquire(s.ctx, key)
	s.Require().NoError(err)
	s.False(acquired)

	s.Require().NoError(store.Save(s.ctx, key, idempotency.Response{
		StatusCode:  201,
		Body:        []byte(`{"success":true}`),
		ContentType: "application/json",
		Headers:     map[string]string{"Location": "/api/payments/1"},
	}))
	s.Require().NoError(store.Release(s.ctx, key))

	resp, found, err := store.Lookup(s.ctx, key)
	s.Require().NoError(err)
	s.True(found)
	s.Equal(201, resp.StatusCode)
	s.Equal(`{"success":true}`, string(resp.Body))
	s.Equal("/api/payments/1", resp.Headers["Location"])

	acquired, err = store.TryAcquire(s.ctx, key)
	s.Require().NoError(err)
	s.True(acquired)
}

func (s *PostgresSuite) TestIdempotencyConcurrentAcquire() {
	store := postgres.NewIdempotencyRepository(s.db.DB)
	key := "merchant-a:race"

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.TryAcquire(s.ctx, key)
			assert.NoError(s.T(), err)
			if ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), winners.Load())
}

func (s *PostgresSuite) TestIdempotencyExpiryAndSweep() {
	now := time.Now().UTC().Truncate(time.Microsecond)
	clock := func() time.Time { return now }
	store := postgres.NewIdempotencyRepository(s.db.DB,
		postgres.WithResponseTTL(time.Hour),
		postgres.WithLockTimeout(time.Minute),
		postgres.WithClock(clock),
	)

	s.Require().NoError(store.Save(s.ctx, "old", idempotency.Response{StatusCode: 200, Body: []byte("{}")}))
	ok, err := store.TryAcquire(s.ctx, "stuck")
	s.Require().NoError(err)
	s.True(ok)

	now = now.Add(2 * time.Hour)

	ok, err = store.TryAcquire(s.ctx, "stuck")
	s.Require().NoError(err)
	s.True(ok, "stale lock should be taken over")

	now = now.Add(2 * time.Minute)
	result, err := store.SweepExpired(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, result.Responses)
	s.Equal(1, result.Locks)

	_, found, err := store.Lookup(s.ctx, "old")
	s.Require().NoError(err)
	s.False(found)
}

func TestIsUniqueViolation(t *testing.T) {
	require.False(t, postgres.IsUniqueViolation(nil))
	require.False(t, postgres.IsUniqueViolation(assert.AnError))
}
