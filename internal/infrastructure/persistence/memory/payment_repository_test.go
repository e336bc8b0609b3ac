package memory_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/DanielPopoola/payment-gateway/internal/domain"
	"github.com/DanielPopoola/payment-gateway/internal/infrastructure/crypto"
	"github.com/DanielPopoola/payment-gateway/internal/infrastructure/persistence/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepository(t *testing.T) *memory.PaymentRepository {
	t.Helper()
	enc, err := crypto.NewAESEncryptor("memory-store-test")
	require.NoError(t, err)
	return memory.NewPaymentRepository(enc)
}

func newPayment(t *testing.T, merchantID string) *domain.Payment {
	t.Helper()
	money, err := domain.NewMoney(2500, "gbp")
	require.NoError(t, err)

	payment, err := domain.NewPayment(uuid.NewString(), merchantID, domain.Card{
		Number:      "5555555555554444",
		Cvv:         "321",
		ExpiryMonth: 8,
		ExpiryYear:  2031,
	}, money, domain.StatusAuthorized, "AUTH-42")
	require.NoError(t, err)
	return payment
}

func TestPaymentRepository_CreateAndFind(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()
	payment := newPayment(t, "merchant-a")

	created, err := repo.Create(ctx, payment)
	require.NoError(t, err)
	assert.True(t, created)

	found, err := repo.FindByID(ctx, payment.ID, "merchant-a")
	require.NoError(t, err)
	assert.Equal(t, payment, found)
}

func TestPaymentRepository_EncryptsAtRest(t *testing.T) {
	repo := newRepository(t)
	payment := newPayment(t, "merchant-a")

	_, err := repo.Create(context.Background(), payment)
	require.NoError(t, err)

	model, ok := repo.Model(payment.ID)
	require.True(t, ok)
	assert.NotEmpty(t, model.EncryptedCardNumber)
	assert.NotEqual(t, payment.CardNumber, model.EncryptedCardNumber)
	assert.NotContains(t, model.EncryptedCardNumber, "5555555555554444")
	assert.NotEqual(t, payment.Cvv, model.EncryptedCvv)
	assert.Equal(t, "4444", model.CardLastFour)
}

func TestPaymentRepository_ScopedByOwner(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()
	payment := newPayment(t, "merchant-a")
	_, err := repo.Create(ctx, payment)
	require.NoError(t, err)

	_, err = repo.FindByID(ctx, payment.ID, "merchant-b")
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)

	_, err = repo.FindByID(ctx, uuid.NewString(), "merchant-a")
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}

func TestPaymentRepository_DuplicateID(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()
	payment := newPayment(t, "merchant-a")

	var (
		wg      sync.WaitGroup
		created atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Create(ctx, payment)
			assert.NoError(t, err)
			if ok {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
}

func TestPaymentRepository_WrongKeySurfacesError(t *testing.T) {
	writer := newRepository(t)
	payment := newPayment(t, "merchant-a")
	_, err := writer.Create(context.Background(), payment)
	require.NoError(t, err)

	model, _ := writer.Model(payment.ID)

	other, err := crypto.NewAESEncryptor("a-different-key")
	require.NoError(t, err)
	_, err = other.Decrypt(model.EncryptedCardNumber)
	assert.ErrorIs(t, err, crypto.ErrDecryptionFailed)
}
