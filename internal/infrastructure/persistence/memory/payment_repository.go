// Package memory provides the in-process reference stores.
package memory

import (
	"context"
	"sync"

	"github.com/DanielPopoola/payment-gateway/internal/domain"
	"github.com/DanielPopoola/payment-gateway/internal/infrastructure/persistence"
)

// PaymentRepository keeps encrypted payment models in a sync.Map, so inserts
// and reads are atomic per id.
type PaymentRepository struct {
	payments  sync.Map // id -> persistence.PaymentModel
	encryptor persistence.Encryptor
}

func NewPaymentRepository(encryptor persistence.Encryptor) *PaymentRepository {
	return &PaymentRepository{encryptor: encryptor}
}

func (r *PaymentRepository) Create(_ context.Context, payment *domain.Payment) (bool, error) {
	model, err := persistence.ToModel(payment, r.encryptor)
	if err != nil {
		return false, err
	}

	_, loaded := r.payments.LoadOrStore(model.ID, model)
	return !loaded, nil
}

func (r *PaymentRepository) FindByID(_ context.Context, id, merchantID string) (*domain.Payment, error) {
	value, ok := r.payments.Load(id)
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}

	model := value.(persistence.PaymentModel)
	if model.MerchantID != merchantID {
		return nil, domain.ErrPaymentNotFound
	}

	return persistence.ToDomain(model, r.encryptor)
}

// Model returns the stored representation of a payment, as written at rest.
func (r *PaymentRepository) Model(id string) (persistence.PaymentModel, bool) {
	value, ok := r.payments.Load(id)
	if !ok {
		return persistence.PaymentModel{}, false
	}
	return value.(persistence.PaymentModel), true
}
