package memory

import (
	"context"
	"crypto/subtle"

	"github.com/DanielPopoola/payment-gateway/internal/config"
	"github.com/DanielPopoola/payment-gateway/internal/domain"
)

type merchantEntry struct {
	apiKey   string
	merchant domain.Merchant
}

// MerchantRepository resolves API keys configured in auth.merchants.
type MerchantRepository struct {
	entries []merchantEntry
}

func NewMerchantRepository(merchants map[string]config.MerchantConfig) *MerchantRepository {
	r := &MerchantRepository{entries: make([]merchantEntry, 0, len(merchants))}
	for apiKey, m := range merchants {
		r.entries = append(r.entries, merchantEntry{
			apiKey:   apiKey,
			merchant: domain.Merchant{ID: m.ID, Name: m.Name},
		})
	}
	return r
}

// FindByAPIKey compares keys in constant time.
func (r *MerchantRepository) FindByAPIKey(_ context.Context, apiKey string) (*domain.Merchant, bool) {
	if apiKey == "" {
		return nil, false
	}

	var found *domain.Merchant
	for i := range r.entries {
		if subtle.ConstantTimeCompare([]byte(r.entries[i].apiKey), []byte(apiKey)) == 1 {
			m := r.entries[i].merchant
			found = &m
		}
	}
	return found, found != nil
}
