package rest

import (
	"context"
	"sync"

	"github.com/DanielPopoola/payment-gateway/internal/domain"
)

type merchantKey struct{}

func WithMerchant(ctx context.Context, merchant *domain.Merchant) context.Context {
	return context.WithValue(ctx, merchantKey{}, merchant)
}

// MerchantFromContext returns the merchant the auth middleware resolved.
func MerchantFromContext(ctx context.Context) (*domain.Merchant, bool) {
	merchant, ok := ctx.Value(merchantKey{}).(*domain.Merchant)
	return merchant, ok && merchant != nil
}

// RequestInfo is filled in by inner middleware so the outer request logger
// can report who made the call. Handlers may still be running after a
// timeout, so access is guarded.
type RequestInfo struct {
	mu         sync.Mutex
	merchantID string
}

func (i *RequestInfo) SetMerchantID(id string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.merchantID = id
}

func (i *RequestInfo) MerchantID() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.merchantID
}

type requestInfoKey struct{}

func WithRequestInfo(ctx context.Context, info *RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

func RequestInfoFromContext(ctx context.Context) (*RequestInfo, bool) {
	info, ok := ctx.Value(requestInfoKey{}).(*RequestInfo)
	return info, ok && info != nil
}
