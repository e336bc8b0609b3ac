package postgres

import (
	"github.com/DanielPopoola/payment-gateway/internal/application/idempotency"
	"github.com/DanielPopoola/payment-gateway/internal/infrastructure/persistence"
	"github.com/jackc/pgx/v5"
)

const paymentColumns = `id::text, merchant_id, status, card_last_four, encrypted_card_number, encrypted_cvv,
		       expiry_month, expiry_year, currency, amount, authorization_code, created_at`

func scanPayment(row pgx.Row) (persistence.PaymentModel, error) {
	var m persistence.PaymentModel
	err := row.Scan(
		&m.ID,
		&m.MerchantID,
		&m.Status,
		&m.CardLastFour,
		&m.EncryptedCardNumber,
		&m.EncryptedCvv,
		&m.ExpiryMonth,
		&m.ExpiryYear,
		&m.Currency,
		&m.Amount,
		&m.AuthorizationCode,
		&m.CreatedAt,
	)
	return m, err
}

func toResponse(r idempotencyResponseRow) idempotency.Response {
	resp := idempotency.Response{
		StatusCode:  r.StatusCode,
		Body:        r.Body,
		ContentType: r.ContentType,
		CreatedAt:   r.CreatedAt,
	}
	if len(r.Headers) > 0 {
		resp.Headers = r.Headers
	}
	return resp
}

func toResponseRow(key string, resp idempotency.Response) idempotencyResponseRow {
	headers := resp.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	body := resp.Body
	if body == nil {
		body = []byte{}
	}
	return idempotencyResponseRow{
		Key:         key,
		StatusCode:  resp.StatusCode,
		Body:        body,
		ContentType: resp.ContentType,
		Headers:     headers,
		CreatedAt:   resp.CreatedAt,
	}
}
