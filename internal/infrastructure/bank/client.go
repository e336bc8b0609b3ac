package bank

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/DanielPopoola/payment-gateway/internal/application"
	"github.com/DanielPopoola/payment-gateway/internal/config"
	"github.com/DanielPopoola/payment-gateway/internal/domain"
)

const maxErrorBodyBytes = 4 << 10

type HTTPBankClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*HTTPBankClient)

// WithHTTPClient replaces the transport, mainly for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPBankClient) {
		c.httpClient = client
	}
}

func NewBankClient(cfg config.BankConfig, logger *slog.Logger, opts ...Option) *HTTPBankClient {
	c := &HTTPBankClient{
		baseURL: strings.TrimRight(cfg.BankBaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.BankConnTimeout,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Authorize asks the bank to authorize a charge. It never retries, and every
// failure (transport, timeout, cancellation, non-2xx, unreadable body) is
// reported as domain.BankUnavailable so no bank detail reaches the merchant.
func (c *HTTPBankClient) Authorize(ctx context.Context, req application.BankAuthorizationRequest) (*application.AuthorizationOutcome, error) {
	url := fmt.Sprintf("%s/payments", c.baseURL)
	body := AuthorizationRequest{
		CardNumber: req.CardNumber,
		ExpiryDate: req.ExpiryDate,
		Currency:   req.Currency,
		Amount:     req.Amount,
		Cvv:        req.Cvv,
	}

	resp, err := sendRequest[AuthorizationRequest, AuthorizationResponse](c, ctx, http.MethodPost, url, &body)
	if err != nil {
		c.logFailure(ctx, err)
		return nil, domain.BankUnavailable()
	}
	if resp.Authorized == nil {
		c.logFailure(ctx, errMalformedResponse)
		return nil, domain.BankUnavailable()
	}

	c.logger.Info("bank authorization completed",
		"authorized", *resp.Authorized,
		"currency", req.Currency,
		"amount", req.Amount,
	)

	outcome := &application.AuthorizationOutcome{Authorized: *resp.Authorized}
	if outcome.Authorized {
		outcome.AuthorizationCode = resp.AuthorizationCode
	}
	return outcome, nil
}

func (c *HTTPBankClient) logFailure(ctx context.Context, err error) {
	attrs := []any{"error", err}
	switch bankErr, ok := IsBankError(err); {
	case ok && bankErr.StatusCode == http.StatusServiceUnavailable:
		c.logger.Warn("acquiring bank is unavailable", append(attrs, "status_code", bankErr.StatusCode)...)
	case ok:
		c.logger.Error("bank returned an unexpected status", append(attrs, "status_code", bankErr.StatusCode)...)
	case errors.Is(err, context.Canceled), errors.Is(ctx.Err(), context.Canceled):
		c.logger.Warn("bank request cancelled", attrs...)
	case errors.Is(err, context.DeadlineExceeded):
		c.logger.Error("bank request timed out", attrs...)
	default:
		c.logger.Error("bank request failed", attrs...)
	}
}

func sendRequest[Req any, Resp any](c *HTTPBankClient, ctx context.Context, method, url string, reqBody *Req) (*Resp, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("error marshalling json: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		var bankErrResp BankErrorResponse
		if err := json.Unmarshal(body, &bankErrResp); err != nil {
			return nil, &BankError{
				Code:       "unexpected_status",
				Message:    string(body),
				StatusCode: resp.StatusCode,
			}
		}
		return nil, &BankError{
			Code:       bankErrResp.Err,
			Message:    bankErrResp.Message,
			StatusCode: resp.StatusCode,
		}
	}

	var bankResp Resp
	if err := json.NewDecoder(resp.Body).Decode(&bankResp); err != nil {
		return nil, fmt.Errorf("error decoding json response: %w", err)
	}

	return &bankResp, nil
}
