// Package client is a Go SDK for the payment gateway's merchant API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	apiKeyHeader         = "X-Api-Key"
	idempotencyKeyHeader = "Idempotency-Key"
	replayHeader         = "X-Idempotent-Replay"
)

type PaymentRequest struct {
	CardNumber  string `json:"card_number"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
	Currency    string `json:"currency"`
	Amount      int64  `json:"amount"`
	Cvv         string `json:"cvv"`
}

type Payment struct {
	ID                 string    `json:"id"`
	Status             string    `json:"status"`
	CardNumberLastFour string    `json:"card_number_last_four"`
	ExpiryMonth        int       `json:"expiry_month"`
	ExpiryYear         int       `json:"expiry_year"`
	Currency           string    `json:"currency"`
	Amount             int64     `json:"amount"`
	CreatedAt          time.Time `json:"created_at"`
}

func (p *Payment) IsAuthorized() bool {
	return p.Status == "Authorized"
}

// PaymentResult is the outcome of ProcessPayment.
type PaymentResult struct {
	Payment             *Payment
	Location            string
	WasIdempotentReplay bool
}

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string][]string
	Replayed   bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// IsRetryable reports whether sending the same request again, with the same
// idempotency key, may give a different answer.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode == http.StatusConflict || e.StatusCode >= http.StatusInternalServerError
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewIdempotencyKey returns a fresh random key. Reuse it when retrying the
// same payment.
func NewIdempotencyKey() string {
	return uuid.NewString()
}

// ProcessPayment submits a payment. A declined payment is a successful call;
// check Payment.Status.
func (c *Client) ProcessPayment(ctx context.Context, req PaymentRequest, idempotencyKey string) (*PaymentResult, error) {
	if idempotencyKey == "" {
		return nil, errors.New("gateway: idempotency key is required")
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/payments", &req, map[string]string{
		idempotencyKeyHeader: idempotencyKey,
	})
	if err != nil {
		return nil, err
	}

	payment, err := decodePayment(resp)
	if err != nil {
		return nil, err
	}

	return &PaymentResult{
		Payment:             payment,
		Location:            resp.header.Get("Location"),
		WasIdempotentReplay: resp.replayed(),
	}, nil
}

func (c *Client) GetPayment(ctx context.Context, id string) (*Payment, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/payments/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodePayment(resp)
}

type rawResponse struct {
	status int
	header http.Header
	body   []byte
}

func (r rawResponse) replayed() bool {
	return r.header.Get(replayHeader) == "true"
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string              `json:"code"`
		Message string              `json:"message"`
		Details map[string][]string `json:"details"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, headers map[string]string) (rawResponse, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return rawResponse{}, fmt.Errorf("gateway: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return rawResponse{}, fmt.Errorf("gateway: build request: %w", err)
	}
	httpReq.Header.Set(apiKeyHeader, c.apiKey)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for name, value := range headers {
		httpReq.Header.Set(name, value)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return rawResponse{}, fmt.Errorf("gateway: send request: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return rawResponse{}, fmt.Errorf("gateway: read response: %w", err)
	}

	resp := rawResponse{status: httpResp.StatusCode, header: httpResp.Header, body: data}
	if resp.status < 200 || resp.status >= 300 {
		return resp, toAPIError(resp)
	}
	return resp, nil
}

func toAPIError(resp rawResponse) error {
	apiErr := &APIError{StatusCode: resp.status, Replayed: resp.replayed()}

	var env envelope
	if err := json.Unmarshal(resp.body, &env); err != nil || env.Error == nil {
		apiErr.Code = "UNEXPECTED_RESPONSE"
		apiErr.Message = http.StatusText(resp.status)
		return apiErr
	}

	apiErr.Code = env.Error.Code
	apiErr.Message = env.Error.Message
	apiErr.Details = env.Error.Details
	return apiErr
}

func decodePayment(resp rawResponse) (*Payment, error) {
	var env envelope
	if err := json.Unmarshal(resp.body, &env); err != nil {
		return nil, fmt.Errorf("gateway: decode response: %w", err)
	}

	var payment Payment
	if err := json.Unmarshal(env.Data, &payment); err != nil {
		return nil, fmt.Errorf("gateway: decode payment: %w", err)
	}
	return &payment, nil
}
