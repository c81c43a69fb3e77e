// Package appscript posts order rows to a Google Apps Script web app that
// appends them to the order sheet.
package appscript

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// IdempotencyHeader carries the order id so the script can detect repeats.
const IdempotencyHeader = "Idempotency-Key"

const maxResponseBytes = 64 << 10

// ErrDuplicate means the script already holds a row with this order id.
var ErrDuplicate = errors.New("apps script already recorded this order")

// OrderPayload is the JSON body the script expects. Field names match the
// sheet header row.
type OrderPayload struct {
	OrderID         string  `json:"orderId"`
	CustomerName    string  `json:"customerName"`
	CustomerPhone   string  `json:"customerPhone"`
	CustomerAddress string  `json:"customerAddress"`
	Items           string  `json:"items"`
	Total           float64 `json:"total"`
	PaymentMethod   string  `json:"paymentMethod"`
	Status          string  `json:"status"`
	OrderDate       string  `json:"orderDate"`
	DeliveryDate    string  `json:"deliveryDate"`
	PaymentID       string  `json:"paymentId"`
}

// scriptResponse is what a script built for idempotent writes answers. Older
// scripts answer with an empty or non-JSON body, which counts as success.
type scriptResponse struct {
	Result  string `json:"result"`
	Message string `json:"message"`
}

// Client posts orders to a single web app deployment.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// AppendOption configures AppendOrder behavior.
type AppendOption func(*appendOptions)

type appendOptions struct {
	idempotencyKey string
}

// WithIdempotencyKey sets the Idempotency-Key header for the request.
func WithIdempotencyKey(key string) AppendOption {
	return func(opts *appendOptions) {
		opts.idempotencyKey = strings.TrimSpace(key)
	}
}

// NewClient targets the deployed web app URL. A nil httpClient gets an
// instrumented client with a 15 second timeout.
func NewClient(endpoint string, httpClient *http.Client) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("apps script endpoint is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{endpoint: endpoint, httpClient: httpClient}, nil
}

// AppendOrder sends one POST. It returns ErrDuplicate on a 409 or an explicit
// duplicate result, and an error for any other non-2xx status or error result.
func (c *Client) AppendOrder(ctx context.Context, payload OrderPayload, optFns ...AppendOption) error {
	if c == nil || c.httpClient == nil {
		return errors.New("apps script client not configured")
	}
	if strings.TrimSpace(payload.OrderID) == "" {
		return errors.New("order id is required")
	}
	var opts appendOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if opts.idempotencyKey != "" {
		req.Header.Set(IdempotencyHeader, opts.idempotencyKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call apps script: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))

	status := resp.StatusCode
	switch {
	case status == http.StatusConflict:
		return ErrDuplicate
	case status >= http.StatusOK && status < http.StatusMultipleChoices:
		return resultError(raw)
	case status >= http.StatusBadRequest:
		return fmt.Errorf("apps script error: %s", errorMessage(raw, resp.Status))
	default:
		return fmt.Errorf("apps script unexpected status: %s", resp.Status)
	}
}

func resultError(raw []byte) error {
	var res scriptResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(res.Result)) {
	case "duplicate":
		return ErrDuplicate
	case "error":
		return fmt.Errorf("apps script error: %s", errorMessage(raw, "script reported an error"))
	default:
		return nil
	}
}

func errorMessage(raw []byte, fallback string) string {
	var res scriptResponse
	if err := json.Unmarshal(raw, &res); err == nil {
		if msg := strings.TrimSpace(res.Message); msg != "" {
			return msg
		}
	}
	return fallback
}
