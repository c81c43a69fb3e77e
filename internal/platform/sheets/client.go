// Package sheets reads tables published through the Google Visualization
// ("gviz") query endpoint of a spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/Apurer/go-sheet-storefront/internal/shared/ingestion"
)

const (
	// DefaultBaseURL hosts the public Visualization endpoint.
	DefaultBaseURL = "https://docs.google.com"

	maxResponseBytes = 8 << 20
)

// Client fetches sheet tables for a single spreadsheet.
type Client struct {
	baseURL       string
	spreadsheetID string
	httpClient    *http.Client
	limiter       *rate.Limiter
}

// Option customises a Client.
type Option func(*Client)

// WithBaseURL points the client at another host, mostly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

// WithHTTPClient replaces the instrumented default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit bounds how often the endpoint is queried. A nil limiter disables limiting.
func WithRateLimit(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// NewClient builds a client for the given spreadsheet.
func NewClient(spreadsheetID string, opts ...Option) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}
	c := &Client{
		baseURL:       DefaultBaseURL,
		spreadsheetID: spreadsheetID,
		httpClient:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		limiter:       rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	return c, nil
}

// TableURL returns the query URL for the named sheet.
func (c *Client) TableURL(sheet string) string {
	q := url.Values{}
	q.Set("tqx", "out:json")
	q.Set("sheet", sheet)
	return fmt.Sprintf("%s/spreadsheets/d/%s/gviz/tq?%s", c.baseURL, url.PathEscape(c.spreadsheetID), q.Encode())
}

// FetchTable downloads and decodes the named sheet. Network failures and
// non-2xx answers wrap ingestion.ErrTransport; malformed bodies wrap
// ingestion.ErrUnparseable. The caller's context bounds the request.
func (c *Client) FetchTable(ctx context.Context, sheet string) (*Table, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ingestion.ErrTransport, err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.TableURL(sheet), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ingestion.ErrTransport, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch sheet %q: %w", ingestion.ErrTransport, sheet, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: sheet %q answered %s", ingestion.ErrTransport, sheet, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %w", ingestion.ErrTransport, sheet, err)
	}
	return ParseResponse(body)
}
