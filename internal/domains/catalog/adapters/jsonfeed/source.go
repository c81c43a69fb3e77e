// Package jsonfeed reads a catalog published as a plain JSON array of product
// objects, the shape produced by spreadsheet-to-JSON export scripts.
package jsonfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Apurer/go-sheet-storefront/internal/domains/catalog/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/catalog/ports"
	"github.com/Apurer/go-sheet-storefront/internal/shared/ingestion"
	"github.com/Apurer/go-sheet-storefront/internal/shared/money"
)

var _ ports.Source = (*Source)(nil)

// Source fetches the product array from url.
type Source struct {
	url        string
	httpClient *http.Client
}

// NewSource builds a feed source. A nil client gets an instrumented default.
func NewSource(url string, httpClient *http.Client) (*Source, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("catalog feed URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &Source{url: url, httpClient: httpClient}, nil
}

func (s *Source) Name() string { return "jsonfeed" }

func (s *Source) Fetch(ctx context.Context) ([]ingestion.RowResult[domain.Product], error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ingestion.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch catalog feed: %w", ingestion.ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: catalog feed answered %s", ingestion.ErrTransport, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read catalog feed: %w", ingestion.ErrTransport, err)
	}
	return Decode(body)
}

// feedProduct tolerates numbers or strings in every field.
type feedProduct struct {
	ID          flexString      `json:"id"`
	Name        flexString      `json:"name"`
	Category    flexString      `json:"category"`
	Price       json.RawMessage `json:"price"`
	Unit        flexString      `json:"unit"`
	Stock       flexString      `json:"stock"`
	Image       flexString      `json:"image"`
	Description flexString      `json:"description"`
}

// Decode maps a JSON array of product objects. A body that is not an array
// wraps ingestion.ErrUnparseable; malformed elements are rejected per row.
func Decode(body []byte) ([]ingestion.RowResult[domain.Product], error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(body, &elements); err != nil {
		return nil, fmt.Errorf("%w: catalog feed is not a JSON array: %w", ingestion.ErrUnparseable, err)
	}
	rows := make([]ingestion.RowResult[domain.Product], 0, len(elements))
	for i, raw := range elements {
		var fp feedProduct
		if err := json.Unmarshal(raw, &fp); err != nil {
			rows = append(rows, ingestion.Reject[domain.Product](i, &ingestion.FieldError{Field: "", Reason: err.Error()}))
			continue
		}
		var notes []ingestion.RowIssue
		price, ok := decodePrice(fp.Price)
		switch {
		case !ok:
			notes = append(notes, ingestion.RowIssue{Row: i, Field: "price", Reason: "not a number, using 0"})
		case price < 0:
			notes = append(notes, ingestion.RowIssue{Row: i, Field: "price", Reason: "negative, using 0"})
			price = 0
		}
		product, err := domain.NewProduct(string(fp.ID), string(fp.Name), string(fp.Category), price,
			string(fp.Unit), string(fp.Stock), string(fp.Image), string(fp.Description))
		if err != nil {
			rows = append(rows, ingestion.Reject[domain.Product](i, &ingestion.FieldError{Field: "id", Reason: "empty"}))
			continue
		}
		rows = append(rows, ingestion.Accept(i, product, notes...))
	}
	return rows, nil
}

func decodePrice(raw json.RawMessage) (money.Amount, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return money.FromMajor(f), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	return money.ParseMajor(s)
}

type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	switch {
	case string(data) == "null":
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		n, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("expected string or number, got %s", data)
		}
		*f = flexString(strconv.FormatFloat(n, 'f', -1, 64))
	}
	return nil
}
