package memory

import (
	"context"
	"sync"

	"github.com/Apurer/go-sheet-storefront/internal/domains/catalog/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/catalog/ports"
	"github.com/Apurer/go-sheet-storefront/internal/shared/ingestion"
)

var _ ports.Source = (*Source)(nil)

// Source serves a fixed product list, for demos and tests.
type Source struct {
	mu       sync.RWMutex
	products []domain.Product
	err      error
	calls    int
}

func NewSource(products ...domain.Product) *Source {
	return &Source{products: products}
}

func (s *Source) Name() string { return "memory" }

// SetProducts replaces the rows returned by the next Fetch.
func (s *Source) SetProducts(products ...domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products
	s.err = nil
}

// FailWith makes subsequent fetches return err.
func (s *Source) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls counts Fetch invocations.
func (s *Source) Calls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls
}

func (s *Source) Fetch(_ context.Context) ([]ingestion.RowResult[domain.Product], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	rows := make([]ingestion.RowResult[domain.Product], 0, len(s.products))
	for i, p := range s.products {
		if p.ID == "" {
			rows = append(rows, ingestion.Reject[domain.Product](i, &ingestion.FieldError{Field: "id", Reason: "empty"}))
			continue
		}
		if p.Stock == "" {
			p.Stock = domain.DeriveStockStatus(p.StockText)
		}
		if p.Image == "" {
			p.Image = domain.PlaceholderImage
		}
		rows = append(rows, ingestion.Accept(i, p))
	}
	return rows, nil
}
