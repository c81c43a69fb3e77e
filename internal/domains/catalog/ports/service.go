package ports

import (
	"context"

	"github.com/Apurer/go-sheet-storefront/internal/domains/catalog/domain"
	"github.com/Apurer/go-sheet-storefront/internal/shared/ingestion"
)

// Service exposes catalog use cases to adapters.
type Service interface {
	// Load refreshes the catalog snapshot from the configured source.
	Load(ctx context.Context) (ingestion.Report, error)
	Snapshot() *domain.Snapshot
	Lookup(id string) (domain.Product, bool)
	Search(query, category string) []domain.Product
	Categories() []string
}
