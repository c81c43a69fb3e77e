package ports

import (
	"context"

	"github.com/Apurer/go-sheet-storefront/internal/domains/catalog/domain"
	"github.com/Apurer/go-sheet-storefront/internal/shared/ingestion"
)

// Source reads every product row from a remote catalog. Each row is mapped
// independently; whole-payload failures are returned as the error and wrap
// ingestion.ErrUnparseable or ingestion.ErrTransport.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]ingestion.RowResult[domain.Product], error)
}
