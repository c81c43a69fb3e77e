package ports

import (
	"context"

	catalogdomain "github.com/Apurer/go-sheet-storefront/internal/domains/catalog/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/cart/domain"
)

// ProductLookup resolves product ids against the current catalog snapshot.
type ProductLookup interface {
	Lookup(id string) (catalogdomain.Product, bool)
}

// Service exposes cart use cases. Every mutation is persisted before it
// becomes visible.
type Service interface {
	AddItem(ctx context.Context, productID string) (domain.Snapshot, error)
	ChangeQuantity(ctx context.Context, productID string, delta int) (domain.Snapshot, error)
	RemoveItem(ctx context.Context, productID string) (domain.Snapshot, error)
	Clear(ctx context.Context) error
	Snapshot() domain.Snapshot
}
