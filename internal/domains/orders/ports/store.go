package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-sheet-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-sheet-storefront/internal/shared/ingestion"
)

// ErrDuplicateOrder is returned by a writer when the order id is already
// recorded. The earlier write is committed, so callers treat it as success.
var ErrDuplicateOrder = errors.New("order id already recorded")

// OrderWriter appends one order to the remote store. The order id is the
// idempotency key.
type OrderWriter interface {
	Write(ctx context.Context, order domain.Order) error
}

// HistorySource reads every order row from the remote store, in store order.
type HistorySource interface {
	Name() string
	FetchAll(ctx context.Context) ([]ingestion.RowResult[domain.Order], error)
}
