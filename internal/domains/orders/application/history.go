package application

import (
	"context"
	"errors"
	"time"

	customersdomain "github.com/Apurer/go-sheet-storefront/internal/domains/customers/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/orders/ports"
	"github.com/Apurer/go-sheet-storefront/internal/shared/ingestion"
)

// DefaultHistoryTimeout bounds one history fetch.
const DefaultHistoryTimeout = 10 * time.Second

// History filters the remote order log down to one customer.
type History struct {
	source  ports.HistorySource
	timeout time.Duration
}

type HistoryOption func(*History)

func WithHistoryTimeout(d time.Duration) HistoryOption {
	return func(h *History) {
		if d > 0 {
			h.timeout = d
		}
	}
}

func NewHistory(source ports.HistorySource, opts ...HistoryOption) *History {
	h := &History{source: source, timeout: DefaultHistoryTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// LoadOrders returns the orders whose phone equals the identity's phone
// exactly, in the order the store returned them. An unknown identity yields
// an empty list without contacting the store.
func (h *History) LoadOrders(ctx context.Context, identity customersdomain.Identity) ([]domain.Order, error) {
	if !identity.Known() {
		return []domain.Order{}, nil
	}
	if h.source == nil {
		return nil, errors.New("order history source not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	rows, err := h.source.FetchAll(ctx)
	if err != nil {
		return nil, mapHistoryError(err)
	}
	all, _ := ingestion.Collect(h.source.Name(), rows)
	mine := make([]domain.Order, 0, len(all))
	for _, order := range all {
		if order.CustomerPhone == identity.Phone {
			mine = append(mine, order)
		}
	}
	return mine, nil
}

var _ ports.History = (*History)(nil)
