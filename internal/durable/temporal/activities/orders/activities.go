package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	"github.com/Apurer/go-sheet-storefront/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-sheet-storefront/internal/domains/orders/ports"
)

// WriteOrderActivityName appends one order to the configured order store.
const WriteOrderActivityName = "orders.activities.WriteOrder"

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	writer ordersports.OrderWriter
}

// NewActivities wires the order store into the Temporal activities bundle.
func NewActivities(writer ordersports.OrderWriter) *Activities {
	return &Activities{writer: writer}
}

// WriteOrder performs the single store write. A duplicate answer means an
// earlier attempt already committed the order, so it completes successfully.
func (a *Activities) WriteOrder(ctx context.Context, order domain.Order) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.writer == nil {
		logger.Error("order write activity not initialized", "orderId", order.ID)
		return errors.New("order write activity not initialized")
	}
	logger.Info("WriteOrder activity started", "orderId", order.ID)
	err := a.writer.Write(ctx, order)
	switch {
	case errors.Is(err, ordersports.ErrDuplicateOrder):
		logger.Info("WriteOrder found order already recorded", "orderId", order.ID)
		return nil
	case err != nil:
		logger.Error("WriteOrder activity failed", "orderId", order.ID, "error", err)
		return err
	}
	logger.Info("WriteOrder activity completed", "orderId", order.ID)
	return nil
}
