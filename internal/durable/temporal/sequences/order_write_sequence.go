package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-sheet-storefront/internal/domains/orders/domain"
	orderactivities "github.com/Apurer/go-sheet-storefront/internal/durable/temporal/activities/orders"
)

// RunOrderWriteSequence performs the store write exactly once. Retrying is the
// customer's decision, so the activity gets a single attempt.
func RunOrderWriteSequence(ctx workflow.Context, order domain.Order) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("order write sequence started", "orderId", order.ID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	if err := workflow.ExecuteActivity(ctx, orderactivities.WriteOrderActivityName, order).Get(ctx, nil); err != nil {
		logger.Error("order write sequence failed", "orderId", order.ID, "error", err)
		return err
	}
	logger.Info("order write sequence completed", "orderId", order.ID)
	return nil
}
