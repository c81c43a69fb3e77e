package orders

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-sheet-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-sheet-storefront/internal/durable/temporal/sequences"
)

const (
	// OrderSubmissionWorkflowName is the public identifier for registering the workflow.
	OrderSubmissionWorkflowName = "orders.workflows.Submission"
	// OrderSubmissionTaskQueue is the queue consumed by the worker processing order writes.
	OrderSubmissionTaskQueue = "ORDER_SUBMISSION"
)

// OrderSubmissionWorkflowInput carries the fully built order.
type OrderSubmissionWorkflowInput struct {
	Order   domain.Order
	TraceID string
}

// OrderSubmissionWorkflow records one order at the store.
func OrderSubmissionWorkflow(ctx workflow.Context, input OrderSubmissionWorkflowInput) error {
	logger := workflow.GetLogger(ctx)
	orderID := input.Order.ID
	logger.Info("OrderSubmissionWorkflow started", withTraceID(input.TraceID, "orderId", orderID)...)
	if err := sequences.RunOrderWriteSequence(ctx, input.Order); err != nil {
		logger.Error("OrderSubmissionWorkflow failed", withTraceID(input.TraceID, "orderId", orderID, "error", err)...)
		return err
	}
	logger.Info("OrderSubmissionWorkflow completed", withTraceID(input.TraceID, "orderId", orderID)...)
	return nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
