package workflows

import (
	"context"
	"errors"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-sheet-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/orders/ports"
	orderworkflows "github.com/Apurer/go-sheet-storefront/internal/durable/temporal/workflows/orders"
)

var (
	_ ports.OrderWriter = (*TemporalWriter)(nil)
	_ ports.OrderWriter = (*InlineWriter)(nil)
)

// TemporalWriter runs each order write as a Temporal workflow.
type TemporalWriter struct {
	client    client.Client
	taskQueue string
}

// NewTemporalWriter wires a Temporal client into the writer.
func NewTemporalWriter(c client.Client) *TemporalWriter {
	return &TemporalWriter{client: c, taskQueue: orderworkflows.OrderSubmissionTaskQueue}
}

// Write starts the submission workflow by its registered name and waits for it. The workflow id is
// derived from the order id, so a retry that races a still-running attempt
// waits on that attempt instead of writing twice.
func (w *TemporalWriter) Write(ctx context.Context, order domain.Order) error {
	if w == nil || w.client == nil {
		return errors.New("temporal order writer not configured")
	}
	workflowID := WorkflowID(order.ID)
	options := client.StartWorkflowOptions{
		ID:                                       workflowID,
		TaskQueue:                                w.taskQueue,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}
	run, err := w.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.OrderSubmissionWorkflowName,
		orderworkflows.OrderSubmissionWorkflowInput{Order: order, TraceID: workflowTraceID(ctx)},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return w.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId).Get(ctx, nil)
		}
		return err
	}
	return run.Get(ctx, nil)
}

// InlineWriter writes directly to the store without durable orchestration.
type InlineWriter struct {
	store ports.OrderWriter
}

func NewInlineWriter(store ports.OrderWriter) *InlineWriter {
	return &InlineWriter{store: store}
}

func (w *InlineWriter) Write(ctx context.Context, order domain.Order) error {
	if w == nil || w.store == nil {
		return errors.New("inline order writer not configured")
	}
	return w.store.Write(ctx, order)
}

// WorkflowID is the submission workflow id for an order id.
func WorkflowID(orderID string) string {
	return "order-submission-" + orderID
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
