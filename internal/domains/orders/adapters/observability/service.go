package observability

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	customersdomain "github.com/Apurer/go-sheet-storefront/internal/domains/customers/domain"
	ordersapp "github.com/Apurer/go-sheet-storefront/internal/domains/orders/application"
	ordersdomain "github.com/Apurer/go-sheet-storefront/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-sheet-storefront/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/go-sheet-storefront/internal/domains/orders/adapters/observability/service"

// Service decorates the order gateway and history with tracing, logging, and metrics.
type Service struct {
	gateway ordersports.Gateway
	history ordersports.History
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the order gateway and history reader.
func New(gateway ordersports.Gateway, history ordersports.History, opts ...Option) *Service {
	s := &Service{
		gateway: gateway,
		history: history,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) NewOrderID() string {
	return s.gateway.NewOrderID()
}

func (s *Service) Submit(ctx context.Context, submission ordersports.Submission) (*ordersports.Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "OrderGateway.Submit",
		trace.WithAttributes(
			attribute.String("order.id", submission.OrderID),
			attribute.String("order.payment_method", string(submission.PaymentMethod)),
			attribute.Int("order.item_count", submission.Cart.ItemCount),
		))
	defer span.End()

	s.logInfo(ctx, "submitting order",
		slog.String("order.id", submission.OrderID),
		slog.String("order.payment_method", string(submission.PaymentMethod)),
		slog.Int64("order.total_minor", submission.Cart.Subtotal.Minor()))
	receipt, err := s.gateway.Submit(ctx, submission)
	if err != nil {
		s.metrics.recordSubmission(ctx, outcome(err), submission.PaymentMethod)
		return nil, s.handleError(ctx, span, err, "failed to submit order", slog.String("order.id", submission.OrderID))
	}
	span.SetAttributes(attribute.String("order.id", receipt.Order.ID))
	s.metrics.recordSubmission(ctx, "committed", receipt.Order.PaymentMethod)
	s.logInfo(ctx, "order submitted", slog.String("order.id", receipt.Order.ID), slog.String("status", string(receipt.Order.Status)))
	return receipt, nil
}

func (s *Service) LoadOrders(ctx context.Context, identity customersdomain.Identity) ([]ordersdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderHistory.LoadOrders",
		trace.WithAttributes(attribute.Bool("customer.known", identity.Known())))
	defer span.End()

	orders, err := s.history.LoadOrders(ctx, identity)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order history")
	}
	span.SetAttributes(attribute.Int("orders.count", len(orders)))
	s.logInfo(ctx, "order history loaded", slog.Int("orders.count", len(orders)))
	return orders, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ordersapp.ErrAlreadySubmitting):
		return "rejected_in_flight"
	case errors.Is(err, ordersapp.ErrSubmissionTransport):
		return "transport_failure"
	default:
		return "invalid"
	}
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	submissions metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	submissions, _ := m.Int64Counter("orders.gateway.submissions", metric.WithDescription("Order submissions by outcome"))
	return serviceMetrics{submissions: submissions}
}

func (m serviceMetrics) recordSubmission(ctx context.Context, outcome string, method ordersdomain.PaymentMethod) {
	if m.submissions != nil {
		m.submissions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("outcome", outcome),
			attribute.String("order.payment_method", string(method)),
		))
	}
}

var (
	_ ordersports.Gateway = (*Service)(nil)
	_ ordersports.History = (*Service)(nil)
)
