package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	checkoutdomain "github.com/Apurer/go-sheet-storefront/internal/domains/checkout/domain"
	checkoutports "github.com/Apurer/go-sheet-storefront/internal/domains/checkout/ports"
	ordersdomain "github.com/Apurer/go-sheet-storefront/internal/domains/orders/domain"
)

const tracerName = "github.com/Apurer/go-sheet-storefront/internal/domains/checkout/adapters/observability/service"

// Service decorates the checkout machine with tracing, logging, and metrics.
type Service struct {
	inner   checkoutports.Service
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

// New wraps the checkout machine.
func New(inner checkoutports.Service, opts ...Option) checkoutports.Service {
	s := &Service{
		inner:   inner,
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

func (s *Service) Start(ctx context.Context) (checkoutports.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.Start")
	defer span.End()
	snap, err := s.inner.Start(ctx)
	return s.finish(ctx, span, "start", snap, err)
}

func (s *Service) SelectPaymentMethod(ctx context.Context, method ordersdomain.PaymentMethod) (checkoutports.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.SelectPaymentMethod",
		trace.WithAttributes(attribute.String("checkout.payment_method", string(method))))
	defer span.End()
	snap, err := s.inner.SelectPaymentMethod(ctx, method)
	return s.finish(ctx, span, "select_payment_method", snap, err)
}

func (s *Service) Confirm(ctx context.Context, form checkoutdomain.Form) (checkoutports.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.Confirm")
	defer span.End()
	snap, err := s.inner.Confirm(ctx, form)
	return s.finish(ctx, span, "confirm", snap, err)
}

func (s *Service) ResolvePayment(ctx context.Context, outcome checkoutdomain.PaymentOutcome) (checkoutports.Snapshot, error) {
	kind := "unknown"
	switch outcome.(type) {
	case checkoutdomain.PaymentSucceeded:
		kind = "succeeded"
	case checkoutdomain.PaymentDismissed:
		kind = "dismissed"
	}
	ctx, span := s.tracer.Start(ctx, "CheckoutService.ResolvePayment",
		trace.WithAttributes(attribute.String("checkout.payment_outcome", kind)))
	defer span.End()
	snap, err := s.inner.ResolvePayment(ctx, outcome)
	return s.finish(ctx, span, "resolve_payment_"+kind, snap, err)
}

func (s *Service) Cancel(ctx context.Context) (checkoutports.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.Cancel")
	defer span.End()
	snap, err := s.inner.Cancel(ctx)
	return s.finish(ctx, span, "cancel", snap, err)
}

func (s *Service) Snapshot() checkoutports.Snapshot {
	return s.inner.Snapshot()
}

func (s *Service) finish(ctx context.Context, span trace.Span, action string, snap checkoutports.Snapshot, err error) (checkoutports.Snapshot, error) {
	span.SetAttributes(attribute.String("checkout.state", string(snap.State)))
	s.metrics.recordAction(ctx, action, snap.State, err == nil)
	if err != nil {
		return snap, s.handleError(ctx, span, err, "checkout "+action+" refused", slog.String("checkout.state", string(snap.State)))
	}
	s.logInfo(ctx, "checkout "+action, slog.String("checkout.state", string(snap.State)))
	return snap, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
	}
	return err
}

type serviceMetrics struct {
	actions metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	actions, _ := m.Int64Counter("checkout.service.actions", metric.WithDescription("Checkout actions by resulting state"))
	return serviceMetrics{actions: actions}
}

func (m serviceMetrics) recordAction(ctx context.Context, action string, state checkoutdomain.State, ok bool) {
	if m.actions != nil {
		m.actions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("checkout.action", action),
			attribute.String("checkout.state", string(state)),
			attribute.Bool("checkout.accepted", ok),
		))
	}
}

var _ checkoutports.Service = (*Service)(nil)
