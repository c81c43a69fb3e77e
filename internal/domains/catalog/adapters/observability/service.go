package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	catalogdomain "github.com/Apurer/go-sheet-storefront/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/go-sheet-storefront/internal/domains/catalog/ports"
	"github.com/Apurer/go-sheet-storefront/internal/shared/ingestion"
)

const tracerName = "github.com/Apurer/go-sheet-storefront/internal/domains/catalog/adapters/observability/service"

// Service decorates the catalog service with tracing, logging, and metrics.
// Only Load is instrumented; the read methods serve an in-memory snapshot.
type Service struct {
	inner   catalogports.Service
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

// New wraps the core catalog service.
func New(inner catalogports.Service, opts ...Option) catalogports.Service {
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

func (s *Service) Load(ctx context.Context) (ingestion.Report, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.Load")
	defer span.End()

	s.logInfo(ctx, "loading catalog")
	report, err := s.inner.Load(ctx)
	span.SetAttributes(attribute.String("catalog.source", report.Source))
	if err != nil {
		s.metrics.recordLoad(ctx, "error")
		return report, s.handleError(ctx, span, err, "failed to load catalog, keeping previous snapshot",
			slog.String("catalog.source", report.Source))
	}
	span.SetAttributes(
		attribute.Int("catalog.rows", report.Rows),
		attribute.Int("catalog.accepted", report.Accepted),
		attribute.Int("catalog.dropped", report.Dropped()),
	)
	s.metrics.recordLoad(ctx, "ok")
	s.metrics.recordIssues(ctx, report)
	for _, issue := range report.Issues {
		s.logWarn(ctx, "catalog row issue", slog.String("issue", issue.String()))
	}
	s.logInfo(ctx, "catalog loaded",
		slog.String("catalog.source", report.Source),
		slog.Int("catalog.accepted", report.Accepted),
		slog.Int("catalog.dropped", report.Dropped()),
		slog.Int("catalog.coerced", report.Coerced()),
	)
	return report, nil
}

func (s *Service) Snapshot() *catalogdomain.Snapshot {
	return s.inner.Snapshot()
}

func (s *Service) Lookup(id string) (catalogdomain.Product, bool) {
	return s.inner.Lookup(id)
}

func (s *Service) Search(query, category string) []catalogdomain.Product {
	return s.inner.Search(query, category)
}

func (s *Service) Categories() []string {
	return s.inner.Categories()
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logWarn(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

type serviceMetrics struct {
	loads       metric.Int64Counter
	rowsDropped metric.Int64Counter
	rowsCoerced metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	loads, _ := m.Int64Counter("catalog.ingestion.loads", metric.WithDescription("Catalog load attempts by outcome"))
	dropped, _ := m.Int64Counter("catalog.ingestion.rows_rejected", metric.WithDescription("Catalog rows rejected during ingestion"))
	coerced, _ := m.Int64Counter("catalog.ingestion.fields_coerced", metric.WithDescription("Catalog fields replaced by defaults"))
	return serviceMetrics{loads: loads, rowsDropped: dropped, rowsCoerced: coerced}
}

func (m serviceMetrics) recordLoad(ctx context.Context, outcome string) {
	if m.loads != nil {
		m.loads.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

func (m serviceMetrics) recordIssues(ctx context.Context, report ingestion.Report) {
	if m.rowsDropped != nil {
		m.rowsDropped.Add(ctx, int64(report.Dropped()))
	}
	if m.rowsCoerced != nil {
		m.rowsCoerced.Add(ctx, int64(report.Coerced()))
	}
}

var _ catalogports.Service = (*Service)(nil)
