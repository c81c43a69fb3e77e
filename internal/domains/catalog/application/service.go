package application

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Apurer/go-sheet-storefront/internal/domains/catalog/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/catalog/ports"
	"github.com/Apurer/go-sheet-storefront/internal/shared/ingestion"
)

// DefaultFetchTimeout bounds a catalog load when the caller sets no deadline of its own.
const DefaultFetchTimeout = 10 * time.Second

// Service owns the current catalog snapshot.
type Service struct {
	source   ports.Source
	snapshot atomic.Pointer[domain.Snapshot]
	timeout  time.Duration
	now      func() time.Time
}

type Option func(*Service)

// WithFetchTimeout overrides DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(source ports.Source, opts ...Option) *Service {
	s := &Service{source: source, timeout: DefaultFetchTimeout, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.snapshot.Store(domain.EmptySnapshot())
	return s
}

// Load fetches the catalog and swaps the snapshot in one step. On failure the
// previous snapshot stays in place and the error wraps ingestion.ErrTransport
// or ingestion.ErrUnparseable.
func (s *Service) Load(ctx context.Context) (ingestion.Report, error) {
	if s.source == nil {
		return ingestion.Report{}, errors.New("catalog source not configured")
	}
	report := ingestion.Report{Source: s.source.Name()}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.source.Fetch(ctx)
	if err != nil {
		return report, mapError(err)
	}
	products, report := ingestion.Collect(s.source.Name(), rejectDuplicates(rows))
	s.snapshot.Store(domain.NewSnapshot(products, s.now()))
	return report, nil
}

func (s *Service) Snapshot() *domain.Snapshot {
	return s.snapshot.Load()
}

func (s *Service) Lookup(id string) (domain.Product, bool) {
	return s.snapshot.Load().Lookup(id)
}

func (s *Service) Search(query, category string) []domain.Product {
	return s.snapshot.Load().Filter(query, category)
}

func (s *Service) Categories() []string {
	return s.snapshot.Load().Categories()
}

// rejectDuplicates keeps the first row for each product id.
func rejectDuplicates(rows []ingestion.RowResult[domain.Product]) []ingestion.RowResult[domain.Product] {
	seen := make(map[string]int, len(rows))
	out := make([]ingestion.RowResult[domain.Product], 0, len(rows))
	for _, row := range rows {
		if row.OK() {
			if first, dup := seen[row.Value.ID]; dup {
				row = ingestion.Reject[domain.Product](row.Row, &ingestion.FieldError{
					Field:  "id",
					Reason: fmt.Sprintf("%s: %q first seen at row %d", domain.ErrDuplicateID, row.Value.ID, first),
				})
			} else {
				seen[row.Value.ID] = row.Row
			}
		}
		out = append(out, row)
	}
	return out
}

func mapError(err error) error {
	if errors.Is(err, ingestion.ErrUnparseable) || errors.Is(err, ingestion.ErrTransport) {
		return err
	}
	return fmt.Errorf("%w: %w", ingestion.ErrTransport, err)
}

var _ ports.Service = (*Service)(nil)
