package memory

import (
	"context"
	"sync"

	"github.com/Apurer/go-sheet-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/orders/ports"
	"github.com/Apurer/go-sheet-storefront/internal/shared/ingestion"
)

var (
	_ ports.OrderWriter   = (*Store)(nil)
	_ ports.HistorySource = (*Store)(nil)
)

// Store is an in-process order log that rejects repeated order ids.
type Store struct {
	mu     sync.RWMutex
	orders []domain.Order
	ids    map[string]struct{}
	failW  error
	failR  error
	writes int
}

func NewStore(seed ...domain.Order) *Store {
	s := &Store{ids: map[string]struct{}{}}
	for _, order := range seed {
		s.orders = append(s.orders, cloneOrder(order))
		s.ids[order.ID] = struct{}{}
	}
	return s
}

func (s *Store) Name() string { return "memory" }

func (s *Store) Write(ctx context.Context, order domain.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	if s.failW != nil {
		return s.failW
	}
	if _, dup := s.ids[order.ID]; dup {
		return ports.ErrDuplicateOrder
	}
	s.ids[order.ID] = struct{}{}
	s.orders = append(s.orders, cloneOrder(order))
	return nil
}

func (s *Store) FetchAll(ctx context.Context) ([]ingestion.RowResult[domain.Order], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failR != nil {
		return nil, s.failR
	}
	rows := make([]ingestion.RowResult[domain.Order], 0, len(s.orders))
	for i, order := range s.orders {
		rows = append(rows, ingestion.Accept(i, cloneOrder(order)))
	}
	return rows, nil
}

// FailWrites makes every following Write return err; nil restores normal behaviour.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failW = err
}

// FailReads makes every following FetchAll return err.
func (s *Store) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failR = err
}

// Orders returns a copy of the committed orders.
func (s *Store) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Order, 0, len(s.orders))
	for _, order := range s.orders {
		out = append(out, cloneOrder(order))
	}
	return out
}

// Writes counts write attempts, including failed and duplicate ones.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func cloneOrder(order domain.Order) domain.Order {
	order.Items = append([]domain.Item(nil), order.Items...)
	return order
}
