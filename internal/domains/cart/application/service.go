package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/Apurer/go-sheet-storefront/internal/domains/cart/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/cart/ports"
	"github.com/Apurer/go-sheet-storefront/internal/platform/localstore"
	"github.com/Apurer/go-sheet-storefront/internal/shared/money"
)

var (
	// ErrUnknownProduct signals the product id is not in the current catalog.
	ErrUnknownProduct = errors.New("product unavailable")
	// ErrCorruptCart signals the stored cart could not be decoded; the cart starts empty.
	ErrCorruptCart = errors.New("stored cart unreadable")
	// ErrCartHeld rejects item changes while checkout has the cart on hold.
	ErrCartHeld = errors.New("cart is held by checkout")
)

// Service guards the session cart. Each mutation works on a copy, writes the
// copy through to the local store and only then publishes it, so a failed
// write leaves the visible cart unchanged.
type Service struct {
	mu      sync.Mutex
	catalog ports.ProductLookup
	store   localstore.Store
	cart    *domain.Cart
	held    bool
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(catalog ports.ProductLookup, store localstore.Store, opts ...Option) *Service {
	s := &Service{catalog: catalog, store: store, cart: domain.New()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Restore loads the persisted cart. A missing key yields an empty cart; an
// unreadable value yields an empty cart and ErrCorruptCart.
func (s *Service) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := s.store.Get(ctx, localstore.KeyCart)
	if errors.Is(err, localstore.ErrNotFound) {
		s.cart = domain.New()
		return nil
	}
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	lines, err := decodeLines(raw)
	if err != nil {
		s.cart = domain.New()
		s.logWarn(ctx, "discarding unreadable stored cart", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", ErrCorruptCart, err)
	}
	s.cart = domain.FromLines(lines)
	return nil
}

func (s *Service) AddItem(ctx context.Context, productID string) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held {
		return s.cart.Snapshot(), ErrCartHeld
	}
	product, ok := s.catalog.Lookup(productID)
	if !ok {
		return s.cart.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownProduct, productID)
	}
	next := s.cart.Clone()
	next.Add(domain.Line{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.Image,
	})
	return s.commit(ctx, next)
}

// ChangeQuantity is a no-op for products not in the cart.
func (s *Service) ChangeQuantity(ctx context.Context, productID string, delta int) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held {
		return s.cart.Snapshot(), ErrCartHeld
	}
	next := s.cart.Clone()
	if !next.ChangeQuantity(productID, delta) {
		return s.cart.Snapshot(), nil
	}
	return s.commit(ctx, next)
}

// RemoveItem is a no-op for products not in the cart.
func (s *Service) RemoveItem(ctx context.Context, productID string) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held {
		return s.cart.Snapshot(), ErrCartHeld
	}
	next := s.cart.Clone()
	if !next.Remove(productID) {
		return s.cart.Snapshot(), nil
	}
	return s.commit(ctx, next)
}

func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.commit(ctx, domain.New())
	return err
}

// Hold freezes the lines and returns them. Until Release, item changes fail
// with ErrCartHeld; Clear still works.
func (s *Service) Hold() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held = true
	return s.cart.Snapshot()
}

func (s *Service) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held = false
}

func (s *Service) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Snapshot()
}

func (s *Service) commit(ctx context.Context, next *domain.Cart) (domain.Snapshot, error) {
	raw, err := localstore.Encode(toRecords(next.Lines()))
	if err != nil {
		return s.cart.Snapshot(), err
	}
	if err := s.store.Set(ctx, localstore.KeyCart, raw); err != nil {
		return s.cart.Snapshot(), fmt.Errorf("persist cart: %w", err)
	}
	s.cart = next
	return next.Snapshot(), nil
}

func (s *Service) logWarn(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
}

// lineRecord is the version 1 stored line. Prices are minor units.
type lineRecord struct {
	ProductID  string `json:"productId"`
	Name       string `json:"name"`
	PriceMinor int64  `json:"priceMinor"`
	Image      string `json:"image"`
	Quantity   int    `json:"quantity"`
}

// legacyLineRecord is the unversioned shape: decimal price, id may be numeric.
type legacyLineRecord struct {
	ID       json.RawMessage `json:"id"`
	Name     string          `json:"name"`
	Price    money.Amount    `json:"price"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
}

func toRecords(lines []domain.Line) []lineRecord {
	records := make([]lineRecord, 0, len(lines))
	for _, l := range lines {
		records = append(records, lineRecord{
			ProductID:  l.ProductID,
			Name:       l.Name,
			PriceMinor: l.Price.Minor(),
			Image:      l.Image,
			Quantity:   l.Quantity,
		})
	}
	return records
}

func decodeLines(raw []byte) ([]domain.Line, error) {
	env := localstore.Decode(raw)
	switch env.Version {
	case 0:
		var legacy []legacyLineRecord
		if err := json.Unmarshal(env.Data, &legacy); err != nil {
			return nil, err
		}
		lines := make([]domain.Line, 0, len(legacy))
		for _, r := range legacy {
			lines = append(lines, domain.Line{
				ProductID: legacyID(r.ID),
				Name:      r.Name,
				Price:     r.Price,
				Image:     r.Image,
				Quantity:  r.Quantity,
			})
		}
		return lines, nil
	case 1:
		var records []lineRecord
		if err := json.Unmarshal(env.Data, &records); err != nil {
			return nil, err
		}
		lines := make([]domain.Line, 0, len(records))
		for _, r := range records {
			lines = append(lines, domain.Line{
				ProductID: r.ProductID,
				Name:      r.Name,
				Price:     money.Amount(r.PriceMinor),
				Image:     r.Image,
				Quantity:  r.Quantity,
			})
		}
		return lines, nil
	default:
		return nil, fmt.Errorf("unsupported cart version %d", env.Version)
	}
}

func legacyID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

var _ ports.Service = (*Service)(nil)
