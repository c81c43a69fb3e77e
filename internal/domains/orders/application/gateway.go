package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Apurer/go-sheet-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/orders/ports"
)

// DefaultSubmitTimeout bounds a single order write.
const DefaultSubmitTimeout = 15 * time.Second

// Gateway turns a submission into exactly one write at the remote store.
type Gateway struct {
	writer   ports.OrderWriter
	composer ports.Composer
	timeout  time.Duration
	now      func() time.Time

	inFlight atomic.Bool

	idMu   sync.Mutex
	lastID int64
}

type GatewayOption func(*Gateway)

func WithSubmitTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithGatewayClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) {
		if now != nil {
			g.now = now
		}
	}
}

func NewGateway(writer ports.OrderWriter, composer ports.Composer, opts ...GatewayOption) *Gateway {
	g := &Gateway{writer: writer, composer: composer, timeout: DefaultSubmitTimeout, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// NewOrderID returns "ORD" plus the current Unix milliseconds, bumped when
// needed so ids from one process never repeat.
func (g *Gateway) NewOrderID() string {
	g.idMu.Lock()
	defer g.idMu.Unlock()
	ms := g.now().UnixMilli()
	if ms <= g.lastID {
		ms = g.lastID + 1
	}
	g.lastID = ms
	return domain.FormatID(ms)
}

// Submit writes the order once. A duplicate answer from the store means an
// earlier attempt with the same id already committed and counts as success.
func (g *Gateway) Submit(ctx context.Context, submission ports.Submission) (*ports.Receipt, error) {
	if g.writer == nil {
		return nil, errors.New("order writer not configured")
	}
	if !g.inFlight.CompareAndSwap(false, true) {
		return nil, ErrAlreadySubmitting
	}
	defer g.inFlight.Store(false)

	if submission.Cart.IsEmpty() {
		return nil, ErrEmptyOrder
	}
	order := g.buildOrder(submission)
	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	if err := g.writer.Write(writeCtx, order); err != nil && !errors.Is(err, ports.ErrDuplicateOrder) {
		return nil, fmt.Errorf("%w: %w", ErrSubmissionTransport, err)
	}

	receipt := &ports.Receipt{Order: order}
	if g.composer != nil {
		receipt.Notification = g.composer.Compose(order)
	}
	return receipt, nil
}

func (g *Gateway) buildOrder(s ports.Submission) domain.Order {
	id := s.OrderID
	if id == "" {
		id = g.NewOrderID()
	}
	items := make([]domain.Item, 0, len(s.Cart.Lines))
	for _, line := range s.Cart.Lines {
		items = append(items, domain.Item{Name: line.Name, Quantity: line.Quantity})
	}
	orderDate, deliveryDate := domain.Dates(g.now())
	return domain.Order{
		ID:            id,
		CustomerName:  s.CustomerName,
		CustomerPhone: s.CustomerPhone,
		Address:       s.Address,
		ItemsSummary:  domain.SummarizeItems(items),
		Items:         items,
		Total:         s.Cart.Subtotal,
		PaymentMethod: s.PaymentMethod,
		PaymentID:     s.PaymentID,
		Status:        domain.StatusNew,
		OrderDate:     orderDate,
		DeliveryDate:  deliveryDate,
	}
}

var _ ports.Gateway = (*Gateway)(nil)
