package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	cartdomain "github.com/Apurer/go-sheet-storefront/internal/domains/cart/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/checkout/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/checkout/ports"
	customersdomain "github.com/Apurer/go-sheet-storefront/internal/domains/customers/domain"
	ordersapp "github.com/Apurer/go-sheet-storefront/internal/domains/orders/application"
	ordersdomain "github.com/Apurer/go-sheet-storefront/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-sheet-storefront/internal/domains/orders/ports"
)

// Machine is the checkout state machine for one session. It owns the only
// "order in flight" flag: while Submitting, further confirms and payment
// outcomes are rejected with ordersapp.ErrAlreadySubmitting. The lock is not
// held across the gateway call.
//
// From Confirm until the order is placed or abandoned the cart is on hold and
// basket is the exact set of lines that is charged for and submitted.
type Machine struct {
	cart     ports.Cart
	identity ports.Identity
	gateway  ordersports.Gateway
	history  ordersports.History
	payments ports.PaymentCollaborator
	merchant domain.Merchant
	newToken func() string
	logger   *slog.Logger

	mu      sync.Mutex
	state   domain.State
	view    domain.View
	draft   *domain.Draft
	notice  *domain.Notice
	payment *domain.PaymentRequest
	basket  cartdomain.Snapshot
	receipt *ordersports.Receipt
	orders  []ordersdomain.Order
}

type Option func(*Machine)

func WithMerchant(merchant domain.Merchant) Option {
	return func(m *Machine) {
		m.merchant = merchant
	}
}

func WithTokenSource(next func() string) Option {
	return func(m *Machine) {
		if next != nil {
			m.newToken = next
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

func NewMachine(
	cart ports.Cart,
	identity ports.Identity,
	gateway ordersports.Gateway,
	history ordersports.History,
	payments ports.PaymentCollaborator,
	opts ...Option,
) *Machine {
	m := &Machine{
		cart:     cart,
		identity: identity,
		gateway:  gateway,
		history:  history,
		payments: payments,
		merchant: domain.DefaultMerchant(),
		newToken: uuid.NewString,
		state:    domain.StateIdle,
		view:     domain.ViewShop,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Start opens the checkout form. An empty cart refuses the transition.
// Reopening an open draft keeps it.
func (m *Machine) Start(ctx context.Context) (ports.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case domain.StateIdle, domain.StateCompleted, domain.StateDraftOpen:
	case domain.StateSubmitting:
		return m.snapshotLocked(), ordersapp.ErrAlreadySubmitting
	default:
		return m.snapshotLocked(), fmt.Errorf("%w: start from %s", domain.ErrInvalidTransition, m.state)
	}
	if m.cart.Snapshot().IsEmpty() {
		m.setNotice(domain.NoticeError, domain.NoticeCartEmpty)
		return m.snapshotLocked(), domain.ErrEmptyCart
	}
	if m.state != domain.StateDraftOpen || m.draft == nil {
		draft := &domain.Draft{PaymentMethod: ordersdomain.PaymentCOD}
		if id, err := m.identity.Current(ctx); err == nil {
			draft.Phone = id.Phone
		} else {
			m.logWarn(ctx, "identity unavailable for prefill", err)
		}
		m.draft = draft
		m.receipt = nil
	}
	m.state = domain.StateDraftOpen
	m.view = domain.ViewCheckout
	m.notice = nil
	return m.snapshotLocked(), nil
}

// SelectPaymentMethod only changes the stored choice.
func (m *Machine) SelectPaymentMethod(_ context.Context, method ordersdomain.PaymentMethod) (ports.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != domain.StateDraftOpen {
		return m.snapshotLocked(), fmt.Errorf("%w: select payment method in %s", domain.ErrInvalidTransition, m.state)
	}
	if !method.Valid() {
		return m.snapshotLocked(), ordersdomain.ErrInvalidPaymentMethod
	}
	m.draft.PaymentMethod = method
	return m.snapshotLocked(), nil
}

// Confirm submits a COD order or suspends for an online payment.
func (m *Machine) Confirm(ctx context.Context, form domain.Form) (ports.Snapshot, error) {
	m.mu.Lock()
	if err := m.prepareConfirmLocked(ctx, form); err != nil {
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return snap, err
	}
	if m.draft.PaymentMethod == ordersdomain.PaymentOnline {
		err := m.openPaymentLocked(ctx)
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return snap, err
	}
	return m.submitLocked(ctx, "")
}

func (m *Machine) prepareConfirmLocked(ctx context.Context, form domain.Form) error {
	switch m.state {
	case domain.StateDraftOpen:
	case domain.StateSubmitting:
		return ordersapp.ErrAlreadySubmitting
	default:
		return fmt.Errorf("%w: confirm in %s", domain.ErrInvalidTransition, m.state)
	}
	m.draft.Name = form.Name
	m.draft.Phone = form.Phone
	m.draft.Address = form.Address
	if _, err := m.identity.RememberFromCheckout(ctx, form.Phone); err != nil {
		m.logWarn(ctx, "failed to remember checkout phone", err)
	}
	basket := m.cart.Hold()
	if basket.IsEmpty() {
		m.cart.Release()
		m.setNotice(domain.NoticeError, domain.NoticeCartEmpty)
		return domain.ErrEmptyCart
	}
	m.basket = basket
	return nil
}

func (m *Machine) openPaymentLocked(ctx context.Context) error {
	request := domain.PaymentRequest{
		Token:        m.newToken(),
		AmountMinor:  m.basket.Subtotal.Minor(),
		Currency:     m.merchant.Currency,
		MerchantName: m.merchant.Name,
		Description:  m.merchant.Description,
		Prefill:      domain.Prefill{Name: m.draft.Name, Contact: m.draft.Phone},
	}
	if err := m.payments.Open(ctx, request); err != nil {
		m.releaseCartLocked()
		m.setNotice(domain.NoticeError, domain.NoticePaymentFailed)
		return fmt.Errorf("open payment: %w", err)
	}
	m.payment = &request
	m.state = domain.StatePaymentPending
	m.notice = nil
	return nil
}

// ResolvePayment is the only way out of PaymentPending.
func (m *Machine) ResolvePayment(ctx context.Context, outcome domain.PaymentOutcome) (ports.Snapshot, error) {
	m.mu.Lock()
	reference, proceed, err := m.takePaymentLocked(outcome)
	if err != nil || !proceed {
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return snap, err
	}
	return m.submitLocked(ctx, reference)
}

// takePaymentLocked consumes the pending payment. proceed is true when the
// outcome was a success and submission should follow.
func (m *Machine) takePaymentLocked(outcome domain.PaymentOutcome) (reference string, proceed bool, err error) {
	if m.state == domain.StateSubmitting {
		return "", false, ordersapp.ErrAlreadySubmitting
	}
	if outcome == nil || m.state != domain.StatePaymentPending || m.payment == nil || outcome.PaymentToken() != m.payment.Token {
		return "", false, domain.ErrNoPaymentPending
	}
	switch o := outcome.(type) {
	case domain.PaymentSucceeded:
		m.releasePaymentLocked()
		return o.Reference, true, nil
	case domain.PaymentDismissed:
		m.releasePaymentLocked()
		m.releaseCartLocked()
		m.state = domain.StateDraftOpen
		m.setNotice(domain.NoticeInfo, domain.NoticePaymentCancelled)
		return "", false, nil
	default:
		return "", false, fmt.Errorf("unsupported payment outcome %T", outcome)
	}
}

func (m *Machine) releasePaymentLocked() {
	if m.payment != nil {
		m.payments.Close(m.payment.Token)
	}
	m.payment = nil
}

func (m *Machine) releaseCartLocked() {
	m.cart.Release()
	m.basket = cartdomain.Snapshot{}
}

// Cancel closes the form and discards the draft. A pending payment is
// abandoned.
func (m *Machine) Cancel(_ context.Context) (ports.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case domain.StateSubmitting:
		return m.snapshotLocked(), ordersapp.ErrAlreadySubmitting
	case domain.StatePaymentPending:
		m.releasePaymentLocked()
		m.releaseCartLocked()
	}
	m.state = domain.StateIdle
	m.view = domain.ViewShop
	m.draft = nil
	return m.snapshotLocked(), nil
}

func (m *Machine) Snapshot() ports.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// submitLocked is entered with m.mu held and returns with it released.
func (m *Machine) submitLocked(ctx context.Context, paymentID string) (ports.Snapshot, error) {
	if m.draft.OrderID == "" {
		m.draft.OrderID = m.gateway.NewOrderID()
	}
	draft := *m.draft
	submission := ordersports.Submission{
		OrderID:       draft.OrderID,
		CustomerName:  draft.Name,
		CustomerPhone: draft.Phone,
		Address:       draft.Address,
		PaymentMethod: draft.PaymentMethod,
		PaymentID:     paymentID,
		Cart:          m.basket,
	}
	m.state = domain.StateSubmitting
	m.notice = nil
	m.mu.Unlock()

	receipt, err := m.gateway.Submit(ctx, submission)

	m.mu.Lock()
	if err != nil {
		m.releaseCartLocked()
		m.state = domain.StateDraftOpen
		m.setNotice(domain.NoticeError, domain.NoticeOrderFailed)
		snap := m.snapshotLocked()
		snap.State = domain.StateFailed
		m.mu.Unlock()
		return snap, err
	}
	// The cart was held, so it still holds exactly the submitted lines.
	if clearErr := m.cart.Clear(ctx); clearErr != nil {
		m.logWarn(ctx, "order placed but cart could not be cleared", clearErr)
	}
	m.releaseCartLocked()
	m.state = domain.StateCompleted
	m.view = domain.ViewOrders
	m.draft = nil
	m.receipt = receipt
	m.setNotice(domain.NoticeSuccess, domain.NoticeOrderPlaced)
	m.mu.Unlock()

	m.refreshHistory(ctx, draft.Phone)
	return m.Snapshot(), nil
}

func (m *Machine) refreshHistory(ctx context.Context, phone string) {
	if m.history == nil {
		return
	}
	orders, err := m.history.LoadOrders(ctx, customersdomain.Identity{Phone: phone})
	if err != nil {
		m.logWarn(ctx, "order history refresh failed", err)
		return
	}
	m.mu.Lock()
	m.orders = orders
	m.mu.Unlock()
}

func (m *Machine) setNotice(kind domain.NoticeKind, msg string) {
	m.notice = &domain.Notice{Kind: kind, Message: msg}
}

func (m *Machine) snapshotLocked() ports.Snapshot {
	snap := ports.Snapshot{State: m.state, View: m.view, Receipt: m.receipt}
	if m.draft != nil {
		d := *m.draft
		snap.Draft = &d
	}
	if m.notice != nil {
		n := *m.notice
		snap.Notice = &n
	}
	if m.payment != nil {
		p := *m.payment
		snap.Payment = &p
	}
	if m.orders != nil {
		snap.Orders = append([]ordersdomain.Order(nil), m.orders...)
	}
	return snap
}

func (m *Machine) logWarn(ctx context.Context, msg string, err error) {
	if m.logger == nil || err == nil {
		return
	}
	m.logger.LogAttrs(ctx, slog.LevelWarn, msg, slog.String("error", err.Error()))
}

var _ ports.Service = (*Machine)(nil)
