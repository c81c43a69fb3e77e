package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	cartapp "github.com/Apurer/go-sheet-storefront/internal/domains/cart/application"
	catalogdomain "github.com/Apurer/go-sheet-storefront/internal/domains/catalog/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/checkout/adapters/razorpay"
	"github.com/Apurer/go-sheet-storefront/internal/domains/checkout/domain"
	customersapp "github.com/Apurer/go-sheet-storefront/internal/domains/customers/application"
	customersdomain "github.com/Apurer/go-sheet-storefront/internal/domains/customers/domain"
	ordersmemory "github.com/Apurer/go-sheet-storefront/internal/domains/orders/adapters/memory"
	ordersapp "github.com/Apurer/go-sheet-storefront/internal/domains/orders/application"
	ordersdomain "github.com/Apurer/go-sheet-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-sheet-storefront/internal/platform/localstore/memory"
	"github.com/Apurer/go-sheet-storefront/internal/shared/money"
)

type staticCatalog map[string]catalogdomain.Product

func (c staticCatalog) Lookup(id string) (catalogdomain.Product, bool) {
	p, ok := c[id]
	return p, ok
}

// gatedWriter holds writes until release is closed.
type gatedWriter struct {
	inner   *ordersmemory.Store
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (w *gatedWriter) Write(ctx context.Context, order ordersdomain.Order) error {
	w.once.Do(func() { close(w.started) })
	<-w.release
	return w.inner.Write(ctx, order)
}

type fixture struct {
	machine  *Machine
	cart     *cartapp.Service
	identity *customersapp.Service
	orders   *ordersmemory.Store
	payments *razorpay.Collaborator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	catalog := staticCatalog{"P1": {ID: "P1", Name: "Rice", Price: money.FromMajor(50)}}
	cart := cartapp.NewService(catalog, store)
	identity := customersapp.NewService(store)
	orders := ordersmemory.NewStore()
	gateway := ordersapp.NewGateway(orders, nil)
	payments := razorpay.New("rzp_test")
	tokens := 0
	machine := NewMachine(cart, identity, gateway, ordersapp.NewHistory(orders), payments,
		WithTokenSource(func() string {
			tokens++
			return fmt.Sprintf("tok-%d", tokens)
		}))
	return &fixture{machine: machine, cart: cart, identity: identity, orders: orders, payments: payments}
}

func (f *fixture) fillCart(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.cart.AddItem(ctx, "P1")
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, "P1")
	require.NoError(t, err)
}

var form = domain.Form{Name: "A", Phone: "9998887776", Address: "X"}

func TestStart_EmptyCartStaysIdle(t *testing.T) {
	f := newFixture(t)

	snap, err := f.machine.Start(context.Background())
	require.ErrorIs(t, err, domain.ErrEmptyCart)
	require.Equal(t, domain.StateIdle, snap.State)
	require.Equal(t, domain.NoticeCartEmpty, snap.Notice.Message)
}

func TestStart_DefaultsToCODAndPrefillsPhone(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	_, err := f.identity.Capture(context.Background(), "9998887776")
	require.NoError(t, err)

	snap, err := f.machine.Start(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.StateDraftOpen, snap.State)
	require.Equal(t, ordersdomain.PaymentCOD, snap.Draft.PaymentMethod)
	require.Equal(t, "9998887776", snap.Draft.Phone)

	snap, err = f.machine.SelectPaymentMethod(context.Background(), ordersdomain.PaymentOnline)
	require.NoError(t, err)
	require.Equal(t, domain.StateDraftOpen, snap.State)
	require.Equal(t, ordersdomain.PaymentOnline, snap.Draft.PaymentMethod)

	snap, err = f.machine.Start(context.Background())
	require.NoError(t, err)
	require.Equal(t, ordersdomain.PaymentOnline, snap.Draft.PaymentMethod)
}

func TestConfirm_CODEndToEnd(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	_, err := f.machine.Start(ctx)
	require.NoError(t, err)
	snap, err := f.machine.Confirm(ctx, form)
	require.NoError(t, err)

	require.Equal(t, domain.StateCompleted, snap.State)
	require.Equal(t, domain.ViewOrders, snap.View)
	require.Nil(t, snap.Draft)
	require.Equal(t, domain.NoticeOrderPlaced, snap.Notice.Message)
	require.Equal(t, money.FromMajor(100), snap.Receipt.Order.Total)
	require.Equal(t, ordersdomain.PaymentCOD, snap.Receipt.Order.PaymentMethod)
	require.Equal(t, "", snap.Receipt.Order.PaymentID)
	require.True(t, f.cart.Snapshot().IsEmpty())

	require.Len(t, snap.Orders, 1)
	require.Equal(t, snap.Receipt.Order.ID, snap.Orders[0].ID)

	id, err := f.identity.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, "9998887776", id.Phone)

	history, err := ordersapp.NewHistory(f.orders).LoadOrders(ctx, customersdomain.Identity{Phone: "9998887776"})
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestConfirm_OnlineCancel(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	_, err := f.machine.Start(ctx)
	require.NoError(t, err)
	_, err = f.machine.SelectPaymentMethod(ctx, ordersdomain.PaymentOnline)
	require.NoError(t, err)
	snap, err := f.machine.Confirm(ctx, form)
	require.NoError(t, err)
	require.Equal(t, domain.StatePaymentPending, snap.State)
	require.Equal(t, int64(10000), snap.Payment.AmountMinor)

	opts, ok := f.payments.Pending()
	require.True(t, ok)
	require.Equal(t, int64(10000), opts.Amount)
	require.Equal(t, "Mamta Traders", opts.Name)
	require.Equal(t, "A", opts.Prefill.Name)

	snap, err = f.machine.ResolvePayment(ctx, domain.PaymentDismissed{Token: snap.Payment.Token})
	require.NoError(t, err)
	require.Equal(t, domain.StateDraftOpen, snap.State)
	require.Equal(t, domain.NoticePaymentCancelled, snap.Notice.Message)
	require.Equal(t, 2, f.cart.Snapshot().ItemCount)
	require.Empty(t, f.orders.Orders())
	_, ok = f.payments.Pending()
	require.False(t, ok)
}

func TestConfirm_OnlineSuccessCarriesReference(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	_, _ = f.machine.Start(ctx)
	_, _ = f.machine.SelectPaymentMethod(ctx, ordersdomain.PaymentOnline)
	snap, err := f.machine.Confirm(ctx, form)
	require.NoError(t, err)
	token := snap.Payment.Token

	_, err = f.machine.ResolvePayment(ctx, domain.PaymentSucceeded{Token: "stale", Reference: "pay_X"})
	require.ErrorIs(t, err, domain.ErrNoPaymentPending)

	snap, err = f.machine.ResolvePayment(ctx, domain.PaymentSucceeded{Token: token, Reference: "pay_123"})
	require.NoError(t, err)
	require.Equal(t, domain.StateCompleted, snap.State)
	require.Equal(t, "pay_123", snap.Receipt.Order.PaymentID)

	_, err = f.machine.ResolvePayment(ctx, domain.PaymentSucceeded{Token: token, Reference: "pay_123"})
	require.ErrorIs(t, err, domain.ErrNoPaymentPending)
	require.Len(t, f.orders.Orders(), 1)
}

func TestConfirm_FailureKeepsDraftAndRetryReusesOrderID(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()
	f.orders.FailWrites(errors.New("network down"))

	_, _ = f.machine.Start(ctx)
	snap, err := f.machine.Confirm(ctx, form)
	require.ErrorIs(t, err, ordersapp.ErrSubmissionTransport)
	require.Equal(t, domain.StateFailed, snap.State)
	require.Equal(t, domain.NoticeOrderFailed, snap.Notice.Message)
	require.Equal(t, "A", snap.Draft.Name)
	firstID := snap.Draft.OrderID
	require.NotEmpty(t, firstID)
	require.Equal(t, 2, f.cart.Snapshot().ItemCount)
	require.Equal(t, domain.StateDraftOpen, f.machine.Snapshot().State)

	_, err = f.cart.ChangeQuantity(ctx, "P1", 1)
	require.NoError(t, err, "a failed submission releases the cart")
	_, err = f.cart.ChangeQuantity(ctx, "P1", -1)
	require.NoError(t, err)

	f.orders.FailWrites(nil)
	snap, err = f.machine.Confirm(ctx, form)
	require.NoError(t, err)
	require.Equal(t, firstID, snap.Receipt.Order.ID)
}

func TestConfirm_OnlineChargesAndSubmitsHeldCart(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	_, _ = f.machine.Start(ctx)
	_, _ = f.machine.SelectPaymentMethod(ctx, ordersdomain.PaymentOnline)
	snap, err := f.machine.Confirm(ctx, form)
	require.NoError(t, err)
	require.Equal(t, int64(10000), snap.Payment.AmountMinor)

	_, err = f.cart.AddItem(ctx, "P1")
	require.ErrorIs(t, err, cartapp.ErrCartHeld)
	_, err = f.cart.ChangeQuantity(ctx, "P1", 1)
	require.ErrorIs(t, err, cartapp.ErrCartHeld)
	_, err = f.cart.RemoveItem(ctx, "P1")
	require.ErrorIs(t, err, cartapp.ErrCartHeld)
	require.Equal(t, 2, f.cart.Snapshot().ItemCount)

	snap, err = f.machine.ResolvePayment(ctx, domain.PaymentSucceeded{Token: snap.Payment.Token, Reference: "pay_1"})
	require.NoError(t, err)
	require.Equal(t, money.FromMajor(100), snap.Receipt.Order.Total)
	require.Equal(t, "Rice (2)", snap.Receipt.Order.ItemsSummary)
	require.True(t, f.cart.Snapshot().IsEmpty())

	_, err = f.cart.AddItem(ctx, "P1")
	require.NoError(t, err, "the cart is writable again after the order is placed")
}

func TestConfirm_DismissAndCancelReleaseCart(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	_, _ = f.machine.Start(ctx)
	_, _ = f.machine.SelectPaymentMethod(ctx, ordersdomain.PaymentOnline)
	snap, err := f.machine.Confirm(ctx, form)
	require.NoError(t, err)
	_, err = f.machine.ResolvePayment(ctx, domain.PaymentDismissed{Token: snap.Payment.Token})
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, "P1")
	require.NoError(t, err)

	snap, err = f.machine.Confirm(ctx, form)
	require.NoError(t, err)
	require.Equal(t, int64(15000), snap.Payment.AmountMinor)
	_, err = f.machine.Cancel(ctx)
	require.NoError(t, err)
	_, err = f.cart.RemoveItem(ctx, "P1")
	require.NoError(t, err)
	require.True(t, f.cart.Snapshot().IsEmpty())
}

func TestConfirm_SecondConfirmWhileSubmittingIsRejected(t *testing.T) {
	store := memory.NewStore()
	catalog := staticCatalog{"P1": {ID: "P1", Name: "Rice", Price: money.FromMajor(50)}}
	cart := cartapp.NewService(catalog, store)
	orders := ordersmemory.NewStore()
	writer := &gatedWriter{inner: orders, started: make(chan struct{}), release: make(chan struct{})}
	machine := NewMachine(cart, customersapp.NewService(store), ordersapp.NewGateway(writer, nil), ordersapp.NewHistory(orders), razorpay.New("k"))
	ctx := context.Background()
	_, err := cart.AddItem(ctx, "P1")
	require.NoError(t, err)
	_, err = machine.Start(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := machine.Confirm(ctx, form)
		done <- err
	}()
	<-writer.started

	require.Equal(t, domain.StateSubmitting, machine.Snapshot().State)
	_, err = machine.Confirm(ctx, form)
	require.ErrorIs(t, err, ordersapp.ErrAlreadySubmitting)
	_, err = machine.ResolvePayment(ctx, domain.PaymentSucceeded{Token: "x"})
	require.ErrorIs(t, err, ordersapp.ErrAlreadySubmitting)
	_, err = cart.AddItem(ctx, "P1")
	require.ErrorIs(t, err, cartapp.ErrCartHeld)

	close(writer.release)
	require.NoError(t, <-done)
	require.Len(t, orders.Orders(), 1)
}

func TestResolvePayment_OutsidePaymentPending(t *testing.T) {
	f := newFixture(t)
	_, err := f.machine.ResolvePayment(context.Background(), domain.PaymentDismissed{Token: "tok-1"})
	require.ErrorIs(t, err, domain.ErrNoPaymentPending)
	require.Equal(t, domain.StateIdle, f.machine.Snapshot().State)
}

func TestSelectPaymentMethod_RequiresOpenDraft(t *testing.T) {
	f := newFixture(t)
	_, err := f.machine.SelectPaymentMethod(context.Background(), ordersdomain.PaymentOnline)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancel_ReturnsToIdle(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()
	_, _ = f.machine.Start(ctx)
	_, _ = f.machine.SelectPaymentMethod(ctx, ordersdomain.PaymentOnline)
	_, err := f.machine.Confirm(ctx, form)
	require.NoError(t, err)

	snap, err := f.machine.Cancel(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.StateIdle, snap.State)
	require.Nil(t, snap.Draft)
	_, ok := f.payments.Pending()
	require.False(t, ok)
}
