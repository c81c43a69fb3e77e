// Package storefront assembles one shopper session from its collaborators.
package storefront

import (
	"context"
	"errors"
	"log/slog"
	"time"

	storefrontserver "github.com/Apurer/go-sheet-storefront/go"

	cartapp "github.com/Apurer/go-sheet-storefront/internal/domains/cart/application"
	catalogobs "github.com/Apurer/go-sheet-storefront/internal/domains/catalog/adapters/observability"
	catalogapp "github.com/Apurer/go-sheet-storefront/internal/domains/catalog/application"
	catalogports "github.com/Apurer/go-sheet-storefront/internal/domains/catalog/ports"
	checkoutobs "github.com/Apurer/go-sheet-storefront/internal/domains/checkout/adapters/observability"
	"github.com/Apurer/go-sheet-storefront/internal/domains/checkout/adapters/razorpay"
	checkoutapp "github.com/Apurer/go-sheet-storefront/internal/domains/checkout/application"
	checkoutdomain "github.com/Apurer/go-sheet-storefront/internal/domains/checkout/domain"
	checkoutports "github.com/Apurer/go-sheet-storefront/internal/domains/checkout/ports"
	customersapp "github.com/Apurer/go-sheet-storefront/internal/domains/customers/application"
	customersports "github.com/Apurer/go-sheet-storefront/internal/domains/customers/ports"
	notificationsapp "github.com/Apurer/go-sheet-storefront/internal/domains/notifications/application"
	notificationsports "github.com/Apurer/go-sheet-storefront/internal/domains/notifications/ports"
	ordersobs "github.com/Apurer/go-sheet-storefront/internal/domains/orders/adapters/observability"
	ordersapp "github.com/Apurer/go-sheet-storefront/internal/domains/orders/application"
	ordersports "github.com/Apurer/go-sheet-storefront/internal/domains/orders/ports"
	"github.com/Apurer/go-sheet-storefront/internal/platform/localstore"
	platformobservability "github.com/Apurer/go-sheet-storefront/internal/platform/observability"
)

// Dependencies are the adapters a session is built from.
type Dependencies struct {
	CatalogSource catalogports.Source
	LocalStore    localstore.Store
	OrderWriter   ordersports.OrderWriter
	OrderHistory  ordersports.HistorySource
	Composer      ordersports.Composer
	Payments      *razorpay.Collaborator
	Dispatcher    notificationsports.Dispatcher

	StoreName      string
	Merchant       checkoutdomain.Merchant
	FetchTimeout   time.Duration
	SubmitTimeout  time.Duration
	HistoryTimeout time.Duration

	// Instruments may be nil; decorators then log nothing and use no-op
	// tracers and meters.
	Instruments *platformobservability.Instruments
}

// Session owns every service of one shopper. Nothing is shared through
// package state; the HTTP layer receives the session by reference.
type Session struct {
	Catalog    catalogports.Service
	Cart       *cartapp.Service
	Identity   customersports.Service
	Gateway    ordersports.Gateway
	History    ordersports.History
	Checkout   checkoutports.Service
	Payments   *razorpay.Collaborator
	Dispatcher notificationsports.Dispatcher
	StoreName  string
}

// NewSession wires the services and restores the persisted cart. An
// unreadable stored cart is logged and replaced by an empty one.
func NewSession(ctx context.Context, deps Dependencies) (*Session, error) {
	if deps.LocalStore == nil {
		return nil, errors.New("local store is required")
	}
	if deps.OrderWriter == nil || deps.OrderHistory == nil {
		return nil, errors.New("order store is required")
	}
	instruments := deps.Instruments
	var logger *slog.Logger
	if instruments != nil {
		logger = instruments.Logger
	}
	merchant := deps.Merchant
	if merchant.Name == "" {
		merchant = checkoutdomain.DefaultMerchant()
	}
	payments := deps.Payments
	if payments == nil {
		payments = razorpay.New("")
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = notificationsapp.NoopDispatcher{}
	}

	catalog := catalogobs.New(
		catalogapp.NewService(deps.CatalogSource, catalogapp.WithFetchTimeout(deps.FetchTimeout)),
		catalogobs.WithLogger(logger),
		catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
		catalogobs.WithMeter(instruments.Meter("internal.catalog.application")),
	)

	cart := cartapp.NewService(catalog, deps.LocalStore, cartapp.WithLogger(logger))
	if err := cart.Restore(ctx); err != nil && !errors.Is(err, cartapp.ErrCorruptCart) {
		return nil, err
	}
	identity := customersapp.NewService(deps.LocalStore)

	orders := ordersobs.New(
		ordersapp.NewGateway(deps.OrderWriter, deps.Composer, ordersapp.WithSubmitTimeout(deps.SubmitTimeout)),
		ordersapp.NewHistory(deps.OrderHistory, ordersapp.WithHistoryTimeout(deps.HistoryTimeout)),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	checkout := checkoutobs.New(
		checkoutapp.NewMachine(cart, identity, orders, orders, payments,
			checkoutapp.WithMerchant(merchant),
			checkoutapp.WithLogger(logger),
		),
		checkoutobs.WithLogger(logger),
		checkoutobs.WithTracer(instruments.Tracer("internal.checkout.application")),
		checkoutobs.WithMeter(instruments.Meter("internal.checkout.application")),
	)

	return &Session{
		Catalog:    catalog,
		Cart:       cart,
		Identity:   identity,
		Gateway:    orders,
		History:    orders,
		Checkout:   checkout,
		Payments:   payments,
		Dispatcher: dispatcher,
		StoreName:  deps.StoreName,
	}, nil
}

// Handlers binds the HTTP API to this session.
func (s *Session) Handlers() storefrontserver.ApiHandleFunctions {
	return storefrontserver.ApiHandleFunctions{
		CatalogAPI:       storefrontserver.NewCatalogAPI(s.Catalog),
		CartAPI:          storefrontserver.NewCartAPI(s.Cart),
		IdentityAPI:      storefrontserver.NewIdentityAPI(s.Identity),
		OrdersAPI:        storefrontserver.NewOrdersAPI(s.Identity, s.History),
		CheckoutAPI:      storefrontserver.NewCheckoutAPI(s.Checkout, s.Payments),
		NotificationsAPI: storefrontserver.NewNotificationsAPI(s.Checkout, s.Dispatcher, s.StoreName),
	}
}
