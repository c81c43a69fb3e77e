package ports

import (
	"context"

	cartdomain "github.com/Apurer/go-sheet-storefront/internal/domains/cart/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/checkout/domain"
	customersdomain "github.com/Apurer/go-sheet-storefront/internal/domains/customers/domain"
	ordersdomain "github.com/Apurer/go-sheet-storefront/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-sheet-storefront/internal/domains/orders/ports"
)

// Cart is the part of the cart engine checkout depends on. Hold freezes the
// lines checkout is about to charge for and submit; Release lifts it.
type Cart interface {
	Snapshot() cartdomain.Snapshot
	Hold() cartdomain.Snapshot
	Release()
	Clear(ctx context.Context) error
}

// Identity is the part of customer identity checkout depends on.
type Identity interface {
	Current(ctx context.Context) (customersdomain.Identity, error)
	RememberFromCheckout(ctx context.Context, phone string) (customersdomain.Identity, error)
}

// PaymentCollaborator collects an online payment outside the machine. Open
// must not block on the shopper; the outcome arrives later through
// Service.ResolvePayment. Close releases the request once it is resolved.
type PaymentCollaborator interface {
	Open(ctx context.Context, request domain.PaymentRequest) error
	Close(token string)
}

// Snapshot is a read-only view of one checkout session.
type Snapshot struct {
	State   domain.State           `json:"state"`
	View    domain.View            `json:"view"`
	Draft   *domain.Draft          `json:"draft,omitempty"`
	Notice  *domain.Notice         `json:"notice,omitempty"`
	Payment *domain.PaymentRequest `json:"payment,omitempty"`
	Receipt *ordersports.Receipt   `json:"receipt,omitempty"`
	Orders  []ordersdomain.Order   `json:"orders,omitempty"`
}

// Service drives one shopper's checkout.
type Service interface {
	Start(ctx context.Context) (Snapshot, error)
	SelectPaymentMethod(ctx context.Context, method ordersdomain.PaymentMethod) (Snapshot, error)
	Confirm(ctx context.Context, form domain.Form) (Snapshot, error)
	ResolvePayment(ctx context.Context, outcome domain.PaymentOutcome) (Snapshot, error)
	Cancel(ctx context.Context) (Snapshot, error)
	Snapshot() Snapshot
}
