package ports

import (
	"context"

	cartdomain "github.com/Apurer/go-sheet-storefront/internal/domains/cart/domain"
	customersdomain "github.com/Apurer/go-sheet-storefront/internal/domains/customers/domain"
	notificationsdomain "github.com/Apurer/go-sheet-storefront/internal/domains/notifications/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/orders/domain"
)

// Submission is everything needed to record one order. OrderID is empty on a
// first attempt and carries the previous id when the same draft is retried.
type Submission struct {
	OrderID       string
	CustomerName  string
	CustomerPhone string
	Address       string
	PaymentMethod domain.PaymentMethod
	PaymentID     string
	Cart          cartdomain.Snapshot
}

// Receipt is returned for a committed order.
type Receipt struct {
	Order        domain.Order                     `json:"order"`
	Notification notificationsdomain.Notification `json:"notification"`
}

// Composer builds the business notification for a committed order.
type Composer interface {
	Compose(order domain.Order) notificationsdomain.Notification
}

// Gateway records orders at the remote store.
type Gateway interface {
	// NewOrderID reserves an id so that retries of the same draft reuse it.
	NewOrderID() string
	Submit(ctx context.Context, submission Submission) (*Receipt, error)
}

// History lists the orders placed by one customer.
type History interface {
	LoadOrders(ctx context.Context, identity customersdomain.Identity) ([]domain.Order, error)
}
