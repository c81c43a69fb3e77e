package ports

import (
	"context"

	"github.com/Apurer/go-sheet-storefront/internal/domains/customers/domain"
)

// Service remembers the customer's phone between sessions.
type Service interface {
	Current(ctx context.Context) (domain.Identity, error)
	// Capture stores a phone only when none is remembered and it passes the
	// first-capture gate.
	Capture(ctx context.Context, phone string) (domain.Identity, error)
	// RememberFromCheckout overwrites the phone with whatever the checkout
	// form carried, without validation.
	RememberFromCheckout(ctx context.Context, phone string) (domain.Identity, error)
}
