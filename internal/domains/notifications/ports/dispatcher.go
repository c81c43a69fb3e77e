package ports

import (
	"context"

	"github.com/Apurer/go-sheet-storefront/internal/domains/notifications/domain"
)

// Dispatcher delivers a composed notification to the business without the
// customer's involvement. The storefront never calls it on its own.
type Dispatcher interface {
	Dispatch(ctx context.Context, notification domain.Notification) error
}
