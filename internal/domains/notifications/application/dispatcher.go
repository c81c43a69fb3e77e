package application

import (
	"context"

	"github.com/Apurer/go-sheet-storefront/internal/domains/notifications/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/notifications/ports"
)

// NoopDispatcher is the default: notifications are only handed to the
// customer as a deep link.
type NoopDispatcher struct{}

func (NoopDispatcher) Dispatch(context.Context, domain.Notification) error { return nil }

var _ ports.Dispatcher = NoopDispatcher{}
