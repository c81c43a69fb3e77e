package appscript

import (
	"context"
	"errors"

	"github.com/Apurer/go-sheet-storefront/internal/clients/http/appscript"
	"github.com/Apurer/go-sheet-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/orders/ports"
)

var _ ports.OrderWriter = (*Writer)(nil)

// OrderAppender is satisfied by clients/http/appscript.Client.
type OrderAppender interface {
	AppendOrder(ctx context.Context, payload appscript.OrderPayload, opts ...appscript.AppendOption) error
}

// Writer appends orders through the Apps Script web app.
type Writer struct {
	client OrderAppender
}

func NewWriter(client OrderAppender) *Writer {
	return &Writer{client: client}
}

func (w *Writer) Write(ctx context.Context, order domain.Order) error {
	if w == nil || w.client == nil {
		return errors.New("apps script writer not configured")
	}
	err := w.client.AppendOrder(ctx, ToPayload(order), appscript.WithIdempotencyKey(order.ID))
	if errors.Is(err, appscript.ErrDuplicate) {
		return ports.ErrDuplicateOrder
	}
	return err
}

// ToPayload maps an order onto the sheet columns. Total is sent in major units.
func ToPayload(order domain.Order) appscript.OrderPayload {
	return appscript.OrderPayload{
		OrderID:         order.ID,
		CustomerName:    order.CustomerName,
		CustomerPhone:   order.CustomerPhone,
		CustomerAddress: order.Address,
		Items:           order.ItemsSummary,
		Total:           order.Total.Major(),
		PaymentMethod:   string(order.PaymentMethod),
		Status:          string(order.Status),
		OrderDate:       order.OrderDate,
		DeliveryDate:    order.DeliveryDate,
		PaymentID:       order.PaymentID,
	}
}
