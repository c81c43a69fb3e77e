package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	cartdomain "github.com/Apurer/go-sheet-storefront/internal/domains/cart/domain"
	customersdomain "github.com/Apurer/go-sheet-storefront/internal/domains/customers/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/orders/adapters/memory"
	ordersapp "github.com/Apurer/go-sheet-storefront/internal/domains/orders/application"
	ordersdomain "github.com/Apurer/go-sheet-storefront/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-sheet-storefront/internal/domains/orders/ports"
	"github.com/Apurer/go-sheet-storefront/internal/shared/money"
)

func TestService_DelegatesAndLogs(t *testing.T) {
	var buf bytes.Buffer
	store := memory.NewStore()
	svc := New(ordersapp.NewGateway(store, nil), ordersapp.NewHistory(store), WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	c := cartdomain.New()
	c.Add(cartdomain.Line{ProductID: "P1", Name: "Rice", Price: money.FromMajor(10)})
	receipt, err := svc.Submit(context.Background(), ordersports.Submission{
		CustomerPhone: "9998887776",
		PaymentMethod: ordersdomain.PaymentCOD,
		Cart:          c.Snapshot(),
	})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "order submitted")

	orders, err := svc.LoadOrders(context.Background(), customersdomain.Identity{Phone: "9998887776"})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, receipt.Order.ID, orders[0].ID)

	_, err = svc.Submit(context.Background(), ordersports.Submission{PaymentMethod: ordersdomain.PaymentCOD})
	require.ErrorIs(t, err, ordersapp.ErrEmptyOrder)
	require.Contains(t, buf.String(), "failed to submit order")
}
