package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	customersports "github.com/Apurer/go-sheet-storefront/internal/domains/customers/ports"
	ordersports "github.com/Apurer/go-sheet-storefront/internal/domains/orders/ports"
)

// OrdersAPI lists the remembered customer's past orders.
type OrdersAPI struct {
	identity customersports.Service
	history  ordersports.History
}

func NewOrdersAPI(identity customersports.Service, history ordersports.History) OrdersAPI {
	return OrdersAPI{identity: identity, history: history}
}

// Get /v1/orders
func (api *OrdersAPI) ListOrders(c *gin.Context) {
	ctx := c.Request.Context()
	identity, err := api.identity.Current(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	orders, err := api.history.LoadOrders(ctx, identity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}
