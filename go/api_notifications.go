package storefrontserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	checkoutports "github.com/Apurer/go-sheet-storefront/internal/domains/checkout/ports"
	"github.com/Apurer/go-sheet-storefront/internal/domains/notifications/adapters/qr"
	"github.com/Apurer/go-sheet-storefront/internal/domains/notifications/adapters/receipt"
	notificationsapp "github.com/Apurer/go-sheet-storefront/internal/domains/notifications/application"
	notificationsports "github.com/Apurer/go-sheet-storefront/internal/domains/notifications/ports"
	ordersports "github.com/Apurer/go-sheet-storefront/internal/domains/orders/ports"
	apierrors "github.com/Apurer/go-sheet-storefront/internal/shared/errors"
)

// NotificationsAPI presents the business notification of the last order
// placed in this session. Nothing is sent unless DispatchLastNotification is
// called explicitly.
type NotificationsAPI struct {
	checkout   checkoutports.Service
	dispatcher notificationsports.Dispatcher
	storeName  string
}

func NewNotificationsAPI(checkout checkoutports.Service, dispatcher notificationsports.Dispatcher, storeName string) NotificationsAPI {
	return NotificationsAPI{checkout: checkout, dispatcher: dispatcher, storeName: storeName}
}

// Get /v1/notifications/last
func (api *NotificationsAPI) GetLastNotification(c *gin.Context) {
	last, ok := api.lastReceipt(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, last)
}

// Get /v1/notifications/last/qr.png
// Renders the deep link as a QR code; ?size= in pixels
func (api *NotificationsAPI) GetLastNotificationQR(c *gin.Context) {
	last, ok := api.lastReceipt(c)
	if !ok {
		return
	}
	size := qr.DefaultSize
	if raw := c.Query("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondBadRequest(c, err)
			return
		}
		size = parsed
	}
	png, err := qr.Encode(last.Notification.DeepLink, size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// Get /v1/notifications/last/receipt.pdf
func (api *NotificationsAPI) GetLastReceipt(c *gin.Context) {
	last, ok := api.lastReceipt(c)
	if !ok {
		return
	}
	pdf, err := receipt.Render(api.storeName, last.Order, last.Notification)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+last.Order.ID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Post /v1/notifications/last/dispatch
// Sends the notification through the configured dispatcher
func (api *NotificationsAPI) DispatchLastNotification(c *gin.Context) {
	last, ok := api.lastReceipt(c)
	if !ok {
		return
	}
	if _, noop := api.dispatcher.(notificationsapp.NoopDispatcher); noop || api.dispatcher == nil {
		c.JSON(http.StatusOK, DispatchResult{OrderID: last.Order.ID})
		return
	}
	if err := api.dispatcher.Dispatch(c.Request.Context(), last.Notification); err != nil {
		respondProblem(c, apierrors.ErrUpstream.WithDetail(err.Error()))
		return
	}
	c.JSON(http.StatusOK, DispatchResult{OrderID: last.Order.ID, Dispatched: true})
}

func (api *NotificationsAPI) lastReceipt(c *gin.Context) (*ordersports.Receipt, bool) {
	last := api.checkout.Snapshot().Receipt
	if last == nil || last.Notification.Empty() {
		respondProblem(c, apierrors.NewNotFoundProblem("notification", "last"))
		return nil, false
	}
	return last, true
}
