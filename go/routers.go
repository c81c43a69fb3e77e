package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the handlers of every API area.
type ApiHandleFunctions struct {
	CatalogAPI       CatalogAPI
	CartAPI          CartAPI
	IdentityAPI      IdentityAPI
	OrdersAPI        OrdersAPI
	CheckoutAPI      CheckoutAPI
	NotificationsAPI NotificationsAPI
}

// NewRouter returns a gin engine with recovery, request ids, CORS and the
// given middleware installed ahead of every route.
func NewRouter(handleFunctions ApiHandleFunctions, middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), CORS(DefaultCORSOptions()))
	router.Use(middleware...)
	return NewRouterWithGinEngine(router, handleFunctions)
}

// NewRouterWithGinEngine registers every route on an existing engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		router.Handle(route.Method, route.Pattern, route.HandlerFunc)
	}
	return router
}

// DefaultHandleFunc answers routes whose handler is not wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"ListProducts", http.MethodGet, "/v1/catalog/products", handleFunctions.CatalogAPI.ListProducts},
		{"ListCategories", http.MethodGet, "/v1/catalog/categories", handleFunctions.CatalogAPI.ListCategories},
		{"RefreshCatalog", http.MethodPost, "/v1/catalog/refresh", handleFunctions.CatalogAPI.RefreshCatalog},

		{"GetCart", http.MethodGet, "/v1/cart", handleFunctions.CartAPI.GetCart},
		{"AddCartItem", http.MethodPost, "/v1/cart/items/:productId", handleFunctions.CartAPI.AddItem},
		{"ChangeCartItemQuantity", http.MethodPatch, "/v1/cart/items/:productId", handleFunctions.CartAPI.ChangeQuantity},
		{"RemoveCartItem", http.MethodDelete, "/v1/cart/items/:productId", handleFunctions.CartAPI.RemoveItem},

		{"GetIdentity", http.MethodGet, "/v1/identity", handleFunctions.IdentityAPI.GetIdentity},
		{"CaptureIdentity", http.MethodPut, "/v1/identity", handleFunctions.IdentityAPI.CaptureIdentity},

		{"ListOrders", http.MethodGet, "/v1/orders", handleFunctions.OrdersAPI.ListOrders},

		{"StartCheckout", http.MethodPost, "/v1/checkout", handleFunctions.CheckoutAPI.StartCheckout},
		{"GetCheckout", http.MethodGet, "/v1/checkout", handleFunctions.CheckoutAPI.GetCheckout},
		{"CancelCheckout", http.MethodDelete, "/v1/checkout", handleFunctions.CheckoutAPI.CancelCheckout},
		{"SelectPaymentMethod", http.MethodPut, "/v1/checkout/payment-method", handleFunctions.CheckoutAPI.SelectPaymentMethod},
		{"ConfirmCheckout", http.MethodPost, "/v1/checkout/confirm", handleFunctions.CheckoutAPI.ConfirmCheckout},
		{"GetPendingPayment", http.MethodGet, "/v1/checkout/payment", handleFunctions.CheckoutAPI.GetPendingPayment},
		{"PaymentSucceeded", http.MethodPost, "/v1/checkout/payment/success", handleFunctions.CheckoutAPI.PaymentSucceeded},
		{"PaymentDismissed", http.MethodPost, "/v1/checkout/payment/dismiss", handleFunctions.CheckoutAPI.PaymentDismissed},

		{"GetLastNotification", http.MethodGet, "/v1/notifications/last", handleFunctions.NotificationsAPI.GetLastNotification},
		{"GetLastNotificationQR", http.MethodGet, "/v1/notifications/last/qr.png", handleFunctions.NotificationsAPI.GetLastNotificationQR},
		{"GetLastReceipt", http.MethodGet, "/v1/notifications/last/receipt.pdf", handleFunctions.NotificationsAPI.GetLastReceipt},
		{"DispatchLastNotification", http.MethodPost, "/v1/notifications/last/dispatch", handleFunctions.NotificationsAPI.DispatchLastNotification},
	}
}
