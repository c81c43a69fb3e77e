package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/go-sheet-storefront/internal/domains/checkout/adapters/razorpay"
	checkoutdomain "github.com/Apurer/go-sheet-storefront/internal/domains/checkout/domain"
	checkoutports "github.com/Apurer/go-sheet-storefront/internal/domains/checkout/ports"
	ordersdomain "github.com/Apurer/go-sheet-storefront/internal/domains/orders/domain"
	apierrors "github.com/Apurer/go-sheet-storefront/internal/shared/errors"
)

// PendingPayments exposes the payment dialog options the browser must open.
type PendingPayments interface {
	Pending() (razorpay.Options, bool)
}

// CheckoutAPI drives the checkout state machine. Failed actions answer with a
// problem whose "checkout" extension carries the resulting snapshot, so the
// client can show the notice and the kept draft.
type CheckoutAPI struct {
	service  checkoutports.Service
	payments PendingPayments
}

func NewCheckoutAPI(service checkoutports.Service, payments PendingPayments) CheckoutAPI {
	return CheckoutAPI{service: service, payments: payments}
}

// Post /v1/checkout
// Opens the checkout form
func (api *CheckoutAPI) StartCheckout(c *gin.Context) {
	snapshot, err := api.service.Start(c.Request.Context())
	api.respond(c, snapshot, err)
}

// Get /v1/checkout
func (api *CheckoutAPI) GetCheckout(c *gin.Context) {
	c.JSON(http.StatusOK, api.service.Snapshot())
}

// Delete /v1/checkout
// Closes the form and discards the draft
func (api *CheckoutAPI) CancelCheckout(c *gin.Context) {
	snapshot, err := api.service.Cancel(c.Request.Context())
	api.respond(c, snapshot, err)
}

// Put /v1/checkout/payment-method
func (api *CheckoutAPI) SelectPaymentMethod(c *gin.Context) {
	var payload PaymentMethodRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	method, err := ordersdomain.ParsePaymentMethod(payload.PaymentMethod)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	snapshot, err := api.service.SelectPaymentMethod(c.Request.Context(), method)
	api.respond(c, snapshot, err)
}

// Post /v1/checkout/confirm
// Places a COD order, or opens the online payment and answers 202
func (api *CheckoutAPI) ConfirmCheckout(c *gin.Context) {
	var payload ConfirmRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	snapshot, err := api.service.Confirm(c.Request.Context(), checkoutdomain.Form{
		Name:    payload.Name,
		Phone:   payload.Phone,
		Address: payload.Address,
	})
	if err == nil && snapshot.State == checkoutdomain.StatePaymentPending {
		c.JSON(http.StatusAccepted, snapshot)
		return
	}
	api.respond(c, snapshot, err)
}

// Get /v1/checkout/payment
// Returns the Razorpay Checkout options for the pending payment
func (api *CheckoutAPI) GetPendingPayment(c *gin.Context) {
	if api.payments == nil {
		respondProblem(c, apierrors.NewNotFoundProblem("payment", "pending"))
		return
	}
	options, ok := api.payments.Pending()
	if !ok {
		respondProblem(c, apierrors.NewNotFoundProblem("payment", "pending"))
		return
	}
	c.JSON(http.StatusOK, options)
}

// Post /v1/checkout/payment/success
func (api *CheckoutAPI) PaymentSucceeded(c *gin.Context) {
	var payload PaymentSuccessRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	snapshot, err := api.service.ResolvePayment(c.Request.Context(), checkoutdomain.PaymentSucceeded{
		Token:     payload.Token,
		Reference: payload.PaymentID,
	})
	api.respond(c, snapshot, err)
}

// Post /v1/checkout/payment/dismiss
func (api *CheckoutAPI) PaymentDismissed(c *gin.Context) {
	var payload PaymentDismissRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	snapshot, err := api.service.ResolvePayment(c.Request.Context(), checkoutdomain.PaymentDismissed{Token: payload.Token})
	api.respond(c, snapshot, err)
}

func (api *CheckoutAPI) respond(c *gin.Context, snapshot checkoutports.Snapshot, err error) {
	if err != nil {
		respondErrorWith(c, err, "checkout", snapshot)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
