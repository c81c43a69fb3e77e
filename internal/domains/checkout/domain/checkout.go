package domain

import (
	"errors"

	ordersdomain "github.com/Apurer/go-sheet-storefront/internal/domains/orders/domain"
)

// State is the checkout lifecycle position. Failed is only ever reported in
// the snapshot returned by the failing call; the machine itself is back in
// DraftOpen so the shopper can retry.
type State string

const (
	StateIdle           State = "Idle"
	StateDraftOpen      State = "DraftOpen"
	StatePaymentPending State = "PaymentPending"
	StateSubmitting     State = "Submitting"
	StateCompleted      State = "Completed"
	StateFailed         State = "Failed"
)

// View is the screen the shopper should be looking at.
type View string

const (
	ViewShop     View = "shop"
	ViewCheckout View = "checkout"
	ViewOrders   View = "orders"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrNoPaymentPending  = errors.New("no payment is pending for this token")
	ErrInvalidTransition = errors.New("checkout action not allowed in current state")
)

// Notice texts shown to the shopper.
const (
	NoticeOrderPlaced      = "Order placed successfully! 🎉"
	NoticeOrderFailed      = "Failed to place order. Please try again."
	NoticePaymentCancelled = "Payment cancelled"
	NoticeCartEmpty        = "Your cart is empty!"
	NoticePaymentFailed    = "Could not open payment. Please try again."
)

// NoticeKind classifies a notice for presentation.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

// Notice is a transient user-visible message.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// Draft is the checkout form. OrderID is assigned on the first submission
// attempt and kept across retries.
type Draft struct {
	OrderID       string                     `json:"orderId,omitempty"`
	Name          string                     `json:"name"`
	Phone         string                     `json:"phone"`
	Address       string                     `json:"address"`
	PaymentMethod ordersdomain.PaymentMethod `json:"paymentMethod"`
}

// Form is what the shopper confirms.
type Form struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Prefill seeds the payment dialog with the shopper's identity.
type Prefill struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// PaymentRequest is handed to the external payment collaborator. The amount
// is in minor units. Token identifies this suspension and only an outcome
// carrying it can resume the machine.
type PaymentRequest struct {
	Token        string  `json:"token"`
	AmountMinor  int64   `json:"amount"`
	Currency     string  `json:"currency"`
	MerchantName string  `json:"merchantName"`
	Description  string  `json:"description"`
	Prefill      Prefill `json:"prefill"`
}

// PaymentOutcome is one of PaymentSucceeded or PaymentDismissed.
type PaymentOutcome interface {
	PaymentToken() string
	isPaymentOutcome()
}

// PaymentSucceeded carries the collaborator's payment reference.
type PaymentSucceeded struct {
	Token     string `json:"token"`
	Reference string `json:"reference"`
}

func (p PaymentSucceeded) PaymentToken() string { return p.Token }
func (PaymentSucceeded) isPaymentOutcome()      {}

// PaymentDismissed means the shopper closed the payment dialog.
type PaymentDismissed struct {
	Token string `json:"token"`
}

func (p PaymentDismissed) PaymentToken() string { return p.Token }
func (PaymentDismissed) isPaymentOutcome()      {}

// Merchant describes the seller to the payment collaborator.
type Merchant struct {
	Name        string
	Description string
	Currency    string
}

// DefaultMerchant matches the storefront's branding.
func DefaultMerchant() Merchant {
	return Merchant{Name: "Mamta Traders", Description: "Order Payment", Currency: "INR"}
}
