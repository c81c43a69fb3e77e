package domain

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Apurer/go-sheet-storefront/internal/shared/money"
)

// PaymentMethod is how the customer settles the order.
type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "COD"
	PaymentOnline PaymentMethod = "Online"
)

// Status is free text on the remote side; these are the values the store uses.
type Status string

const (
	StatusNew        Status = "New"
	StatusProcessing Status = "Processing"
	StatusDelivered  Status = "Delivered"
)

// DateLayout is used for both order and delivery dates.
const DateLayout = time.DateOnly

// IDPrefix precedes the millisecond timestamp in generated order ids.
const IDPrefix = "ORD"

var (
	ErrMissingOrderID          = errors.New("order id is empty")
	ErrInvalidPaymentMethod    = errors.New("payment method must be COD or Online")
	ErrPaymentIDWithoutOnline  = errors.New("payment id is only recorded for online payments")
	ErrMissingPaymentReference = errors.New("online payment requires a payment id")
)

// Item is one line of a submitted order.
type Item struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Order is a submitted order record as stored remotely.
type Order struct {
	ID            string        `json:"orderId"`
	CustomerName  string        `json:"customerName"`
	CustomerPhone string        `json:"customerPhone"`
	Address       string        `json:"customerAddress"`
	ItemsSummary  string        `json:"items"`
	Items         []Item        `json:"lines,omitempty"`
	Total         money.Amount  `json:"total"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	PaymentID     string        `json:"paymentId"`
	Status        Status        `json:"status"`
	OrderDate     string        `json:"orderDate"`
	DeliveryDate  string        `json:"deliveryDate"`
}

// ParsePaymentMethod accepts the two known methods, case-insensitively.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch {
	case strings.EqualFold(s, string(PaymentCOD)):
		return PaymentCOD, nil
	case strings.EqualFold(s, string(PaymentOnline)):
		return PaymentOnline, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentOnline
}

// FormatID renders an order id from a millisecond timestamp.
func FormatID(unixMilli int64) string {
	return IDPrefix + strconv.FormatInt(unixMilli, 10)
}

// Dates returns the order date and the delivery date one day later, both in UTC.
func Dates(now time.Time) (orderDate, deliveryDate string) {
	now = now.UTC()
	return now.Format(DateLayout), now.Add(24 * time.Hour).Format(DateLayout)
}

// SummarizeItems renders items as "name (qty), name (qty)".
func SummarizeItems(items []Item) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, item.Name+" ("+strconv.Itoa(item.Quantity)+")")
	}
	return strings.Join(parts, ", ")
}

// Validate checks an order about to be submitted. Orders read back from the
// remote store are not validated.
func (o *Order) Validate() error {
	if o.ID == "" {
		return ErrMissingOrderID
	}
	if !o.PaymentMethod.Valid() {
		return ErrInvalidPaymentMethod
	}
	if o.PaymentMethod == PaymentCOD && o.PaymentID != "" {
		return ErrPaymentIDWithoutOnline
	}
	if o.PaymentMethod == PaymentOnline && o.PaymentID == "" {
		return ErrMissingPaymentReference
	}
	return nil
}
