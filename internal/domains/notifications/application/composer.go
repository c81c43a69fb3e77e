package application

import (
	"strings"

	"github.com/Apurer/go-sheet-storefront/internal/domains/notifications/domain"
	ordersdomain "github.com/Apurer/go-sheet-storefront/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-sheet-storefront/internal/domains/orders/ports"
)

// Composer renders the order notification and its chat deep link.
type Composer struct {
	baseURL string
	address string
}

// NewComposer targets the business address on the given messaging service.
// An empty baseURL uses domain.DefaultMessagingBaseURL.
func NewComposer(baseURL, address string) *Composer {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = domain.DefaultMessagingBaseURL
	}
	return &Composer{baseURL: baseURL, address: strings.TrimSpace(address)}
}

// Compose is pure: the same order always yields the same notification.
func (c *Composer) Compose(order ordersdomain.Order) domain.Notification {
	text := Text(order)
	return domain.Notification{
		Text:     text,
		DeepLink: c.baseURL + "/" + c.address + "?text=" + EncodeURIComponent(text),
	}
}

// Text is the fixed notification template.
func Text(order ordersdomain.Order) string {
	var b strings.Builder
	b.WriteString("New Order!\n")
	b.WriteString("Order ID: " + order.ID + "\n")
	b.WriteString("Customer: " + order.CustomerName + "\n")
	b.WriteString("Phone: " + order.CustomerPhone + "\n")
	b.WriteString("Items: " + order.ItemsSummary + "\n")
	b.WriteString("Total: ₹" + order.Total.String() + "\n")
	b.WriteString("Payment: " + string(order.PaymentMethod) + "\n")
	b.WriteString("Address: " + order.Address)
	return b.String()
}

// EncodeURIComponent percent-encodes every byte except letters, digits and
// -_.!~*'(). url.QueryEscape differs on spaces and on !*'().
func EncodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

var _ ordersports.Composer = (*Composer)(nil)
