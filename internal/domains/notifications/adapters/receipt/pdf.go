// Package receipt renders a printable order receipt.
package receipt

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"

	"github.com/Apurer/go-sheet-storefront/internal/domains/notifications/adapters/qr"
	"github.com/Apurer/go-sheet-storefront/internal/domains/notifications/domain"
	ordersdomain "github.com/Apurer/go-sheet-storefront/internal/domains/orders/domain"
)

// Render builds an A4 receipt with the order details and, when the
// notification has a deep link, a QR code for it. Core fonts have no rupee
// glyph so amounts are printed as "Rs.".
func Render(storeName string, order ordersdomain.Order, notification domain.Notification) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(storeName+" receipt "+order.ID), false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, tr(storeName))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	lines := []string{
		"Order ID: " + order.ID,
		"Customer: " + order.CustomerName,
		"Phone: " + order.CustomerPhone,
		"Address: " + order.Address,
		"Order date: " + order.OrderDate,
		"Delivery date: " + order.DeliveryDate,
		"Payment: " + string(order.PaymentMethod),
	}
	if order.PaymentID != "" {
		lines = append(lines, "Payment ID: "+order.PaymentID)
	}
	for _, line := range lines {
		pdf.Cell(0, 8, tr(line))
		pdf.Ln(8)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(120, 8, "Item")
	pdf.Cell(30, 8, "Qty")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 12)
	if len(order.Items) == 0 {
		pdf.MultiCell(0, 8, tr(order.ItemsSummary), "", "L", false)
	}
	for _, item := range order.Items {
		pdf.Cell(120, 8, tr(item.Name))
		pdf.Cell(30, 8, fmt.Sprintf("%d", item.Quantity))
		pdf.Ln(8)
	}
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, "Total: Rs. "+order.Total.Fixed())
	pdf.Ln(12)

	if notification.DeepLink != "" {
		png, err := qr.Encode(notification.DeepLink, qr.DefaultSize)
		if err != nil {
			return nil, err
		}
		imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(png))
		pdf.ImageOptions("qr", 150, 20, 40, 40, false, imageOpts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
