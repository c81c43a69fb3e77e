package sheets

import (
	"context"
	"errors"

	"github.com/Apurer/go-sheet-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/orders/ports"
	platformsheets "github.com/Apurer/go-sheet-storefront/internal/platform/sheets"
	"github.com/Apurer/go-sheet-storefront/internal/shared/ingestion"
	"github.com/Apurer/go-sheet-storefront/internal/shared/money"
)

// DefaultSheet is the tab the order log is appended to.
const DefaultSheet = "Orders"

const (
	colID = iota
	colCustomerName
	colCustomerPhone
	colAddress
	colItems
	colTotal
	colPaymentMethod
	colStatus
	colOrderDate
	colDeliveryDate
	colPaymentID
)

var _ ports.HistorySource = (*History)(nil)

// TableFetcher is satisfied by platform/sheets.Client.
type TableFetcher interface {
	FetchTable(ctx context.Context, sheet string) (*platformsheets.Table, error)
}

// History reads the order log from a spreadsheet tab.
type History struct {
	client TableFetcher
	sheet  string
}

func NewHistory(client TableFetcher, sheet string) *History {
	if sheet == "" {
		sheet = DefaultSheet
	}
	return &History{client: client, sheet: sheet}
}

func (h *History) Name() string { return "sheets:" + h.sheet }

func (h *History) FetchAll(ctx context.Context) ([]ingestion.RowResult[domain.Order], error) {
	if h == nil || h.client == nil {
		return nil, errors.New("sheets order history not configured")
	}
	table, err := h.client.FetchTable(ctx, h.sheet)
	if err != nil {
		return nil, err
	}
	rows := make([]ingestion.RowResult[domain.Order], 0, len(table.Rows))
	for i, row := range table.Rows {
		rows = append(rows, MapRow(i, row))
	}
	return rows, nil
}

// MapRow converts one order row. The first ten columns are positional and
// an eleventh column, when present, holds the payment id. Numeric phone cells
// are rendered as text so they compare equal to the remembered phone.
func MapRow(index int, row platformsheets.Row) ingestion.RowResult[domain.Order] {
	id, ok := row.Text(colID)
	if !ok {
		return ingestion.Reject[domain.Order](index, &ingestion.FieldError{Field: "orderId", Reason: "empty"})
	}
	var notes []ingestion.RowIssue
	var total money.Amount
	if f, numeric := row.Number(colTotal); numeric {
		total = money.FromMajor(f)
	} else {
		notes = append(notes, ingestion.RowIssue{Row: index, Field: "total", Reason: "absent or not a number, using 0"})
	}
	order := domain.Order{
		ID:            id,
		CustomerName:  row.TextOr(colCustomerName, ""),
		CustomerPhone: row.TextOr(colCustomerPhone, ""),
		Address:       row.TextOr(colAddress, ""),
		ItemsSummary:  row.TextOr(colItems, ""),
		Total:         total,
		PaymentMethod: domain.PaymentMethod(row.TextOr(colPaymentMethod, "")),
		PaymentID:     row.TextOr(colPaymentID, ""),
		Status:        domain.Status(row.TextOr(colStatus, "")),
		OrderDate:     row.TextOr(colOrderDate, ""),
		DeliveryDate:  row.TextOr(colDeliveryDate, ""),
	}
	return ingestion.Accept(index, order, notes...)
}
