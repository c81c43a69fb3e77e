package sheets

import (
	"context"
	"errors"

	"github.com/Apurer/go-sheet-storefront/internal/domains/catalog/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/catalog/ports"
	platformsheets "github.com/Apurer/go-sheet-storefront/internal/platform/sheets"
	"github.com/Apurer/go-sheet-storefront/internal/shared/ingestion"
	"github.com/Apurer/go-sheet-storefront/internal/shared/money"
)

// DefaultSheet is the tab holding the product table.
const DefaultSheet = "Products"

// Positional product columns.
const (
	colID = iota
	colName
	colCategory
	colPrice
	colUnit
	colStock
	colImage
	colDescription
)

var _ ports.Source = (*Source)(nil)

// TableFetcher is satisfied by platform/sheets.Client.
type TableFetcher interface {
	FetchTable(ctx context.Context, sheet string) (*platformsheets.Table, error)
}

// Source reads products from a spreadsheet tab.
type Source struct {
	client TableFetcher
	sheet  string
}

func NewSource(client TableFetcher, sheet string) *Source {
	if sheet == "" {
		sheet = DefaultSheet
	}
	return &Source{client: client, sheet: sheet}
}

func (s *Source) Name() string { return "sheets:" + s.sheet }

func (s *Source) Fetch(ctx context.Context) ([]ingestion.RowResult[domain.Product], error) {
	if s == nil || s.client == nil {
		return nil, errors.New("sheets catalog source not configured")
	}
	table, err := s.client.FetchTable(ctx, s.sheet)
	if err != nil {
		return nil, err
	}
	rows := make([]ingestion.RowResult[domain.Product], 0, len(table.Rows))
	for i, row := range table.Rows {
		rows = append(rows, MapRow(i, row))
	}
	return rows, nil
}

// MapRow converts one data row (zero-based index) into a product. Absent text
// cells become empty strings; an absent, non-numeric or negative price becomes
// 0 and is noted. Rows without an id are rejected.
func MapRow(index int, row platformsheets.Row) ingestion.RowResult[domain.Product] {
	id, ok := row.Text(colID)
	if !ok {
		return ingestion.Reject[domain.Product](index, &ingestion.FieldError{Field: "id", Reason: "empty"})
	}
	var notes []ingestion.RowIssue
	var price money.Amount
	switch f, numeric := row.Number(colPrice); {
	case !row.Present(colPrice):
		notes = append(notes, ingestion.RowIssue{Row: index, Field: "price", Reason: "absent, using 0"})
	case !numeric:
		notes = append(notes, ingestion.RowIssue{Row: index, Field: "price", Reason: "not a number, using 0"})
	case f < 0:
		notes = append(notes, ingestion.RowIssue{Row: index, Field: "price", Reason: "negative, using 0"})
	default:
		price = money.FromMajor(f)
	}
	if !row.Present(colName) {
		notes = append(notes, ingestion.RowIssue{Row: index, Field: "name", Reason: "absent, using empty"})
	}
	product, err := domain.NewProduct(
		id,
		row.TextOr(colName, ""),
		row.TextOr(colCategory, ""),
		price,
		row.TextOr(colUnit, ""),
		row.TextOr(colStock, ""),
		row.TextOr(colImage, ""),
		row.TextOr(colDescription, ""),
	)
	if err != nil {
		return ingestion.Reject[domain.Product](index, err)
	}
	return ingestion.Accept(index, product, notes...)
}
