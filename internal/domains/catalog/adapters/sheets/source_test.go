package sheets

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-sheet-storefront/internal/domains/catalog/domain"
	platformsheets "github.com/Apurer/go-sheet-storefront/internal/platform/sheets"
	"github.com/Apurer/go-sheet-storefront/internal/shared/ingestion"
	"github.com/Apurer/go-sheet-storefront/internal/shared/money"
)

const productsPayload = `/*O_o*/
google.visualization.Query.setResponse({"status":"ok","table":{"cols":[],"rows":[
{"c":[{"v":"P1"},{"v":"Basmati Rice"},{"v":"Grains"},{"v":120.5},{"v":"kg"},{"v":"In Stock"},{"v":"https://img/rice.png"},{"v":"Aged"}]},
{"c":[{"v":"P2"},{"v":"Toor Dal"},{"v":"Pulses"},{"v":"call us"},{"v":"kg"},{"v":"in stock"},null,null]},
{"c":[null,{"v":"Orphan"}]},
{"c":[{"v":"P4"}]}
]}});`

type fakeFetcher struct {
	body  string
	err   error
	sheet string
}

func (f *fakeFetcher) FetchTable(_ context.Context, sheet string) (*platformsheets.Table, error) {
	f.sheet = sheet
	if f.err != nil {
		return nil, f.err
	}
	return platformsheets.ParseResponse([]byte(f.body))
}

func TestSource_MapsPositionalColumns(t *testing.T) {
	fetcher := &fakeFetcher{body: productsPayload}
	src := NewSource(fetcher, "")

	rows, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, DefaultSheet, fetcher.sheet)
	require.Len(t, rows, 4)

	rice := rows[0]
	require.True(t, rice.OK())
	require.Equal(t, domain.Product{
		ID:          "P1",
		Name:        "Basmati Rice",
		Category:    "Grains",
		Price:       money.Amount(12050),
		Unit:        "kg",
		StockText:   "In Stock",
		Stock:       domain.InStock,
		Image:       "https://img/rice.png",
		Description: "Aged",
	}, rice.Value)
	require.Empty(t, rice.Notes)

	dal := rows[1]
	require.True(t, dal.OK())
	require.Equal(t, money.Amount(0), dal.Value.Price)
	require.Equal(t, domain.OutOfStock, dal.Value.Stock)
	require.Equal(t, domain.PlaceholderImage, dal.Value.Image)
	require.Len(t, dal.Notes, 1)
	require.Equal(t, "price", dal.Notes[0].Field)

	require.False(t, rows[2].OK())

	sparse := rows[3]
	require.True(t, sparse.OK())
	require.Equal(t, "", sparse.Value.Name)
	require.Len(t, sparse.Notes, 2)
}

func TestSource_PropagatesFetchErrors(t *testing.T) {
	src := NewSource(&fakeFetcher{err: fmt.Errorf("%w: boom", ingestion.ErrTransport)}, "Catalog")

	_, err := src.Fetch(context.Background())
	require.ErrorIs(t, err, ingestion.ErrTransport)
	require.Equal(t, "sheets:Catalog", src.Name())
}

func TestSource_NegativePriceBecomesZero(t *testing.T) {
	src := NewSource(&fakeFetcher{body: `google.visualization.Query.setResponse({"status":"ok","table":{"cols":[],"rows":[
{"c":[{"v":"P1"},{"v":"Rice"},{"v":"Grains"},{"v":-50}]}
]}});`}, "")

	rows, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.True(t, rows[0].OK())
	require.Equal(t, money.Amount(0), rows[0].Value.Price)
	require.Len(t, rows[0].Notes, 1)
	require.Equal(t, ingestion.RowIssue{Row: 0, Field: "price", Reason: "negative, using 0"}, rows[0].Notes[0])
}
