package jsonfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-sheet-storefront/internal/domains/catalog/domain"
	"github.com/Apurer/go-sheet-storefront/internal/shared/ingestion"
	"github.com/Apurer/go-sheet-storefront/internal/shared/money"
)

func TestDecode_TolerantFields(t *testing.T) {
	rows, err := Decode([]byte(`[
		{"id":"P1","name":"Rice","category":"Grains","price":50,"unit":"kg","stock":"In Stock"},
		{"id":101,"name":"Dal","price":"42.5","stock":"Out of Stock","image":null},
		{"id":"P3","name":"Salt","price":"free"},
		{"name":"No id"},
		[1,2]
	]`))
	require.NoError(t, err)
	require.Len(t, rows, 5)

	require.True(t, rows[0].OK())
	require.Equal(t, money.Amount(5000), rows[0].Value.Price)
	require.Equal(t, domain.InStock, rows[0].Value.Stock)

	require.True(t, rows[1].OK())
	require.Equal(t, "101", rows[1].Value.ID)
	require.Equal(t, money.Amount(4250), rows[1].Value.Price)
	require.Equal(t, domain.PlaceholderImage, rows[1].Value.Image)

	require.True(t, rows[2].OK())
	require.Equal(t, money.Amount(0), rows[2].Value.Price)
	require.Len(t, rows[2].Notes, 1)

	require.False(t, rows[3].OK())
	require.False(t, rows[4].OK())
}

func TestDecode_NegativePriceBecomesZero(t *testing.T) {
	rows, err := Decode([]byte(`[{"id":"P1","name":"Rice","price":-50},{"id":"P2","name":"Dal","price":"-1.25"}]`))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		require.True(t, row.OK())
		require.Equal(t, money.Amount(0), row.Value.Price)
		require.Len(t, row.Notes, 1)
		require.Equal(t, "price", row.Notes[0].Field)
		require.Equal(t, "negative, using 0", row.Notes[0].Reason)
	}
}

func TestDecode_RejectsNonArray(t *testing.T) {
	_, err := Decode([]byte(`{"products":[]}`))
	require.ErrorIs(t, err, ingestion.ErrUnparseable)
}

func TestSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/down" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"P1","name":"Rice","price":50}]`))
	}))
	defer srv.Close()

	src, err := NewSource(srv.URL+"/products.json", srv.Client())
	require.NoError(t, err)
	rows, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	down, err := NewSource(srv.URL+"/down", srv.Client())
	require.NoError(t, err)
	_, err = down.Fetch(context.Background())
	require.ErrorIs(t, err, ingestion.ErrTransport)

	_, err = NewSource("", nil)
	require.Error(t, err)
}
