package storefrontserver_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	storefrontserver "github.com/Apurer/go-sheet-storefront/go"
	catalogdomain "github.com/Apurer/go-sheet-storefront/internal/domains/catalog/domain"
	apierrors "github.com/Apurer/go-sheet-storefront/internal/shared/errors"
	"github.com/Apurer/go-sheet-storefront/internal/shared/ingestion"
)

func TestListProducts_FiltersByQueryAndCategory(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/catalog/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[storefrontserver.ProductList](t, rec)
	require.Equal(t, 3, all.Total)

	rec = f.do(t, http.MethodGet, "/v1/catalog/products?q=sa&category=Spices", nil)
	spices := decode[storefrontserver.ProductList](t, rec)
	require.Len(t, spices.Products, 2)
	require.Equal(t, "p2", spices.Products[0].ID)
	require.Equal(t, catalogdomain.OutOfStock, spices.Products[1].Stock)
}

func TestListCategories_FirstSeenOrder(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/catalog/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"Grains", "Spices"}, decode[storefrontserver.CategoryList](t, rec).Categories)
}

func TestRefreshCatalog_ReportsRejectedRows(t *testing.T) {
	f := newFixture(t)
	f.catalog.SetProducts(product(t, "p1", "Rice", "Grains", 100, "In Stock"), catalogdomain.Product{Name: "nameless"})

	rec := f.do(t, http.MethodPost, "/v1/catalog/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[ingestion.Report](t, rec)
	require.Equal(t, 1, report.Accepted)
	require.Len(t, report.Issues, 1)
	require.True(t, report.Issues[0].Dropped)
}

func TestRefreshCatalog_FailureKeepsPreviousCatalog(t *testing.T) {
	f := newFixture(t)
	f.catalog.FailWith(fmt.Errorf("%w: bad envelope", ingestion.ErrUnparseable))

	rec := f.do(t, http.MethodPost, "/v1/catalog/refresh", nil)
	requireProblem(t, rec, http.StatusBadGateway, apierrors.TypeUpstreamMalformed)

	f.catalog.FailWith(errors.New("connection reset"))
	rec = f.do(t, http.MethodPost, "/v1/catalog/refresh", nil)
	requireProblem(t, rec, http.StatusBadGateway, apierrors.TypeUpstream)

	rec = f.do(t, http.MethodGet, "/v1/catalog/products", nil)
	require.Equal(t, 3, decode[storefrontserver.ProductList](t, rec).Total)
}
