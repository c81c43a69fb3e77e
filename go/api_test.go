package storefrontserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	storefrontserver "github.com/Apurer/go-sheet-storefront/go"
	"github.com/Apurer/go-sheet-storefront/internal/app/storefront"
	catalogmemory "github.com/Apurer/go-sheet-storefront/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/go-sheet-storefront/internal/domains/catalog/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/checkout/adapters/razorpay"
	notificationsapp "github.com/Apurer/go-sheet-storefront/internal/domains/notifications/application"
	ordersmemory "github.com/Apurer/go-sheet-storefront/internal/domains/orders/adapters/memory"
	localmemory "github.com/Apurer/go-sheet-storefront/internal/platform/localstore/memory"
	apierrors "github.com/Apurer/go-sheet-storefront/internal/shared/errors"
	"github.com/Apurer/go-sheet-storefront/internal/shared/money"
)

type fixture struct {
	router  *gin.Engine
	catalog *catalogmemory.Source
	orders  *ordersmemory.Store
}

func product(t *testing.T, id, name, category string, price float64, stock string) catalogdomain.Product {
	t.Helper()
	p, err := catalogdomain.NewProduct(id, name, category, money.FromMajor(price), "kg", stock, "", "")
	require.NoError(t, err)
	return p
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	catalog := catalogmemory.NewSource(
		product(t, "p1", "Rice", "Grains", 100, "In Stock"),
		product(t, "p2", "Salt", "Spices", 20, "In Stock"),
		product(t, "p3", "Saffron", "Spices", 500, "in stock"),
	)
	orders := ordersmemory.NewStore()
	session, err := storefront.NewSession(ctx, storefront.Dependencies{
		CatalogSource: catalog,
		LocalStore:    localmemory.NewStore(),
		OrderWriter:   orders,
		OrderHistory:  orders,
		Composer:      notificationsapp.NewComposer("", "919999999999"),
		Payments:      razorpay.New("rzp_test_key"),
		StoreName:     "Mamta Traders",
	})
	require.NoError(t, err)
	_, err = session.Catalog.Load(ctx)
	require.NoError(t, err)

	return &fixture{
		router:  storefrontserver.NewRouter(session.Handlers()),
		catalog: catalog,
		orders:  orders,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func requireProblem(t *testing.T, rec *httptest.ResponseRecorder, status int, problemType string) apierrors.ProblemDetail {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	require.Equal(t, apierrors.ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	problem := decode[apierrors.ProblemDetail](t, rec)
	require.Equal(t, problemType, problem.Type)
	return problem
}

func TestRouter_AssignsAndEchoesRequestIDs(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/cart", nil)
	require.NotEmpty(t, rec.Header().Get(storefrontserver.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/v1/cart", nil)
	req.Header.Set(storefrontserver.RequestIDHeader, "req-42")
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, "req-42", rec.Header().Get(storefrontserver.RequestIDHeader))
}

func TestRouter_AnswersCORSPreflight(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/v1/cart/items/p1", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
