package storefront

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	catalogmemory "github.com/Apurer/go-sheet-storefront/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/go-sheet-storefront/internal/domains/catalog/domain"
	checkoutdomain "github.com/Apurer/go-sheet-storefront/internal/domains/checkout/domain"
	ordersmemory "github.com/Apurer/go-sheet-storefront/internal/domains/orders/adapters/memory"
	"github.com/Apurer/go-sheet-storefront/internal/platform/localstore"
	localmemory "github.com/Apurer/go-sheet-storefront/internal/platform/localstore/memory"
	"github.com/Apurer/go-sheet-storefront/internal/shared/money"
)

func deps(t *testing.T, store localstore.Store) Dependencies {
	t.Helper()
	rice, err := catalogdomain.NewProduct("p1", "Rice", "Grains", money.FromMajor(100), "kg", "In Stock", "", "")
	require.NoError(t, err)
	orders := ordersmemory.NewStore()
	return Dependencies{
		CatalogSource: catalogmemory.NewSource(rice),
		LocalStore:    store,
		OrderWriter:   orders,
		OrderHistory:  orders,
	}
}

func TestNewSession_RequiresStores(t *testing.T) {
	ctx := context.Background()

	_, err := NewSession(ctx, Dependencies{})
	require.ErrorContains(t, err, "local store is required")

	_, err = NewSession(ctx, Dependencies{LocalStore: localmemory.NewStore()})
	require.ErrorContains(t, err, "order store is required")
}

func TestNewSession_RestoresPersistedCart(t *testing.T) {
	ctx := context.Background()
	store := localmemory.NewStore()

	first, err := NewSession(ctx, deps(t, store))
	require.NoError(t, err)
	_, err = first.Catalog.Load(ctx)
	require.NoError(t, err)
	_, err = first.Cart.AddItem(ctx, "p1")
	require.NoError(t, err)

	second, err := NewSession(ctx, deps(t, store))
	require.NoError(t, err)
	snap := second.Cart.Snapshot()
	require.Equal(t, 1, snap.ItemCount)
	require.Equal(t, money.FromMajor(100), snap.Subtotal)
}

func TestNewSession_DiscardsCorruptCart(t *testing.T) {
	ctx := context.Background()
	store := localmemory.NewStore()
	require.NoError(t, store.Set(ctx, localstore.KeyCart, []byte("{not json")))

	session, err := NewSession(ctx, deps(t, store))
	require.NoError(t, err)
	require.True(t, session.Cart.Snapshot().IsEmpty())
	require.Equal(t, checkoutdomain.StateIdle, session.Checkout.Snapshot().State)
}
