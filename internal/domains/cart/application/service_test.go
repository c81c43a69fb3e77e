package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdomain "github.com/Apurer/go-sheet-storefront/internal/domains/catalog/domain"
	"github.com/Apurer/go-sheet-storefront/internal/platform/localstore"
	"github.com/Apurer/go-sheet-storefront/internal/platform/localstore/memory"
	"github.com/Apurer/go-sheet-storefront/internal/shared/money"
)

type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]catalogdomain.Product
}

func newFakeCatalog(products ...catalogdomain.Product) *fakeCatalog {
	c := &fakeCatalog{products: map[string]catalogdomain.Product{}}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (f *fakeCatalog) Lookup(id string) (catalogdomain.Product, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	return p, ok
}

func (f *fakeCatalog) setPrice(id string, price money.Amount) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.products[id]
	p.Price = price
	f.products[id] = p
}

type failingStore struct {
	*memory.Store
	fail bool
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Store.Set(ctx, key, value)
}

func p1() catalogdomain.Product {
	return catalogdomain.Product{ID: "P1", Name: "Rice", Price: money.FromMajor(10), Image: "rice.png"}
}

func TestAddItem_UnknownProductDoesNotMutate(t *testing.T) {
	svc := NewService(newFakeCatalog(p1()), memory.NewStore())

	snap, err := svc.AddItem(context.Background(), "nope")
	require.ErrorIs(t, err, ErrUnknownProduct)
	require.True(t, snap.IsEmpty())
}

func TestAddItem_PriceAtAddTime(t *testing.T) {
	catalog := newFakeCatalog(p1())
	svc := NewService(catalog, memory.NewStore())
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "P1")
	require.NoError(t, err)
	catalog.setPrice("P1", money.FromMajor(15))
	snap, err := svc.AddItem(ctx, "P1")
	require.NoError(t, err)

	require.Len(t, snap.Lines, 1)
	require.Equal(t, 2, snap.Lines[0].Quantity)
	require.Equal(t, money.FromMajor(10), snap.Lines[0].Price)
	require.Equal(t, money.FromMajor(20), snap.Subtotal)
	require.Equal(t, 2, snap.ItemCount)
}

func TestChangeQuantity_ToZeroRemoves(t *testing.T) {
	svc := NewService(newFakeCatalog(p1()), memory.NewStore())
	ctx := context.Background()
	_, _ = svc.AddItem(ctx, "P1")
	_, _ = svc.AddItem(ctx, "P1")

	snap, err := svc.ChangeQuantity(ctx, "P1", -2)
	require.NoError(t, err)
	require.True(t, snap.IsEmpty())

	snap, err = svc.ChangeQuantity(ctx, "ghost", 1)
	require.NoError(t, err)
	require.True(t, snap.IsEmpty())

	snap, err = svc.RemoveItem(ctx, "ghost")
	require.NoError(t, err)
	require.True(t, snap.IsEmpty())
}

func TestMutations_PersistAndRestore(t *testing.T) {
	store := memory.NewStore()
	catalog := newFakeCatalog(p1())
	ctx := context.Background()

	svc := NewService(catalog, store)
	_, err := svc.AddItem(ctx, "P1")
	require.NoError(t, err)
	_, err = svc.ChangeQuantity(ctx, "P1", 2)
	require.NoError(t, err)

	restored := NewService(catalog, store)
	require.NoError(t, restored.Restore(ctx))
	snap := restored.Snapshot()
	require.Len(t, snap.Lines, 1)
	require.Equal(t, 3, snap.Lines[0].Quantity)
	require.Equal(t, money.FromMajor(30), snap.Subtotal)

	require.NoError(t, restored.Clear(ctx))
	again := NewService(catalog, store)
	require.NoError(t, again.Restore(ctx))
	require.True(t, again.Snapshot().IsEmpty())
}

func TestRestore_ReadsLegacyUnversionedCart(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	legacy := `[{"id":"P1","name":"Rice","price":49.9,"image":"rice.png","quantity":2},{"id":7,"name":"Salt","price":"20","image":"","quantity":1}]`
	require.NoError(t, store.Set(ctx, localstore.KeyCart, []byte(legacy)))

	svc := NewService(newFakeCatalog(), store)
	require.NoError(t, svc.Restore(ctx))

	snap := svc.Snapshot()
	require.Len(t, snap.Lines, 2)
	require.Equal(t, money.Amount(4990), snap.Lines[0].Price)
	require.Equal(t, "7", snap.Lines[1].ProductID)
	require.Equal(t, money.Amount(4990*2+2000), snap.Subtotal)
}

func TestRestore_CorruptCartStartsEmpty(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, localstore.KeyCart, []byte(`{"version":1,"data":"oops"}`)))

	svc := NewService(newFakeCatalog(), store)
	require.ErrorIs(t, svc.Restore(ctx), ErrCorruptCart)
	require.True(t, svc.Snapshot().IsEmpty())
}

func TestFailedWriteLeavesCartUnchanged(t *testing.T) {
	store := &failingStore{Store: memory.NewStore()}
	svc := NewService(newFakeCatalog(p1()), store)
	ctx := context.Background()
	_, err := svc.AddItem(ctx, "P1")
	require.NoError(t, err)

	store.fail = true
	snap, err := svc.AddItem(ctx, "P1")
	require.Error(t, err)
	require.Equal(t, 1, snap.ItemCount)
	require.Equal(t, 1, svc.Snapshot().ItemCount)

	require.Error(t, svc.Clear(ctx))
	require.Equal(t, 1, svc.Snapshot().ItemCount)
}

func TestConcurrentAddsDoNotLoseIncrements(t *testing.T) {
	store := memory.NewStore()
	catalog := newFakeCatalog(p1())
	svc := NewService(catalog, store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, "P1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	require.Equal(t, 50, svc.Snapshot().ItemCount)

	restored := NewService(catalog, store)
	require.NoError(t, restored.Restore(ctx))
	require.Equal(t, 50, restored.Snapshot().ItemCount)
}

func TestHold_RejectsItemChangesUntilRelease(t *testing.T) {
	svc := NewService(newFakeCatalog(p1()), memory.NewStore())
	ctx := context.Background()
	_, err := svc.AddItem(ctx, "P1")
	require.NoError(t, err)

	held := svc.Hold()
	require.Equal(t, 1, held.ItemCount)

	_, err = svc.AddItem(ctx, "P1")
	require.ErrorIs(t, err, ErrCartHeld)
	_, err = svc.ChangeQuantity(ctx, "P1", 2)
	require.ErrorIs(t, err, ErrCartHeld)
	snap, err := svc.RemoveItem(ctx, "P1")
	require.ErrorIs(t, err, ErrCartHeld)
	assert.Equal(t, 1, snap.ItemCount)

	require.NoError(t, svc.Clear(ctx))
	svc.Release()
	snap, err = svc.AddItem(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.ItemCount)
}
