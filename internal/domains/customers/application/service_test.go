package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-sheet-storefront/internal/domains/customers/domain"
	"github.com/Apurer/go-sheet-storefront/internal/platform/localstore"
	"github.com/Apurer/go-sheet-storefront/internal/platform/localstore/memory"
)

func TestCapture_FirstCaptureRequiresTenCharacters(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewStore())

	_, err := svc.Capture(ctx, "12345")
	require.ErrorIs(t, err, domain.ErrInvalidPhone)
	id, err := svc.Current(ctx)
	require.NoError(t, err)
	require.False(t, id.Known())

	id, err = svc.Capture(ctx, "9998887776")
	require.NoError(t, err)
	require.Equal(t, "9998887776", id.Phone)
}

func TestCapture_DoesNotOverwriteRememberedPhone(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewStore())
	_, err := svc.Capture(ctx, "9998887776")
	require.NoError(t, err)

	id, err := svc.Capture(ctx, "1112223334")
	require.NoError(t, err)
	require.Equal(t, "9998887776", id.Phone)
}

func TestRememberFromCheckout_IsUngated(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewStore())
	_, err := svc.Capture(ctx, "9998887776")
	require.NoError(t, err)

	id, err := svc.RememberFromCheckout(ctx, "+91 12")
	require.NoError(t, err)
	require.Equal(t, "+91 12", id.Phone)

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, "+91 12", current.Phone)
}

func TestCurrent_ReadsLegacyBareValue(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Set(ctx, localstore.KeyCustomerPhone, []byte("9998887776")))

	id, err := NewService(store).Current(ctx)
	require.NoError(t, err)
	require.Equal(t, "9998887776", id.Phone)
}
