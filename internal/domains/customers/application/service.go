package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Apurer/go-sheet-storefront/internal/domains/customers/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/customers/ports"
	"github.com/Apurer/go-sheet-storefront/internal/platform/localstore"
)

// Service persists the identity under localstore.KeyCustomerPhone.
type Service struct {
	store localstore.Store
}

func NewService(store localstore.Store) *Service {
	return &Service{store: store}
}

func (s *Service) Current(ctx context.Context) (domain.Identity, error) {
	raw, err := s.store.Get(ctx, localstore.KeyCustomerPhone)
	if errors.Is(err, localstore.ErrNotFound) {
		return domain.Identity{}, nil
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("load identity: %w", err)
	}
	env := localstore.Decode(raw)
	if env.Version == 0 {
		return domain.Identity{Phone: string(env.Data)}, nil
	}
	var phone string
	if err := json.Unmarshal(env.Data, &phone); err != nil {
		return domain.Identity{}, fmt.Errorf("decode identity: %w", err)
	}
	return domain.Identity{Phone: phone}, nil
}

// Capture is a no-op returning the remembered identity when one exists.
func (s *Service) Capture(ctx context.Context, phone string) (domain.Identity, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return domain.Identity{}, err
	}
	if current.Known() {
		return current, nil
	}
	if err := domain.ValidateFirstCapture(phone); err != nil {
		return current, err
	}
	return s.save(ctx, phone)
}

func (s *Service) RememberFromCheckout(ctx context.Context, phone string) (domain.Identity, error) {
	return s.save(ctx, phone)
}

func (s *Service) save(ctx context.Context, phone string) (domain.Identity, error) {
	raw, err := localstore.Encode(phone)
	if err != nil {
		return domain.Identity{}, err
	}
	if err := s.store.Set(ctx, localstore.KeyCustomerPhone, raw); err != nil {
		return domain.Identity{}, fmt.Errorf("persist identity: %w", err)
	}
	return domain.Identity{Phone: phone}, nil
}

var _ ports.Service = (*Service)(nil)
