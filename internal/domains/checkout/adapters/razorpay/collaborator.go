// Package razorpay prepares Razorpay Checkout options for the browser and
// holds the one payment request a session can have open.
package razorpay

import (
	"context"
	"errors"
	"sync"

	"github.com/Apurer/go-sheet-storefront/internal/domains/checkout/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/checkout/ports"
)

// DefaultThemeColor is the storefront accent colour.
const DefaultThemeColor = "#667eea"

var _ ports.PaymentCollaborator = (*Collaborator)(nil)

// Options is the object passed to `new Razorpay(options)`. The browser adds
// the handler and dismiss callbacks, which report back with Notes.Token.
type Options struct {
	Key         string            `json:"key"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Prefill     Prefill           `json:"prefill"`
	Theme       Theme             `json:"theme"`
	Notes       map[string]string `json:"notes"`
}

type Prefill struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

type Theme struct {
	Color string `json:"color"`
}

// Collaborator implements ports.PaymentCollaborator for Razorpay Checkout.
type Collaborator struct {
	key        string
	themeColor string

	mu      sync.Mutex
	pending *Options
}

type Option func(*Collaborator)

func WithThemeColor(color string) Option {
	return func(c *Collaborator) {
		if color != "" {
			c.themeColor = color
		}
	}
}

func New(key string, opts ...Option) *Collaborator {
	c := &Collaborator{key: key, themeColor: DefaultThemeColor}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Open records the options for the presentation layer to pick up. It
// replaces any earlier request.
func (c *Collaborator) Open(_ context.Context, request domain.PaymentRequest) error {
	if c.key == "" {
		return errors.New("razorpay key not configured")
	}
	if request.AmountMinor <= 0 {
		return errors.New("razorpay amount must be positive")
	}
	opts := Options{
		Key:         c.key,
		Amount:      request.AmountMinor,
		Currency:    request.Currency,
		Name:        request.MerchantName,
		Description: request.Description,
		Prefill:     Prefill{Name: request.Prefill.Name, Contact: request.Prefill.Contact},
		Theme:       Theme{Color: c.themeColor},
		Notes:       map[string]string{"token": request.Token},
	}
	c.mu.Lock()
	c.pending = &opts
	c.mu.Unlock()
	return nil
}

// Close drops the pending request when it carries token.
func (c *Collaborator) Close(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil && c.pending.Notes["token"] == token {
		c.pending = nil
	}
}

// Pending returns the open request, if any.
func (c *Collaborator) Pending() (Options, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return Options{}, false
	}
	opts := *c.pending
	opts.Notes = map[string]string{"token": c.pending.Notes["token"]}
	return opts, true
}
