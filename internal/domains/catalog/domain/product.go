package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/Apurer/go-sheet-storefront/internal/shared/money"
)

const (
	// PlaceholderImage is shown for products without an image URL.
	PlaceholderImage = "https://via.placeholder.com/200"
	// InStockLabel is the only stock text treated as available. Matching is
	// exact and case-sensitive.
	InStockLabel = "In Stock"
	// AllCategories disables category filtering.
	AllCategories = "All"
)

// StockStatus is derived from the free-text stock column.
type StockStatus string

const (
	InStock    StockStatus = "InStock"
	OutOfStock StockStatus = "OutOfStock"
)

var (
	ErrMissingID   = errors.New("product id is empty")
	ErrDuplicateID = errors.New("product id already seen")
)

// DeriveStockStatus classifies stock text. Only the literal "In Stock" is
// InStock; "in stock", "Available" and empty text are OutOfStock.
func DeriveStockStatus(text string) StockStatus {
	if text == InStockLabel {
		return InStock
	}
	return OutOfStock
}

// Product is one sellable catalog item.
type Product struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Category    string       `json:"category"`
	Price       money.Amount `json:"price"`
	Unit        string       `json:"unit"`
	StockText   string       `json:"stock"`
	Stock       StockStatus  `json:"stockStatus"`
	Image       string       `json:"image"`
	Description string       `json:"description"`
}

// NewProduct fills derived fields and defaults. A negative price is stored as 0.
func NewProduct(id, name, category string, price money.Amount, unit, stockText, image, description string) (Product, error) {
	if strings.TrimSpace(id) == "" {
		return Product{}, ErrMissingID
	}
	if price < 0 {
		price = 0
	}
	if image == "" {
		image = PlaceholderImage
	}
	return Product{
		ID:          id,
		Name:        name,
		Category:    category,
		Price:       price,
		Unit:        unit,
		StockText:   stockText,
		Stock:       DeriveStockStatus(stockText),
		Image:       image,
		Description: description,
	}, nil
}

// Available reports whether the product can be added to a cart by the UI.
func (p Product) Available() bool { return p.Stock == InStock }

// Snapshot is an immutable catalog view. Readers hold a pointer to one
// snapshot for as long as they need a consistent list.
type Snapshot struct {
	products   []Product
	index      map[string]int
	categories []string
	loadedAt   time.Time
}

// NewSnapshot indexes products by id. Products are expected to carry unique ids.
func NewSnapshot(products []Product, loadedAt time.Time) *Snapshot {
	s := &Snapshot{
		products: append([]Product(nil), products...),
		index:    make(map[string]int, len(products)),
		loadedAt: loadedAt,
	}
	seen := map[string]struct{}{}
	for i, p := range s.products {
		s.index[p.ID] = i
		if _, ok := seen[p.Category]; !ok {
			seen[p.Category] = struct{}{}
			s.categories = append(s.categories, p.Category)
		}
	}
	return s
}

// EmptySnapshot is the catalog before the first successful load.
func EmptySnapshot() *Snapshot {
	return NewSnapshot(nil, time.Time{})
}

func (s *Snapshot) Len() int { return len(s.products) }

func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Products returns the products in source order.
func (s *Snapshot) Products() []Product {
	return append([]Product(nil), s.products...)
}

// Lookup finds a product by id.
func (s *Snapshot) Lookup(id string) (Product, bool) {
	i, ok := s.index[id]
	if !ok {
		return Product{}, false
	}
	return s.products[i], true
}

// Categories lists distinct categories in first-seen order.
func (s *Snapshot) Categories() []string {
	return append([]string(nil), s.categories...)
}

// Filter keeps products in category (exact match, "" or "All" for any) whose
// name or category contains query, ignoring case.
func (s *Snapshot) Filter(query, category string) []Product {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if category != "" && category != AllCategories && p.Category != category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Category), query) {
			continue
		}
		out = append(out, p)
	}
	return out
}
