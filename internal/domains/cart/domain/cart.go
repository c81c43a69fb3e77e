package domain

import (
	"github.com/Apurer/go-sheet-storefront/internal/shared/money"
)

// Line is one product in the cart. Price is captured when the product is
// first added and is not refreshed from later catalog loads.
type Line struct {
	ProductID string
	Name      string
	Price     money.Amount
	Image     string
	Quantity  int
}

// Total is price times quantity.
func (l Line) Total() money.Amount { return l.Price.Mul(l.Quantity) }

// Cart is an ordered set of lines keyed by product id. Every line has a
// quantity of at least one and no product appears twice.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart { return &Cart{} }

// FromLines rebuilds a cart from stored lines, dropping lines without a
// product id or with a quantity below one and merging repeated products
// into the first occurrence.
func FromLines(lines []Line) *Cart {
	c := &Cart{}
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity < 1 {
			continue
		}
		if i := c.indexOf(l.ProductID); i >= 0 {
			c.lines[i].Quantity += l.Quantity
			continue
		}
		c.lines = append(c.lines, l)
	}
	return c
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Clone returns an independent copy.
func (c *Cart) Clone() *Cart {
	return &Cart{lines: append([]Line(nil), c.lines...)}
}

// Add increments the line for item.ProductID, keeping its stored price, or
// appends item with quantity one.
func (c *Cart) Add(item Line) {
	if i := c.indexOf(item.ProductID); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	item.Quantity = 1
	c.lines = append(c.lines, item)
}

// ChangeQuantity applies delta to the line for productID. A resulting
// quantity of zero or less removes the line. It reports false when the
// product is not in the cart.
func (c *Cart) ChangeQuantity(productID string, delta int) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.lines[i].Quantity += delta
	if c.lines[i].Quantity <= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
	return true
}

// Remove deletes the line for productID and reports whether one existed.
func (c *Cart) Remove(productID string) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return true
}

func (c *Cart) Clear() { c.lines = nil }

func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Line returns the line for productID.
func (c *Cart) Line(productID string) (Line, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	return append([]Line(nil), c.lines...)
}

// ItemCount is the sum of line quantities, shown as the cart badge.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Subtotal is the sum of price times quantity over all lines.
func (c *Cart) Subtotal() money.Amount {
	var total money.Amount
	for _, l := range c.lines {
		total += l.Total()
	}
	return total
}

// Snapshot is a read-only view of a cart at one point in time.
type Snapshot struct {
	Lines     []Line
	ItemCount int
	Subtotal  money.Amount
}

func (c *Cart) Snapshot() Snapshot {
	return Snapshot{Lines: c.Lines(), ItemCount: c.ItemCount(), Subtotal: c.Subtotal()}
}

// IsEmpty reports whether the snapshot has no lines.
func (s Snapshot) IsEmpty() bool { return len(s.Lines) == 0 }
