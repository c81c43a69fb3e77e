package domain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-sheet-storefront/internal/shared/money"
)

func item(id string, price float64) Line {
	return Line{ProductID: id, Name: "Product " + id, Price: money.FromMajor(price)}
}

func TestCart_AddKeepsFirstPrice(t *testing.T) {
	c := New()
	c.Add(item("P1", 10))
	c.Add(item("P1", 15))

	line, ok := c.Line("P1")
	require.True(t, ok)
	require.Equal(t, 2, line.Quantity)
	require.Equal(t, money.FromMajor(10), line.Price)
	require.Equal(t, money.FromMajor(20), c.Subtotal())
}

func TestCart_ChangeQuantityToZeroRemovesLine(t *testing.T) {
	c := New()
	c.Add(item("P1", 10))
	c.Add(item("P1", 10))
	c.Add(item("P2", 5))

	require.True(t, c.ChangeQuantity("P1", -2))
	_, ok := c.Line("P1")
	require.False(t, ok)
	require.Equal(t, 1, c.ItemCount())

	require.False(t, c.ChangeQuantity("missing", 3))
	require.False(t, c.Remove("missing"))
}

func TestCart_CloneIsIndependent(t *testing.T) {
	c := New()
	c.Add(item("P1", 10))
	clone := c.Clone()
	clone.Add(item("P1", 10))
	clone.Add(item("P2", 10))

	require.Equal(t, 1, c.ItemCount())
	require.Equal(t, 3, clone.ItemCount())
}

func TestFromLines_Normalises(t *testing.T) {
	c := FromLines([]Line{
		{ProductID: "P1", Price: 100, Quantity: 2},
		{ProductID: "P2", Price: 100, Quantity: 0},
		{ProductID: "", Price: 100, Quantity: 1},
		{ProductID: "P1", Price: 999, Quantity: 1},
	})
	lines := c.Lines()
	require.Len(t, lines, 1)
	require.Equal(t, 3, lines[0].Quantity)
	require.Equal(t, money.Amount(100), lines[0].Price)
}

func TestCart_RandomSequencesKeepInvariants(t *testing.T) {
	ids := []string{"A", "B", "C", "D"}
	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 200; run++ {
		c := New()
		for step := 0; step < 50; step++ {
			id := ids[rng.Intn(len(ids))]
			switch rng.Intn(3) {
			case 0:
				c.Add(item(id, float64(rng.Intn(100))))
			case 1:
				c.ChangeQuantity(id, rng.Intn(7)-4)
			case 2:
				c.Remove(id)
			}

			sum := 0
			seen := map[string]bool{}
			for _, l := range c.Lines() {
				require.GreaterOrEqual(t, l.Quantity, 1)
				require.False(t, seen[l.ProductID], "duplicate line for %s", l.ProductID)
				seen[l.ProductID] = true
				sum += l.Quantity
			}
			require.Equal(t, sum, c.ItemCount())
		}
	}
}
