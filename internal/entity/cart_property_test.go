package entity

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

// Property: repeated adds of one product sum their quantities as long as the running
// total stays within stock; an add that would overflow is rejected and changes nothing.
func TestCartAddSequenceProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("merged quantity equals the sum of accepted adds", prop.ForAll(
		func(stock int, adds []int) bool {
			c := NewCart("prop")
			p := Product{ID: "p1", Name: "Chew Toy", Price: decimal.NewFromInt(250), CountInStock: stock}

			expected := 0
			for _, q := range adds {
				err := c.AddItem(p, q)
				if expected+q > stock {
					if !IsStockExceeded(err) {
						return false
					}
				} else {
					if err != nil {
						return false
					}
					expected += q
				}
				item, ok := c.Item("p1")
				if expected == 0 {
					if ok {
						return false
					}
					continue
				}
				if !ok || item.Quantity != expected {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 30),
		gen.SliceOf(gen.IntRange(1, 8)),
	))

	properties.TestingRun(t)
}

// Property: Total equals the sum of price*quantity computed in integer minor units.
func TestCartTotalProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("total is the sum of line subtotals", prop.ForAll(
		func(cents []int64) bool {
			c := NewCart("prop")
			var expected int64
			for i, v := range cents {
				qty := i%4 + 1
				p := Product{
					ID:           string(rune('a' + i%26)) + string(rune('a'+i/26)),
					Price:        decimal.New(v, -2),
					CountInStock: 10,
				}
				if err := c.AddItem(p, qty); err != nil {
					return false
				}
				expected += v * int64(qty)
			}
			return c.Total().Equal(decimal.New(expected, -2))
		},
		gen.SliceOfN(20, gen.Int64Range(0, 1_000_000)),
	))

	properties.TestingRun(t)
}
