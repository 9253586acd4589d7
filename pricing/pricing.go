// Package pricing computes order price breakdowns. Order creation and the
// payment bridge both go through it so the fee and tax rate live in one place.
package pricing

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Line struct {
	Price    float64
	Quantity int
}

type Breakdown struct {
	ItemsPrice    float64
	ShippingPrice float64
	TaxPrice      float64
	TotalPrice    float64
}

type Calculator struct {
	shippingFee decimal.Decimal
	taxRate     decimal.Decimal
}

func NewCalculator(shippingFee, taxRate float64) *Calculator {
	return &Calculator{
		shippingFee: decimal.NewFromFloat(shippingFee),
		taxRate:     decimal.NewFromFloat(taxRate),
	}
}

// Quote prices lines with the flat shipping fee and the tax rate applied to
// the items subtotal. Every component is rounded to cents before summing.
func (c *Calculator) Quote(lines []Line) Breakdown {
	items := decimal.Zero
	for _, l := range lines {
		items = items.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	items = items.Round(2)
	shipping := c.shippingFee.Round(2)
	tax := items.Mul(c.taxRate).Round(2)
	total := items.Add(shipping).Add(tax)

	return Breakdown{
		ItemsPrice:    items.InexactFloat64(),
		ShippingPrice: shipping.InexactFloat64(),
		TaxPrice:      tax.InexactFloat64(),
		TotalPrice:    total.InexactFloat64(),
	}
}

// MinorUnits converts a major-unit amount to the processor's smallest unit,
// rounding half away from zero.
func MinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(hundred).Round(0).IntPart()
}
