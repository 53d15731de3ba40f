package services

import (
	"github.com/shopspring/decimal"

	"github.com/Bishal-code0731/ecom/models"
)

// Pricing math for carts and orders. All monetary values are decimals
// rounded to 2 fractional digits; floats are never used for money.

// LineTotal is unit price times quantity.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// Subtotal sums the line totals of the given items.
func Subtotal(items []models.OrderItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Total)
	}
	return subtotal.Round(2)
}

// TaxOn applies the configured tax rate to a subtotal.
func TaxOn(subtotal, rate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(rate).Round(2)
}

// OrderTotal is subtotal plus tax plus shipping.
func OrderTotal(subtotal, tax, shipping decimal.Decimal) decimal.Decimal {
	return subtotal.Add(tax).Add(shipping).Round(2)
}
