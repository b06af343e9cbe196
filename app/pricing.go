package app

import "github.com/shopspring/decimal"

var oneHundred = decimal.NewFromInt(100)

// DiscountedPrice computes the amount charged for a course: the list price
// net of the discount percentage, rounded to two decimal places. The amount
// is fixed on the purchase record at creation and never changes.
func DiscountedPrice(price decimal.Decimal, discount int) decimal.Decimal {
	if discount > 0 {
		cut := price.Mul(decimal.NewFromInt(int64(discount))).Div(oneHundred)
		return price.Sub(cut).Round(2)
	}
	return price.Round(2)
}

// AmountCents converts a rounded amount to the gateway's minor units,
// truncating like the upstream checkout flow does.
func AmountCents(amount decimal.Decimal) int64 {
	return amount.Mul(oneHundred).IntPart()
}
