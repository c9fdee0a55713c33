package domain

import "github.com/shopspring/decimal"

const (
	// MinItemQuantity — минимальное количество товара в позиции.
	MinItemQuantity = 1
	// MaxItemQuantity — максимальное количество одного товара в продаже.
	MaxItemQuantity = 20
)

var (
	discountNone   = decimal.Zero
	discountMedium = decimal.RequireFromString("0.10")
	discountLarge  = decimal.RequireFromString("0.20")
)

// DiscountFor возвращает скидку по количеству: 1–3 без скидки, 4–9 дают 10%, 10–20 дают 20%.
// Количество вне [1, 20] отсекается раньше, вызывающий код обязан проверить его сам.
func DiscountFor(quantity int) decimal.Decimal {
	switch {
	case quantity >= 10:
		return discountLarge
	case quantity >= 4:
		return discountMedium
	default:
		return discountNone
	}
}

func validQuantity(quantity int) bool {
	return quantity >= MinItemQuantity && quantity <= MaxItemQuantity
}
