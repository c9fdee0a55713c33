package domain

import "github.com/shopspring/decimal"

// SaleItem — позиция продажи. Скидка всегда вычисляется из количества.
type SaleItem struct {
	product   ProductInfo
	quantity  int
	unitPrice decimal.Decimal
}

// NewSaleItem создаёт позицию и проверяет количество и цену.
func NewSaleItem(product ProductInfo, quantity int, unitPrice decimal.Decimal) (SaleItem, error) {
	if !validQuantity(quantity) {
		return SaleItem{}, ErrQuantityOutOfRange
	}
	if unitPrice.IsNegative() {
		return SaleItem{}, ErrUnitPriceNegative
	}
	return SaleItem{
		product:   product,
		quantity:  quantity,
		unitPrice: unitPrice,
	}, nil
}

// Product возвращает снимок товара.
func (i SaleItem) Product() ProductInfo { return i.product }

// Quantity возвращает количество единиц.
func (i SaleItem) Quantity() int { return i.quantity }

// UnitPrice возвращает цену за единицу.
func (i SaleItem) UnitPrice() decimal.Decimal { return i.unitPrice }

// Discount возвращает долю скидки (0, 0.10 или 0.20).
func (i SaleItem) Discount() decimal.Decimal { return DiscountFor(i.quantity) }

// LineTotal = quantity * unitPrice * (1 - discount).
func (i SaleItem) LineTotal() decimal.Decimal {
	gross := i.unitPrice.Mul(decimal.NewFromInt(int64(i.quantity)))
	return gross.Mul(decimal.NewFromInt(1).Sub(i.Discount()))
}

func (i *SaleItem) updateQuantity(quantity int) error {
	if !validQuantity(quantity) {
		return ErrQuantityOutOfRange
	}
	i.quantity = quantity
	return nil
}
