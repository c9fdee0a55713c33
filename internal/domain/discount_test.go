package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDiscountForTiers(t *testing.T) {
	tests := []struct {
		from, to int
		want     string
	}{
		{from: 1, to: 3, want: "0"},
		{from: 4, to: 9, want: "0.1"},
		{from: 10, to: 20, want: "0.2"},
	}

	for _, tc := range tests {
		want := decimal.RequireFromString(tc.want)
		for q := tc.from; q <= tc.to; q++ {
			if got := DiscountFor(q); !got.Equal(want) {
				t.Fatalf("DiscountFor(%d) = %s, want %s", q, got, want)
			}
		}
	}
}

func TestNewSaleItem_QuantityOutOfRange(t *testing.T) {
	for _, q := range []int{-5, -1, 0, 21, 100} {
		_, err := NewSaleItem(ProductInfo{ID: "P1"}, q, decimal.NewFromInt(1))
		if !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("quantity %d: expected ErrOutOfRange, got %v", q, err)
		}
	}
}

func TestNewSaleItem_NegativePrice(t *testing.T) {
	_, err := NewSaleItem(ProductInfo{ID: "P1"}, 1, decimal.RequireFromString("-0.01"))
	if !errors.Is(err, ErrUnitPriceNegative) {
		t.Fatalf("expected ErrUnitPriceNegative, got %v", err)
	}
}

func TestSaleItem_LineTotal(t *testing.T) {
	tests := []struct {
		quantity int
		price    string
		want     string
	}{
		{quantity: 3, price: "10.00", want: "30"},
		{quantity: 4, price: "10.00", want: "36"},
		{quantity: 10, price: "2.50", want: "20"},
		{quantity: 20, price: "0", want: "0"},
	}

	for _, tc := range tests {
		item, err := NewSaleItem(ProductInfo{ID: "P1"}, tc.quantity, decimal.RequireFromString(tc.price))
		if err != nil {
			t.Fatalf("NewSaleItem: %v", err)
		}
		if got := item.LineTotal(); !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("qty=%d price=%s: line total %s, want %s", tc.quantity, tc.price, got, tc.want)
		}
	}
}

func TestSaleItem_UpdateQuantityRecomputesDiscount(t *testing.T) {
	item, err := NewSaleItem(ProductInfo{ID: "P1"}, 2, decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("NewSaleItem: %v", err)
	}
	if err := item.updateQuantity(12); err != nil {
		t.Fatalf("updateQuantity: %v", err)
	}
	if !item.Discount().Equal(decimal.RequireFromString("0.20")) {
		t.Fatalf("expected 20%% discount, got %s", item.Discount())
	}
	if err := item.updateQuantity(0); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if item.Quantity() != 12 {
		t.Fatalf("failed update must keep quantity, got %d", item.Quantity())
	}
}
