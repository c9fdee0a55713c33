package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsVersionConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "version conflict error",
			err:  ErrSaleVersionConflict,
			want: true,
		},
		{
			name: "wrapped version conflict error",
			err:  errors.Join(ErrSaleVersionConflict, errors.New("additional context")),
			want: true,
		},
		{
			name: "other conflict",
			err:  ErrSaleAlreadyExists,
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsVersionConflict(tt.err)
			if got != tt.want {
				t.Errorf("IsVersionConflict() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsIdempotencyConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "already exists", err: ErrIdempotencyKeyAlreadyExists, want: true},
		{name: "hash mismatch", err: ErrIdempotencyHashMismatch, want: true},
		{name: "wrapped", err: fmt.Errorf("create: %w", ErrIdempotencyHashMismatch), want: true},
		{name: "other", err: ErrSaleVersionConflict, want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsIdempotencyConflict(tt.err); got != tt.want {
				t.Errorf("IsIdempotencyConflict() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "sale number", err: ErrSaleNumberRequired, want: ErrInvalidArgument},
		{name: "quantity", err: ErrQuantityOutOfRange, want: ErrOutOfRange},
		{name: "merge limit", err: ErrQuantityLimitExceeded, want: ErrOutOfRange},
		{name: "negative price prefers out of range", err: ErrUnitPriceNegative, want: ErrOutOfRange},
		{name: "cancelled", err: ErrSaleCancelled, want: ErrInvalidState},
		{name: "sale not found", err: ErrSaleNotFound, want: ErrNotFound},
		{name: "item not found", err: ErrSaleItemNotFound, want: ErrNotFound},
		{name: "product not found", err: fmt.Errorf("lookup: %w", ErrProductNotFound), want: ErrNotFound},
		{name: "already exists", err: ErrSaleAlreadyExists, want: ErrConflict},
		{name: "version", err: ErrSaleVersionConflict, want: ErrConflict},
		{name: "infrastructure", err: errors.New("connection refused"), want: nil},
		{name: "nil", err: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestUnitPriceNegativeMatchesBothKinds(t *testing.T) {
	if !errors.Is(ErrUnitPriceNegative, ErrOutOfRange) {
		t.Fatal("expected ErrUnitPriceNegative to match ErrOutOfRange")
	}
	if !errors.Is(ErrUnitPriceNegative, ErrInvalidArgument) {
		t.Fatal("expected ErrUnitPriceNegative to match ErrInvalidArgument")
	}
	if ErrUnitPriceNegative.Error() != "unit price must be non-negative" {
		t.Fatalf("unexpected message %q", ErrUnitPriceNegative.Error())
	}
}
