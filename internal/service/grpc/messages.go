package grpcsvc

import (
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/sales/internal/service/sales"
)

// SaleItemInput описывает позицию в запросе.
type SaleItemInput struct {
	ProductID string          `json:"product_id"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type CreateSaleRequest struct {
	SaleNumber   string          `json:"sale_number"`
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	BranchID     string          `json:"branch_id"`
	BranchName   string          `json:"branch_name"`
	Items        []SaleItemInput `json:"items"`
}

type AddSaleItemRequest struct {
	SaleID string        `json:"sale_id"`
	Item   SaleItemInput `json:"item"`
}

type ModifySaleItemQuantityRequest struct {
	SaleID    string `json:"sale_id"`
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

type RemoveSaleItemRequest struct {
	SaleID    string `json:"sale_id"`
	ProductID string `json:"product_id"`
}

type CancelSaleRequest struct {
	SaleID string `json:"sale_id"`
}

type GetSaleRequest struct {
	SaleID string `json:"sale_id"`
}

// Нулевые Page и PageSize означают значения по умолчанию.
type ListSalesRequest struct {
	Page     int32 `json:"page"`
	PageSize int32 `json:"page_size"`
}

type SaleResponse struct {
	Sale *sales.SaleView `json:"sale"`
}

type ListSalesResponse struct {
	Page *sales.SaleListView `json:"page"`
}

func (i SaleItemInput) toInput() sales.ItemInput {
	return sales.ItemInput{
		ProductID: i.ProductID,
		Quantity:  int(i.Quantity),
		UnitPrice: i.UnitPrice,
	}
}
