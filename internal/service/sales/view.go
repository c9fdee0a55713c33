package sales

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

// SaleItemView — плоское представление позиции для ответов API.
type SaleItemView struct {
	ProductID          string          `json:"product_id"`
	ProductName        string          `json:"product_name"`
	ProductDescription string          `json:"product_description,omitempty"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	Discount           decimal.Decimal `json:"discount"`
	LineTotal          decimal.Decimal `json:"line_total"`
}

// SaleView — плоское представление продажи для ответов API.
type SaleView struct {
	ID           string          `json:"id"`
	SaleNumber   string          `json:"sale_number"`
	SaleDate     time.Time       `json:"sale_date"`
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	BranchID     string          `json:"branch_id"`
	BranchName   string          `json:"branch_name"`
	Items        []SaleItemView  `json:"items"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Status       string          `json:"status"`
	IsCancelled  bool            `json:"is_cancelled"`
	Version      int64           `json:"version"`
}

// SaleListView — страница продаж с метаданными пагинации.
type SaleListView struct {
	Items       []SaleView `json:"items"`
	Page        int        `json:"page"`
	PageSize    int        `json:"page_size"`
	TotalCount  int        `json:"total_count"`
	TotalPages  int        `json:"total_pages"`
	HasNext     bool       `json:"has_next"`
	HasPrevious bool       `json:"has_previous"`
}

// NewSaleView строит представление из агрегата.
func NewSaleView(sale *domain.Sale) SaleView {
	items := sale.Items()
	views := make([]SaleItemView, 0, len(items))
	for _, item := range items {
		product := item.Product()
		views = append(views, SaleItemView{
			ProductID:          product.ID,
			ProductName:        product.Name,
			ProductDescription: product.Description,
			Quantity:           item.Quantity(),
			UnitPrice:          item.UnitPrice(),
			Discount:           item.Discount(),
			LineTotal:          item.LineTotal(),
		})
	}

	customer := sale.Customer()
	branch := sale.Branch()
	return SaleView{
		ID:           sale.ID(),
		SaleNumber:   sale.Number(),
		SaleDate:     sale.Date(),
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		BranchID:     branch.ID,
		BranchName:   branch.Name,
		Items:        views,
		TotalAmount:  sale.TotalAmount(),
		Status:       string(sale.Status()),
		IsCancelled:  sale.IsCancelled(),
		Version:      sale.Version(),
	}
}

func newSaleListView(page domain.SalePage) SaleListView {
	items := make([]SaleView, 0, len(page.Items))
	for _, sale := range page.Items {
		items = append(items, NewSaleView(sale))
	}
	return SaleListView{
		Items:       items,
		Page:        page.Number,
		PageSize:    page.Size,
		TotalCount:  page.TotalCount,
		TotalPages:  page.TotalPages(),
		HasNext:     page.HasNext(),
		HasPrevious: page.HasPrevious(),
	}
}
