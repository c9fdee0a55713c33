package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

// DefaultProducts — стартовый каталог, совпадает с сидом в первой миграции PostgreSQL.
var DefaultProducts = []domain.ProductInfo{
	{ID: "PROD-001", Name: "Beer 350ml", Description: "Regular beer can 350ml"},
	{ID: "PROD-002", Name: "Beer 600ml", Description: "Beer bottle 600ml"},
	{ID: "PROD-003", Name: "Beer 1L", Description: "Beer bottle 1 liter"},
}

// ProductCatalog — in-memory каталог товаров.
type ProductCatalog struct {
	mu       sync.RWMutex
	products map[string]domain.ProductInfo
}

// NewProductCatalog создаёт каталог с переданными товарами.
// Без аргументов каталог заполняется DefaultProducts.
func NewProductCatalog(products ...domain.ProductInfo) *ProductCatalog {
	if len(products) == 0 {
		products = DefaultProducts
	}
	c := &ProductCatalog{products: make(map[string]domain.ProductInfo, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

// GetProductInfo возвращает товар или ErrProductNotFound.
func (c *ProductCatalog) GetProductInfo(_ context.Context, productID string) (domain.ProductInfo, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.ProductInfo{}, domain.ErrProductIDRequired
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	product, ok := c.products[productID]
	if !ok {
		return domain.ProductInfo{}, domain.ErrProductNotFound
	}
	return product, nil
}

// Upsert добавляет или заменяет товар. Уже оформленные продажи хранят свои снимки и не меняются.
func (c *ProductCatalog) Upsert(product domain.ProductInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[product.ID] = product
}

var _ domain.ProductCatalog = (*ProductCatalog)(nil)
