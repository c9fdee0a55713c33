package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

type productCatalog struct {
	db *sql.DB
}

// NewProductCatalog создаёт каталог товаров поверх таблицы products.
func NewProductCatalog(store *Store) domain.ProductCatalog {
	return &productCatalog{db: store.DB()}
}

func (c *productCatalog) GetProductInfo(ctx context.Context, productID string) (domain.ProductInfo, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.ProductInfo{}, domain.ErrProductIDRequired
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var product domain.ProductInfo
	err := c.db.QueryRowContext(ctx,
		`SELECT id, name, description FROM products WHERE id = $1`, productID,
	).Scan(&product.ID, &product.Name, &product.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ProductInfo{}, domain.ErrProductNotFound
		}
		return domain.ProductInfo{}, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

var _ domain.ProductCatalog = (*productCatalog)(nil)
