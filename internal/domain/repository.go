package domain

import "context"

// SaleRepository описывает требования к хранилищу продаж.
type SaleRepository interface {
	// Get возвращает продажу со всеми позициями или ErrSaleNotFound.
	Get(ctx context.Context, id string) (*Sale, error)
	// Add сохраняет новую продажу. ErrSaleAlreadyExists, если ID уже занят.
	Add(ctx context.Context, sale *Sale) error
	// Update целиком заменяет сохранённое состояние с учётом optimistic locking.
	Update(ctx context.Context, sale *Sale) error
	// List возвращает страницу продаж в стабильном порядке: saleDate DESC, id DESC.
	List(ctx context.Context, page PageRequest) (SalePage, error)
}
