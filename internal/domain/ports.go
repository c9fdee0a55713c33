package domain

import (
	"context"
	"time"
)

// ProductCatalog отдаёт снимки товаров по идентификатору.
type ProductCatalog interface {
	// GetProductInfo возвращает товар или ErrProductNotFound.
	GetProductInfo(ctx context.Context, productID string) (ProductInfo, error)
}

// IdempotencyRepository хранит состояние обработки запросов по idempotency-key.
type IdempotencyRepository interface {
	CreateProcessing(ctx context.Context, key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(ctx context.Context, key string) (IdempotencyRecord, error)
	MarkDone(ctx context.Context, key string, responseBody []byte) error
	MarkFailed(ctx context.Context, key string, responseBody []byte) error
	// Release освобождает ключ, который ещё в статусе processing, чтобы повтор
	// запроса выполнил команду заново. Завершённые записи не трогает.
	Release(ctx context.Context, key string) error
	DeleteExpired(ctx context.Context, before time.Time, limit int) (int, error)
}
