package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales/internal/domain"
	"github.com/vladislavdragonenkov/sales/internal/metrics"
)

const (
	keyPrefix   = "sales:product:"
	defaultTTL  = 5 * time.Minute
	dialTimeout = 2 * time.Second
	opTimeout   = 500 * time.Millisecond
)

// Исходы обращения к кэшу для метрик.
const (
	OutcomeHit   = "hit"
	OutcomeMiss  = "miss"
	OutcomeError = "error"
)

// Dial подключается к Redis и проверяет соединение.
func Dial(ctx context.Context, addr string) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: dialTimeout,
		ReadTimeout: opTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// ProductCatalog — read-through кэш поверх другого каталога.
// Ошибки Redis не ломают запрос: товар читается из исходного каталога.
type ProductCatalog struct {
	client  goredis.Cmdable
	next    domain.ProductCatalog
	ttl     time.Duration
	logger  *log.Entry
	metrics *metrics.SalesMetrics
}

// NewProductCatalog оборачивает next кэшем. ttl <= 0 заменяется на 5 минут.
func NewProductCatalog(client goredis.Cmdable, next domain.ProductCatalog, ttl time.Duration, logger *log.Entry, m *metrics.SalesMetrics) *ProductCatalog {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = log.WithField("component", "product-cache")
	}
	return &ProductCatalog{
		client:  client,
		next:    next,
		ttl:     ttl,
		logger:  logger,
		metrics: m,
	}
}

// GetProductInfo отдаёт товар из кэша, а при промахе читает исходный каталог и кэширует ответ.
// Отсутствующие товары не кэшируются.
func (c *ProductCatalog) GetProductInfo(ctx context.Context, productID string) (domain.ProductInfo, error) {
	if productID == "" {
		return c.next.GetProductInfo(ctx, productID)
	}

	key := keyPrefix + productID
	if product, ok := c.lookup(ctx, key); ok {
		return product, nil
	}

	product, err := c.next.GetProductInfo(ctx, productID)
	if err != nil {
		return domain.ProductInfo{}, err
	}
	c.store(ctx, key, product)
	return product, nil
}

func (c *ProductCatalog) lookup(ctx context.Context, key string) (domain.ProductInfo, bool) {
	readCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	raw, err := c.client.Get(readCtx, key).Bytes()
	switch {
	case errors.Is(err, goredis.Nil):
		c.metrics.RecordProductCache(OutcomeMiss)
		return domain.ProductInfo{}, false
	case err != nil:
		c.metrics.RecordProductCache(OutcomeError)
		c.logger.WithError(err).WithField("key", key).Warn("product cache read failed")
		return domain.ProductInfo{}, false
	}

	var product domain.ProductInfo
	if err := json.Unmarshal(raw, &product); err != nil {
		c.metrics.RecordProductCache(OutcomeError)
		c.logger.WithError(err).WithField("key", key).Warn("product cache entry is corrupted")
		return domain.ProductInfo{}, false
	}
	c.metrics.RecordProductCache(OutcomeHit)
	return product, true
}

func (c *ProductCatalog) store(ctx context.Context, key string, product domain.ProductInfo) {
	raw, err := json.Marshal(product)
	if err != nil {
		return
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), opTimeout)
	defer cancel()
	if err := c.client.Set(writeCtx, key, raw, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("product cache write failed")
	}
}

var _ domain.ProductCatalog = (*ProductCatalog)(nil)
