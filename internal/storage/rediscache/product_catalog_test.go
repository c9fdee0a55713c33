package rediscache

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/sales/internal/domain"
	"github.com/vladislavdragonenkov/sales/internal/metrics"
	"github.com/vladislavdragonenkov/sales/internal/storage/memory"
)

type countingCatalog struct {
	next  domain.ProductCatalog
	calls int
}

func (c *countingCatalog) GetProductInfo(ctx context.Context, productID string) (domain.ProductInfo, error) {
	c.calls++
	return c.next.GetProductInfo(ctx, productID)
}

func unreachableClient(t *testing.T) *goredis.Client {
	t.Helper()

	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestProductCatalog_FallsBackWhenRedisUnavailable(t *testing.T) {
	logger, hook := test.NewNullLogger()
	inner := &countingCatalog{next: memory.NewProductCatalog()}
	m := metrics.NewSalesMetricsWithRegisterer(prometheus.NewRegistry())
	catalog := NewProductCatalog(unreachableClient(t), inner, time.Minute, logrus.NewEntry(logger), m)

	product, err := catalog.GetProductInfo(context.Background(), "PROD-001")
	require.NoError(t, err)
	require.Equal(t, "Beer 350ml", product.Name)
	require.Equal(t, 1, inner.calls)

	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Message == "product cache read failed" {
			warned = true
		}
	}
	require.True(t, warned, "expected cache read warning")
}

func TestProductCatalog_NotFoundIsPassedThrough(t *testing.T) {
	logger, _ := test.NewNullLogger()
	inner := &countingCatalog{next: memory.NewProductCatalog()}
	catalog := NewProductCatalog(unreachableClient(t), inner, 0, logrus.NewEntry(logger), nil)

	_, err := catalog.GetProductInfo(context.Background(), "PROD-404")
	require.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = catalog.GetProductInfo(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrProductIDRequired)
	require.Equal(t, 2, inner.calls)
}

func TestDial_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := Dial(ctx, "127.0.0.1:1")
	require.Error(t, err)
}

func TestNewProductCatalog_DefaultTTL(t *testing.T) {
	catalog := NewProductCatalog(unreachableClient(t), memory.NewProductCatalog(), 0, nil, nil)
	require.Equal(t, defaultTTL, catalog.ttl)
	require.NotNil(t, catalog.logger)
}
