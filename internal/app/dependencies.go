package app

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales/internal/domain"
	"github.com/vladislavdragonenkov/sales/internal/health"
	"github.com/vladislavdragonenkov/sales/internal/metrics"
	"github.com/vladislavdragonenkov/sales/internal/storage/memory"
	"github.com/vladislavdragonenkov/sales/internal/storage/postgres"
	"github.com/vladislavdragonenkov/sales/internal/storage/rediscache"
)

// runtimeDependencies — хранилища и внешние клиенты, выбранные по конфигурации.
type runtimeDependencies struct {
	repo            domain.SaleRepository
	catalog         domain.ProductCatalog
	idempotencyRepo domain.IdempotencyRepository
	checks          map[string]dependencyCheck
	closers         []func() error
}

type dependencyCheck struct {
	pinger   health.Pinger
	critical bool
}

// close освобождает ресурсы в обратном порядке открытия.
func (d *runtimeDependencies) close() error {
	if d == nil {
		return nil
	}
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry, m *metrics.SalesMetrics) (*runtimeDependencies, error) {
	deps := &runtimeDependencies{checks: make(map[string]dependencyCheck)}

	switch cfg.StorageDriver {
	case StorageDriverMemory:
		deps.repo = memory.NewSaleRepository()
		deps.catalog = memory.NewProductCatalog()
		deps.idempotencyRepo = memory.NewIdempotencyRepository()
		logger.Info("using in-memory storage")
	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, errors.New("postgres_dsn is required for postgres storage driver")
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, store.Close)

		if cfg.PostgresAutoMigrate {
			if err := store.MigrateUp(ctx, 0); err != nil {
				_ = deps.close()
				return nil, fmt.Errorf("migrate postgres schema: %w", err)
			}
			logger.Info("postgres schema is up to date")
		}

		deps.repo = postgres.NewSaleRepository(store)
		deps.catalog = postgres.NewProductCatalog(store)
		deps.idempotencyRepo = postgres.NewIdempotencyRepository(store)
		deps.checks["postgres"] = dependencyCheck{pinger: store, critical: true}
		logger.Info("using postgres storage")
	default:
		return nil, fmt.Errorf("unsupported storage driver: %q", cfg.StorageDriver)
	}

	if cfg.RedisAddr != "" {
		client, err := rediscache.Dial(ctx, cfg.RedisAddr)
		if err != nil {
			logger.WithError(err).Warn("redis is unavailable, product cache disabled")
		} else {
			deps.closers = append(deps.closers, client.Close)
			deps.catalog = rediscache.NewProductCatalog(client, deps.catalog, cfg.ProductCacheTTL,
				logger.WithField("layer", "product-cache"), m)
			deps.checks["redis"] = dependencyCheck{
				pinger:   health.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() }),
				critical: false,
			}
			logger.WithField("addr", cfg.RedisAddr).Info("product cache enabled")
		}
	}

	return deps, nil
}
