package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

// saleRepositoryInMemory хранит снимки продаж, а не указатели на агрегаты,
// чтобы изменения вызывающего кода не попадали в хранилище без Update.
type saleRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.SaleSnapshot
}

// NewSaleRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewSaleRepository() domain.SaleRepository {
	return &saleRepositoryInMemory{
		items: make(map[string]domain.SaleSnapshot),
	}
}

// Get восстанавливает агрегат из сохранённого снимка.
func (r *saleRepositoryInMemory) Get(_ context.Context, id string) (*domain.Sale, error) {
	r.mu.RLock()
	snapshot, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return nil, domain.ErrSaleNotFound
	}
	return domain.RestoreSale(snapshot)
}

// Add сохраняет новую продажу, если ID ещё не занят.
func (r *saleRepositoryInMemory) Add(_ context.Context, sale *domain.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[sale.ID()]; exists {
		return domain.ErrSaleAlreadyExists
	}

	sale.IncrementVersion()
	r.items[sale.ID()] = sale.Snapshot()
	return nil
}

// Update перезаписывает продажу, проверяя версию (optimistic locking).
func (r *saleRepositoryInMemory) Update(_ context.Context, sale *domain.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[sale.ID()]
	if !ok {
		return domain.ErrSaleNotFound
	}
	if current.Version != sale.Version() {
		return domain.ErrSaleVersionConflict
	}

	sale.IncrementVersion()
	r.items[sale.ID()] = sale.Snapshot()
	return nil
}

// List возвращает страницу продаж, отсортированных по дате (новые первыми), затем по ID.
func (r *saleRepositoryInMemory) List(_ context.Context, page domain.PageRequest) (domain.SalePage, error) {
	if page.Number < 1 || page.Size < 1 {
		return domain.SalePage{}, domain.ErrInvalidPage
	}

	r.mu.RLock()
	snapshots := make([]domain.SaleSnapshot, 0, len(r.items))
	for _, snapshot := range r.items {
		snapshots = append(snapshots, snapshot)
	}
	r.mu.RUnlock()

	sort.Slice(snapshots, func(i, j int) bool {
		if !snapshots[i].Date.Equal(snapshots[j].Date) {
			return snapshots[i].Date.After(snapshots[j].Date)
		}
		return snapshots[i].ID > snapshots[j].ID
	})

	result := domain.SalePage{
		Items:      make([]*domain.Sale, 0, page.Size),
		Number:     page.Number,
		Size:       page.Size,
		TotalCount: len(snapshots),
	}

	offset := page.Offset()
	if offset >= len(snapshots) {
		return result, nil
	}
	end := offset + page.Size
	if end > len(snapshots) {
		end = len(snapshots)
	}

	for _, snapshot := range snapshots[offset:end] {
		sale, err := domain.RestoreSale(snapshot)
		if err != nil {
			return domain.SalePage{}, err
		}
		result.Items = append(result.Items, sale)
	}
	return result, nil
}

var _ domain.SaleRepository = (*saleRepositoryInMemory)(nil)
