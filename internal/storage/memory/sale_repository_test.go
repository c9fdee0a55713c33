package memory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/sales/internal/domain"
	"github.com/vladislavdragonenkov/sales/internal/storage/memory"
)

func newSale(t *testing.T, number string) *domain.Sale {
	t.Helper()
	sale, err := domain.NewSale(number, domain.CustomerInfo{ID: "C1", Name: "Alice"}, domain.BranchInfo{ID: "B1", Name: "Main"})
	if err != nil {
		t.Fatalf("NewSale failed: %v", err)
	}
	if err := sale.AddItem(domain.ProductInfo{ID: "PROD-001", Name: "Beer 350ml"}, 4, decimal.NewFromInt(10)); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	return sale
}

func TestSaleRepository_AddGet(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSaleRepository()
	sale := newSale(t, "S-1")

	if err := repo.Add(ctx, sale); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if sale.Version() != 1 {
		t.Fatalf("expected version 1 after add, got %d", sale.Version())
	}

	stored, err := repo.Get(ctx, sale.ID())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.ID() != sale.ID() || len(stored.Items()) != 1 {
		t.Fatalf("unexpected stored sale: %+v", stored.Snapshot())
	}
	if !stored.TotalAmount().Equal(decimal.NewFromInt(36)) {
		t.Fatalf("expected total 36, got %s", stored.TotalAmount())
	}

	if err := repo.Add(ctx, sale); !errors.Is(err, domain.ErrSaleAlreadyExists) {
		t.Fatalf("expected ErrSaleAlreadyExists, got %v", err)
	}
	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, domain.ErrSaleNotFound) {
		t.Fatalf("expected ErrSaleNotFound, got %v", err)
	}
}

func TestSaleRepository_GetReturnsIndependentCopy(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSaleRepository()
	sale := newSale(t, "S-1")
	if err := repo.Add(ctx, sale); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if err := sale.ModifyItemQuantity("PROD-001", 1); err != nil {
		t.Fatalf("modify failed: %v", err)
	}

	stored, err := repo.Get(ctx, sale.ID())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Items()[0].Quantity() != 4 {
		t.Fatal("unsaved change leaked into repository")
	}
}

func TestSaleRepository_UpdateVersionConflict(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSaleRepository()
	sale := newSale(t, "S-1")
	if err := repo.Add(ctx, sale); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	first, _ := repo.Get(ctx, sale.ID())
	second, _ := repo.Get(ctx, sale.ID())

	first.Cancel()
	if err := repo.Update(ctx, first); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if first.Version() != 2 {
		t.Fatalf("expected version 2, got %d", first.Version())
	}

	if err := second.RemoveItem("PROD-001"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := repo.Update(ctx, second); !errors.Is(err, domain.ErrSaleVersionConflict) {
		t.Fatalf("expected ErrSaleVersionConflict, got %v", err)
	}

	stored, _ := repo.Get(ctx, sale.ID())
	if !stored.IsCancelled() || len(stored.Items()) != 1 {
		t.Fatalf("stale write must not be applied: %+v", stored.Snapshot())
	}

	unknown := newSale(t, "S-2")
	if err := repo.Update(ctx, unknown); !errors.Is(err, domain.ErrSaleNotFound) {
		t.Fatalf("expected ErrSaleNotFound, got %v", err)
	}
}

func TestSaleRepository_ListPaging(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSaleRepository()
	for i := 0; i < 25; i++ {
		if err := repo.Add(ctx, newSale(t, fmt.Sprintf("S-%02d", i))); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	page, err := repo.List(ctx, domain.PageRequest{Number: 3, Size: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if page.TotalCount != 25 || len(page.Items) != 5 || page.Number != 3 || page.Size != 10 {
		t.Fatalf("unexpected page: total=%d items=%d", page.TotalCount, len(page.Items))
	}

	empty, err := repo.List(ctx, domain.PageRequest{Number: 4, Size: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(empty.Items) != 0 || empty.TotalCount != 25 {
		t.Fatalf("expected empty page past the end, got %d items", len(empty.Items))
	}

	if _, err := repo.List(ctx, domain.PageRequest{}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSaleRepository_ListIsStable(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSaleRepository()
	for i := 0; i < 12; i++ {
		if err := repo.Add(ctx, newSale(t, fmt.Sprintf("S-%02d", i))); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	ids := func() []string {
		var out []string
		for n := 1; n <= 3; n++ {
			page, err := repo.List(ctx, domain.PageRequest{Number: n, Size: 5})
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			for _, s := range page.Items {
				out = append(out, s.ID())
			}
		}
		return out
	}

	first, second := ids(), ids()
	if len(first) != 12 {
		t.Fatalf("expected 12 ids across pages, got %d", len(first))
	}
	seen := map[string]bool{}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("order changed between calls at %d", i)
		}
		if seen[first[i]] {
			t.Fatalf("id %s appears on more than one page", first[i])
		}
		seen[first[i]] = true
	}
}

func TestSaleRepository_ConcurrentDifferentIDs(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSaleRepository()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		sale := newSale(t, fmt.Sprintf("S-%d", i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Add(ctx, sale); err != nil {
				errs <- err
				return
			}
			loaded, err := repo.Get(ctx, sale.ID())
			if err != nil {
				errs <- err
				return
			}
			loaded.Cancel()
			errs <- repo.Update(ctx, loaded)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent operation failed: %v", err)
		}
	}
}

func TestProductCatalog_Defaults(t *testing.T) {
	catalog := memory.NewProductCatalog()

	product, err := catalog.GetProductInfo(context.Background(), "PROD-002")
	if err != nil {
		t.Fatalf("GetProductInfo failed: %v", err)
	}
	if product.Name != "Beer 600ml" {
		t.Fatalf("unexpected product %+v", product)
	}
	if _, err := catalog.GetProductInfo(context.Background(), "PROD-999"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	catalog.Upsert(domain.ProductInfo{ID: "PROD-999", Name: "Cider"})
	if _, err := catalog.GetProductInfo(context.Background(), "PROD-999"); err != nil {
		t.Fatalf("expected upserted product, got %v", err)
	}
}
