package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

const selectSaleColumns = `
	SELECT id, sale_number, sale_date, customer_id, customer_name,
	       branch_id, branch_name, status, version
	FROM sales`

type saleRepository struct {
	db *sql.DB
}

// NewSaleRepository создаёт PostgreSQL-реализацию SaleRepository.
func NewSaleRepository(store *Store) domain.SaleRepository {
	return &saleRepository{db: store.DB()}
}

// Add вставляет продажу и её позиции в одной транзакции.
func (r *saleRepository) Add(ctx context.Context, sale *domain.Sale) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	snapshot := sale.Snapshot()
	next := snapshot.Version + 1

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (
			id, sale_number, sale_date, customer_id, customer_name,
			branch_id, branch_name, status, total_amount, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$11)
	`,
		snapshot.ID,
		snapshot.Number,
		snapshot.Date,
		snapshot.Customer.ID,
		snapshot.Customer.Name,
		snapshot.Branch.ID,
		snapshot.Branch.Name,
		string(snapshot.Status),
		sale.TotalAmount(),
		next,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSaleAlreadyExists
		}
		return fmt.Errorf("insert sale: %w", err)
	}

	if err := insertSaleItems(ctx, tx, snapshot); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	sale.IncrementVersion()
	return nil
}

// Get читает продажу и её позиции.
func (r *saleRepository) Get(ctx context.Context, id string) (*domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	snapshot, err := scanSale(r.db.QueryRowContext(ctx, selectSaleColumns+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSaleNotFound
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	items, err := r.loadItems(ctx, []string{snapshot.ID})
	if err != nil {
		return nil, err
	}
	snapshot.Items = items[snapshot.ID]
	return domain.RestoreSale(snapshot)
}

// Update заменяет шапку и позиции продажи, если версия в базе совпадает с версией агрегата.
func (r *saleRepository) Update(ctx context.Context, sale *domain.Sale) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	snapshot := sale.Snapshot()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE sales
		SET sale_number = $1,
		    customer_id = $2,
		    customer_name = $3,
		    branch_id = $4,
		    branch_name = $5,
		    status = $6,
		    total_amount = $7,
		    version = version + 1,
		    updated_at = $8
		WHERE id = $9 AND version = $10
	`,
		snapshot.Number,
		snapshot.Customer.ID,
		snapshot.Customer.Name,
		snapshot.Branch.ID,
		snapshot.Branch.Name,
		string(snapshot.Status),
		sale.TotalAmount(),
		time.Now().UTC(),
		snapshot.ID,
		snapshot.Version,
	)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sale rows affected: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM sales WHERE id = $1)`, snapshot.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check sale existence: %w", err)
		}
		if !exists {
			return domain.ErrSaleNotFound
		}
		return domain.ErrSaleVersionConflict
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, snapshot.ID); err != nil {
		return fmt.Errorf("delete sale items: %w", err)
	}
	if err := insertSaleItems(ctx, tx, snapshot); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	sale.IncrementVersion()
	return nil
}

// List возвращает страницу продаж: sale_date DESC, id DESC.
func (r *saleRepository) List(ctx context.Context, page domain.PageRequest) (domain.SalePage, error) {
	if page.Number < 1 || page.Size < 1 {
		return domain.SalePage{}, domain.ErrInvalidPage
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	result := domain.SalePage{
		Items:  make([]*domain.Sale, 0, page.Size),
		Number: page.Number,
		Size:   page.Size,
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales`).Scan(&result.TotalCount); err != nil {
		return domain.SalePage{}, fmt.Errorf("count sales: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		selectSaleColumns+` ORDER BY sale_date DESC, id DESC LIMIT $1 OFFSET $2`,
		page.Size, page.Offset())
	if err != nil {
		return domain.SalePage{}, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	snapshots := make([]domain.SaleSnapshot, 0, page.Size)
	ids := make([]string, 0, page.Size)
	for rows.Next() {
		snapshot, err := scanSale(rows)
		if err != nil {
			return domain.SalePage{}, fmt.Errorf("scan sale: %w", err)
		}
		snapshots = append(snapshots, snapshot)
		ids = append(ids, snapshot.ID)
	}
	if err := rows.Err(); err != nil {
		return domain.SalePage{}, fmt.Errorf("iterate sales: %w", err)
	}
	if len(ids) == 0 {
		return result, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return domain.SalePage{}, err
	}
	for _, snapshot := range snapshots {
		snapshot.Items = items[snapshot.ID]
		sale, err := domain.RestoreSale(snapshot)
		if err != nil {
			return domain.SalePage{}, err
		}
		result.Items = append(result.Items, sale)
	}
	return result, nil
}

func (r *saleRepository) loadItems(ctx context.Context, saleIDs []string) (map[string][]domain.SaleItemSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT sale_id, product_id, product_name, product_description, quantity, unit_price
		FROM sale_items
		WHERE sale_id = ANY($1)
		ORDER BY sale_id, position
	`, saleIDs)
	if err != nil {
		return nil, fmt.Errorf("query sale items: %w", err)
	}
	defer rows.Close()

	items := make(map[string][]domain.SaleItemSnapshot, len(saleIDs))
	for rows.Next() {
		var (
			saleID string
			item   domain.SaleItemSnapshot
		)
		if err := rows.Scan(
			&saleID,
			&item.Product.ID,
			&item.Product.Name,
			&item.Product.Description,
			&item.Quantity,
			&item.UnitPrice,
		); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		items[saleID] = append(items[saleID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sale items: %w", err)
	}
	return items, nil
}

func insertSaleItems(ctx context.Context, tx *sql.Tx, snapshot domain.SaleSnapshot) error {
	for position, item := range snapshot.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sale_items (
				sale_id, position, product_id, product_name, product_description, quantity, unit_price
			) VALUES ($1,$2,$3,$4,$5,$6,$7)
		`,
			snapshot.ID,
			position,
			item.Product.ID,
			item.Product.Name,
			item.Product.Description,
			item.Quantity,
			item.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("insert sale item %s: %w", item.Product.ID, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSale(row rowScanner) (domain.SaleSnapshot, error) {
	var (
		snapshot domain.SaleSnapshot
		status   string
	)
	if err := row.Scan(
		&snapshot.ID,
		&snapshot.Number,
		&snapshot.Date,
		&snapshot.Customer.ID,
		&snapshot.Customer.Name,
		&snapshot.Branch.ID,
		&snapshot.Branch.Name,
		&status,
		&snapshot.Version,
	); err != nil {
		return domain.SaleSnapshot{}, err
	}
	snapshot.Status = domain.SaleStatus(status)
	return snapshot, nil
}

var _ domain.SaleRepository = (*saleRepository)(nil)
