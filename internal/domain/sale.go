package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleStatus описывает жизненный цикл продажи.
type SaleStatus string

const (
	// SaleStatusActive — продажа открыта для изменений.
	SaleStatusActive SaleStatus = "active"
	// SaleStatusCancelled — продажа отменена, доступна только для чтения.
	SaleStatusCancelled SaleStatus = "cancelled"
)

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s SaleStatus) Valid() bool {
	switch s {
	case SaleStatusActive, SaleStatusCancelled:
		return true
	default:
		return false
	}
}

// Sale — корень агрегата продажи. Позиции меняются только через методы агрегата.
type Sale struct {
	id       string
	number   string
	date     time.Time
	customer CustomerInfo
	branch   BranchInfo
	items    []SaleItem
	status   SaleStatus
	version  int64
}

// NewSale создаёт активную продажу и добавляет начальные позиции через AddItem,
// поэтому позиции с одинаковым товаром сливаются.
func NewSale(number string, customer CustomerInfo, branch BranchInfo, items ...SaleItem) (*Sale, error) {
	if strings.TrimSpace(number) == "" {
		return nil, ErrSaleNumberRequired
	}

	sale := &Sale{
		id:       uuid.NewString(),
		number:   number,
		date:     time.Now().UTC().Truncate(time.Microsecond),
		customer: customer,
		branch:   branch,
		items:    make([]SaleItem, 0, len(items)),
		status:   SaleStatusActive,
	}
	for _, item := range items {
		if err := sale.AddItem(item.product, item.quantity, item.unitPrice); err != nil {
			return nil, err
		}
	}
	return sale, nil
}

// ID возвращает идентификатор продажи.
func (s *Sale) ID() string { return s.id }

// Number возвращает номер продажи.
func (s *Sale) Number() string { return s.number }

// Date возвращает момент оформления продажи (UTC).
func (s *Sale) Date() time.Time { return s.date }

// Customer возвращает снимок покупателя.
func (s *Sale) Customer() CustomerInfo { return s.customer }

// Branch возвращает снимок филиала.
func (s *Sale) Branch() BranchInfo { return s.branch }

// Status возвращает текущий статус.
func (s *Sale) Status() SaleStatus { return s.status }

// IsCancelled сообщает, отменена ли продажа.
func (s *Sale) IsCancelled() bool { return s.status == SaleStatusCancelled }

// Version возвращает версию для optimistic locking. Ноль означает, что продажа ещё не сохранялась.
func (s *Sale) Version() int64 { return s.version }

// IncrementVersion вызывается репозиторием после успешного сохранения.
func (s *Sale) IncrementVersion() { s.version++ }

// Items возвращает копию позиций в порядке добавления.
func (s *Sale) Items() []SaleItem {
	out := make([]SaleItem, len(s.items))
	copy(out, s.items)
	return out
}

// TotalAmount пересчитывается при каждом вызове; для отменённой продажи всегда 0.
func (s *Sale) TotalAmount() decimal.Decimal {
	if s.IsCancelled() {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// CheckAddItem проверяет, можно ли добавить quantity единиц какого-либо товара:
// продажа не отменена и количество в [1, 20]. Поиск товара в каталоге идёт после неё.
func (s *Sale) CheckAddItem(quantity int) error {
	if s.IsCancelled() {
		return ErrSaleCancelled
	}
	if !validQuantity(quantity) {
		return ErrQuantityOutOfRange
	}
	return nil
}

// AddItem добавляет позицию или увеличивает количество существующей.
// При слиянии цена нового вызова игнорируется.
func (s *Sale) AddItem(product ProductInfo, quantity int, unitPrice decimal.Decimal) error {
	if err := s.CheckAddItem(quantity); err != nil {
		return err
	}

	if idx := s.indexOf(product.ID); idx >= 0 {
		merged := s.items[idx].quantity + quantity
		if merged > MaxItemQuantity {
			return ErrQuantityLimitExceeded
		}
		return s.items[idx].updateQuantity(merged)
	}

	item, err := NewSaleItem(product, quantity, unitPrice)
	if err != nil {
		return err
	}
	s.items = append(s.items, item)
	return nil
}

// ModifyItemQuantity задаёт новое количество для позиции с указанным товаром.
func (s *Sale) ModifyItemQuantity(productID string, quantity int) error {
	if s.IsCancelled() {
		return ErrSaleCancelled
	}
	if !validQuantity(quantity) {
		return ErrQuantityOutOfRange
	}

	idx := s.indexOf(productID)
	if idx < 0 {
		return ErrSaleItemNotFound
	}
	return s.items[idx].updateQuantity(quantity)
}

// RemoveItem удаляет позицию. Отсутствующий товар не считается ошибкой.
func (s *Sale) RemoveItem(productID string) error {
	if s.IsCancelled() {
		return ErrSaleCancelled
	}

	idx := s.indexOf(productID)
	if idx < 0 {
		return nil
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	return nil
}

// Cancel переводит продажу в Cancelled. Повторный вызов ничего не меняет.
func (s *Sale) Cancel() {
	s.status = SaleStatusCancelled
}

func (s *Sale) indexOf(productID string) int {
	for i := range s.items {
		if s.items[i].product.ID == productID {
			return i
		}
	}
	return -1
}

// SaleItemSnapshot — плоское представление позиции для хранилищ.
type SaleItemSnapshot struct {
	Product   ProductInfo
	Quantity  int
	UnitPrice decimal.Decimal
}

// SaleSnapshot — плоское представление продажи для хранилищ.
// Скидки и суммы не сохраняются: они вычисляются из количества.
type SaleSnapshot struct {
	ID       string
	Number   string
	Date     time.Time
	Customer CustomerInfo
	Branch   BranchInfo
	Items    []SaleItemSnapshot
	Status   SaleStatus
	Version  int64
}

// Snapshot возвращает независимую копию состояния агрегата.
func (s *Sale) Snapshot() SaleSnapshot {
	items := make([]SaleItemSnapshot, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, SaleItemSnapshot{
			Product:   item.product,
			Quantity:  item.quantity,
			UnitPrice: item.unitPrice,
		})
	}
	return SaleSnapshot{
		ID:       s.id,
		Number:   s.number,
		Date:     s.date,
		Customer: s.customer,
		Branch:   s.branch,
		Items:    items,
		Status:   s.status,
		Version:  s.version,
	}
}

// RestoreSale восстанавливает агрегат из снимка, заново проверяя инварианты.
func RestoreSale(snapshot SaleSnapshot) (*Sale, error) {
	if snapshot.ID == "" {
		return nil, fmt.Errorf("restore sale: empty id: %w", ErrInvalidArgument)
	}
	if strings.TrimSpace(snapshot.Number) == "" {
		return nil, fmt.Errorf("restore sale %s: %w", snapshot.ID, ErrSaleNumberRequired)
	}
	if !snapshot.Status.Valid() {
		return nil, fmt.Errorf("restore sale %s: unknown status %q: %w", snapshot.ID, snapshot.Status, ErrInvalidArgument)
	}

	sale := &Sale{
		id:       snapshot.ID,
		number:   snapshot.Number,
		date:     snapshot.Date.UTC(),
		customer: snapshot.Customer,
		branch:   snapshot.Branch,
		items:    make([]SaleItem, 0, len(snapshot.Items)),
		status:   snapshot.Status,
		version:  snapshot.Version,
	}
	for _, raw := range snapshot.Items {
		if sale.indexOf(raw.Product.ID) >= 0 {
			return nil, fmt.Errorf("restore sale %s: duplicate product %s: %w", snapshot.ID, raw.Product.ID, ErrInvalidArgument)
		}
		item, err := NewSaleItem(raw.Product, raw.Quantity, raw.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("restore sale %s: product %s: %w", snapshot.ID, raw.Product.ID, err)
		}
		sale.items = append(sale.items, item)
	}
	return sale, nil
}
