package sales

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales/internal/domain"
	"github.com/vladislavdragonenkov/sales/internal/metrics"
)

// Имена операций для логов и метрик.
const (
	OperationCreateSale         = "create_sale"
	OperationAddItem            = "add_item"
	OperationModifyItemQuantity = "modify_item_quantity"
	OperationRemoveItem         = "remove_item"
	OperationCancelSale         = "cancel_sale"
	OperationGetSale            = "get_sale"
	OperationListSales          = "list_sales"
)

// Доменные события публикуются только в лог.
const (
	EventSaleCreated   = "SaleCreated"
	EventSaleModified  = "SaleModified"
	EventItemCancelled = "ItemCancelled"
	EventSaleCancelled = "SaleCancelled"
)

// ItemInput — позиция в команде: товар ищется в каталоге по ProductID.
type ItemInput struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// CreateSaleCommand описывает новую продажу.
type CreateSaleCommand struct {
	SaleNumber string
	Customer   domain.CustomerInfo
	Branch     domain.BranchInfo
	Items      []ItemInput
}

// Service выполняет команды и запросы над продажами.
// Каждая команда: загрузить агрегат, вызвать один его метод, сохранить.
type Service struct {
	repo    domain.SaleRepository
	catalog domain.ProductCatalog
	logger  *log.Entry
	metrics *metrics.SalesMetrics
}

// NewService конструирует сервис с зависимостями.
func NewService(repo domain.SaleRepository, catalog domain.ProductCatalog, logger *log.Entry, m *metrics.SalesMetrics) *Service {
	if logger == nil {
		logger = log.WithField("component", "sales-service")
	}
	return &Service{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
		metrics: m,
	}
}

// CreateSale создаёт продажу, добавляет позиции из каталога и сохраняет её.
// Ошибки агрегата (номер, количество) возвращаются раньше ошибок каталога.
func (s *Service) CreateSale(ctx context.Context, cmd CreateSaleCommand) (_ SaleView, err error) {
	defer s.observe(OperationCreateSale, time.Now(), &err)

	sale, err := domain.NewSale(cmd.SaleNumber, cmd.Customer, cmd.Branch)
	if err != nil {
		return SaleView{}, err
	}
	for _, input := range cmd.Items {
		if err := s.addFromCatalog(ctx, sale, input); err != nil {
			return SaleView{}, err
		}
	}
	if err := s.repo.Add(ctx, sale); err != nil {
		return SaleView{}, err
	}

	s.metrics.RecordSaleCreated(len(sale.Items()))
	s.logEvent(EventSaleCreated, sale).Info("sale created")
	return NewSaleView(sale), nil
}

// AddItem добавляет товар в продажу или увеличивает количество существующей позиции.
func (s *Service) AddItem(ctx context.Context, saleID string, input ItemInput) (_ SaleView, err error) {
	defer s.observe(OperationAddItem, time.Now(), &err)

	sale, err := s.repo.Get(ctx, saleID)
	if err != nil {
		return SaleView{}, err
	}
	if err := s.addFromCatalog(ctx, sale, input); err != nil {
		return SaleView{}, err
	}
	if err := s.repo.Update(ctx, sale); err != nil {
		return SaleView{}, err
	}

	s.metrics.RecordSaleModified(len(sale.Items()))
	s.logEvent(EventSaleModified, sale).WithField("product_id", input.ProductID).Info("sale item added")
	return NewSaleView(sale), nil
}

func (s *Service) addFromCatalog(ctx context.Context, sale *domain.Sale, input ItemInput) error {
	if err := sale.CheckAddItem(input.Quantity); err != nil {
		return err
	}
	product, err := s.catalog.GetProductInfo(ctx, input.ProductID)
	if err != nil {
		return err
	}
	return sale.AddItem(product, input.Quantity, input.UnitPrice)
}

// ModifyItemQuantity меняет количество товара в продаже.
func (s *Service) ModifyItemQuantity(ctx context.Context, saleID, productID string, quantity int) (_ SaleView, err error) {
	defer s.observe(OperationModifyItemQuantity, time.Now(), &err)

	sale, err := s.repo.Get(ctx, saleID)
	if err != nil {
		return SaleView{}, err
	}
	if err := sale.ModifyItemQuantity(productID, quantity); err != nil {
		return SaleView{}, err
	}
	if err := s.repo.Update(ctx, sale); err != nil {
		return SaleView{}, err
	}

	s.metrics.RecordSaleModified(len(sale.Items()))
	s.logEvent(EventSaleModified, sale).WithFields(log.Fields{
		"product_id": productID,
		"quantity":   quantity,
	}).Info("sale item quantity changed")
	return NewSaleView(sale), nil
}

// RemoveItem убирает товар из продажи. Отсутствующий товар не считается ошибкой.
func (s *Service) RemoveItem(ctx context.Context, saleID, productID string) (_ SaleView, err error) {
	defer s.observe(OperationRemoveItem, time.Now(), &err)

	sale, err := s.repo.Get(ctx, saleID)
	if err != nil {
		return SaleView{}, err
	}
	if err := sale.RemoveItem(productID); err != nil {
		return SaleView{}, err
	}
	if err := s.repo.Update(ctx, sale); err != nil {
		return SaleView{}, err
	}

	s.metrics.RecordSaleModified(len(sale.Items()))
	s.logEvent(EventItemCancelled, sale).WithField("product_id", productID).Info("sale item removed")
	return NewSaleView(sale), nil
}

// CancelSale отменяет продажу. Повторная отмена возвращает текущее состояние без записи.
func (s *Service) CancelSale(ctx context.Context, saleID string) (_ SaleView, err error) {
	defer s.observe(OperationCancelSale, time.Now(), &err)

	sale, err := s.repo.Get(ctx, saleID)
	if err != nil {
		return SaleView{}, err
	}
	if sale.IsCancelled() {
		return NewSaleView(sale), nil
	}

	sale.Cancel()
	if err := s.repo.Update(ctx, sale); err != nil {
		return SaleView{}, err
	}

	s.metrics.RecordSaleCancelled()
	s.logEvent(EventSaleCancelled, sale).Info("sale cancelled")
	return NewSaleView(sale), nil
}

// GetSale возвращает продажу по идентификатору.
func (s *Service) GetSale(ctx context.Context, saleID string) (_ SaleView, err error) {
	defer s.observe(OperationGetSale, time.Now(), &err)

	sale, err := s.repo.Get(ctx, saleID)
	if err != nil {
		return SaleView{}, err
	}
	return NewSaleView(sale), nil
}

// ListSales возвращает страницу продаж. Нули заменяются значениями по умолчанию,
// размер страницы ограничивается сотней.
func (s *Service) ListSales(ctx context.Context, page, pageSize int) (_ SaleListView, err error) {
	defer s.observe(OperationListSales, time.Now(), &err)

	request, err := domain.NormalizePageRequest(page, pageSize)
	if err != nil {
		return SaleListView{}, err
	}
	result, err := s.repo.List(ctx, request)
	if err != nil {
		return SaleListView{}, err
	}
	return newSaleListView(result), nil
}

func (s *Service) logEvent(event string, sale *domain.Sale) *log.Entry {
	return s.logger.WithFields(log.Fields{
		"event":        event,
		"sale_id":      sale.ID(),
		"sale_number":  sale.Number(),
		"total_amount": sale.TotalAmount().StringFixed(2),
		"version":      sale.Version(),
	})
}

func (s *Service) observe(operation string, started time.Time, errp *error) {
	result := metrics.ResultOK
	if err := *errp; err != nil {
		result = metrics.ResultRejected
		if domain.KindOf(err) == nil {
			result = metrics.ResultError
			s.logger.WithError(err).WithField("operation", operation).Error("sale operation failed")
		}
	}
	s.metrics.ObserveOperation(operation, result, time.Since(started))
}
