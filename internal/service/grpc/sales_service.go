package grpcsvc

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/vladislavdragonenkov/sales/internal/domain"
	"github.com/vladislavdragonenkov/sales/internal/service/idempotency"
	"github.com/vladislavdragonenkov/sales/internal/service/sales"
)

const idempotencyKeyHeader = "idempotency-key"

var errSaleIDRequired = status.Error(codes.InvalidArgument, "sale_id is required")

// SalesService реализует gRPC API поверх сервиса продаж.
type SalesService struct {
	sales  *sales.Service
	guard  *idempotency.Guard
	logger *log.Entry
}

// NewSalesService конструирует gRPC-адаптер. guard может быть nil.
func NewSalesService(svc *sales.Service, guard *idempotency.Guard, logger *log.Entry) *SalesService {
	if logger == nil {
		logger = log.WithField("component", "sales-grpc")
	}
	return &SalesService{sales: svc, guard: guard, logger: logger}
}

// CreateSale создаёт продажу.
func (s *SalesService) CreateSale(ctx context.Context, req *CreateSaleRequest) (*SaleResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	cmd := sales.CreateSaleCommand{
		SaleNumber: req.SaleNumber,
		Customer:   domain.CustomerInfo{ID: req.CustomerID, Name: req.CustomerName},
		Branch:     domain.BranchInfo{ID: req.BranchID, Name: req.BranchName},
		Items:      make([]sales.ItemInput, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		cmd.Items = append(cmd.Items, item.toInput())
	}

	return s.mutate(ctx, methodCreateSale, req, func(ctx context.Context) (sales.SaleView, error) {
		return s.sales.CreateSale(ctx, cmd)
	})
}

// AddSaleItem добавляет позицию в продажу.
func (s *SalesService) AddSaleItem(ctx context.Context, req *AddSaleItemRequest) (*SaleResponse, error) {
	if req == nil || strings.TrimSpace(req.SaleID) == "" {
		return nil, errSaleIDRequired
	}
	return s.mutate(ctx, methodAddSaleItem, req, func(ctx context.Context) (sales.SaleView, error) {
		return s.sales.AddItem(ctx, req.SaleID, req.Item.toInput())
	})
}

// ModifySaleItemQuantity меняет количество товара в продаже.
func (s *SalesService) ModifySaleItemQuantity(ctx context.Context, req *ModifySaleItemQuantityRequest) (*SaleResponse, error) {
	if req == nil || strings.TrimSpace(req.SaleID) == "" {
		return nil, errSaleIDRequired
	}
	return s.mutate(ctx, methodModifySaleItemQuantity, req, func(ctx context.Context) (sales.SaleView, error) {
		return s.sales.ModifyItemQuantity(ctx, req.SaleID, req.ProductID, int(req.Quantity))
	})
}

// RemoveSaleItem удаляет позицию из продажи.
func (s *SalesService) RemoveSaleItem(ctx context.Context, req *RemoveSaleItemRequest) (*SaleResponse, error) {
	if req == nil || strings.TrimSpace(req.SaleID) == "" {
		return nil, errSaleIDRequired
	}
	return s.mutate(ctx, methodRemoveSaleItem, req, func(ctx context.Context) (sales.SaleView, error) {
		return s.sales.RemoveItem(ctx, req.SaleID, req.ProductID)
	})
}

// CancelSale отменяет продажу.
func (s *SalesService) CancelSale(ctx context.Context, req *CancelSaleRequest) (*SaleResponse, error) {
	if req == nil || strings.TrimSpace(req.SaleID) == "" {
		return nil, errSaleIDRequired
	}
	return s.mutate(ctx, methodCancelSale, req, func(ctx context.Context) (sales.SaleView, error) {
		return s.sales.CancelSale(ctx, req.SaleID)
	})
}

// GetSale возвращает продажу по идентификатору.
func (s *SalesService) GetSale(ctx context.Context, req *GetSaleRequest) (*SaleResponse, error) {
	if req == nil || strings.TrimSpace(req.SaleID) == "" {
		return nil, errSaleIDRequired
	}
	view, err := s.sales.GetSale(ctx, req.SaleID)
	if err != nil {
		return nil, s.toStatus(err, methodGetSale)
	}
	return &SaleResponse{Sale: &view}, nil
}

// ListSales возвращает страницу продаж.
func (s *SalesService) ListSales(ctx context.Context, req *ListSalesRequest) (*ListSalesResponse, error) {
	if req == nil {
		req = &ListSalesRequest{}
	}
	page, err := s.sales.ListSales(ctx, int(req.Page), int(req.PageSize))
	if err != nil {
		return nil, s.toStatus(err, methodListSales)
	}
	return &ListSalesResponse{Page: &page}, nil
}

func (s *SalesService) mutate(ctx context.Context, method string, req any, run func(context.Context) (sales.SaleView, error)) (*SaleResponse, error) {
	resp, err := idempotency.Do(ctx, s.guard, readIdempotencyKey(ctx), fullMethod(method), req,
		func(ctx context.Context) (*SaleResponse, error) {
			view, err := run(ctx)
			if err != nil {
				return nil, err
			}
			return &SaleResponse{Sale: &view}, nil
		})
	if err != nil {
		return nil, s.toStatus(err, method)
	}
	return resp, nil
}

// toStatus переводит доменную ошибку в gRPC-статус.
func (s *SalesService) toStatus(err error, method string) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, domain.ErrIdempotencyHashMismatch):
		return status.Error(codes.AlreadyExists, err.Error())
	}

	switch domain.KindOf(err) {
	case domain.ErrInvalidArgument:
		return status.Error(codes.InvalidArgument, err.Error())
	case domain.ErrOutOfRange:
		return status.Error(codes.OutOfRange, err.Error())
	case domain.ErrInvalidState:
		return status.Error(codes.FailedPrecondition, err.Error())
	case domain.ErrNotFound:
		return status.Error(codes.NotFound, err.Error())
	case domain.ErrConflict:
		return status.Error(codes.Aborted, err.Error())
	default:
		s.logger.WithError(err).WithField("method", method).Error("sales request failed")
		return status.Error(codes.Internal, "internal error")
	}
}

func readIdempotencyKey(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(idempotencyKeyHeader); len(values) > 0 {
			return strings.TrimSpace(values[0])
		}
	}
	return ""
}

var _ SalesServiceServer = (*SalesService)(nil)
