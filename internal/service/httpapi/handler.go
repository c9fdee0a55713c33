package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales/internal/domain"
	"github.com/vladislavdragonenkov/sales/internal/service/idempotency"
	"github.com/vladislavdragonenkov/sales/internal/service/sales"
)

// IdempotencyKeyHeader — заголовок с ключом идемпотентности.
const IdempotencyKeyHeader = "Idempotency-Key"

type ItemRequest struct {
	ProductID string          `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"min=1,max=20"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateSaleRequest — тело POST /api/v1/sales.
type CreateSaleRequest struct {
	SaleNumber   string        `json:"sale_number"`
	CustomerID   string        `json:"customer_id"`
	CustomerName string        `json:"customer_name"`
	BranchID     string        `json:"branch_id"`
	BranchName   string        `json:"branch_name"`
	Items        []ItemRequest `json:"items" binding:"dive"`
}

type ModifyQuantityRequest struct {
	Quantity int `json:"quantity" binding:"min=1,max=20"`
}

type listQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// Handler обслуживает REST API продаж.
type Handler struct {
	sales  *sales.Service
	guard  *idempotency.Guard
	logger *log.Entry
}

// NewHandler создаёт обработчик. guard может быть nil.
func NewHandler(svc *sales.Service, guard *idempotency.Guard, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "sales-http")
	}
	return &Handler{sales: svc, guard: guard, logger: logger}
}

// Register вешает маршруты на группу /api/v1/sales.
func (h *Handler) Register(r gin.IRouter) {
	group := r.Group("/api/v1/sales")
	group.POST("", h.createSale)
	group.GET("", h.listSales)
	group.GET("/:id", h.getSale)
	group.POST("/:id/items", h.addItem)
	group.PATCH("/:id/items/:productId", h.modifyItemQuantity)
	group.DELETE("/:id/items/:productId", h.removeItem)
	group.POST("/:id/cancel", h.cancelSale)
}

func (h *Handler) createSale(c *gin.Context) {
	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
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

	h.mutate(c, http.StatusCreated, sales.OperationCreateSale, req, func(ctx context.Context) (sales.SaleView, error) {
		return h.sales.CreateSale(ctx, cmd)
	})
}

func (h *Handler) addItem(c *gin.Context) {
	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}
	saleID := c.Param("id")

	h.mutate(c, http.StatusOK, sales.OperationAddItem, req, func(ctx context.Context) (sales.SaleView, error) {
		return h.sales.AddItem(ctx, saleID, req.toInput())
	})
}

func (h *Handler) modifyItemQuantity(c *gin.Context) {
	var req ModifyQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}
	saleID, productID := c.Param("id"), c.Param("productId")

	h.mutate(c, http.StatusOK, sales.OperationModifyItemQuantity, req, func(ctx context.Context) (sales.SaleView, error) {
		return h.sales.ModifyItemQuantity(ctx, saleID, productID, req.Quantity)
	})
}

func (h *Handler) removeItem(c *gin.Context) {
	saleID, productID := c.Param("id"), c.Param("productId")

	h.mutate(c, http.StatusOK, sales.OperationRemoveItem, nil, func(ctx context.Context) (sales.SaleView, error) {
		return h.sales.RemoveItem(ctx, saleID, productID)
	})
}

func (h *Handler) cancelSale(c *gin.Context) {
	saleID := c.Param("id")

	h.mutate(c, http.StatusOK, sales.OperationCancelSale, nil, func(ctx context.Context) (sales.SaleView, error) {
		return h.sales.CancelSale(ctx, saleID)
	})
}

func (h *Handler) getSale(c *gin.Context) {
	view, err := h.sales.GetSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, sales.OperationGetSale, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) listSales(c *gin.Context) {
	var query listQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, "page and page_size must be integers")
		return
	}

	page, err := h.sales.ListSales(c.Request.Context(), query.Page, query.PageSize)
	if err != nil {
		h.writeError(c, sales.OperationListSales, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// mutate выполняет команду под защитой Idempotency-Key. Ключ включает путь запроса,
// поэтому один и тот же ключ для разных продаж не пересекается.
func (h *Handler) mutate(c *gin.Context, okStatus int, operation string, body any, run func(context.Context) (sales.SaleView, error)) {
	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	scope := c.Request.Method + " " + c.Request.URL.Path

	view, err := idempotency.Do(c.Request.Context(), h.guard, key, scope, body, run)
	if err != nil {
		h.writeError(c, operation, err)
		return
	}
	c.JSON(okStatus, view)
}

func (r ItemRequest) toInput() sales.ItemInput {
	return sales.ItemInput{
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
		UnitPrice: r.UnitPrice,
	}
}
