package grpcsvc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName — полное имя gRPC-сервиса.
const ServiceName = "sales.v1.SalesService"

const (
	methodCreateSale             = "CreateSale"
	methodAddSaleItem            = "AddSaleItem"
	methodModifySaleItemQuantity = "ModifySaleItemQuantity"
	methodRemoveSaleItem         = "RemoveSaleItem"
	methodCancelSale             = "CancelSale"
	methodGetSale                = "GetSale"
	methodListSales              = "ListSales"
)

// SalesServiceServer — серверная сторона API продаж.
type SalesServiceServer interface {
	CreateSale(context.Context, *CreateSaleRequest) (*SaleResponse, error)
	AddSaleItem(context.Context, *AddSaleItemRequest) (*SaleResponse, error)
	ModifySaleItemQuantity(context.Context, *ModifySaleItemQuantityRequest) (*SaleResponse, error)
	RemoveSaleItem(context.Context, *RemoveSaleItemRequest) (*SaleResponse, error)
	CancelSale(context.Context, *CancelSaleRequest) (*SaleResponse, error)
	GetSale(context.Context, *GetSaleRequest) (*SaleResponse, error)
	ListSales(context.Context, *ListSalesRequest) (*ListSalesResponse, error)
}

// SalesServiceDesc описывает сервис для grpc.Server без сгенерированного кода.
var SalesServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SalesServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: methodCreateSale, Handler: unaryHandler(methodCreateSale, SalesServiceServer.CreateSale)},
		{MethodName: methodAddSaleItem, Handler: unaryHandler(methodAddSaleItem, SalesServiceServer.AddSaleItem)},
		{MethodName: methodModifySaleItemQuantity, Handler: unaryHandler(methodModifySaleItemQuantity, SalesServiceServer.ModifySaleItemQuantity)},
		{MethodName: methodRemoveSaleItem, Handler: unaryHandler(methodRemoveSaleItem, SalesServiceServer.RemoveSaleItem)},
		{MethodName: methodCancelSale, Handler: unaryHandler(methodCancelSale, SalesServiceServer.CancelSale)},
		{MethodName: methodGetSale, Handler: unaryHandler(methodGetSale, SalesServiceServer.GetSale)},
		{MethodName: methodListSales, Handler: unaryHandler(methodListSales, SalesServiceServer.ListSales)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sales/v1/sales.json",
}

// RegisterSalesServiceServer регистрирует реализацию на gRPC-сервере.
func RegisterSalesServiceServer(s grpc.ServiceRegistrar, srv SalesServiceServer) {
	s.RegisterService(&SalesServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler[Req, Resp any](method string, call func(SalesServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SalesServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SalesServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// SalesServiceClient — клиент API продаж. Всегда использует JSON-кодек.
type SalesServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewSalesServiceClient создаёт клиента поверх соединения.
func NewSalesServiceClient(cc grpc.ClientConnInterface) *SalesServiceClient {
	return &SalesServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *SalesServiceClient, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSale вызывает одноимённый метод сервера.
func (c *SalesServiceClient) CreateSale(ctx context.Context, in *CreateSaleRequest, opts ...grpc.CallOption) (*SaleResponse, error) {
	return invoke[SaleResponse](ctx, c, methodCreateSale, in, opts)
}

// AddSaleItem вызывает одноимённый метод сервера.
func (c *SalesServiceClient) AddSaleItem(ctx context.Context, in *AddSaleItemRequest, opts ...grpc.CallOption) (*SaleResponse, error) {
	return invoke[SaleResponse](ctx, c, methodAddSaleItem, in, opts)
}

// ModifySaleItemQuantity вызывает одноимённый метод сервера.
func (c *SalesServiceClient) ModifySaleItemQuantity(ctx context.Context, in *ModifySaleItemQuantityRequest, opts ...grpc.CallOption) (*SaleResponse, error) {
	return invoke[SaleResponse](ctx, c, methodModifySaleItemQuantity, in, opts)
}

// RemoveSaleItem вызывает одноимённый метод сервера.
func (c *SalesServiceClient) RemoveSaleItem(ctx context.Context, in *RemoveSaleItemRequest, opts ...grpc.CallOption) (*SaleResponse, error) {
	return invoke[SaleResponse](ctx, c, methodRemoveSaleItem, in, opts)
}

// CancelSale вызывает одноимённый метод сервера.
func (c *SalesServiceClient) CancelSale(ctx context.Context, in *CancelSaleRequest, opts ...grpc.CallOption) (*SaleResponse, error) {
	return invoke[SaleResponse](ctx, c, methodCancelSale, in, opts)
}

// GetSale вызывает одноимённый метод сервера.
func (c *SalesServiceClient) GetSale(ctx context.Context, in *GetSaleRequest, opts ...grpc.CallOption) (*SaleResponse, error) {
	return invoke[SaleResponse](ctx, c, methodGetSale, in, opts)
}

// ListSales вызывает одноимённый метод сервера.
func (c *SalesServiceClient) ListSales(ctx context.Context, in *ListSalesRequest, opts ...grpc.CallOption) (*ListSalesResponse, error) {
	return invoke[ListSalesResponse](ctx, c, methodListSales, in, opts)
}
