package http

import (
	"context"
	"net/http"

	"github.com/MikeRez0/posadmin/internal/core/domain"
	"github.com/MikeRez0/posadmin/internal/core/port"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	Handler
	service port.Service
}

func NewOrderHandler(service port.Service, logger *zap.Logger) (*OrderHandler, error) {
	return &OrderHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

type orderListQuery struct {
	Status     string `form:"status" validate:"omitempty,oneof=pending completed cancelled refunded"`
	CustomerID int64  `form:"customer_id" validate:"omitempty,gt=0"`
	Skip       int    `form:"skip" validate:"omitempty,min=0"`
	Limit      int    `form:"limit" validate:"omitempty,min=1,max=1000"`
	Search     string `form:"search"`
}

func (oh *OrderHandler) ListOrders(ctx *gin.Context) {
	q := orderListQuery{}
	if err := ctx.ShouldBindQuery(&q); err != nil {
		oh.handleValidationError(ctx, err)
		return
	}
	if err := oh.validate.Struct(&q); err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	filter := domain.OrderFilter{
		Status: domain.OrderStatus(q.Status),
		Skip:   q.Skip,
		Limit:  q.Limit,
	}
	if q.CustomerID > 0 {
		id := domain.CustomerID(q.CustomerID)
		filter.CustomerID = &id
	}

	list, err := oh.service.ListOrders(ctx.Request.Context(), getAuthPayload(ctx), filter, q.Search)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}
	oh.handleSuccess(ctx, newOrderListResponse(list))
}

func (oh *OrderHandler) sendOrder(ctx *gin.Context, order *domain.Order, err error) {
	if err != nil {
		oh.handleError(ctx, err)
		return
	}
	oh.handleSuccess(ctx, newOrderResponse(order))
}

func (oh *OrderHandler) GetOrder(ctx *gin.Context) {
	id, ok := oh.pathID(ctx, "id")
	if !ok {
		return
	}

	order, err := oh.service.GetOrder(ctx.Request.Context(), getAuthPayload(ctx), domain.OrderID(id))
	oh.sendOrder(ctx, order, err)
}

func (oh *OrderHandler) GetOrderByNumber(ctx *gin.Context) {
	order, err := oh.service.GetOrderByNumber(ctx.Request.Context(), getAuthPayload(ctx), ctx.Param("number"))
	oh.sendOrder(ctx, order, err)
}

func (oh *OrderHandler) UpdateOrder(ctx *gin.Context) {
	id, ok := oh.pathID(ctx, "id")
	if !ok {
		return
	}
	req := orderUpdateRequest{}
	if !oh.bindAndValidate(ctx, &req) {
		return
	}
	update, err := req.toDomain()
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	order, err := oh.service.UpdateOrder(ctx.Request.Context(), getAuthPayload(ctx), domain.OrderID(id), update)
	oh.sendOrder(ctx, order, err)
}

func (oh *OrderHandler) DeleteOrder(ctx *gin.Context) {
	id, ok := oh.pathID(ctx, "id")
	if !ok {
		return
	}

	if err := oh.service.DeleteOrder(ctx.Request.Context(), getAuthPayload(ctx), domain.OrderID(id)); err != nil {
		oh.handleError(ctx, err)
		return
	}
	oh.handleSuccessWithStatus(ctx, nil, http.StatusNoContent)
}

type orderTransition func(ctx context.Context, user *port.TokenPayload, id domain.OrderID) (*domain.Order, error)

func (oh *OrderHandler) transition(fn orderTransition) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, ok := oh.pathID(ctx, "id")
		if !ok {
			return
		}

		order, err := fn(ctx.Request.Context(), getAuthPayload(ctx), domain.OrderID(id))
		oh.sendOrder(ctx, order, err)
	}
}

func (oh *OrderHandler) CompleteOrder(ctx *gin.Context) {
	oh.transition(oh.service.CompleteOrder)(ctx)
}

func (oh *OrderHandler) CancelOrder(ctx *gin.Context) {
	oh.transition(oh.service.CancelOrder)(ctx)
}

func (oh *OrderHandler) RefundOrder(ctx *gin.Context) {
	oh.transition(oh.service.RefundOrder)(ctx)
}

func (oh *OrderHandler) Dashboard(ctx *gin.Context) {
	stats, err := oh.service.Dashboard(ctx.Request.Context(), getAuthPayload(ctx))
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, dashboardResponse{
		TotalOrders:      stats.TotalOrders,
		TotalProducts:    stats.TotalProducts,
		TotalCustomers:   stats.TotalCustomers,
		TotalRevenue:     money(stats.TotalRevenue),
		LowStockProducts: stats.LowStockProducts,
		RecentOrders:     newOrderListResponse(stats.RecentOrders),
	})
}

