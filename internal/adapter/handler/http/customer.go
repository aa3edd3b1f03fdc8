package http

import (
	"net/http"

	"github.com/MikeRez0/posadmin/internal/core/domain"
	"github.com/MikeRez0/posadmin/internal/core/port"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CustomerHandler struct {
	Handler
	service port.Service
}

func NewCustomerHandler(service port.Service, logger *zap.Logger) (*CustomerHandler, error) {
	return &CustomerHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

func (ch *CustomerHandler) ListCustomers(ctx *gin.Context) {
	list, err := ch.service.ListCustomers(ctx.Request.Context(), getAuthPayload(ctx), ctx.Query("search"))
	if err != nil {
		ch.handleError(ctx, err)
		return
	}

	result := make([]customerResponse, 0, len(list))
	for i := range list {
		result = append(result, newCustomerResponse(&list[i]))
	}
	ch.handleSuccess(ctx, result)
}

func (ch *CustomerHandler) GetCustomer(ctx *gin.Context) {
	id, ok := ch.pathID(ctx, "id")
	if !ok {
		return
	}

	c, err := ch.service.GetCustomer(ctx.Request.Context(), getAuthPayload(ctx), domain.CustomerID(id))
	if err != nil {
		ch.handleError(ctx, err)
		return
	}
	ch.handleSuccess(ctx, newCustomerResponse(c))
}

func (ch *CustomerHandler) CreateCustomer(ctx *gin.Context) {
	req := customerRequest{}
	if !ch.bindAndValidate(ctx, &req) {
		return
	}

	c, err := ch.service.CreateCustomer(ctx.Request.Context(), getAuthPayload(ctx), req.toDomain())
	if err != nil {
		ch.handleError(ctx, err)
		return
	}
	ch.handleSuccessWithStatus(ctx, newCustomerResponse(c), http.StatusCreated)
}

func (ch *CustomerHandler) UpdateCustomer(ctx *gin.Context) {
	id, ok := ch.pathID(ctx, "id")
	if !ok {
		return
	}
	req := customerRequest{}
	if !ch.bindAndValidate(ctx, &req) {
		return
	}

	c, err := ch.service.UpdateCustomer(ctx.Request.Context(), getAuthPayload(ctx), domain.CustomerID(id), req.toDomain())
	if err != nil {
		ch.handleError(ctx, err)
		return
	}
	ch.handleSuccess(ctx, newCustomerResponse(c))
}

func (ch *CustomerHandler) DeleteCustomer(ctx *gin.Context) {
	id, ok := ch.pathID(ctx, "id")
	if !ok {
		return
	}

	if err := ch.service.DeleteCustomer(ctx.Request.Context(), getAuthPayload(ctx), domain.CustomerID(id)); err != nil {
		ch.handleError(ctx, err)
		return
	}
	ch.handleSuccessWithStatus(ctx, nil, http.StatusNoContent)
}
