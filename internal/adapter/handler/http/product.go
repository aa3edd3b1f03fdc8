package http

import (
	"net/http"

	"github.com/MikeRez0/posadmin/internal/core/domain"
	"github.com/MikeRez0/posadmin/internal/core/port"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProductHandler struct {
	Handler
	service port.Service
}

func NewProductHandler(service port.Service, logger *zap.Logger) (*ProductHandler, error) {
	return &ProductHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

func (ph *ProductHandler) ListProducts(ctx *gin.Context) {
	activeOnly := ctx.Query("active_only") == "true"

	list, err := ph.service.ListProducts(ctx.Request.Context(), getAuthPayload(ctx), ctx.Query("search"), activeOnly)
	if err != nil {
		ph.handleError(ctx, err)
		return
	}

	result := make([]productResponse, 0, len(list))
	for i := range list {
		result = append(result, newProductResponse(&list[i]))
	}
	ph.handleSuccess(ctx, result)
}

func (ph *ProductHandler) GetProduct(ctx *gin.Context) {
	id, ok := ph.pathID(ctx, "id")
	if !ok {
		return
	}

	p, err := ph.service.GetProduct(ctx.Request.Context(), getAuthPayload(ctx), domain.ProductID(id))
	if err != nil {
		ph.handleError(ctx, err)
		return
	}
	ph.handleSuccess(ctx, newProductResponse(p))
}

func (ph *ProductHandler) CreateProduct(ctx *gin.Context) {
	req := productRequest{}
	if !ph.bindAndValidate(ctx, &req) {
		return
	}

	p, err := ph.service.CreateProduct(ctx.Request.Context(), getAuthPayload(ctx), req.toDomain())
	if err != nil {
		ph.handleError(ctx, err)
		return
	}
	ph.handleSuccessWithStatus(ctx, newProductResponse(p), http.StatusCreated)
}

func (ph *ProductHandler) UpdateProduct(ctx *gin.Context) {
	id, ok := ph.pathID(ctx, "id")
	if !ok {
		return
	}
	req := productRequest{}
	if !ph.bindAndValidate(ctx, &req) {
		return
	}

	p, err := ph.service.UpdateProduct(ctx.Request.Context(), getAuthPayload(ctx), domain.ProductID(id), req.toDomain())
	if err != nil {
		ph.handleError(ctx, err)
		return
	}
	ph.handleSuccess(ctx, newProductResponse(p))
}

func (ph *ProductHandler) DeleteProduct(ctx *gin.Context) {
	id, ok := ph.pathID(ctx, "id")
	if !ok {
		return
	}

	if err := ph.service.DeleteProduct(ctx.Request.Context(), getAuthPayload(ctx), domain.ProductID(id)); err != nil {
		ph.handleError(ctx, err)
		return
	}
	ph.handleSuccessWithStatus(ctx, nil, http.StatusNoContent)
}

func (ph *ProductHandler) ListCategories(ctx *gin.Context) {
	list, err := ph.service.ListCategories(ctx.Request.Context(), getAuthPayload(ctx))
	if err != nil {
		ph.handleError(ctx, err)
		return
	}

	result := make([]*categoryResponse, 0, len(list))
	for i := range list {
		result = append(result, newCategoryResponse(&list[i]))
	}
	ph.handleSuccess(ctx, result)
}
