package http

import (
	"net/http"
	"strconv"

	"github.com/MikeRez0/posadmin/internal/core/domain"
	"github.com/MikeRez0/posadmin/internal/core/port"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DraftHandler struct {
	Handler
	service port.Service
}

func NewDraftHandler(service port.Service, logger *zap.Logger) (*DraftHandler, error) {
	return &DraftHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

func (dh *DraftHandler) respond(ctx *gin.Context, view *domain.DraftView, err error, status int) {
	if err != nil {
		dh.handleError(ctx, err)
		return
	}
	resp, err := newDraftResponse(view)
	if err != nil {
		dh.handleError(ctx, err)
		return
	}
	dh.handleSuccessWithStatus(ctx, resp, status)
}

func (dh *DraftHandler) CreateDraft(ctx *gin.Context) {
	view, err := dh.service.CreateDraft(ctx.Request.Context(), getAuthPayload(ctx))
	dh.respond(ctx, view, err, http.StatusCreated)
}

func (dh *DraftHandler) GetDraft(ctx *gin.Context) {
	view, err := dh.service.GetDraft(getAuthPayload(ctx), ctx.Param("id"))
	dh.respond(ctx, view, err, http.StatusOK)
}

func (dh *DraftHandler) DiscardDraft(ctx *gin.Context) {
	if err := dh.service.DiscardDraft(getAuthPayload(ctx), ctx.Param("id")); err != nil {
		dh.handleError(ctx, err)
		return
	}
	dh.handleSuccessWithStatus(ctx, nil, http.StatusNoContent)
}

func (dh *DraftHandler) AddItem(ctx *gin.Context) {
	req := addItemRequest{}
	if !dh.bindAndValidate(ctx, &req) {
		return
	}

	view, err := dh.service.AddDraftItem(getAuthPayload(ctx), ctx.Param("id"), domain.ProductID(req.ProductID))
	dh.respond(ctx, view, err, http.StatusOK)
}

func (dh *DraftHandler) SetItemQuantity(ctx *gin.Context) {
	productID, ok := dh.pathID(ctx, "product")
	if !ok {
		return
	}
	req := setQuantityRequest{}
	if !dh.bindAndValidate(ctx, &req) {
		return
	}

	view, err := dh.service.SetDraftItemQuantity(getAuthPayload(ctx), ctx.Param("id"),
		domain.ProductID(productID), *req.Quantity)
	dh.respond(ctx, view, err, http.StatusOK)
}

func (dh *DraftHandler) RemoveItem(ctx *gin.Context) {
	productID, ok := dh.pathID(ctx, "product")
	if !ok {
		return
	}

	view, err := dh.service.RemoveDraftItem(getAuthPayload(ctx), ctx.Param("id"), domain.ProductID(productID))
	dh.respond(ctx, view, err, http.StatusOK)
}

func (dh *DraftHandler) UpdateDetails(ctx *gin.Context) {
	req := draftDetailsRequest{}
	if !dh.bindAndValidate(ctx, &req) {
		return
	}
	details, err := req.toDomain()
	if err != nil {
		dh.handleError(ctx, err)
		return
	}

	view, err := dh.service.UpdateDraftDetails(getAuthPayload(ctx), ctx.Param("id"), details)
	dh.respond(ctx, view, err, http.StatusOK)
}

func (dh *DraftHandler) RefreshCatalog(ctx *gin.Context) {
	view, err := dh.service.RefreshDraftCatalog(ctx.Request.Context(), getAuthPayload(ctx), ctx.Param("id"))
	dh.respond(ctx, view, err, http.StatusOK)
}

func (dh *DraftHandler) Submit(ctx *gin.Context) {
	view, err := dh.service.SubmitDraft(ctx.Request.Context(), getAuthPayload(ctx), ctx.Param("id"))
	dh.respond(ctx, view, err, http.StatusCreated)
}

func (dh *DraftHandler) ListSubmissions(ctx *gin.Context) {
	limit := 0
	if s := ctx.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			dh.handleValidationError(ctx, err)
			return
		}
		limit = n
	}

	list, err := dh.service.ListSubmissions(ctx.Request.Context(), limit)
	if err != nil {
		dh.handleError(ctx, err)
		return
	}

	result := make([]submissionResponse, 0, len(list))
	for i := range list {
		result = append(result, newSubmissionResponse(&list[i]))
	}
	dh.handleSuccess(ctx, result)
}
