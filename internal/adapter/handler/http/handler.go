package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/MikeRez0/posadmin/internal/core/domain"
	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var errorStatusMap = map[error]int{
	domain.ErrInternal:        http.StatusInternalServerError,
	domain.ErrDataNotFound:    http.StatusNotFound,
	domain.ErrConflictingData: http.StatusConflict,

	domain.ErrInvalidCredentials:         http.StatusUnauthorized,
	domain.ErrUnauthorized:               http.StatusUnauthorized,
	domain.ErrEmptyAuthorizationHeader:   http.StatusUnauthorized,
	domain.ErrInvalidAuthorizationHeader: http.StatusUnauthorized,
	domain.ErrInvalidAuthorizationType:   http.StatusUnauthorized,
	domain.ErrInvalidToken:               http.StatusUnauthorized,
	domain.ErrExpiredToken:               http.StatusUnauthorized,
	domain.ErrTokenCreation:              http.StatusInternalServerError,

	domain.ErrNoUpdatedData: http.StatusBadRequest,
	domain.ErrBadRequest:    http.StatusBadRequest,

	domain.ErrOutOfStock:           http.StatusConflict,
	domain.ErrInvalidQuantity:      http.StatusUnprocessableEntity,
	domain.ErrInvalidDiscount:      http.StatusUnprocessableEntity,
	domain.ErrInvalidPaymentMethod: http.StatusUnprocessableEntity,
	domain.ErrEmptyOrder:           http.StatusUnprocessableEntity,
	domain.ErrMissingPaymentMethod: http.StatusUnprocessableEntity,
	domain.ErrProductNotFound:      http.StatusNotFound,
	domain.ErrAlreadySubmitting:    http.StatusConflict,
	domain.ErrDraftConsumed:        http.StatusGone,

	domain.ErrNetworkFailure: http.StatusServiceUnavailable,
}

type errorResponse struct {
	Error string `json:"error"`

	ProductID *int64 `json:"product_id,omitempty"`
	Available *int   `json:"available,omitempty"`
	Requested *int   `json:"requested,omitempty"`

	Fields map[string]string `json:"fields,omitempty"`
}

// statusFor maps an error to its HTTP status. Remote client errors keep the
// upstream status; remote server errors become 502.
func statusFor(err error) int {
	var remote *domain.RemoteError
	if errors.As(err, &remote) {
		if remote.StatusCode >= 400 && remote.StatusCode < 500 {
			return remote.StatusCode
		}
		return http.StatusBadGateway
	}

	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

func newErrorResponse(err error, status int) errorResponse {
	if status == http.StatusInternalServerError {
		return errorResponse{Error: domain.ErrInternal.Error()}
	}

	resp := errorResponse{Error: err.Error()}
	var stock *domain.StockError
	if errors.As(err, &stock) {
		id := int64(stock.ProductID)
		resp.ProductID = &id
		resp.Available = &stock.Available
		resp.Requested = &stock.Requested
	}
	return resp
}

type Handler struct {
	logger   *zap.Logger
	validate *validatorv10.Validate
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger, validate: validatorv10.New()}
}

// bindAndValidate decodes the JSON body into out and checks its validate tags.
func (h *Handler) bindAndValidate(ctx *gin.Context, out any) bool {
	if err := ctx.ShouldBindJSON(out); err != nil {
		h.handleValidationError(ctx, err)
		return false
	}
	if err := h.validate.Struct(out); err != nil {
		h.handleValidationError(ctx, err)
		return false
	}
	return true
}

// handleValidationError sends an error response for some specific request validation error
func (h *Handler) handleValidationError(ctx *gin.Context, err error) {
	resp := errorResponse{Error: domain.ErrBadRequest.Error()}

	var verrs validatorv10.ValidationErrors
	if errors.As(err, &verrs) {
		resp.Fields = make(map[string]string, len(verrs))
		for _, fe := range verrs {
			resp.Fields[fe.Field()] = fe.Tag()
		}
	}
	ctx.AbortWithStatusJSON(http.StatusBadRequest, resp)
}

// handleAbort sends an error response and aborts the request with the specified status code and error message
func (h *Handler) handleAbort(ctx *gin.Context, err error) {
	_ = ctx.Error(err)
	h.handleError(ctx, err)
}

func (h *Handler) handleError(ctx *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("error processing request",
			zap.String("path", ctx.FullPath()),
			zap.Int("status", status),
			zap.Error(err))
	}

	var unavailable *domain.UnavailableError
	if errors.As(err, &unavailable) && unavailable.RetryAfter > 0 {
		ctx.Header("Retry-After", strconv.Itoa(int(unavailable.RetryAfter.Seconds())))
	}
	ctx.AbortWithStatusJSON(status, newErrorResponse(err, status))
}

// handleSuccessWithStatus sends a success response with the specified status code and optional data
func (h *Handler) handleSuccessWithStatus(ctx *gin.Context, data any, status int) {
	if data != nil {
		ctx.JSON(status, data)
	} else {
		ctx.Status(status)
	}
}

func (h *Handler) handleSuccess(ctx *gin.Context, data any) {
	h.handleSuccessWithStatus(ctx, data, http.StatusOK)
}

func (h *Handler) pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		h.handleValidationError(ctx, err)
		return 0, false
	}
	return id, true
}
