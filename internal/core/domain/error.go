package domain

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrInternal = errors.New("internal error")

	// * Data errors.
	ErrDataNotFound    = errors.New("data not found")
	ErrNoUpdatedData   = errors.New("no data to update")
	ErrConflictingData = errors.New("data conflicts with existing data in unique column")

	// * Communication errors.
	ErrBadRequest      = errors.New("error parsing request")
	ErrNetworkFailure  = errors.New("remote api call did not complete")
	ErrRemoteRejection = errors.New("remote api rejected the request")

	// * Authority errors.
	ErrTokenCreation              = errors.New("error creating token")
	ErrExpiredToken               = errors.New("access token has expired")
	ErrInvalidToken               = errors.New("access token is invalid")
	ErrInvalidCredentials         = errors.New("invalid username or password")
	ErrEmptyAuthorizationHeader   = errors.New("authorization header is not provided")
	ErrInvalidAuthorizationHeader = errors.New("authorization header format is invalid")
	ErrInvalidAuthorizationType   = errors.New("authorization type is not supported")
	ErrUnauthorized               = errors.New("user is unauthorized to access the resource")

	// * Order building errors.
	ErrOutOfStock           = errors.New("requested quantity exceeds available stock")
	ErrInvalidQuantity      = errors.New("quantity must not be negative")
	ErrInvalidDiscount      = errors.New("discount must not be negative")
	ErrInvalidPaymentMethod = errors.New("payment method is not supported")
	ErrEmptyOrder           = errors.New("order must have at least one item")
	ErrMissingPaymentMethod = errors.New("payment method is required")
	ErrProductNotFound      = errors.New("product not found or inactive")
	ErrAlreadySubmitting    = errors.New("order submission already in progress")
	ErrDraftConsumed        = errors.New("order draft was already submitted")
)

// StockError reports a quantity that the catalog snapshot cannot cover.
type StockError struct {
	ProductID ProductID
	Name      string
	Available int
	Requested int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d",
		e.Name, e.Available, e.Requested)
}

func (e *StockError) Is(target error) bool {
	return target == ErrOutOfStock
}

// RemoteError is a completed remote api call that answered with a non-success status.
type RemoteError struct {
	StatusCode int
	Detail     string
}

func (e *RemoteError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("remote api rejected request: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("remote api rejected request: %d %s", e.StatusCode, e.Detail)
}

func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrRemoteRejection:
		return true
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrDataNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// UnavailableError is a remote api answer that asks the caller to come back
// later. RetryAfter is zero when the server did not say.
type UnavailableError struct {
	StatusCode int
	RetryAfter time.Duration
}

func (e *UnavailableError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("remote api unavailable: %d %s, retry after %s",
			e.StatusCode, http.StatusText(e.StatusCode), e.RetryAfter)
	}
	return fmt.Sprintf("remote api unavailable: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrNetworkFailure
}
