package posapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/MikeRez0/posadmin/internal/core/domain"
)

func orderPath(id domain.OrderID) string {
	return "/orders/" + strconv.FormatInt(int64(id), 10)
}

// SubmitOrder finalizes the order. It is never retried here; the caller owns
// retries and passes the same idempotency key each time.
func (s *SessionClient) SubmitOrder(ctx context.Context, req *domain.OrderRequest,
	idempotencyKey string) (*domain.Order, error) {
	return s.sendOrder(ctx, &request{
		endpoint:       "orders.create",
		method:         http.MethodPost,
		path:           "/orders/",
		body:           newOrderCreateDTO(req),
		idempotencyKey: idempotencyKey,
	})
}

func (s *SessionClient) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	if filter.CustomerID != nil {
		query.Set("customer_id", strconv.FormatInt(int64(*filter.CustomerID), 10))
	}
	if filter.Skip > 0 {
		query.Set("skip", strconv.Itoa(filter.Skip))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}

	var list []orderDTO
	err := s.do(ctx, &request{
		endpoint: "orders.list",
		method:   http.MethodGet,
		path:     "/orders/",
		query:    query,
	}, &list)
	if err != nil {
		return nil, err
	}
	return ordersToDomain(list)
}

func (s *SessionClient) GetOrder(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	return s.sendOrder(ctx, &request{
		endpoint: "orders.get",
		method:   http.MethodGet,
		path:     orderPath(id),
	})
}

func (s *SessionClient) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return s.sendOrder(ctx, &request{
		endpoint: "orders.by_number",
		method:   http.MethodGet,
		path:     "/orders/number/" + url.PathEscape(number),
	})
}

func (s *SessionClient) UpdateOrder(ctx context.Context, id domain.OrderID,
	update *domain.OrderUpdate) (*domain.Order, error) {
	return s.sendOrder(ctx, &request{
		endpoint: "orders.update",
		method:   http.MethodPut,
		path:     orderPath(id),
		body:     newOrderUpdateDTO(update),
	})
}

func (s *SessionClient) DeleteOrder(ctx context.Context, id domain.OrderID) error {
	return s.do(ctx, &request{
		endpoint: "orders.delete",
		method:   http.MethodDelete,
		path:     orderPath(id),
	}, nil)
}

func (s *SessionClient) CompleteOrder(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	return s.transition(ctx, id, "complete")
}

func (s *SessionClient) CancelOrder(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	return s.transition(ctx, id, "cancel")
}

func (s *SessionClient) RefundOrder(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	return s.transition(ctx, id, "refund")
}

func (s *SessionClient) transition(ctx context.Context, id domain.OrderID, action string) (*domain.Order, error) {
	return s.sendOrder(ctx, &request{
		endpoint: "orders." + action,
		method:   http.MethodPost,
		path:     orderPath(id) + "/" + action,
	})
}

func (s *SessionClient) sendOrder(ctx context.Context, r *request) (*domain.Order, error) {
	var resp orderEnvelope
	if err := s.do(ctx, r, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain()
}
