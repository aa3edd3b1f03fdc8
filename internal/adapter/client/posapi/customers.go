package posapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/MikeRez0/posadmin/internal/core/domain"
)

func customerPath(id domain.CustomerID) string {
	return "/customers/" + strconv.FormatInt(int64(id), 10)
}

func (s *SessionClient) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	var list []customerDTO
	err := s.do(ctx, &request{
		endpoint: "customers.list",
		method:   http.MethodGet,
		path:     "/customers/",
	}, &list)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Customer, 0, len(list))
	for i := range list {
		result = append(result, list[i].toDomain())
	}
	return result, nil
}

func (s *SessionClient) GetCustomer(ctx context.Context, id domain.CustomerID) (*domain.Customer, error) {
	return s.sendCustomer(ctx, &request{
		endpoint: "customers.get",
		method:   http.MethodGet,
		path:     customerPath(id),
	})
}

func (s *SessionClient) CreateCustomer(ctx context.Context, input *domain.CustomerInput) (*domain.Customer, error) {
	return s.sendCustomer(ctx, &request{
		endpoint: "customers.create",
		method:   http.MethodPost,
		path:     "/customers/",
		body:     (*customerInputDTO)(input),
	})
}

func (s *SessionClient) UpdateCustomer(ctx context.Context, id domain.CustomerID,
	input *domain.CustomerInput) (*domain.Customer, error) {
	return s.sendCustomer(ctx, &request{
		endpoint: "customers.update",
		method:   http.MethodPut,
		path:     customerPath(id),
		body:     (*customerInputDTO)(input),
	})
}

func (s *SessionClient) sendCustomer(ctx context.Context, r *request) (*domain.Customer, error) {
	var resp customerDTO
	if err := s.do(ctx, r, &resp); err != nil {
		return nil, err
	}
	c := resp.toDomain()
	return &c, nil
}

func (s *SessionClient) DeleteCustomer(ctx context.Context, id domain.CustomerID) error {
	return s.do(ctx, &request{
		endpoint: "customers.delete",
		method:   http.MethodDelete,
		path:     customerPath(id),
	}, nil)
}
