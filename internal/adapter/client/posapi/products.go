package posapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/MikeRez0/posadmin/internal/core/domain"
)

// FetchCatalog returns the active products as the remote api sees them now.
func (s *SessionClient) FetchCatalog(ctx context.Context) ([]domain.Product, error) {
	return s.listProducts(ctx, "products.catalog", true)
}

func (s *SessionClient) ListProducts(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	return s.listProducts(ctx, "products.list", activeOnly)
}

func (s *SessionClient) listProducts(ctx context.Context, endpoint string, activeOnly bool) ([]domain.Product, error) {
	query := url.Values{}
	if activeOnly {
		query.Set("active_only", "true")
	}

	var list []productDTO
	err := s.do(ctx, &request{
		endpoint: endpoint,
		method:   http.MethodGet,
		path:     "/products/",
		query:    query,
	}, &list)
	if err != nil {
		return nil, err
	}
	return productsToDomain(list)
}

func productPath(id domain.ProductID) string {
	return "/products/" + strconv.FormatInt(int64(id), 10)
}

func (s *SessionClient) GetProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	return s.sendProduct(ctx, &request{
		endpoint: "products.get",
		method:   http.MethodGet,
		path:     productPath(id),
	})
}

func (s *SessionClient) CreateProduct(ctx context.Context, input *domain.ProductInput) (*domain.Product, error) {
	return s.sendProduct(ctx, &request{
		endpoint: "products.create",
		method:   http.MethodPost,
		path:     "/products/",
		body:     newProductInputDTO(input),
	})
}

func (s *SessionClient) UpdateProduct(ctx context.Context, id domain.ProductID,
	input *domain.ProductInput) (*domain.Product, error) {
	return s.sendProduct(ctx, &request{
		endpoint: "products.update",
		method:   http.MethodPut,
		path:     productPath(id),
		body:     newProductInputDTO(input),
	})
}

func (s *SessionClient) sendProduct(ctx context.Context, r *request) (*domain.Product, error) {
	var resp productDTO
	if err := s.do(ctx, r, &resp); err != nil {
		return nil, err
	}
	p, err := resp.toDomain()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SessionClient) DeleteProduct(ctx context.Context, id domain.ProductID) error {
	return s.do(ctx, &request{
		endpoint: "products.delete",
		method:   http.MethodDelete,
		path:     productPath(id),
	}, nil)
}

func (s *SessionClient) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var list []categoryDTO
	err := s.do(ctx, &request{
		endpoint: "products.categories",
		method:   http.MethodGet,
		path:     "/products/categories",
	}, &list)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Category, 0, len(list))
	for i := range list {
		result = append(result, list[i].toDomain())
	}
	return result, nil
}
