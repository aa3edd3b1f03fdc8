package port

import (
	"context"

	"github.com/MikeRez0/posadmin/internal/core/domain"
)

// Catalog returns a fresh snapshot of the active products on every call.
type Catalog interface {
	FetchCatalog(ctx context.Context) ([]domain.Product, error)
}

// OrderSink finalizes orders. A failed call is either a remote rejection
// (domain.ErrRemoteRejection) or a network failure (domain.ErrNetworkFailure).
type OrderSink interface {
	SubmitOrder(ctx context.Context, req *domain.OrderRequest, idempotencyKey string) (*domain.Order, error)
}

//go:generate mockgen -source=posapi.go -destination=mock/posapi.go -package=mock
type RemoteAPI interface {
	Catalog
	OrderSink

	CurrentUser(ctx context.Context) (*domain.User, error)

	// Product
	ListProducts(ctx context.Context, activeOnly bool) ([]domain.Product, error)
	GetProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error)
	CreateProduct(ctx context.Context, input *domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id domain.ProductID, input *domain.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id domain.ProductID) error
	ListCategories(ctx context.Context) ([]domain.Category, error)

	// Customer
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, id domain.CustomerID) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, input *domain.CustomerInput) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, id domain.CustomerID, input *domain.CustomerInput) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, id domain.CustomerID) error

	// Order
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	GetOrder(ctx context.Context, id domain.OrderID) (*domain.Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error)
	UpdateOrder(ctx context.Context, id domain.OrderID, update *domain.OrderUpdate) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id domain.OrderID) error
	CompleteOrder(ctx context.Context, id domain.OrderID) (*domain.Order, error)
	CancelOrder(ctx context.Context, id domain.OrderID) (*domain.Order, error)
	RefundOrder(ctx context.Context, id domain.OrderID) (*domain.Order, error)
}

// Connector opens remote api sessions. Session never performs I/O.
type Connector interface {
	Login(ctx context.Context, username, password string) (string, error)
	Session(apiToken string) RemoteAPI
}
