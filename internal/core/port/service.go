package port

import (
	"context"

	"github.com/MikeRez0/posadmin/internal/core/domain"
)

//go:generate mockgen -source=service.go -destination=mock/service.go -package=mock
type Service interface {
	Login(ctx context.Context, username string, password string) (string, error)

	// Draft
	CreateDraft(ctx context.Context, user *TokenPayload) (*domain.DraftView, error)
	GetDraft(user *TokenPayload, draftID string) (*domain.DraftView, error)
	DiscardDraft(user *TokenPayload, draftID string) error
	AddDraftItem(user *TokenPayload, draftID string, productID domain.ProductID) (*domain.DraftView, error)
	SetDraftItemQuantity(user *TokenPayload, draftID string,
		productID domain.ProductID, quantity int) (*domain.DraftView, error)
	RemoveDraftItem(user *TokenPayload, draftID string, productID domain.ProductID) (*domain.DraftView, error)
	UpdateDraftDetails(user *TokenPayload, draftID string, details *domain.DraftDetails) (*domain.DraftView, error)
	RefreshDraftCatalog(ctx context.Context, user *TokenPayload, draftID string) (*domain.DraftView, error)
	SubmitDraft(ctx context.Context, user *TokenPayload, draftID string) (*domain.DraftView, error)
	ListSubmissions(ctx context.Context, limit int) ([]domain.Submission, error)

	// Product
	ListProducts(ctx context.Context, user *TokenPayload, search string, activeOnly bool) ([]domain.Product, error)
	GetProduct(ctx context.Context, user *TokenPayload, id domain.ProductID) (*domain.Product, error)
	CreateProduct(ctx context.Context, user *TokenPayload, input *domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, user *TokenPayload,
		id domain.ProductID, input *domain.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, user *TokenPayload, id domain.ProductID) error
	ListCategories(ctx context.Context, user *TokenPayload) ([]domain.Category, error)

	// Customer
	ListCustomers(ctx context.Context, user *TokenPayload, search string) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, user *TokenPayload, id domain.CustomerID) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, user *TokenPayload, input *domain.CustomerInput) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, user *TokenPayload,
		id domain.CustomerID, input *domain.CustomerInput) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, user *TokenPayload, id domain.CustomerID) error

	// Order
	ListOrders(ctx context.Context, user *TokenPayload, filter domain.OrderFilter, search string) ([]domain.Order, error)
	GetOrder(ctx context.Context, user *TokenPayload, id domain.OrderID) (*domain.Order, error)
	GetOrderByNumber(ctx context.Context, user *TokenPayload, number string) (*domain.Order, error)
	UpdateOrder(ctx context.Context, user *TokenPayload,
		id domain.OrderID, update *domain.OrderUpdate) (*domain.Order, error)
	DeleteOrder(ctx context.Context, user *TokenPayload, id domain.OrderID) error
	CompleteOrder(ctx context.Context, user *TokenPayload, id domain.OrderID) (*domain.Order, error)
	CancelOrder(ctx context.Context, user *TokenPayload, id domain.OrderID) (*domain.Order, error)
	RefundOrder(ctx context.Context, user *TokenPayload, id domain.OrderID) (*domain.Order, error)

	Dashboard(ctx context.Context, user *TokenPayload) (*domain.DashboardStats, error)
}
