package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/MikeRez0/posadmin/internal/core/domain"
	"github.com/MikeRez0/posadmin/internal/core/port"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSubmissionsLimit = 50
	maxSubmissionsLimit     = 500
	journalWriteTimeout     = 5 * time.Second
)

type Config struct {
	TaxRate       decimal.Decimal
	SubmitTimeout time.Duration
	DraftTTL      time.Duration
}

type Service struct {
	connector    port.Connector
	tokenService port.TokenService
	journal      port.SubmissionJournal
	metrics      port.Metrics
	drafts       *DraftRegistry
	conf         Config
	logger       *zap.Logger
}

var _ port.Service = (*Service)(nil)

func NewService(connector port.Connector, tokenService port.TokenService,
	journal port.SubmissionJournal, metrics port.Metrics,
	conf Config, logger *zap.Logger) (*Service, error) {
	if conf.TaxRate.Sign() < 0 {
		return nil, errors.New("tax rate must not be negative")
	}
	return &Service{
		connector:    connector,
		tokenService: tokenService,
		journal:      journal,
		metrics:      metrics,
		drafts:       NewDraftRegistry(conf.DraftTTL, metrics.SetOpenDrafts),
		conf:         conf,
		logger:       logger,
	}, nil
}

func (s *Service) session(user *port.TokenPayload) port.RemoteAPI {
	return s.connector.Session(user.APIToken)
}

func (s *Service) Login(ctx context.Context, username string, password string) (string, error) {
	apiToken, err := s.connector.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return "", domain.ErrInvalidCredentials
		}
		s.logger.Error("Remote login", zap.Error(err))
		return "", err
	}

	user, err := s.connector.Session(apiToken).CurrentUser(ctx)
	if err != nil {
		s.logger.Error("Get current user", zap.Error(err))
		return "", err
	}
	if !user.IsActive {
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.tokenService.CreateToken(user.Username, apiToken)
	if err != nil {
		s.logger.Error("Create token", zap.Error(err))
		return "", domain.ErrTokenCreation
	}

	return token, nil
}

func (s *Service) CreateDraft(ctx context.Context, user *port.TokenPayload) (*domain.DraftView, error) {
	api := s.session(user)
	catalog, err := api.FetchCatalog(ctx)
	if err != nil {
		return nil, err
	}

	b := NewOrderBuilder(uuid.NewString(), catalog, api, BuilderConfig{
		TaxRate:       s.conf.TaxRate,
		SubmitTimeout: s.conf.SubmitTimeout,
		Username:      user.Username,
		OnSubmit:      s.recordSubmission,
	}, s.logger.Named("builder"))

	s.drafts.Add(user.Username, b)

	return b.Snapshot()
}

func (s *Service) withDraft(user *port.TokenPayload, draftID string,
	fn func(b *OrderBuilder) error) (*domain.DraftView, error) {
	b, err := s.drafts.Get(user.Username, draftID)
	if err != nil {
		return nil, err
	}
	if err := fn(b); err != nil {
		return nil, err
	}
	return b.Snapshot()
}

func (s *Service) GetDraft(user *port.TokenPayload, draftID string) (*domain.DraftView, error) {
	return s.withDraft(user, draftID, func(*OrderBuilder) error { return nil })
}

func (s *Service) DiscardDraft(user *port.TokenPayload, draftID string) error {
	b, err := s.drafts.Get(user.Username, draftID)
	if err != nil {
		return err
	}
	if err := b.checkDiscardable(); err != nil {
		return err
	}

	return s.drafts.Remove(user.Username, draftID)
}

func (s *Service) AddDraftItem(user *port.TokenPayload, draftID string,
	productID domain.ProductID) (*domain.DraftView, error) {
	return s.withDraft(user, draftID, func(b *OrderBuilder) error {
		return b.AddItem(productID)
	})
}

func (s *Service) SetDraftItemQuantity(user *port.TokenPayload, draftID string,
	productID domain.ProductID, quantity int) (*domain.DraftView, error) {
	return s.withDraft(user, draftID, func(b *OrderBuilder) error {
		return b.SetQuantity(productID, quantity)
	})
}

func (s *Service) RemoveDraftItem(user *port.TokenPayload, draftID string,
	productID domain.ProductID) (*domain.DraftView, error) {
	return s.withDraft(user, draftID, func(b *OrderBuilder) error {
		return b.RemoveItem(productID)
	})
}

func (s *Service) UpdateDraftDetails(user *port.TokenPayload, draftID string,
	details *domain.DraftDetails) (*domain.DraftView, error) {
	return s.withDraft(user, draftID, func(b *OrderBuilder) error {
		return b.Apply(details)
	})
}

func (s *Service) RefreshDraftCatalog(ctx context.Context, user *port.TokenPayload,
	draftID string) (*domain.DraftView, error) {
	b, err := s.drafts.Get(user.Username, draftID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.session(user).FetchCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if err := b.RefreshCatalog(catalog); err != nil {
		return nil, err
	}
	return b.Snapshot()
}

// SubmitDraft submits the draft. Submitting a draft that is already
// confirmed returns it unchanged, so a client whose response was lost can
// safely repeat the call.
func (s *Service) SubmitDraft(ctx context.Context, user *port.TokenPayload,
	draftID string) (*domain.DraftView, error) {
	b, err := s.drafts.Get(user.Username, draftID)
	if err != nil {
		return nil, err
	}

	if _, err := b.Submit(ctx); err != nil {
		return nil, err
	}
	s.drafts.Settled()

	return b.Snapshot()
}

// recordSubmission journals a submit attempt. Journal failures never fail
// the submission itself.
func (s *Service) recordSubmission(ctx context.Context, sub *domain.Submission, elapsed time.Duration) {
	s.metrics.RecordSubmission(sub.Outcome, elapsed)

	jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalWriteTimeout)
	defer cancel()

	if err := s.journal.Record(jctx, sub); err != nil {
		s.logger.Error("Record submission",
			zap.String("draft", sub.DraftID),
			zap.Int("attempt", sub.Attempt),
			zap.Error(err))
	}
}

func (s *Service) ListSubmissions(ctx context.Context, limit int) ([]domain.Submission, error) {
	if limit <= 0 {
		limit = defaultSubmissionsLimit
	}
	if limit > maxSubmissionsLimit {
		limit = maxSubmissionsLimit
	}

	list, err := s.journal.List(ctx, limit)
	if err != nil {
		s.logger.Error("List submissions", zap.Error(err))
		return nil, domain.ErrInternal
	}
	return list, nil
}

func (s *Service) ListProducts(ctx context.Context, user *port.TokenPayload,
	search string, activeOnly bool) ([]domain.Product, error) {
	list, err := s.session(user).ListProducts(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	return domain.FilterProducts(list, search), nil
}

func (s *Service) GetProduct(ctx context.Context, user *port.TokenPayload,
	id domain.ProductID) (*domain.Product, error) {
	return s.session(user).GetProduct(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, user *port.TokenPayload,
	input *domain.ProductInput) (*domain.Product, error) {
	if input.Name == nil || input.Price == nil {
		return nil, domain.ErrBadRequest
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	return s.session(user).CreateProduct(ctx, input)
}

func (s *Service) UpdateProduct(ctx context.Context, user *port.TokenPayload,
	id domain.ProductID, input *domain.ProductInput) (*domain.Product, error) {
	if input.Empty() {
		return nil, domain.ErrNoUpdatedData
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	return s.session(user).UpdateProduct(ctx, id, input)
}

func validateProductInput(input *domain.ProductInput) error {
	if input.Price != nil && input.Price.Sign() < 0 {
		return domain.ErrBadRequest
	}
	if input.Cost != nil && input.Cost.Sign() < 0 {
		return domain.ErrBadRequest
	}
	if input.StockQuantity != nil && *input.StockQuantity < 0 {
		return domain.ErrInvalidQuantity
	}
	return nil
}

func (s *Service) DeleteProduct(ctx context.Context, user *port.TokenPayload, id domain.ProductID) error {
	return s.session(user).DeleteProduct(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context, user *port.TokenPayload) ([]domain.Category, error) {
	return s.session(user).ListCategories(ctx)
}

func (s *Service) ListCustomers(ctx context.Context, user *port.TokenPayload,
	search string) ([]domain.Customer, error) {
	list, err := s.session(user).ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterCustomers(list, search), nil
}

func (s *Service) GetCustomer(ctx context.Context, user *port.TokenPayload,
	id domain.CustomerID) (*domain.Customer, error) {
	return s.session(user).GetCustomer(ctx, id)
}

func (s *Service) CreateCustomer(ctx context.Context, user *port.TokenPayload,
	input *domain.CustomerInput) (*domain.Customer, error) {
	if input.Name == nil || *input.Name == "" {
		return nil, domain.ErrBadRequest
	}
	return s.session(user).CreateCustomer(ctx, input)
}

func (s *Service) UpdateCustomer(ctx context.Context, user *port.TokenPayload,
	id domain.CustomerID, input *domain.CustomerInput) (*domain.Customer, error) {
	if input.Empty() {
		return nil, domain.ErrNoUpdatedData
	}
	return s.session(user).UpdateCustomer(ctx, id, input)
}

func (s *Service) DeleteCustomer(ctx context.Context, user *port.TokenPayload, id domain.CustomerID) error {
	return s.session(user).DeleteCustomer(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, user *port.TokenPayload,
	filter domain.OrderFilter, search string) ([]domain.Order, error) {
	list, err := s.session(user).ListOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	return domain.FilterOrders(list, search), nil
}

func (s *Service) GetOrder(ctx context.Context, user *port.TokenPayload, id domain.OrderID) (*domain.Order, error) {
	return s.session(user).GetOrder(ctx, id)
}

func (s *Service) GetOrderByNumber(ctx context.Context, user *port.TokenPayload,
	number string) (*domain.Order, error) {
	return s.session(user).GetOrderByNumber(ctx, number)
}

func (s *Service) UpdateOrder(ctx context.Context, user *port.TokenPayload,
	id domain.OrderID, update *domain.OrderUpdate) (*domain.Order, error) {
	if update.Empty() {
		return nil, domain.ErrNoUpdatedData
	}
	if update.Discount != nil && update.Discount.Sign() < 0 {
		return nil, domain.ErrInvalidDiscount
	}
	if update.PaymentMethod != nil {
		if _, err := domain.ParsePaymentMethod(string(*update.PaymentMethod)); err != nil {
			return nil, err
		}
	}
	return s.session(user).UpdateOrder(ctx, id, update)
}

func (s *Service) DeleteOrder(ctx context.Context, user *port.TokenPayload, id domain.OrderID) error {
	return s.session(user).DeleteOrder(ctx, id)
}

func (s *Service) CompleteOrder(ctx context.Context, user *port.TokenPayload,
	id domain.OrderID) (*domain.Order, error) {
	return s.session(user).CompleteOrder(ctx, id)
}

func (s *Service) CancelOrder(ctx context.Context, user *port.TokenPayload,
	id domain.OrderID) (*domain.Order, error) {
	return s.session(user).CancelOrder(ctx, id)
}

func (s *Service) RefundOrder(ctx context.Context, user *port.TokenPayload,
	id domain.OrderID) (*domain.Order, error) {
	return s.session(user).RefundOrder(ctx, id)
}

// Dashboard fetches orders, products and customers concurrently and
// aggregates them.
func (s *Service) Dashboard(ctx context.Context, user *port.TokenPayload) (*domain.DashboardStats, error) {
	api := s.session(user)

	var (
		orders    []domain.Order
		products  []domain.Product
		customers []domain.Customer
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = api.ListOrders(gctx, domain.OrderFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		products, err = api.ListProducts(gctx, false)
		return err
	})
	g.Go(func() error {
		var err error
		customers, err = api.ListCustomers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &domain.DashboardStats{
		TotalOrders:    len(orders),
		TotalProducts:  len(products),
		TotalCustomers: len(customers),
		TotalRevenue:   decimal.Zero,
	}

	for _, o := range orders {
		revenue, err := stats.TotalRevenue.Add(o.Total)
		if err != nil {
			s.logger.Error("Sum revenue", zap.Error(err))
			return nil, domain.ErrInternal
		}
		stats.TotalRevenue = revenue
	}

	for i := range products {
		if products[i].LowStock() {
			stats.LowStockProducts++
		}
	}

	// newest first
	recent := append([]domain.Order(nil), orders...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > domain.RecentOrdersLimit {
		recent = recent[:domain.RecentOrdersLimit]
	}
	stats.RecentOrders = recent

	return stats, nil
}
