package service_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/MikeRez0/posadmin/internal/core/domain"
	"github.com/MikeRez0/posadmin/internal/core/port"
	"github.com/MikeRez0/posadmin/internal/core/port/mock"
	"github.com/MikeRez0/posadmin/internal/core/service"
	"github.com/golang/mock/gomock"
	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type serviceMocks struct {
	connector *mock.MockConnector
	api       *mock.MockRemoteAPI
	tokens    *mock.MockTokenService
	journal   *mock.MockSubmissionJournal
	metrics   *mock.MockMetrics
}

type prepareMocks func(m *serviceMocks)

var testUser = &port.TokenPayload{Username: "admin", APIToken: "upstream-token"}

func newTestService(t *testing.T, mockCtrl *gomock.Controller) (*service.Service, *serviceMocks) {
	t.Helper()

	m := &serviceMocks{
		connector: mock.NewMockConnector(mockCtrl),
		api:       mock.NewMockRemoteAPI(mockCtrl),
		tokens:    mock.NewMockTokenService(mockCtrl),
		journal:   mock.NewMockSubmissionJournal(mockCtrl),
		metrics:   mock.NewMockMetrics(mockCtrl),
	}
	m.connector.EXPECT().Session(testUser.APIToken).Return(m.api).AnyTimes()

	logger, _ := zap.NewDevelopment()
	s, err := service.NewService(m.connector, m.tokens, m.journal, m.metrics, service.Config{
		TaxRate:       domain.DefaultTaxRate,
		SubmitTimeout: time.Second,
		DraftTTL:      time.Hour,
	}, logger)
	require.NoError(t, err)

	return s, m
}

func TestService_Login(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	type loginTest struct {
		name     string
		mock     prepareMocks
		expToken string
		expError error
	}

	tests := []loginTest{
		{
			name: "Login good",
			mock: func(m *serviceMocks) {
				m.connector.EXPECT().Login(gomock.Any(), "admin", "secret").Return(testUser.APIToken, nil)
				m.api.EXPECT().CurrentUser(gomock.Any()).Return(&domain.User{ID: 1, Username: "admin", IsActive: true}, nil)
				m.tokens.EXPECT().CreateToken("admin", testUser.APIToken).Return("session", nil)
			},
			expToken: "session",
		},
		{
			name: "Password bad",
			mock: func(m *serviceMocks) {
				m.connector.EXPECT().Login(gomock.Any(), "admin", "secret").
					Return("", &domain.RemoteError{StatusCode: http.StatusUnauthorized, Detail: "Incorrect username or password"})
			},
			expError: domain.ErrInvalidCredentials,
		},
		{
			name: "Inactive user",
			mock: func(m *serviceMocks) {
				m.connector.EXPECT().Login(gomock.Any(), "admin", "secret").Return(testUser.APIToken, nil)
				m.api.EXPECT().CurrentUser(gomock.Any()).Return(&domain.User{ID: 1, Username: "admin"}, nil)
			},
			expError: domain.ErrInvalidCredentials,
		},
		{
			name: "Remote down",
			mock: func(m *serviceMocks) {
				m.connector.EXPECT().Login(gomock.Any(), "admin", "secret").Return("", domain.ErrNetworkFailure)
			},
			expError: domain.ErrNetworkFailure,
		},
		{
			name: "Token creation fails",
			mock: func(m *serviceMocks) {
				m.connector.EXPECT().Login(gomock.Any(), "admin", "secret").Return(testUser.APIToken, nil)
				m.api.EXPECT().CurrentUser(gomock.Any()).Return(&domain.User{ID: 1, Username: "admin", IsActive: true}, nil)
				m.tokens.EXPECT().CreateToken("admin", testUser.APIToken).Return("", errors.New("boom"))
			},
			expError: domain.ErrTokenCreation,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s, m := newTestService(t, mockCtrl)
			test.mock(m)

			token, err := s.Login(context.Background(), "admin", "secret")
			assert.Equal(t, test.expToken, token)
			assert.ErrorIs(t, err, test.expError)
		})
	}
}

func TestService_DraftLifecycle(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	s, m := newTestService(t, mockCtrl)

	m.api.EXPECT().FetchCatalog(gomock.Any()).Return(testCatalog(), nil)
	m.metrics.EXPECT().SetOpenDrafts(1)

	view, err := s.CreateDraft(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, domain.DraftStateEmpty, view.State)
	id := view.ID

	// drafts are private to their owner
	_, err = s.GetDraft(&port.TokenPayload{Username: "other"}, id)
	assert.ErrorIs(t, err, domain.ErrDataNotFound)

	view, err = s.AddDraftItem(testUser, id, 1)
	require.NoError(t, err)
	assert.Len(t, view.Lines, 1)

	view, err = s.SetDraftItemQuantity(testUser, id, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Lines[0].Quantity)

	_, err = s.SetDraftItemQuantity(testUser, id, 1, 50)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)

	discount := decimal.MustParse("5.00")
	method := domain.PaymentMethodCash
	view, err = s.UpdateDraftDetails(testUser, id, &domain.DraftDetails{Discount: &discount, PaymentMethod: &method})
	require.NoError(t, err)
	assert.Equal(t, "27.40", view.Totals.Total.String())

	order := &domain.Order{ID: 10, Number: "ORD-1"}
	var sentKey string
	m.api.EXPECT().SubmitOrder(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *domain.OrderRequest, key string) (*domain.Order, error) {
			sentKey = key
			return order, nil
		}).Times(1)
	m.metrics.EXPECT().RecordSubmission(domain.SubmissionConfirmed, gomock.Any())
	m.journal.EXPECT().Record(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, sub *domain.Submission) error {
			assert.Equal(t, id, sub.DraftID)
			assert.Equal(t, sentKey, sub.IdempotencyKey)
			assert.Equal(t, "admin", sub.Username)
			assert.Equal(t, "ORD-1", sub.OrderNumber)
			return nil
		})
	m.metrics.EXPECT().SetOpenDrafts(0).Times(2)

	view, err = s.SubmitDraft(context.Background(), testUser, id)
	require.NoError(t, err)
	assert.Equal(t, domain.DraftStateConfirmed, view.State)
	assert.Equal(t, order, view.Order)
	assert.True(t, strings.HasPrefix(sentKey, id+"-"))

	// a repeated submit answers with the stored order
	view, err = s.SubmitDraft(context.Background(), testUser, id)
	require.NoError(t, err)
	assert.Equal(t, order, view.Order)

	_, err = s.AddDraftItem(testUser, id, 1)
	assert.ErrorIs(t, err, domain.ErrDraftConsumed)

	m.metrics.EXPECT().SetOpenDrafts(0)
	require.NoError(t, s.DiscardDraft(testUser, id))
	_, err = s.GetDraft(testUser, id)
	assert.ErrorIs(t, err, domain.ErrDataNotFound)
}

func TestService_SubmitRejectedKeepsDraft(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	s, m := newTestService(t, mockCtrl)

	m.api.EXPECT().FetchCatalog(gomock.Any()).Return(testCatalog(), nil)
	m.metrics.EXPECT().SetOpenDrafts(1)
	view, err := s.CreateDraft(context.Background(), testUser)
	require.NoError(t, err)
	id := view.ID

	_, err = s.AddDraftItem(testUser, id, 1)
	require.NoError(t, err)
	method := domain.PaymentMethodCard
	_, err = s.UpdateDraftDetails(testUser, id, &domain.DraftDetails{PaymentMethod: &method})
	require.NoError(t, err)

	rejection := &domain.RemoteError{StatusCode: http.StatusBadRequest, Detail: "Customer not found"}
	m.api.EXPECT().SubmitOrder(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, rejection)
	m.metrics.EXPECT().RecordSubmission(domain.SubmissionRejected, gomock.Any())
	// a broken journal is logged and ignored
	m.journal.EXPECT().Record(gomock.Any(), gomock.Any()).Return(errors.New("journal down"))

	_, err = s.SubmitDraft(context.Background(), testUser, id)
	assert.ErrorIs(t, err, domain.ErrRemoteRejection)

	view, err = s.GetDraft(testUser, id)
	require.NoError(t, err)
	assert.Equal(t, domain.DraftStateBuilding, view.State)
	assert.Len(t, view.Lines, 1)

	m.metrics.EXPECT().SetOpenDrafts(0)
	assert.NoError(t, s.DiscardDraft(testUser, id))
}

func TestService_RefreshDraftCatalog(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	s, m := newTestService(t, mockCtrl)

	m.api.EXPECT().FetchCatalog(gomock.Any()).Return(testCatalog(), nil)
	m.metrics.EXPECT().SetOpenDrafts(1)
	view, err := s.CreateDraft(context.Background(), testUser)
	require.NoError(t, err)

	m.api.EXPECT().FetchCatalog(gomock.Any()).Return(nil, domain.ErrNetworkFailure)
	_, err = s.RefreshDraftCatalog(context.Background(), testUser, view.ID)
	assert.ErrorIs(t, err, domain.ErrNetworkFailure)

	fresh := testCatalog()
	fresh[2].StockQuantity = 4
	m.api.EXPECT().FetchCatalog(gomock.Any()).Return(fresh, nil)
	_, err = s.RefreshDraftCatalog(context.Background(), testUser, view.ID)
	require.NoError(t, err)

	_, err = s.AddDraftItem(testUser, view.ID, 3)
	assert.NoError(t, err)
}

func TestService_ListSubmissions(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	s, m := newTestService(t, mockCtrl)

	m.journal.EXPECT().List(gomock.Any(), 50).Return([]domain.Submission{{DraftID: "a"}}, nil)
	list, err := s.ListSubmissions(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	m.journal.EXPECT().List(gomock.Any(), 500).Return(nil, errors.New("db down"))
	_, err = s.ListSubmissions(context.Background(), 10000)
	assert.Equal(t, domain.ErrInternal, err)
}

func TestService_SearchScreens(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	s, m := newTestService(t, mockCtrl)
	ctx := context.Background()

	m.api.EXPECT().ListProducts(gomock.Any(), true).Return(testCatalog(), nil)
	products, err := s.ListProducts(ctx, testUser, "b", true)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, domain.ProductID(2), products[0].ID)

	m.api.EXPECT().ListCustomers(gomock.Any()).Return([]domain.Customer{
		{ID: 1, Name: "Ada", Email: "ada@example.com"},
		{ID: 2, Name: "Bob"},
	}, nil)
	customers, err := s.ListCustomers(ctx, testUser, "EXAMPLE")
	require.NoError(t, err)
	assert.Len(t, customers, 1)

	filter := domain.OrderFilter{Status: domain.OrderStatusPending}
	m.api.EXPECT().ListOrders(gomock.Any(), filter).Return([]domain.Order{
		{ID: 1, Number: "ORD-20240101-AAAA"},
		{ID: 2, Number: "ORD-20240102-BBBB"},
	}, nil)
	orders, err := s.ListOrders(ctx, testUser, filter, "bbbb")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, domain.OrderID(2), orders[0].ID)
}

func TestService_AdminValidation(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	s, _ := newTestService(t, mockCtrl)
	ctx := context.Background()

	negative := decimal.MustParse("-1")
	_, err := s.UpdateOrder(ctx, testUser, 1, &domain.OrderUpdate{Discount: &negative})
	assert.ErrorIs(t, err, domain.ErrInvalidDiscount)

	bogus := domain.PaymentMethod("barter")
	_, err = s.UpdateOrder(ctx, testUser, 1, &domain.OrderUpdate{PaymentMethod: &bogus})
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentMethod)

	name := "Tea"
	_, err = s.CreateProduct(ctx, testUser, &domain.ProductInput{Name: &name})
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	_, err = s.CreateProduct(ctx, testUser, &domain.ProductInput{Name: &name, Price: &negative})
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	_, err = s.CreateCustomer(ctx, testUser, &domain.CustomerInput{})
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	_, err = s.UpdateCustomer(ctx, testUser, 1, &domain.CustomerInput{})
	assert.ErrorIs(t, err, domain.ErrNoUpdatedData)
	_, err = s.UpdateProduct(ctx, testUser, 1, &domain.ProductInput{})
	assert.ErrorIs(t, err, domain.ErrNoUpdatedData)
	_, err = s.UpdateOrder(ctx, testUser, 1, &domain.OrderUpdate{})
	assert.ErrorIs(t, err, domain.ErrNoUpdatedData)
}

func TestService_OrderTransitions(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	s, m := newTestService(t, mockCtrl)
	ctx := context.Background()

	m.api.EXPECT().CompleteOrder(gomock.Any(), domain.OrderID(5)).
		Return(&domain.Order{ID: 5, Status: domain.OrderStatusCompleted}, nil)
	order, err := s.CompleteOrder(ctx, testUser, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, order.Status)

	m.api.EXPECT().CancelOrder(gomock.Any(), domain.OrderID(5)).
		Return(nil, &domain.RemoteError{StatusCode: http.StatusBadRequest, Detail: "Cannot cancel order with status: completed"})
	_, err = s.CancelOrder(ctx, testUser, 5)
	assert.ErrorIs(t, err, domain.ErrRemoteRejection)
}

func TestService_Dashboard(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	orders := make([]domain.Order, 0, 7)
	for i := 0; i < 7; i++ {
		orders = append(orders, domain.Order{
			ID:        domain.OrderID(i + 1),
			Total:     decimal.MustParse("10.50"),
			CreatedAt: day.Add(time.Duration(i) * time.Hour),
		})
	}

	type dashboardTest struct {
		name     string
		mock     prepareMocks
		expError error
		check    func(t *testing.T, stats *domain.DashboardStats)
	}

	tests := []dashboardTest{
		{
			name: "Aggregates",
			mock: func(m *serviceMocks) {
				m.api.EXPECT().ListOrders(gomock.Any(), domain.OrderFilter{}).Return(orders, nil)
				m.api.EXPECT().ListProducts(gomock.Any(), false).Return([]domain.Product{
					{ID: 1, StockQuantity: 3, MinStockLevel: 5},
					{ID: 2, StockQuantity: 5, MinStockLevel: 5},
					{ID: 3, StockQuantity: 9, MinStockLevel: 5},
				}, nil)
				m.api.EXPECT().ListCustomers(gomock.Any()).Return([]domain.Customer{{ID: 1}, {ID: 2}}, nil)
			},
			check: func(t *testing.T, stats *domain.DashboardStats) {
				assert.Equal(t, 7, stats.TotalOrders)
				assert.Equal(t, 3, stats.TotalProducts)
				assert.Equal(t, 2, stats.TotalCustomers)
				assert.Equal(t, "73.50", stats.TotalRevenue.String())
				assert.Equal(t, 2, stats.LowStockProducts)
				require.Len(t, stats.RecentOrders, domain.RecentOrdersLimit)
				assert.Equal(t, domain.OrderID(7), stats.RecentOrders[0].ID)
				assert.Equal(t, domain.OrderID(3), stats.RecentOrders[4].ID)
			},
		},
		{
			name: "One fetch fails",
			mock: func(m *serviceMocks) {
				m.api.EXPECT().ListOrders(gomock.Any(), gomock.Any()).Return(orders, nil).AnyTimes()
				m.api.EXPECT().ListProducts(gomock.Any(), gomock.Any()).Return(nil, domain.ErrNetworkFailure)
				m.api.EXPECT().ListCustomers(gomock.Any()).Return(nil, nil).AnyTimes()
			},
			expError: domain.ErrNetworkFailure,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s, m := newTestService(t, mockCtrl)
			test.mock(m)

			stats, err := s.Dashboard(context.Background(), testUser)
			if test.expError != nil {
				assert.ErrorIs(t, err, test.expError)
				return
			}
			require.NoError(t, err)
			test.check(t, stats)
		})
	}
}
