package service_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MikeRez0/posadmin/internal/core/domain"
	"github.com/MikeRez0/posadmin/internal/core/port/mock"
	"github.com/MikeRez0/posadmin/internal/core/service"
	"github.com/golang/mock/gomock"
	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const draftID = "0b7f4c8e-6a36-4d36-9d35-2f4d0f1e8a11"

func testCatalog() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "A", Price: decimal.MustParse("10.00"), StockQuantity: 5, IsActive: true},
		{ID: 2, Name: "B", Price: decimal.MustParse("2.50"), StockQuantity: 1, IsActive: true},
		{ID: 3, Name: "C", Price: decimal.MustParse("1.00"), StockQuantity: 0, IsActive: true},
		{ID: 4, Name: "D", Price: decimal.MustParse("3.00"), StockQuantity: 10, IsActive: false},
	}
}

func newBuilder(sink *mock.MockOrderSink, conf service.BuilderConfig) *service.OrderBuilder {
	return service.NewOrderBuilder(draftID, testCatalog(), sink, conf, zap.NewNop())
}

func snapshot(t *testing.T, b *service.OrderBuilder) *domain.DraftView {
	t.Helper()
	view, err := b.Snapshot()
	require.NoError(t, err)
	return view
}

func quantities(view *domain.DraftView) map[domain.ProductID]int {
	q := make(map[domain.ProductID]int, len(view.Lines))
	for _, l := range view.Lines {
		q[l.ProductID] = l.Quantity
	}
	return q
}

func TestOrderBuilder_Items(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	type itemsTest struct {
		name     string
		actions  func(b *service.OrderBuilder) error
		expError error
		expQty   map[domain.ProductID]int
		expState domain.DraftState
	}

	tests := []itemsTest{
		{
			name: "Add new item",
			actions: func(b *service.OrderBuilder) error {
				return b.AddItem(1)
			},
			expQty:   map[domain.ProductID]int{1: 1},
			expState: domain.DraftStateBuilding,
		},
		{
			name: "Add existing item increments",
			actions: func(b *service.OrderBuilder) error {
				if err := b.AddItem(1); err != nil {
					return err
				}
				return b.AddItem(1)
			},
			expQty:   map[domain.ProductID]int{1: 2},
			expState: domain.DraftStateBuilding,
		},
		{
			name: "Add item with no stock",
			actions: func(b *service.OrderBuilder) error {
				return b.AddItem(3)
			},
			expError: domain.ErrOutOfStock,
			expQty:   map[domain.ProductID]int{},
			expState: domain.DraftStateEmpty,
		},
		{
			name: "Add item beyond stock keeps line",
			actions: func(b *service.OrderBuilder) error {
				if err := b.AddItem(2); err != nil {
					return err
				}
				return b.AddItem(2)
			},
			expError: domain.ErrOutOfStock,
			expQty:   map[domain.ProductID]int{2: 1},
			expState: domain.DraftStateBuilding,
		},
		{
			name: "Add unknown product",
			actions: func(b *service.OrderBuilder) error {
				return b.AddItem(99)
			},
			expError: domain.ErrProductNotFound,
			expQty:   map[domain.ProductID]int{},
			expState: domain.DraftStateEmpty,
		},
		{
			name: "Add inactive product",
			actions: func(b *service.OrderBuilder) error {
				return b.AddItem(4)
			},
			expError: domain.ErrProductNotFound,
			expQty:   map[domain.ProductID]int{},
			expState: domain.DraftStateEmpty,
		},
		{
			name: "Set quantity",
			actions: func(b *service.OrderBuilder) error {
				if err := b.AddItem(1); err != nil {
					return err
				}
				return b.SetQuantity(1, 5)
			},
			expQty:   map[domain.ProductID]int{1: 5},
			expState: domain.DraftStateBuilding,
		},
		{
			name: "Set quantity above stock leaves draft unchanged",
			actions: func(b *service.OrderBuilder) error {
				if err := b.SetQuantity(1, 2); err != nil {
					return err
				}
				return b.SetQuantity(1, 6)
			},
			expError: domain.ErrOutOfStock,
			expQty:   map[domain.ProductID]int{1: 2},
			expState: domain.DraftStateBuilding,
		},
		{
			name: "Set negative quantity",
			actions: func(b *service.OrderBuilder) error {
				if err := b.AddItem(1); err != nil {
					return err
				}
				return b.SetQuantity(1, -1)
			},
			expError: domain.ErrInvalidQuantity,
			expQty:   map[domain.ProductID]int{1: 1},
			expState: domain.DraftStateBuilding,
		},
		{
			name: "Set zero quantity removes line",
			actions: func(b *service.OrderBuilder) error {
				if err := b.AddItem(1); err != nil {
					return err
				}
				return b.SetQuantity(1, 0)
			},
			expQty:   map[domain.ProductID]int{},
			expState: domain.DraftStateEmpty,
		},
		{
			name: "Remove absent item is a no-op",
			actions: func(b *service.OrderBuilder) error {
				if err := b.AddItem(1); err != nil {
					return err
				}
				return b.RemoveItem(2)
			},
			expQty:   map[domain.ProductID]int{1: 1},
			expState: domain.DraftStateBuilding,
		},
		{
			name: "Remove last item empties draft",
			actions: func(b *service.OrderBuilder) error {
				if err := b.AddItem(1); err != nil {
					return err
				}
				if err := b.AddItem(2); err != nil {
					return err
				}
				if err := b.RemoveItem(1); err != nil {
					return err
				}
				return b.RemoveItem(2)
			},
			expQty:   map[domain.ProductID]int{},
			expState: domain.DraftStateEmpty,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b := newBuilder(mock.NewMockOrderSink(mockCtrl), service.BuilderConfig{})

			err := test.actions(b)
			if test.expError != nil {
				assert.ErrorIs(t, err, test.expError)
			} else {
				assert.NoError(t, err)
			}

			view := snapshot(t, b)
			assert.Equal(t, test.expQty, quantities(view))
			assert.Equal(t, test.expState, view.State)
		})
	}
}

func TestOrderBuilder_StockErrorDetail(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	b := newBuilder(mock.NewMockOrderSink(mockCtrl), service.BuilderConfig{})

	err := b.SetQuantity(1, 7)
	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, domain.ProductID(1), stockErr.ProductID)
	assert.Equal(t, 5, stockErr.Available)
	assert.Equal(t, 7, stockErr.Requested)
}

func TestOrderBuilder_Totals(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	b := newBuilder(mock.NewMockOrderSink(mockCtrl), service.BuilderConfig{})

	require.NoError(t, b.SetQuantity(1, 3))
	require.NoError(t, b.SetDiscount(decimal.MustParse("5.00")))

	totals, err := b.Totals()
	require.NoError(t, err)
	assert.Equal(t, "30.00", totals.Subtotal.String())
	assert.Equal(t, "2.40", totals.Tax.String())
	assert.Equal(t, "5.00", totals.Discount.String())
	assert.Equal(t, "27.40", totals.Total.String())

	// totals follow the lines, nothing is cached
	require.NoError(t, b.RemoveItem(1))
	totals, err = b.Totals()
	require.NoError(t, err)
	assert.Equal(t, "-5.00", totals.Total.String())
}

func TestOrderBuilder_DiscountAboveTotal(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	b := newBuilder(mock.NewMockOrderSink(mockCtrl), service.BuilderConfig{})

	require.NoError(t, b.AddItem(2))
	require.NoError(t, b.SetDiscount(decimal.MustParse("100")))
	require.NoError(t, b.SetPaymentMethod(domain.PaymentMethodCash))

	// accepted as is, the total goes negative
	totals, err := b.Totals()
	require.NoError(t, err)
	assert.Equal(t, -1, totals.Total.Sign())
	assert.NoError(t, b.Validate())
}

func TestOrderBuilder_Details(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	b := newBuilder(mock.NewMockOrderSink(mockCtrl), service.BuilderConfig{})

	assert.ErrorIs(t, b.SetDiscount(decimal.MustParse("-1")), domain.ErrInvalidDiscount)
	assert.ErrorIs(t, b.SetPaymentMethod("cheque"), domain.ErrInvalidPaymentMethod)

	customer := domain.CustomerID(7)
	notes := "gift wrap"
	method := domain.PaymentMethodCard
	require.NoError(t, b.Apply(&domain.DraftDetails{
		CustomerID:    &customer,
		PaymentMethod: &method,
		Notes:         &notes,
	}))

	view := snapshot(t, b)
	require.NotNil(t, view.CustomerID)
	assert.Equal(t, customer, *view.CustomerID)
	assert.Equal(t, domain.PaymentMethodCard, view.PaymentMethod)
	assert.Equal(t, notes, view.Notes)
	assert.Equal(t, domain.DraftStateEmpty, view.State)

	// a bad field rejects the whole update
	bad := decimal.MustParse("-2")
	require.ErrorIs(t, b.Apply(&domain.DraftDetails{Discount: &bad, ClearCustomer: true}), domain.ErrInvalidDiscount)
	assert.NotNil(t, snapshot(t, b).CustomerID)

	require.NoError(t, b.SetCustomer(nil))
	assert.Nil(t, snapshot(t, b).CustomerID)
}

func TestOrderBuilder_Validate(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	b := newBuilder(mock.NewMockOrderSink(mockCtrl), service.BuilderConfig{})

	assert.ErrorIs(t, b.Validate(), domain.ErrEmptyOrder)

	require.NoError(t, b.AddItem(1))
	assert.ErrorIs(t, b.Validate(), domain.ErrMissingPaymentMethod)

	require.NoError(t, b.SetPaymentMethod(domain.PaymentMethodDigital))
	assert.NoError(t, b.Validate())
}

func TestOrderBuilder_RefreshCatalogKeepsLockedPrice(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	b := newBuilder(mock.NewMockOrderSink(mockCtrl), service.BuilderConfig{})
	require.NoError(t, b.SetQuantity(1, 4))

	fresh := testCatalog()
	fresh[0].Price = decimal.MustParse("12.00")
	fresh[0].StockQuantity = 2
	fresh[1].Price = decimal.MustParse("3.00")
	require.NoError(t, b.RefreshCatalog(fresh))

	require.NoError(t, b.AddItem(2))

	view := snapshot(t, b)
	require.Len(t, view.Lines, 2)
	assert.Equal(t, "10.00", view.Lines[0].UnitPrice.String())
	assert.Equal(t, "3.00", view.Lines[1].UnitPrice.String())
	// the stale line stays until it is touched again
	assert.Equal(t, 4, view.Lines[0].Quantity)

	assert.ErrorIs(t, b.AddItem(1), domain.ErrOutOfStock)
	assert.NoError(t, b.SetQuantity(1, 2))
}

func TestOrderBuilder_SubmitConfirmed(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	sink := mock.NewMockOrderSink(mockCtrl)

	var records []*domain.Submission
	b := newBuilder(sink, service.BuilderConfig{
		Username: "admin",
		OnSubmit: func(_ context.Context, s *domain.Submission, _ time.Duration) {
			records = append(records, s)
		},
	})

	customer := domain.CustomerID(3)
	require.NoError(t, b.SetQuantity(1, 3))
	require.NoError(t, b.AddItem(2))
	require.NoError(t, b.SetCustomer(&customer))
	require.NoError(t, b.SetPaymentMethod(domain.PaymentMethodCard))
	require.NoError(t, b.SetDiscount(decimal.MustParse("5.00")))

	shown, err := b.Totals()
	require.NoError(t, err)

	key := b.IdempotencyKey()
	order := &domain.Order{ID: 42, Number: "ORD-20240101120000-ABCD1234", Status: domain.OrderStatusPending}
	sink.EXPECT().SubmitOrder(gomock.Any(), gomock.Any(), key).
		DoAndReturn(func(ctx context.Context, req *domain.OrderRequest, key string) (*domain.Order, error) {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)

			assert.Equal(t, []domain.OrderRequestLine{
				{ProductID: 1, Quantity: 3, UnitPrice: decimal.MustParse("10.00")},
				{ProductID: 2, Quantity: 1, UnitPrice: decimal.MustParse("2.50")},
			}, req.Lines)
			assert.Equal(t, customer, *req.CustomerID)
			assert.Equal(t, domain.PaymentMethodCard, req.PaymentMethod)

			// the payload reproduces the total shown to the user
			recomputed, err := domain.ComputeTotals(req.Lines, req.Discount, domain.DefaultTaxRate)
			assert.NoError(t, err)
			assert.Equal(t, shown.Total.String(), recomputed.Total.String())

			return order, nil
		}).Times(1)

	result, err := b.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, order, result)

	view := snapshot(t, b)
	assert.Equal(t, domain.DraftStateConfirmed, view.State)
	assert.Equal(t, order, view.Order)

	assert.ErrorIs(t, b.AddItem(1), domain.ErrDraftConsumed)
	assert.ErrorIs(t, b.SetNotes("late"), domain.ErrDraftConsumed)

	// submitting again replays the confirmed order
	again, err := b.Submit(context.Background())
	require.NoError(t, err)
	assert.Same(t, order, again)

	require.Len(t, records, 1)
	assert.Equal(t, domain.SubmissionConfirmed, records[0].Outcome)
	assert.Equal(t, key, records[0].IdempotencyKey)
	assert.Equal(t, "admin", records[0].Username)
	assert.Equal(t, 1, records[0].Attempt)
	assert.Equal(t, shown.Total.String(), records[0].Total.String())
	require.NotNil(t, records[0].OrderID)
	assert.Equal(t, domain.OrderID(42), *records[0].OrderID)
}

func TestOrderBuilder_SubmitInvalid(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	sink := mock.NewMockOrderSink(mockCtrl)
	b := newBuilder(sink, service.BuilderConfig{})

	_, err := b.Submit(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmptyOrder)

	require.NoError(t, b.AddItem(1))
	_, err = b.Submit(context.Background())
	assert.ErrorIs(t, err, domain.ErrMissingPaymentMethod)

	assert.Equal(t, domain.DraftStateBuilding, snapshot(t, b).State)
}

func TestOrderBuilder_SubmitFailures(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	type submitFailTest struct {
		name       string
		sinkErr    error
		expError   error
		expOutcome domain.SubmissionOutcome
	}

	tests := []submitFailTest{
		{
			name:       "Rejected by remote",
			sinkErr:    &domain.RemoteError{StatusCode: http.StatusBadRequest, Detail: "Insufficient stock for product A"},
			expError:   domain.ErrRemoteRejection,
			expOutcome: domain.SubmissionRejected,
		},
		{
			name:       "Network failure",
			sinkErr:    domain.ErrNetworkFailure,
			expError:   domain.ErrNetworkFailure,
			expOutcome: domain.SubmissionFailed,
		},
		{
			name:       "Unclassified error counts as network failure",
			sinkErr:    errors.New("connection reset by peer"),
			expError:   domain.ErrNetworkFailure,
			expOutcome: domain.SubmissionFailed,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sink := mock.NewMockOrderSink(mockCtrl)

			var records []*domain.Submission
			b := newBuilder(sink, service.BuilderConfig{
				OnSubmit: func(_ context.Context, s *domain.Submission, _ time.Duration) {
					records = append(records, s)
				},
			})
			require.NoError(t, b.SetQuantity(1, 2))
			require.NoError(t, b.SetPaymentMethod(domain.PaymentMethodCash))
			before := snapshot(t, b)
			firstKey := b.IdempotencyKey()

			sink.EXPECT().SubmitOrder(gomock.Any(), gomock.Any(), firstKey).Return(nil, test.sinkErr)

			_, err := b.Submit(context.Background())
			assert.ErrorIs(t, err, test.expError)

			after := snapshot(t, b)
			assert.Equal(t, domain.DraftStateBuilding, after.State)
			assert.Equal(t, before.Lines, after.Lines)
			assert.NoError(t, b.AddItem(1))

			require.Len(t, records, 1)
			assert.Equal(t, test.expOutcome, records[0].Outcome)
			assert.NotEmpty(t, records[0].Detail)

			// the changed draft is sent under a new key
			secondKey := b.IdempotencyKey()
			assert.NotEqual(t, firstKey, secondKey)
			sink.EXPECT().SubmitOrder(gomock.Any(), gomock.Any(), secondKey).
				DoAndReturn(func(_ context.Context, req *domain.OrderRequest, _ string) (*domain.Order, error) {
					assert.Equal(t, 3, req.Lines[0].Quantity)
					return &domain.Order{ID: 1}, nil
				})
			_, err = b.Submit(context.Background())
			assert.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, 2, records[1].Attempt)
			assert.Equal(t, firstKey, records[0].IdempotencyKey)
			assert.Equal(t, secondKey, records[1].IdempotencyKey)
		})
	}
}

func TestOrderBuilder_SubmitTimeout(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	sink := mock.NewMockOrderSink(mockCtrl)
	b := newBuilder(sink, service.BuilderConfig{SubmitTimeout: 20 * time.Millisecond})
	require.NoError(t, b.AddItem(1))
	require.NoError(t, b.SetPaymentMethod(domain.PaymentMethodCash))

	sink.EXPECT().SubmitOrder(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ *domain.OrderRequest, _ string) (*domain.Order, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

	_, err := b.Submit(context.Background())
	assert.ErrorIs(t, err, domain.ErrNetworkFailure)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, domain.DraftStateBuilding, snapshot(t, b).State)
}

func TestOrderBuilder_ConcurrentSubmit(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	sink := mock.NewMockOrderSink(mockCtrl)
	b := newBuilder(sink, service.BuilderConfig{})
	require.NoError(t, b.AddItem(1))
	require.NoError(t, b.SetPaymentMethod(domain.PaymentMethodCash))

	entered := make(chan struct{})
	release := make(chan struct{})
	sink.EXPECT().SubmitOrder(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *domain.OrderRequest, string) (*domain.Order, error) {
			close(entered)
			<-release
			return &domain.Order{ID: 9}, nil
		}).Times(1)

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = b.Submit(context.Background())
	}()

	<-entered
	assert.Equal(t, domain.DraftStateSubmitting, snapshot(t, b).State)

	const racers = 8
	errs := make(chan error, racers)
	var racing sync.WaitGroup
	for i := 0; i < racers; i++ {
		racing.Add(1)
		go func() {
			defer racing.Done()
			_, err := b.Submit(context.Background())
			errs <- err
		}()
	}
	racing.Wait()
	close(errs)
	for err := range errs {
		assert.ErrorIs(t, err, domain.ErrAlreadySubmitting)
	}

	assert.ErrorIs(t, b.AddItem(1), domain.ErrAlreadySubmitting)
	assert.ErrorIs(t, b.RemoveItem(1), domain.ErrAlreadySubmitting)
	assert.ErrorIs(t, b.SetDiscount(decimal.MustParse("1")), domain.ErrAlreadySubmitting)

	close(release)
	wg.Wait()
	assert.NoError(t, firstErr)
	assert.Equal(t, domain.DraftStateConfirmed, snapshot(t, b).State)
}

func TestOrderBuilder_IdempotencyKey(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	sink := mock.NewMockOrderSink(mockCtrl)
	b := newBuilder(sink, service.BuilderConfig{})
	require.NoError(t, b.SetQuantity(1, 1))
	require.NoError(t, b.SetPaymentMethod(domain.PaymentMethodCash))

	var keys []string
	sink.EXPECT().SubmitOrder(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *domain.OrderRequest, key string) (*domain.Order, error) {
			keys = append(keys, key)
			return nil, domain.ErrNetworkFailure
		}).Times(4)

	submit := func() {
		_, err := b.Submit(context.Background())
		require.ErrorIs(t, err, domain.ErrNetworkFailure)
	}

	// plain retry
	submit()
	submit()

	// writes that leave the payload as it was keep the key
	require.NoError(t, b.SetQuantity(1, 1))
	require.NoError(t, b.SetPaymentMethod(domain.PaymentMethodCash))
	require.NoError(t, b.RemoveItem(2))
	require.NoError(t, b.SetCustomer(nil))
	submit()

	require.NoError(t, b.SetQuantity(1, 3))
	submit()

	require.Len(t, keys, 4)
	assert.True(t, strings.HasPrefix(keys[0], draftID+"-"))
	assert.Equal(t, keys[0], keys[1])
	assert.Equal(t, keys[0], keys[2])
	assert.NotEqual(t, keys[2], keys[3])

	for _, change := range []func() error{
		func() error { return b.SetDiscount(decimal.MustParse("1.00")) },
		func() error { return b.SetNotes("gift wrap") },
		func() error { return b.SetPaymentMethod(domain.PaymentMethodCard) },
		func() error {
			id := domain.CustomerID(7)
			return b.SetCustomer(&id)
		},
		func() error { return b.AddItem(2) },
		func() error { return b.RemoveItem(2) },
	} {
		before := b.IdempotencyKey()
		require.NoError(t, change())
		assert.NotEqual(t, before, b.IdempotencyKey())
	}
}

func TestOrderBuilder_LineLeftCatalog(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	b := newBuilder(mock.NewMockOrderSink(mockCtrl), service.BuilderConfig{})
	require.NoError(t, b.SetQuantity(1, 4))

	// product 1 was deactivated upstream
	require.NoError(t, b.RefreshCatalog(testCatalog()[1:]))

	assert.NoError(t, b.SetQuantity(1, 2))
	assert.Equal(t, 2, quantities(snapshot(t, b))[1])
	assert.NoError(t, b.SetQuantity(1, 2))

	assert.ErrorIs(t, b.SetQuantity(1, 3), domain.ErrProductNotFound)
	assert.ErrorIs(t, b.AddItem(1), domain.ErrProductNotFound)
	assert.Equal(t, 2, quantities(snapshot(t, b))[1])

	assert.NoError(t, b.SetQuantity(1, 0))
	assert.Empty(t, snapshot(t, b).Lines)
	assert.ErrorIs(t, b.SetQuantity(1, 1), domain.ErrProductNotFound)
}
