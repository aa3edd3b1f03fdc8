package e2etest_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MikeRez0/posadmin/internal/adapter/auth"
	"github.com/MikeRez0/posadmin/internal/adapter/client/posapi"
	"github.com/MikeRez0/posadmin/internal/adapter/config"
	"github.com/MikeRez0/posadmin/internal/adapter/metrics"
	"github.com/MikeRez0/posadmin/internal/adapter/storage"
	"github.com/MikeRez0/posadmin/internal/adapter/storage/repository"
	"github.com/MikeRez0/posadmin/internal/core/domain"
	"github.com/MikeRez0/posadmin/internal/core/port"
	"github.com/MikeRez0/posadmin/internal/core/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakePOS serves the subset of the remote api a draft needs. Order creation
// fails with 503 until failures runs out.
type fakePOS struct {
	mu       sync.Mutex
	failures int
	keys     []string
	created  map[string]string
}

func (f *fakePOS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/auth/login" && r.Header.Get("Authorization") != "Bearer remote-token" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"Could not validate credentials"}`)
		return
	}

	switch r.URL.Path {
	case "/api/auth/login":
		_ = r.ParseForm()
		if r.PostForm.Get("password") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Incorrect username or password"}`)
			return
		}
		_, _ = io.WriteString(w, `{"access_token":"remote-token","token_type":"bearer"}`)
	case "/api/auth/me":
		_, _ = io.WriteString(w, `{"id":1,"username":"admin","email":"admin@pos.local","is_active":true}`)
	case "/api/products/":
		_, _ = io.WriteString(w, `[
			{"id":1,"name":"Milk","price":1.99,"cost":0.8,"stock_quantity":5,"min_stock_level":1,
			 "is_active":true,"created_at":"2026-04-30T09:15:00"}]`)
	case "/api/orders/":
		f.createOrder(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakePOS) createOrder(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := r.Header.Get("Idempotency-Key")
	f.keys = append(f.keys, key)
	if f.failures > 0 {
		f.failures--
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	var body struct {
		Items []struct {
			ProductID int64   `json:"product_id"`
			Quantity  int     `json:"quantity"`
			UnitPrice float64 `json:"unit_price"`
		} `json:"items"`
		PaymentMethod string `json:"payment_method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Items) == 0 {
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}

	if _, ok := f.created[key]; !ok {
		f.created[key] = "ORD-20260501-0001"
	}
	w.WriteHeader(http.StatusCreated)
	_, _ = io.WriteString(w, `{"id":1,"order_number":"`+f.created[key]+`","user_id":1,
		"subtotal":3.98,"tax_amount":0.32,"discount_amount":0,"total_amount":4.3,
		"payment_method":"`+body.PaymentMethod+`","status":"completed",
		"created_at":"2026-05-01T10:00:00","order_items":[]}`)
}

// newJournal uses postgres when TEST_DATABASE_URI is set.
func newJournal(t *testing.T) port.SubmissionJournal {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URI")
	if dsn == "" {
		return repository.NewMemoryJournal(repository.DefaultJournalCapacity)
	}

	db, err := storage.NewDBStorage(context.Background(), &config.Database{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.RunMigrations())

	return repository.NewSubmissionRepository(db)
}

func TestSubmitDraftEndToEnd(t *testing.T) {
	pos := &fakePOS{failures: 1, created: make(map[string]string)}
	srv := httptest.NewServer(pos)
	defer srv.Close()

	logger := zap.NewNop()
	m := metrics.NewMetricsWithRegisterer(prometheus.NewRegistry())

	client, err := posapi.NewClient(&config.PosAPI{BaseURL: srv.URL + "/api", Timeout: time.Second}, m, logger)
	require.NoError(t, err)
	tokens, err := auth.New("", time.Hour)
	require.NoError(t, err)

	svc, err := service.NewService(client, tokens, newJournal(t), m, service.Config{
		TaxRate:       domain.DefaultTaxRate,
		SubmitTimeout: 2 * time.Second,
		DraftTTL:      time.Hour,
	}, logger)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = svc.Login(ctx, "admin", "wrong")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	token, err := svc.Login(ctx, "admin", "secret")
	require.NoError(t, err)
	user, err := tokens.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)

	draft, err := svc.CreateDraft(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, domain.DraftStateEmpty, draft.State)

	_, err = svc.SetDraftItemQuantity(user, draft.ID, 1, 2)
	require.NoError(t, err)
	card := domain.PaymentMethodCard
	view, err := svc.UpdateDraftDetails(user, draft.ID, &domain.DraftDetails{PaymentMethod: &card})
	require.NoError(t, err)
	assert.Equal(t, "4.30", view.Totals.Total.String())

	_, err = svc.SubmitDraft(ctx, user, draft.ID)
	require.ErrorIs(t, err, domain.ErrNetworkFailure)

	view, err = svc.GetDraft(user, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DraftStateBuilding, view.State)

	view, err = svc.SubmitDraft(ctx, user, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DraftStateConfirmed, view.State)
	require.NotNil(t, view.Order)
	assert.Equal(t, "ORD-20260501-0001", view.Order.Number)

	// a lost response is recovered by submitting again
	replay, err := svc.SubmitDraft(ctx, user, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, view.Order, replay.Order)

	require.Len(t, pos.keys, 2)
	assert.Equal(t, pos.keys[0], pos.keys[1])
	assert.True(t, strings.HasPrefix(pos.keys[0], draft.ID+"-"))

	require.NoError(t, svc.DiscardDraft(user, draft.ID))
	_, err = svc.GetDraft(user, draft.ID)
	assert.ErrorIs(t, err, domain.ErrDataNotFound)

	list, err := svc.ListSubmissions(ctx, 500)
	require.NoError(t, err)
	var attempts []domain.Submission
	for _, s := range list {
		if s.DraftID == draft.ID {
			attempts = append(attempts, s)
		}
	}
	require.Len(t, attempts, 2)
	assert.Equal(t, domain.SubmissionConfirmed, attempts[0].Outcome)
	assert.Equal(t, 2, attempts[0].Attempt)
	assert.Equal(t, "ORD-20260501-0001", attempts[0].OrderNumber)
	assert.Equal(t, domain.SubmissionFailed, attempts[1].Outcome)
	assert.Equal(t, "admin", attempts[1].Username)
	assert.Equal(t, pos.keys[0], attempts[0].IdempotencyKey)
}
