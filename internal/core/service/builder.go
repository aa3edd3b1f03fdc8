package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/MikeRez0/posadmin/internal/core/domain"
	"github.com/MikeRez0/posadmin/internal/core/port"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

const DefaultSubmitTimeout = 10 * time.Second

// SubmitHook observes every submit attempt that reached the order sink.
type SubmitHook func(ctx context.Context, s *domain.Submission, elapsed time.Duration)

type BuilderConfig struct {
	TaxRate       decimal.Decimal
	SubmitTimeout time.Duration
	Username      string
	OnSubmit      SubmitHook
}

// OrderBuilder owns one order draft and the catalog snapshot it is checked
// against. All methods are safe for concurrent use.
//
// Stock checks run against the snapshot only. They are optimistic: the
// remote api re-checks stock when the order is submitted.
type OrderBuilder struct {
	id     string
	sink   port.OrderSink
	conf   BuilderConfig
	logger *zap.Logger
	now    func() time.Time

	mu         sync.Mutex
	state      domain.DraftState
	catalog    map[domain.ProductID]domain.Product
	catalogAt  time.Time
	lines      []domain.LineItem
	customerID *domain.CustomerID
	payment    domain.PaymentMethod
	discount   decimal.Decimal
	notes      string
	order      *domain.Order
	attempts   int
	touchedAt  time.Time
	// revision counts changes to the submittable payload.
	revision int
}

func NewOrderBuilder(id string, catalog []domain.Product, sink port.OrderSink,
	conf BuilderConfig, logger *zap.Logger) *OrderBuilder {
	if conf.TaxRate.IsZero() {
		conf.TaxRate = domain.DefaultTaxRate
	}
	if conf.SubmitTimeout <= 0 {
		conf.SubmitTimeout = DefaultSubmitTimeout
	}

	b := &OrderBuilder{
		id:       id,
		sink:     sink,
		conf:     conf,
		logger:   logger.With(zap.String("draft", id)),
		now:      time.Now,
		state:    domain.DraftStateEmpty,
		discount: decimal.Zero,
	}
	b.setCatalogLocked(catalog)
	return b
}

func (b *OrderBuilder) ID() string {
	return b.id
}

// RefreshCatalog replaces the snapshot. Existing lines keep their locked
// prices; stock is checked again on the next mutation of a line.
func (b *OrderBuilder) RefreshCatalog(catalog []domain.Product) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkMutableLocked(); err != nil {
		return err
	}
	b.setCatalogLocked(catalog)
	return nil
}

func (b *OrderBuilder) setCatalogLocked(catalog []domain.Product) {
	b.catalog = make(map[domain.ProductID]domain.Product, len(catalog))
	for _, p := range catalog {
		if p.IsActive {
			b.catalog[p.ID] = p
		}
	}
	b.catalogAt = b.now()
	b.touchedAt = b.catalogAt
}

// AddItem adds one unit of the product, creating the line at the current
// snapshot price when the product is not in the draft yet.
func (b *OrderBuilder) AddItem(productID domain.ProductID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkMutableLocked(); err != nil {
		return err
	}

	if i := b.lineIndexLocked(productID); i >= 0 {
		return b.setQuantityLocked(productID, b.lines[i].Quantity+1)
	}
	return b.setQuantityLocked(productID, 1)
}

// SetQuantity replaces the quantity of the product's line. Zero removes the
// line; a product not yet in the draft is added at the snapshot price.
func (b *OrderBuilder) SetQuantity(productID domain.ProductID, quantity int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkMutableLocked(); err != nil {
		return err
	}
	return b.setQuantityLocked(productID, quantity)
}

func (b *OrderBuilder) setQuantityLocked(productID domain.ProductID, quantity int) error {
	if quantity < 0 {
		return domain.ErrInvalidQuantity
	}
	if quantity == 0 {
		b.removeLocked(productID)
		return nil
	}

	i := b.lineIndexLocked(productID)
	product, ok := b.catalog[productID]
	if !ok {
		// a line whose product left the snapshot may still shrink
		if i >= 0 && quantity <= b.lines[i].Quantity {
			b.setLineQuantityLocked(i, quantity)
			return nil
		}
		return domain.ErrProductNotFound
	}
	if quantity > product.StockQuantity {
		return &domain.StockError{
			ProductID: productID,
			Name:      product.Name,
			Available: product.StockQuantity,
			Requested: quantity,
		}
	}

	if i >= 0 {
		b.setLineQuantityLocked(i, quantity)
		return nil
	}
	b.lines = append(b.lines, domain.LineItem{
		ProductID:   productID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   product.Price,
	})
	b.revision++
	b.state = domain.DraftStateBuilding
	b.touchedAt = b.now()
	return nil
}

func (b *OrderBuilder) setLineQuantityLocked(i int, quantity int) {
	if b.lines[i].Quantity != quantity {
		b.lines[i].Quantity = quantity
		b.revision++
	}
	b.state = domain.DraftStateBuilding
	b.touchedAt = b.now()
}

// RemoveItem drops the product's line. Removing an absent product is a no-op.
func (b *OrderBuilder) RemoveItem(productID domain.ProductID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkMutableLocked(); err != nil {
		return err
	}
	b.removeLocked(productID)
	return nil
}

func (b *OrderBuilder) removeLocked(productID domain.ProductID) {
	b.touchedAt = b.now()
	i := b.lineIndexLocked(productID)
	if i < 0 {
		return
	}
	b.lines = append(b.lines[:i], b.lines[i+1:]...)
	b.revision++
	if len(b.lines) == 0 {
		b.state = domain.DraftStateEmpty
	}
}

func (b *OrderBuilder) SetPaymentMethod(method domain.PaymentMethod) error {
	return b.Apply(&domain.DraftDetails{PaymentMethod: &method})
}

// SetCustomer attaches a customer. Nil detaches it.
func (b *OrderBuilder) SetCustomer(id *domain.CustomerID) error {
	return b.Apply(&domain.DraftDetails{CustomerID: id, ClearCustomer: id == nil})
}

func (b *OrderBuilder) SetDiscount(discount decimal.Decimal) error {
	return b.Apply(&domain.DraftDetails{Discount: &discount})
}

func (b *OrderBuilder) SetNotes(notes string) error {
	return b.Apply(&domain.DraftDetails{Notes: &notes})
}

// Apply updates the non-line fields. Either every field is applied or none.
func (b *OrderBuilder) Apply(details *domain.DraftDetails) error {
	if details.PaymentMethod != nil {
		if _, err := domain.ParsePaymentMethod(string(*details.PaymentMethod)); err != nil {
			return err
		}
	}
	if details.Discount != nil && details.Discount.Sign() < 0 {
		return domain.ErrInvalidDiscount
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkMutableLocked(); err != nil {
		return err
	}

	changed := false
	switch {
	case details.ClearCustomer:
		changed = b.customerID != nil
		b.customerID = nil
	case details.CustomerID != nil:
		id := *details.CustomerID
		changed = b.customerID == nil || *b.customerID != id
		b.customerID = &id
	}
	if details.PaymentMethod != nil && *details.PaymentMethod != b.payment {
		b.payment = *details.PaymentMethod
		changed = true
	}
	if details.Discount != nil && details.Discount.Cmp(b.discount) != 0 {
		b.discount = *details.Discount
		changed = true
	}
	if details.Notes != nil && *details.Notes != b.notes {
		b.notes = *details.Notes
		changed = true
	}
	if changed {
		b.revision++
	}
	b.touchedAt = b.now()
	return nil
}

// IdempotencyKey identifies the current payload. A retry of an unchanged
// draft reuses the key; any change to lines or details yields a new one.
func (b *OrderBuilder) IdempotencyKey() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.idempotencyKeyLocked()
}

func (b *OrderBuilder) idempotencyKeyLocked() string {
	return b.id + "-" + strconv.Itoa(b.revision)
}

// Totals prices the current lines from scratch.
func (b *OrderBuilder) Totals() (domain.Totals, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.totalsLocked()
}

func (b *OrderBuilder) totalsLocked() (domain.Totals, error) {
	return domain.ComputeTotals(b.requestLinesLocked(), b.discount, b.conf.TaxRate)
}

// Validate reports whether the draft can be submitted as it is.
func (b *OrderBuilder) Validate() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.validateLocked()
}

func (b *OrderBuilder) validateLocked() error {
	if len(b.lines) == 0 {
		return domain.ErrEmptyOrder
	}
	if b.payment == "" {
		return domain.ErrMissingPaymentMethod
	}
	return nil
}

// Submit hands the draft to the order sink. On success the draft is consumed
// and later calls return the confirmed order without contacting the sink.
// On failure it returns to building with its lines untouched. There is no
// automatic retry.
func (b *OrderBuilder) Submit(ctx context.Context) (*domain.Order, error) {
	b.mu.Lock()
	if b.state == domain.DraftStateConfirmed {
		order := b.order
		b.mu.Unlock()
		return order, nil
	}
	if err := b.checkMutableLocked(); err != nil {
		b.mu.Unlock()
		return nil, err
	}
	if err := b.validateLocked(); err != nil {
		b.mu.Unlock()
		return nil, err
	}
	totals, err := b.totalsLocked()
	if err != nil {
		b.mu.Unlock()
		return nil, err
	}
	req := b.requestLocked()
	key := b.idempotencyKeyLocked()
	b.state = domain.DraftStateSubmitting
	b.attempts++
	attempt := b.attempts
	b.mu.Unlock()

	b.logger.Debug("submitting order",
		zap.Int("attempt", attempt),
		zap.String("key", key),
		zap.Int("lines", len(req.Lines)),
		zap.Stringer("total", totals.Total))

	start := b.now()
	submitCtx, cancel := context.WithTimeout(ctx, b.conf.SubmitTimeout)
	order, err := b.sink.SubmitOrder(submitCtx, req, key)
	cancel()
	elapsed := b.now().Sub(start)

	if err != nil && !errors.Is(err, domain.ErrRemoteRejection) && !errors.Is(err, domain.ErrNetworkFailure) {
		err = fmt.Errorf("%w: %w", domain.ErrNetworkFailure, err)
	}
	if err == nil && order == nil {
		err = fmt.Errorf("%w: empty order sink response", domain.ErrNetworkFailure)
	}

	record := &domain.Submission{
		DraftID:        b.id,
		IdempotencyKey: key,
		Attempt:        attempt,
		Username:       b.conf.Username,
		Total:          totals.Total,
		AttemptedAt:    start,
	}

	b.mu.Lock()
	b.touchedAt = b.now()
	switch {
	case err == nil:
		b.state = domain.DraftStateConfirmed
		b.order = order
		record.Outcome = domain.SubmissionConfirmed
		record.OrderID = &order.ID
		record.OrderNumber = order.Number
	case errors.Is(err, domain.ErrRemoteRejection):
		b.state = domain.DraftStateBuilding
		record.Outcome = domain.SubmissionRejected
		record.Detail = err.Error()
	default:
		b.state = domain.DraftStateBuilding
		record.Outcome = domain.SubmissionFailed
		record.Detail = err.Error()
	}
	b.mu.Unlock()

	b.logger.Info("order submission finished",
		zap.Int("attempt", attempt),
		zap.String("outcome", string(record.Outcome)),
		zap.Duration("elapsed", elapsed),
		zap.Error(err))

	if b.conf.OnSubmit != nil {
		b.conf.OnSubmit(ctx, record, elapsed)
	}

	if err != nil {
		return nil, err
	}
	return order, nil
}

// Snapshot returns a copy of the draft with freshly computed totals.
func (b *OrderBuilder) Snapshot() (*domain.DraftView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	totals, err := b.totalsLocked()
	if err != nil {
		return nil, err
	}

	view := &domain.DraftView{
		ID:            b.id,
		State:         b.state,
		Lines:         append([]domain.LineItem(nil), b.lines...),
		PaymentMethod: b.payment,
		Discount:      b.discount,
		Notes:         b.notes,
		Totals:        totals,
		CatalogAt:     b.catalogAt,
		Order:         b.order,
	}
	if b.customerID != nil {
		id := *b.customerID
		view.CustomerID = &id
	}
	return view, nil
}

// idleSince reports when the draft was last used and whether it may be
// evicted. A draft with a submission in flight is never evictable.
func (b *OrderBuilder) idleSince() (time.Time, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.touchedAt, b.state != domain.DraftStateSubmitting
}

// open reports whether the draft still awaits a confirmed submission.
func (b *OrderBuilder) open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state != domain.DraftStateConfirmed
}

// checkDiscardable fails while a submission is in flight.
func (b *OrderBuilder) checkDiscardable() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == domain.DraftStateSubmitting {
		return domain.ErrAlreadySubmitting
	}
	return nil
}

func (b *OrderBuilder) checkMutableLocked() error {
	switch b.state {
	case domain.DraftStateSubmitting:
		return domain.ErrAlreadySubmitting
	case domain.DraftStateConfirmed:
		return domain.ErrDraftConsumed
	}
	return nil
}

func (b *OrderBuilder) lineIndexLocked(productID domain.ProductID) int {
	for i, l := range b.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func (b *OrderBuilder) requestLinesLocked() []domain.OrderRequestLine {
	lines := make([]domain.OrderRequestLine, 0, len(b.lines))
	for _, l := range b.lines {
		lines = append(lines, domain.OrderRequestLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return lines
}

func (b *OrderBuilder) requestLocked() *domain.OrderRequest {
	req := &domain.OrderRequest{
		PaymentMethod: b.payment,
		Discount:      b.discount,
		Notes:         b.notes,
		Lines:         b.requestLinesLocked(),
	}
	if b.customerID != nil {
		id := *b.customerID
		req.CustomerID = &id
	}
	return req
}
