package http

import (
	"bytes"
	"fmt"
	"time"

	"github.com/MikeRez0/posadmin/internal/core/domain"
	"github.com/govalues/decimal"
)

// money is a decimal that travels as a JSON number. It also accepts a quoted
// string on input.
type money decimal.Decimal

func (m money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).Pad(domain.MoneyScale).String()), nil
}

func (m *money) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	d, err := decimal.Parse(string(data))
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", data, err)
	}
	*m = money(d)
	return nil
}

func (m *money) decimal() *decimal.Decimal {
	if m == nil {
		return nil
	}
	d := decimal.Decimal(*m)
	return &d
}

type categoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func newCategoryResponse(c *domain.Category) *categoryResponse {
	if c == nil {
		return nil
	}
	return &categoryResponse{ID: c.ID, Name: c.Name, Description: c.Description}
}

type productResponse struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	SKU           string            `json:"sku,omitempty"`
	Barcode       string            `json:"barcode,omitempty"`
	Price         money             `json:"price"`
	Cost          money             `json:"cost"`
	StockQuantity int               `json:"stock_quantity"`
	MinStockLevel int               `json:"min_stock_level"`
	LowStock      bool              `json:"low_stock"`
	IsActive      bool              `json:"is_active"`
	Category      *categoryResponse `json:"category,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

func newProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:            int64(p.ID),
		Name:          p.Name,
		Description:   p.Description,
		SKU:           p.SKU,
		Barcode:       p.Barcode,
		Price:         money(p.Price),
		Cost:          money(p.Cost),
		StockQuantity: p.StockQuantity,
		MinStockLevel: p.MinStockLevel,
		LowStock:      p.LowStock(),
		IsActive:      p.IsActive,
		Category:      newCategoryResponse(p.Category),
		CreatedAt:     p.CreatedAt,
	}
}

type productRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description   *string `json:"description" validate:"omitempty,max=1000"`
	SKU           *string `json:"sku" validate:"omitempty,max=64"`
	Barcode       *string `json:"barcode" validate:"omitempty,max=64"`
	Price         *money  `json:"price"`
	Cost          *money  `json:"cost"`
	StockQuantity *int    `json:"stock_quantity" validate:"omitempty,min=0"`
	MinStockLevel *int    `json:"min_stock_level" validate:"omitempty,min=0"`
	IsActive      *bool   `json:"is_active"`
	CategoryID    *int64  `json:"category_id" validate:"omitempty,gt=0"`
}

func (r *productRequest) toDomain() *domain.ProductInput {
	return &domain.ProductInput{
		Name:          r.Name,
		Description:   r.Description,
		SKU:           r.SKU,
		Barcode:       r.Barcode,
		Price:         r.Price.decimal(),
		Cost:          r.Cost.decimal(),
		StockQuantity: r.StockQuantity,
		MinStockLevel: r.MinStockLevel,
		IsActive:      r.IsActive,
		CategoryID:    r.CategoryID,
	}
}

type customerResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func newCustomerResponse(c *domain.Customer) customerResponse {
	return customerResponse{
		ID:        int64(c.ID),
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
	}
}

type customerRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone" validate:"omitempty,max=32"`
	Address *string `json:"address" validate:"omitempty,max=500"`
}

func (r *customerRequest) toDomain() *domain.CustomerInput {
	return &domain.CustomerInput{Name: r.Name, Email: r.Email, Phone: r.Phone, Address: r.Address}
}

type orderItemResponse struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitPrice   money  `json:"unit_price"`
	TotalPrice  money  `json:"total_price"`
}

type orderResponse struct {
	ID            int64               `json:"id"`
	Number        string              `json:"order_number"`
	CustomerID    *int64              `json:"customer_id"`
	CustomerName  string              `json:"customer_name,omitempty"`
	Subtotal      money               `json:"subtotal"`
	Tax           money               `json:"tax_amount"`
	Discount      money               `json:"discount_amount"`
	Total         money               `json:"total_amount"`
	PaymentMethod string              `json:"payment_method,omitempty"`
	Status        string              `json:"status"`
	Notes         string              `json:"notes,omitempty"`
	Items         []orderItemResponse `json:"items"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     *time.Time          `json:"updated_at,omitempty"`
}

func newOrderResponse(o *domain.Order) orderResponse {
	resp := orderResponse{
		ID:            int64(o.ID),
		Number:        o.Number,
		Subtotal:      money(o.Subtotal),
		Tax:           money(o.Tax),
		Discount:      money(o.Discount),
		Total:         money(o.Total),
		PaymentMethod: string(o.PaymentMethod),
		Status:        string(o.Status),
		Notes:         o.Notes,
		Items:         make([]orderItemResponse, 0, len(o.Items)),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.CustomerID != nil {
		id := int64(*o.CustomerID)
		resp.CustomerID = &id
	}
	if o.Customer != nil {
		resp.CustomerName = o.Customer.Name
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID:   int64(it.ProductID),
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   money(it.UnitPrice),
			TotalPrice:  money(it.TotalPrice),
		})
	}
	return resp
}

func newOrderListResponse(list []domain.Order) []orderResponse {
	result := make([]orderResponse, 0, len(list))
	for i := range list {
		result = append(result, newOrderResponse(&list[i]))
	}
	return result
}

type orderUpdateRequest struct {
	CustomerID    *int64  `json:"customer_id" validate:"omitempty,gt=0"`
	PaymentMethod *string `json:"payment_method"`
	Discount      *money  `json:"discount_amount"`
	Status        *string `json:"status" validate:"omitempty,oneof=pending completed cancelled refunded"`
	Notes         *string `json:"notes" validate:"omitempty,max=1000"`
}

func (r *orderUpdateRequest) toDomain() (*domain.OrderUpdate, error) {
	update := &domain.OrderUpdate{
		Discount: r.Discount.decimal(),
		Notes:    r.Notes,
	}
	if r.CustomerID != nil {
		id := domain.CustomerID(*r.CustomerID)
		update.CustomerID = &id
	}
	if r.PaymentMethod != nil {
		m, err := domain.ParsePaymentMethod(*r.PaymentMethod)
		if err != nil {
			return nil, err
		}
		update.PaymentMethod = &m
	}
	if r.Status != nil {
		s := domain.OrderStatus(*r.Status)
		update.Status = &s
	}
	return update, nil
}

type lineResponse struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   money  `json:"unit_price"`
	Total       money  `json:"total"`
}

type draftResponse struct {
	ID            string         `json:"id"`
	State         string         `json:"state"`
	Lines         []lineResponse `json:"lines"`
	CustomerID    *int64         `json:"customer_id"`
	PaymentMethod string         `json:"payment_method,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	Subtotal      money          `json:"subtotal"`
	Tax           money          `json:"tax_amount"`
	Discount      money          `json:"discount_amount"`
	Total         money          `json:"total_amount"`
	CatalogAt     time.Time      `json:"catalog_at"`
	Order         *orderResponse `json:"order,omitempty"`
}

func newDraftResponse(v *domain.DraftView) (*draftResponse, error) {
	resp := &draftResponse{
		ID:            v.ID,
		State:         string(v.State),
		Lines:         make([]lineResponse, 0, len(v.Lines)),
		PaymentMethod: string(v.PaymentMethod),
		Notes:         v.Notes,
		Subtotal:      money(v.Totals.Subtotal),
		Tax:           money(v.Totals.Tax),
		Discount:      money(v.Totals.Discount),
		Total:         money(v.Totals.Total),
		CatalogAt:     v.CatalogAt,
	}
	if v.CustomerID != nil {
		id := int64(*v.CustomerID)
		resp.CustomerID = &id
	}
	for _, l := range v.Lines {
		total, err := l.Total()
		if err != nil {
			return nil, err
		}
		resp.Lines = append(resp.Lines, lineResponse{
			ProductID:   int64(l.ProductID),
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   money(l.UnitPrice),
			Total:       money(total),
		})
	}
	if v.Order != nil {
		order := newOrderResponse(v.Order)
		resp.Order = &order
	}
	return resp, nil
}

type addItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type draftDetailsRequest struct {
	CustomerID    *int64  `json:"customer_id" validate:"omitempty,gt=0"`
	ClearCustomer bool    `json:"clear_customer"`
	PaymentMethod *string `json:"payment_method"`
	Discount      *money  `json:"discount_amount"`
	Notes         *string `json:"notes" validate:"omitempty,max=1000"`
}

func (r *draftDetailsRequest) toDomain() (*domain.DraftDetails, error) {
	details := &domain.DraftDetails{
		ClearCustomer: r.ClearCustomer,
		Discount:      r.Discount.decimal(),
		Notes:         r.Notes,
	}
	if r.CustomerID != nil {
		id := domain.CustomerID(*r.CustomerID)
		details.CustomerID = &id
	}
	if r.PaymentMethod != nil {
		m, err := domain.ParsePaymentMethod(*r.PaymentMethod)
		if err != nil {
			return nil, err
		}
		details.PaymentMethod = &m
	}
	return details, nil
}

type submissionResponse struct {
	DraftID        string    `json:"draft_id"`
	IdempotencyKey string    `json:"idempotency_key"`
	Attempt        int       `json:"attempt"`
	Username       string    `json:"username"`
	Outcome        string    `json:"outcome"`
	OrderID        *int64    `json:"order_id,omitempty"`
	OrderNumber    string    `json:"order_number,omitempty"`
	Total          money     `json:"total_amount"`
	Detail         string    `json:"detail,omitempty"`
	AttemptedAt    time.Time `json:"attempted_at"`
}

func newSubmissionResponse(s *domain.Submission) submissionResponse {
	resp := submissionResponse{
		DraftID:        s.DraftID,
		IdempotencyKey: s.IdempotencyKey,
		Attempt:        s.Attempt,
		Username:       s.Username,
		Outcome:        string(s.Outcome),
		OrderNumber:    s.OrderNumber,
		Total:          money(s.Total),
		Detail:         s.Detail,
		AttemptedAt:    s.AttemptedAt,
	}
	if s.OrderID != nil {
		id := int64(*s.OrderID)
		resp.OrderID = &id
	}
	return resp
}

type dashboardResponse struct {
	TotalOrders      int             `json:"total_orders"`
	TotalProducts    int             `json:"total_products"`
	TotalCustomers   int             `json:"total_customers"`
	TotalRevenue     money           `json:"total_revenue"`
	LowStockProducts int             `json:"low_stock_products"`
	RecentOrders     []orderResponse `json:"recent_orders"`
}
