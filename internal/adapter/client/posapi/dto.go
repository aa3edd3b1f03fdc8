package posapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MikeRez0/posadmin/internal/core/domain"
	"github.com/govalues/decimal"
)

// The remote api speaks JSON numbers for money and naive ISO timestamps.

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

type apiTime time.Time

func (t *apiTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = apiTime(parsed)
			return nil
		}
	}
	return fmt.Errorf("unsupported time format %q", s)
}

func money(f float64) (decimal.Decimal, error) {
	d, err := decimal.NewFromFloat64(f)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error on money decode %v: %w", f, err)
	}
	return d, nil
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func toFloatPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := toFloat(*d)
	return &f
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type userDTO struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	FullName *string `json:"full_name"`
	IsActive bool    `json:"is_active"`
}

func (u *userDTO) toDomain() *domain.User {
	return &domain.User{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: deref(u.FullName),
		IsActive: u.IsActive,
	}
}

type categoryDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (c *categoryDTO) toDomain() domain.Category {
	return domain.Category{ID: c.ID, Name: c.Name, Description: deref(c.Description)}
}

type productDTO struct {
	ID            int64        `json:"id"`
	Name          string       `json:"name"`
	Description   *string      `json:"description"`
	Price         float64      `json:"price"`
	Cost          float64      `json:"cost"`
	SKU           *string      `json:"sku"`
	Barcode       *string      `json:"barcode"`
	StockQuantity int          `json:"stock_quantity"`
	MinStockLevel int          `json:"min_stock_level"`
	IsActive      bool         `json:"is_active"`
	Category      *categoryDTO `json:"category"`
	CreatedAt     apiTime      `json:"created_at"`
}

func (p *productDTO) toDomain() (domain.Product, error) {
	price, err := money(p.Price)
	if err != nil {
		return domain.Product{}, err
	}
	cost, err := money(p.Cost)
	if err != nil {
		return domain.Product{}, err
	}

	product := domain.Product{
		ID:            domain.ProductID(p.ID),
		Name:          p.Name,
		Description:   deref(p.Description),
		SKU:           deref(p.SKU),
		Barcode:       deref(p.Barcode),
		Price:         price,
		Cost:          cost,
		StockQuantity: p.StockQuantity,
		MinStockLevel: p.MinStockLevel,
		IsActive:      p.IsActive,
		CreatedAt:     time.Time(p.CreatedAt),
	}
	if p.Category != nil {
		c := p.Category.toDomain()
		product.Category = &c
	}
	return product, nil
}

func productsToDomain(list []productDTO) ([]domain.Product, error) {
	result := make([]domain.Product, 0, len(list))
	for i := range list {
		p, err := list[i].toDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}

type productInputDTO struct {
	Name          *string  `json:"name,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	Cost          *float64 `json:"cost,omitempty"`
	SKU           *string  `json:"sku,omitempty"`
	Barcode       *string  `json:"barcode,omitempty"`
	StockQuantity *int     `json:"stock_quantity,omitempty"`
	MinStockLevel *int     `json:"min_stock_level,omitempty"`
	IsActive      *bool    `json:"is_active,omitempty"`
	CategoryID    *int64   `json:"category_id,omitempty"`
}

func newProductInputDTO(in *domain.ProductInput) *productInputDTO {
	return &productInputDTO{
		Name:          in.Name,
		Description:   in.Description,
		Price:         toFloatPtr(in.Price),
		Cost:          toFloatPtr(in.Cost),
		SKU:           in.SKU,
		Barcode:       in.Barcode,
		StockQuantity: in.StockQuantity,
		MinStockLevel: in.MinStockLevel,
		IsActive:      in.IsActive,
		CategoryID:    in.CategoryID,
	}
}

type customerDTO struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	CreatedAt apiTime `json:"created_at"`
}

func (c *customerDTO) toDomain() domain.Customer {
	return domain.Customer{
		ID:        domain.CustomerID(c.ID),
		Name:      c.Name,
		Email:     deref(c.Email),
		Phone:     deref(c.Phone),
		Address:   deref(c.Address),
		CreatedAt: time.Time(c.CreatedAt),
	}
}

type customerInputDTO struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

type orderItemDTO struct {
	ID         int64   `json:"id"`
	ProductID  int64   `json:"product_id"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
	Product    *struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"product"`
}

type orderDTO struct {
	ID             int64          `json:"id"`
	OrderNumber    string         `json:"order_number"`
	CustomerID     *int64         `json:"customer_id"`
	Customer       *customerDTO   `json:"customer"`
	UserID         int64          `json:"user_id"`
	Subtotal       float64        `json:"subtotal"`
	TaxAmount      float64        `json:"tax_amount"`
	DiscountAmount float64        `json:"discount_amount"`
	TotalAmount    float64        `json:"total_amount"`
	PaymentMethod  *string        `json:"payment_method"`
	Status         string         `json:"status"`
	Notes          *string        `json:"notes"`
	CreatedAt      apiTime        `json:"created_at"`
	UpdatedAt      *apiTime       `json:"updated_at"`
	OrderItems     []orderItemDTO `json:"order_items"`
}

func (o *orderDTO) toDomain() (*domain.Order, error) {
	amounts := make([]decimal.Decimal, 4)
	for i, f := range []float64{o.Subtotal, o.TaxAmount, o.DiscountAmount, o.TotalAmount} {
		d, err := money(f)
		if err != nil {
			return nil, err
		}
		amounts[i] = d
	}

	order := &domain.Order{
		ID:            domain.OrderID(o.ID),
		Number:        o.OrderNumber,
		UserID:        o.UserID,
		Subtotal:      amounts[0],
		Tax:           amounts[1],
		Discount:      amounts[2],
		Total:         amounts[3],
		PaymentMethod: domain.PaymentMethod(deref(o.PaymentMethod)),
		Status:        domain.OrderStatus(o.Status),
		Notes:         deref(o.Notes),
		CreatedAt:     time.Time(o.CreatedAt),
		Items:         make([]domain.OrderItem, 0, len(o.OrderItems)),
	}
	if o.CustomerID != nil {
		id := domain.CustomerID(*o.CustomerID)
		order.CustomerID = &id
	}
	if o.Customer != nil {
		c := o.Customer.toDomain()
		order.Customer = &c
	}
	if o.UpdatedAt != nil {
		t := time.Time(*o.UpdatedAt)
		order.UpdatedAt = &t
	}

	for _, it := range o.OrderItems {
		unit, err := money(it.UnitPrice)
		if err != nil {
			return nil, err
		}
		total, err := money(it.TotalPrice)
		if err != nil {
			return nil, err
		}
		item := domain.OrderItem{
			ID:         it.ID,
			ProductID:  domain.ProductID(it.ProductID),
			Quantity:   it.Quantity,
			UnitPrice:  unit,
			TotalPrice: total,
		}
		if it.Product != nil {
			item.ProductName = it.Product.Name
		}
		order.Items = append(order.Items, item)
	}
	return order, nil
}

func ordersToDomain(list []orderDTO) ([]domain.Order, error) {
	result := make([]domain.Order, 0, len(list))
	for i := range list {
		o, err := list[i].toDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	return result, nil
}

// orderEnvelope accepts both a bare order and {"message": ..., "order": {...}}.
type orderEnvelope struct {
	orderDTO
	Order *orderDTO `json:"order"`
}

func (e *orderEnvelope) toDomain() (*domain.Order, error) {
	if e.Order != nil {
		return e.Order.toDomain()
	}
	return e.orderDTO.toDomain()
}

type orderItemCreateDTO struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type orderCreateDTO struct {
	CustomerID     *int64               `json:"customer_id"`
	PaymentMethod  string               `json:"payment_method"`
	DiscountAmount float64              `json:"discount_amount"`
	Notes          *string              `json:"notes,omitempty"`
	Items          []orderItemCreateDTO `json:"items"`
}

func newOrderCreateDTO(req *domain.OrderRequest) *orderCreateDTO {
	dto := &orderCreateDTO{
		PaymentMethod:  string(req.PaymentMethod),
		DiscountAmount: toFloat(req.Discount),
		Items:          make([]orderItemCreateDTO, 0, len(req.Lines)),
	}
	if req.CustomerID != nil {
		id := int64(*req.CustomerID)
		dto.CustomerID = &id
	}
	if req.Notes != "" {
		notes := req.Notes
		dto.Notes = &notes
	}
	for _, l := range req.Lines {
		dto.Items = append(dto.Items, orderItemCreateDTO{
			ProductID: int64(l.ProductID),
			Quantity:  l.Quantity,
			UnitPrice: toFloat(l.UnitPrice),
		})
	}
	return dto
}

type orderUpdateDTO struct {
	CustomerID     *int64   `json:"customer_id,omitempty"`
	PaymentMethod  *string  `json:"payment_method,omitempty"`
	DiscountAmount *float64 `json:"discount_amount,omitempty"`
	Status         *string  `json:"status,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
}

func newOrderUpdateDTO(u *domain.OrderUpdate) *orderUpdateDTO {
	dto := &orderUpdateDTO{
		DiscountAmount: toFloatPtr(u.Discount),
		Notes:          u.Notes,
	}
	if u.CustomerID != nil {
		id := int64(*u.CustomerID)
		dto.CustomerID = &id
	}
	if u.PaymentMethod != nil {
		m := string(*u.PaymentMethod)
		dto.PaymentMethod = &m
	}
	if u.Status != nil {
		s := string(*u.Status)
		dto.Status = &s
	}
	return dto
}
