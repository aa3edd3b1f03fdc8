package domain

import (
	"time"

	"github.com/govalues/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "cash"
	PaymentMethodCard    PaymentMethod = "card"
	PaymentMethodDigital PaymentMethod = "digital"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodDigital:
		return m, nil
	}
	return "", ErrInvalidPaymentMethod
}

type OrderID int64

type OrderItem struct {
	ID          int64
	ProductID   ProductID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

// Order is a finalized order as persisted by the remote api.
type Order struct {
	ID            OrderID
	Number        string
	CustomerID    *CustomerID
	Customer      *Customer
	UserID        int64
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod PaymentMethod
	Status        OrderStatus
	Notes         string
	Items         []OrderItem
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// OrderRequest is the immutable payload handed to the order sink.
type OrderRequest struct {
	CustomerID    *CustomerID
	PaymentMethod PaymentMethod
	Discount      decimal.Decimal
	Notes         string
	Lines         []OrderRequestLine
}

type OrderRequestLine struct {
	ProductID ProductID
	Quantity  int
	UnitPrice decimal.Decimal
}

type OrderUpdate struct {
	CustomerID    *CustomerID
	PaymentMethod *PaymentMethod
	Discount      *decimal.Decimal
	Status        *OrderStatus
	Notes         *string
}

func (u *OrderUpdate) Empty() bool {
	return u.CustomerID == nil && u.PaymentMethod == nil && u.Discount == nil &&
		u.Status == nil && u.Notes == nil
}

type OrderFilter struct {
	Status     OrderStatus
	CustomerID *CustomerID
	Skip       int
	Limit      int
}
