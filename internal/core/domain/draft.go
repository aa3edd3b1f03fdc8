package domain

import (
	"time"

	"github.com/govalues/decimal"
)

type DraftState string

const (
	DraftStateEmpty      DraftState = "empty"
	DraftStateBuilding   DraftState = "building"
	DraftStateSubmitting DraftState = "submitting"
	DraftStateConfirmed  DraftState = "confirmed"
)

// LineItem is one product in a draft. UnitPrice is locked when the line is created.
type LineItem struct {
	ProductID   ProductID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

func (l LineItem) Total() (decimal.Decimal, error) {
	return LineTotal(l.Quantity, l.UnitPrice)
}

// DraftView is a point-in-time copy of an order draft.
type DraftView struct {
	ID            string
	State         DraftState
	Lines         []LineItem
	CustomerID    *CustomerID
	PaymentMethod PaymentMethod
	Discount      decimal.Decimal
	Notes         string
	Totals        Totals
	CatalogAt     time.Time
	Order         *Order
}

// DraftDetails is a partial update of the non-line fields of a draft.
type DraftDetails struct {
	CustomerID    *CustomerID
	ClearCustomer bool
	PaymentMethod *PaymentMethod
	Discount      *decimal.Decimal
	Notes         *string
}
