package domain

import (
	"time"

	"github.com/govalues/decimal"
)

type ProductID int64

type Category struct {
	ID          int64
	Name        string
	Description string
}

// Product is owned by the remote api. Stock is only as fresh as the last fetch.
type Product struct {
	ID            ProductID
	Name          string
	Description   string
	SKU           string
	Barcode       string
	Price         decimal.Decimal
	Cost          decimal.Decimal
	StockQuantity int
	MinStockLevel int
	IsActive      bool
	Category      *Category
	CreatedAt     time.Time
}

func (p *Product) LowStock() bool {
	return p.StockQuantity <= p.MinStockLevel
}

// ProductInput carries the editable product fields. Nil fields are left untouched on update.
type ProductInput struct {
	Name          *string
	Description   *string
	SKU           *string
	Barcode       *string
	Price         *decimal.Decimal
	Cost          *decimal.Decimal
	StockQuantity *int
	MinStockLevel *int
	IsActive      *bool
	CategoryID    *int64
}

func (in *ProductInput) Empty() bool {
	return in.Name == nil && in.Description == nil && in.SKU == nil && in.Barcode == nil &&
		in.Price == nil && in.Cost == nil && in.StockQuantity == nil && in.MinStockLevel == nil &&
		in.IsActive == nil && in.CategoryID == nil
}
