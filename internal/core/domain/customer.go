package domain

import "time"

type CustomerID int64

type Customer struct {
	ID        CustomerID
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
}

type CustomerInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

func (in *CustomerInput) Empty() bool {
	return in.Name == nil && in.Email == nil && in.Phone == nil && in.Address == nil
}
