package domain_test

import (
	"testing"

	"github.com/MikeRez0/posadmin/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestFilterProducts(t *testing.T) {
	products := []domain.Product{
		{ID: 1, Name: "Espresso Beans", SKU: "COF-001", Barcode: "4006381333931"},
		{ID: 2, Name: "Green Tea", SKU: "TEA-010"},
		{ID: 3, Name: "Milk", Barcode: "5000112548167"},
	}

	tests := []struct {
		name   string
		term   string
		expIDs []domain.ProductID
	}{
		{name: "empty term", term: "  ", expIDs: []domain.ProductID{1, 2, 3}},
		{name: "name, case insensitive", term: "tea", expIDs: []domain.ProductID{2}},
		{name: "sku", term: "cof-", expIDs: []domain.ProductID{1}},
		{name: "barcode", term: "54816", expIDs: []domain.ProductID{3}},
		{name: "no match", term: "bread", expIDs: []domain.ProductID{}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ids := []domain.ProductID{}
			for _, p := range domain.FilterProducts(products, test.term) {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, test.expIDs, ids)
		})
	}
}

func TestFilterCustomersAndOrders(t *testing.T) {
	customers := []domain.Customer{
		{ID: 1, Name: "Ada Lovelace", Email: "ada@example.com"},
		{ID: 2, Name: "Alan Turing", Phone: "+44 1234"},
	}
	assert.Len(t, domain.FilterCustomers(customers, "EXAMPLE"), 1)
	assert.Len(t, domain.FilterCustomers(customers, "1234"), 1)
	assert.Len(t, domain.FilterCustomers(customers, "a"), 2)

	orders := []domain.Order{
		{ID: 1, Number: "ORD-20240101120000-ABCD1234", Customer: &customers[0]},
		{ID: 2, Number: "ORD-20240102120000-FFFF0000"},
	}
	assert.Len(t, domain.FilterOrders(orders, "abcd"), 1)
	assert.Len(t, domain.FilterOrders(orders, "lovelace"), 1)
	assert.Len(t, domain.FilterOrders(orders, "ORD-2024"), 2)
}
