package domain

import "strings"

// matches reports whether any field contains term, ignoring case.
// An empty term matches everything.
func matches(term string, fields ...string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func FilterProducts(list []Product, term string) []Product {
	result := make([]Product, 0, len(list))
	for _, p := range list {
		if matches(term, p.Name, p.SKU, p.Barcode) {
			result = append(result, p)
		}
	}
	return result
}

func FilterCustomers(list []Customer, term string) []Customer {
	result := make([]Customer, 0, len(list))
	for _, c := range list {
		if matches(term, c.Name, c.Email, c.Phone) {
			result = append(result, c)
		}
	}
	return result
}

func FilterOrders(list []Order, term string) []Order {
	result := make([]Order, 0, len(list))
	for _, o := range list {
		customer := ""
		if o.Customer != nil {
			customer = o.Customer.Name
		}
		if matches(term, o.Number, customer) {
			result = append(result, o)
		}
	}
	return result
}
