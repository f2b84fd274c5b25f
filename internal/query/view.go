// Package query reconstructs invoices with their customers, items and products
// for presentation.
package query

import (
	"github.com/roach88/invoicer/internal/model"
)

// Placeholders shown when a referenced row no longer exists.
const (
	UnknownCustomer = "Unknown Customer"
	UnknownProduct  = "Unknown Product"
)

// DateLayout is the presentation format of invoice dates.
const DateLayout = "2006-01-02 15:04:05"

// Ref is a reference that may or may not resolve to a stored row.
// ID is always the stored foreign key; Value is nil when the row is missing.
type Ref[T any] struct {
	ID    int64
	Value *T
}

// Resolved reports whether the referenced row was found.
func (r Ref[T]) Resolved() bool { return r.Value != nil }

// Missing reports whether the referenced row was not found.
func (r Ref[T]) Missing() bool { return r.Value == nil }

// InvoiceView is one invoice with its customer and items resolved.
type InvoiceView struct {
	Invoice  *model.Invoice
	Customer Ref[model.Customer]
	Items    []ItemView
}

// CustomerName returns the customer's name or UnknownCustomer.
func (v InvoiceView) CustomerName() string {
	if v.Customer.Missing() {
		return UnknownCustomer
	}
	return v.Customer.Value.Name
}

// CustomerAddress returns the customer's address, empty when missing.
func (v InvoiceView) CustomerAddress() string {
	if v.Customer.Missing() {
		return ""
	}
	return v.Customer.Value.Address
}

// ItemView is one line item with its product resolved.
type ItemView struct {
	Item    *model.InvoiceItem
	Product Ref[model.Product]
}

// ProductName returns the product's name or UnknownProduct.
func (v ItemView) ProductName() string {
	if v.Product.Missing() {
		return UnknownProduct
	}
	return v.Product.Value.Name
}
