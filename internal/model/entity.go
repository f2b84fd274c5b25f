package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a billed party. Name is the natural dedup key used by the importer.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCustomer returns an unpersisted customer.
func NewCustomer(name, address string) *Customer {
	return &Customer{Name: name, Address: address}
}

// Persisted reports whether the customer has been assigned an identity.
func (c *Customer) Persisted() bool { return c.ID != 0 }

// Product is a sellable item. Name is the natural dedup key used by the importer.
type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewProduct returns an unpersisted product.
func NewProduct(name string, price decimal.Decimal) *Product {
	return &Product{Name: name, Price: price}
}

// Persisted reports whether the product has been assigned an identity.
func (p *Product) Persisted() bool { return p.ID != 0 }

// Invoice is a dated bill for one customer.
//
// GrandTotal is taken from the source as-is and is not recomputed from Items.
// Items is populated by the importer and the query path, never by the store.
type Invoice struct {
	ID          int64           `json:"id"`
	CustomerID  int64           `json:"customer_id"`
	InvoiceDate time.Time       `json:"invoice_date"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
	Items       []*InvoiceItem  `json:"items"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewInvoice returns an unpersisted invoice with no items.
func NewInvoice(customerID int64, date time.Time, grandTotal decimal.Decimal) *Invoice {
	return &Invoice{
		CustomerID:  customerID,
		InvoiceDate: date,
		GrandTotal:  grandTotal,
		Items:       []*InvoiceItem{},
	}
}

// Persisted reports whether the invoice has been assigned an identity.
func (i *Invoice) Persisted() bool { return i.ID != 0 }

// AddItem appends a line item to the in-memory invoice.
func (i *Invoice) AddItem(item *InvoiceItem) {
	i.Items = append(i.Items, item)
}

// InvoiceItem is one line of an invoice.
//
// Total is taken from the source as-is and is not recomputed as Quantity*Price.
type InvoiceItem struct {
	ID        int64           `json:"id"`
	InvoiceID int64           `json:"invoice_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewInvoiceItem returns an unpersisted line item.
func NewInvoiceItem(invoiceID, productID, quantity int64, price, total decimal.Decimal) *InvoiceItem {
	return &InvoiceItem{
		InvoiceID: invoiceID,
		ProductID: productID,
		Quantity:  quantity,
		Price:     price,
		Total:     total,
	}
}

// Persisted reports whether the item has been assigned an identity.
func (it *InvoiceItem) Persisted() bool { return it.ID != 0 }
