// Package render turns invoice views into the JSON documents served by the
// HTTP API and printed by the CLI.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/roach88/invoicer/internal/query"
)

// Money is a decimal amount encoded as a JSON number with two decimals.
type Money decimal.Decimal

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).StringFixed(2)), nil
}

// Envelope is the success document.
type Envelope struct {
	Success  bool      `json:"success"`
	Count    int       `json:"count"`
	Invoices []Invoice `json:"invoices"`
}

// ErrorEnvelope is the failure document.
type ErrorEnvelope struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// Invoice is one rendered invoice.
type Invoice struct {
	ID          int64    `json:"id"`
	InvoiceDate string   `json:"invoice_date"`
	Customer    Customer `json:"customer"`
	Items       []Item   `json:"items"`
	GrandTotal  Money    `json:"grand_total"`
}

// Customer is the rendered customer. ID is null and Missing true when the
// customer row no longer exists.
type Customer struct {
	ID      *int64 `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Missing bool   `json:"missing"`
}

// Item is one rendered line item.
type Item struct {
	ID          int64  `json:"id"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
	Price       Money  `json:"price"`
	Total       Money  `json:"total"`
	Missing     bool   `json:"missing"`
}

// Success builds the success envelope for views.
func Success(views []query.InvoiceView) Envelope {
	invoices := make([]Invoice, 0, len(views))
	for _, v := range views {
		invoices = append(invoices, FromView(v))
	}
	return Envelope{Success: true, Count: len(invoices), Invoices: invoices}
}

// Error builds the failure envelope.
func Error(message string) ErrorEnvelope {
	return ErrorEnvelope{Error: true, Message: message}
}

// FromView renders a single invoice view.
func FromView(v query.InvoiceView) Invoice {
	customer := Customer{
		Name:    v.CustomerName(),
		Address: v.CustomerAddress(),
		Missing: v.Customer.Missing(),
	}
	if v.Customer.Resolved() {
		id := v.Customer.Value.ID
		customer.ID = &id
	}

	items := make([]Item, 0, len(v.Items))
	for _, it := range v.Items {
		items = append(items, Item{
			ID:          it.Item.ID,
			ProductName: it.ProductName(),
			Quantity:    it.Item.Quantity,
			Price:       Money(it.Item.Price),
			Total:       Money(it.Item.Total),
			Missing:     it.Product.Missing(),
		})
	}

	return Invoice{
		ID:          v.Invoice.ID,
		InvoiceDate: v.Invoice.InvoiceDate.UTC().Format(query.DateLayout),
		Customer:    customer,
		Items:       items,
		GrandTotal:  Money(v.Invoice.GrandTotal),
	}
}

// Marshal encodes v as two-space indented JSON without a trailing newline.
func Marshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return data, nil
}

// Write encodes v to w followed by a newline.
func Write(w io.Writer, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
