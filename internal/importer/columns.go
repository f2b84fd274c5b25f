package importer

import (
	"errors"
	"fmt"
	"strings"
)

// Columns names the spreadsheet header of every field the import reads.
type Columns struct {
	Invoice         string `yaml:"invoice" json:"invoice"`
	InvoiceDate     string `yaml:"invoice_date" json:"invoice_date"`
	CustomerName    string `yaml:"customer_name" json:"customer_name"`
	CustomerAddress string `yaml:"customer_address" json:"customer_address"`
	ProductName     string `yaml:"product_name" json:"product_name"`
	Quantity        string `yaml:"quantity" json:"quantity"`
	Price           string `yaml:"price" json:"price"`
	Total           string `yaml:"total" json:"total"`
	GrandTotal      string `yaml:"grand_total" json:"grand_total"`
}

// DefaultColumns returns the headers of the standard invoice export.
func DefaultColumns() Columns {
	return Columns{
		Invoice:         "invoice",
		InvoiceDate:     "Invoice Date",
		CustomerName:    "Customer Name",
		CustomerAddress: "Customer Address",
		ProductName:     "Product Name",
		Quantity:        "Quantity",
		Price:           "Price",
		Total:           "Total",
		GrandTotal:      "Grand Total",
	}
}

func (c Columns) named() [][2]string {
	return [][2]string{
		{"invoice", c.Invoice},
		{"invoice_date", c.InvoiceDate},
		{"customer_name", c.CustomerName},
		{"customer_address", c.CustomerAddress},
		{"product_name", c.ProductName},
		{"quantity", c.Quantity},
		{"price", c.Price},
		{"total", c.Total},
		{"grand_total", c.GrandTotal},
	}
}

// Headers returns the header names in field order: invoice, invoice date,
// customer name and address, product name, quantity, price, total, grand total.
func (c Columns) Headers() []string {
	named := c.named()
	headers := make([]string, len(named))
	for i, kv := range named {
		headers[i] = kv[1]
	}
	return headers
}

// Validate rejects empty header names and two fields sharing one header.
func (c Columns) Validate() error {
	var errs []error
	seen := make(map[string]string)
	for _, kv := range c.named() {
		field, header := kv[0], strings.TrimSpace(kv[1])
		if header == "" {
			errs = append(errs, fmt.Errorf("column %s: header must not be empty", field))
			continue
		}
		if other, ok := seen[header]; ok {
			errs = append(errs, fmt.Errorf("column %s: header %q already used by %s", field, header, other))
			continue
		}
		seen[header] = field
	}
	return errors.Join(errs...)
}
