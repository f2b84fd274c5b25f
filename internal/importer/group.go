package importer

import (
	"strings"

	"github.com/roach88/invoicer/internal/sheet"
)

// group is the rows of one invoice, in sheet order.
type group struct {
	key  string
	rows []sheet.Row
}

// groupRows partitions rows by the raw value of keyColumn. Groups are ordered
// by first appearance of their key. Keys compare exactly: "1", "1.0" and " 1"
// are three different invoices. A row without a key is a validation error.
func groupRows(rows []sheet.Row, keyColumn string) ([]*group, error) {
	groups := []*group{}
	byKey := make(map[string]*group)

	for _, row := range rows {
		key, ok := row.Get(keyColumn)
		if !ok {
			return nil, validationError(row.Line, keyColumn, "missing column", nil)
		}
		if strings.TrimSpace(key) == "" {
			return nil, validationError(row.Line, keyColumn, "required value", errEmpty)
		}

		g, ok := byKey[key]
		if !ok {
			g = &group{key: key}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, row)
	}
	return groups, nil
}
