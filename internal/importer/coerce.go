package importer

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/roach88/invoicer/internal/sheet"
)

var maxQuantity = decimal.NewFromInt(math.MaxInt64)

var (
	errEmpty            = errors.New("value is empty")
	errNotPositive      = errors.New("must be at least 1")
	errFractional       = errors.New("must be a whole number")
	errNegative         = errors.New("must not be negative")
	errOutOfRange       = errors.New("out of range")
	errUnrecognizedDate = errors.New("does not match the date layout or an Excel serial date")
)

// rowReader pulls typed fields out of one row, reporting the first failure
// as a validation error carrying the row's line and the field's header.
type rowReader struct {
	row    sheet.Row
	layout string
}

// raw returns the value under header. The header must exist in the sheet.
func (r rowReader) raw(header string) (string, error) {
	v, ok := r.row.Get(header)
	if !ok {
		return "", validationError(r.row.Line, header, "missing column", nil)
	}
	return v, nil
}

// name returns a value that must be non-blank. The raw value is kept as is.
func (r rowReader) name(header string) (string, error) {
	v, err := r.raw(header)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(v) == "" {
		return "", validationError(r.row.Line, header, "required value", errEmpty)
	}
	return v, nil
}

// quantity parses a whole number of at least 1 that fits in an int64.
// Spreadsheet formatting such as "2.0" or "1e2" is accepted; "2.5", "0",
// "-1" and values past math.MaxInt64 are not.
func (r rowReader) quantity(header string) (int64, error) {
	v, err := r.raw(header)
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(v)
	if s == "" {
		return 0, validationError(r.row.Line, header, "invalid quantity", errEmpty)
	}

	n, perr := strconv.ParseInt(s, 10, 64)
	if errors.Is(perr, strconv.ErrRange) {
		return 0, validationError(r.row.Line, header, "invalid quantity", errOutOfRange)
	}
	if perr != nil {
		d, derr := decimal.NewFromString(s)
		if derr != nil {
			return 0, validationError(r.row.Line, header, "invalid quantity", perr)
		}
		if !d.IsInteger() {
			return 0, validationError(r.row.Line, header, "invalid quantity", errFractional)
		}
		if d.LessThan(decimal.NewFromInt(1)) {
			return 0, validationError(r.row.Line, header, "invalid quantity", errNotPositive)
		}
		if d.GreaterThan(maxQuantity) {
			return 0, validationError(r.row.Line, header, "invalid quantity", errOutOfRange)
		}
		n = d.IntPart()
	}
	if n < 1 {
		return 0, validationError(r.row.Line, header, "invalid quantity", errNotPositive)
	}
	return n, nil
}

// amount parses a decimal money value.
func (r rowReader) amount(header string) (decimal.Decimal, error) {
	v, err := r.raw(header)
	if err != nil {
		return decimal.Zero, err
	}
	s := strings.TrimSpace(v)
	if s == "" {
		return decimal.Zero, validationError(r.row.Line, header, "invalid amount", errEmpty)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, validationError(r.row.Line, header, "invalid amount", err)
	}
	return d, nil
}

// price parses a non-negative decimal money value.
func (r rowReader) price(header string) (decimal.Decimal, error) {
	d, err := r.amount(header)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, validationError(r.row.Line, header, "invalid price", errNegative)
	}
	return d, nil
}

// date parses the value with the configured layout in UTC. Cells stored as
// dates arrive as Excel serial numbers and are converted with the 1900 epoch.
func (r rowReader) date(header string) (time.Time, error) {
	v, err := r.raw(header)
	if err != nil {
		return time.Time{}, err
	}
	s := strings.TrimSpace(v)
	if s == "" {
		return time.Time{}, validationError(r.row.Line, header, "invalid date", errEmpty)
	}

	if t, err := time.ParseInLocation(r.layout, s, time.UTC); err == nil {
		return t, nil
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, validationError(r.row.Line, header, "invalid date", errUnrecognizedDate)
}
