package sheet

import (
	"context"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

// XLSXReader reads the active sheet of an .xlsx workbook.
type XLSXReader struct{}

// NewXLSXReader returns a reader for Office Open XML workbooks.
func NewXLSXReader() *XLSXReader {
	return &XLSXReader{}
}

// Read opens path and returns its data rows. A missing file, a directory or
// a file excelize cannot open yields an error wrapping ErrInvalidInput.
// A workbook with only a header row (or nothing at all) yields no rows.
func (r *XLSXReader) Read(ctx context.Context, path string) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: file does not exist: %s", ErrInvalidInput, path)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: not a file: %s", ErrInvalidInput, path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook %s: %v", ErrInvalidInput, path, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(f.GetActiveSheetIndex())
	if sheetName == "" {
		return nil, fmt.Errorf("%w: workbook has no sheets: %s", ErrInvalidInput, path)
	}

	records, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read rows from %s: %v", ErrInvalidInput, sheetName, err)
	}
	if len(records) == 0 {
		return []Row{}, nil
	}

	return buildRows(records[0], records[1:], 2), nil
}
