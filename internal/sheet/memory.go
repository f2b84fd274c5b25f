package sheet

import (
	"context"
	"fmt"
	"sync"
)

// MemorySource serves rows registered in memory under a path name.
// Used by tests and the scenario harness in place of XLSX files.
//
// Thread-safety: safe for concurrent use via internal mutex.
type MemorySource struct {
	mu    sync.Mutex
	files map[string][]Row
}

// NewMemorySource returns an empty source.
func NewMemorySource() *MemorySource {
	return &MemorySource{files: make(map[string][]Row)}
}

// Add registers path with a header row and records, numbered from line 2
// exactly as XLSXReader would number them.
func (m *MemorySource) Add(path string, header []string, records ...[]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = buildRows(header, records, 2)
}

// Read returns the rows registered under path, or an error wrapping
// ErrInvalidInput if nothing was registered.
func (m *MemorySource) Read(ctx context.Context, path string) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: file does not exist: %s", ErrInvalidInput, path)
	}

	out := make([]Row, len(rows))
	for i, row := range rows {
		fields := make(map[string]string, len(row.Fields))
		for k, v := range row.Fields {
			fields[k] = v
		}
		out[i] = Row{Line: row.Line, Fields: fields}
	}
	return out, nil
}
