// Package source opens spreadsheet documents and exposes their named regions
// as grids of raw cell values.
//
// Raw cell values are one of:
//   - nil for empty cells
//   - string for text
//   - float64 for numbers
//   - bool for booleans
//   - time.Time for cells formatted as dates (xlsx only)
//
// Rows of a region are padded with nil to the region's width where the
// format allows it; callers must still tolerate short rows.
package source

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrRegionNotFound is returned by Workbook.Region when the document has no
// region with the requested name.
var ErrRegionNotFound = errors.New("region not found")

// Opener opens a document. Each Open returns an independent Workbook that
// the caller must close.
type Opener interface {
	Open(ctx context.Context) (Workbook, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context) (Workbook, error)

// Open calls fn.
func (fn OpenerFunc) Open(ctx context.Context) (Workbook, error) { return fn(ctx) }

// Workbook is an opened document.
type Workbook interface {
	// Regions lists the region names in document order.
	Regions() []string
	// Region resolves a region by exact name.
	Region(name string) (Region, error)
	Close() error
}

// Region is a named grid of cells, such as a worksheet.
type Region interface {
	// Labels returns the cells of row as text. Missing cells are "".
	Labels(row int) ([]string, error)
	// Rows returns every row from start on.
	Rows(start int) ([][]any, error)
}

func regionNotFound(name string) error {
	return fmt.Errorf("%w: %q", ErrRegionNotFound, name)
}

// grid is a Region backed by an in-memory table.
type grid struct {
	cells [][]any
}

func (g *grid) Labels(row int) ([]string, error) {
	if row < 0 {
		return nil, fmt.Errorf("label row %d out of range", row)
	}
	if row >= len(g.cells) {
		return nil, nil
	}
	labels := make([]string, len(g.cells[row]))
	for i, v := range g.cells[row] {
		if v != nil {
			labels[i] = fmt.Sprint(v)
		}
	}
	return labels, nil
}

func (g *grid) Rows(start int) ([][]any, error) {
	if start < 0 {
		return nil, fmt.Errorf("start row %d out of range", start)
	}
	if start >= len(g.cells) {
		return nil, nil
	}
	return g.cells[start:], nil
}

// Memory is a workbook held in memory, keyed by region name. Each grid
// includes its header rows.
type Memory map[string][][]any

// Open implements Opener.
func (m Memory) Open(ctx context.Context) (Workbook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return memoryWorkbook(m), nil
}

type memoryWorkbook map[string][][]any

func (m memoryWorkbook) Regions() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m memoryWorkbook) Region(name string) (Region, error) {
	cells, ok := m[name]
	if !ok {
		return nil, regionNotFound(name)
	}
	return &grid{cells: cells}, nil
}

func (m memoryWorkbook) Close() error { return nil }
