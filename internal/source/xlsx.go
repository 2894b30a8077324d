package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/pgEdge/pgedge-retailstats/internal/schema"
)

// DefaultSheets are the sheet names the xlsx source looks for.
var DefaultSheets = map[schema.Kind]string{
	schema.Customers: "customers",
	schema.Orders:    "orders",
	schema.Items:     "itemstock",
}

// XLSX reads one sheet per dataset from a workbook.
type XLSX struct {
	path string
	opts Options
}

// NewXLSX creates a workbook source for opts.Path.
func NewXLSX(opts Options) (Source, error) {
	if opts.Path == "" {
		return nil, errors.New("xlsx source requires a workbook path")
	}
	return &XLSX{path: opts.Path, opts: opts}, nil
}

// Name returns the source type.
func (x *XLSX) Name() string {
	return "xlsx"
}

// Load reads the sheet for the given kind. Each call opens the workbook
// on its own so that loads can run concurrently.
func (x *XLSX) Load(ctx context.Context, kind schema.Kind) (*schema.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(x.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := x.opts.name(kind, DefaultSheets)
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found in %s", sheet, filepath.Base(x.path))
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	t := &schema.RawTable{Name: sheet, Columns: rows[0]}
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
