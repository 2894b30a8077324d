package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pgEdge/pgedge-retailstats/internal/schema"
)

// DefaultCSVFiles are the file names the csv source looks for.
var DefaultCSVFiles = map[schema.Kind]string{
	schema.Customers: "cust.csv",
	schema.Orders:    "order.csv",
	schema.Items:     "itemstock.csv",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSV reads one file per dataset from a directory.
type CSV struct {
	dir  string
	opts Options
}

// NewCSV creates a csv source rooted at opts.Path.
func NewCSV(opts Options) (Source, error) {
	if opts.Path == "" {
		return nil, errors.New("csv source requires a data directory")
	}
	return &CSV{dir: opts.Path, opts: opts}, nil
}

// Name returns the source type.
func (c *CSV) Name() string {
	return "csv"
}

// Load reads the file for the given kind.
func (c *CSV) Load(ctx context.Context, kind schema.Kind) (*schema.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := c.opts.name(kind, DefaultCSVFiles)
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.dir, name)
	}
	return ReadCSVFile(path)
}

// ReadCSVFile reads a header-first csv file. A UTF-8 byte order mark is
// stripped and short rows are kept as is; normalization pads them.
func ReadCSVFile(path string) (*schema.RawTable, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := ReadCSV(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Name = filepath.Base(path)
	return t, nil
}

// ReadCSV reads a header-first csv stream.
func ReadCSV(r io.Reader) (*schema.RawTable, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimPrefix(b, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(b))
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty file")
	}
	if err != nil {
		return nil, err
	}

	t := &schema.RawTable{Columns: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if isBlank(rec) {
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if v != "" {
			return false
		}
	}
	return true
}
