package datagen

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/pgEdge/pgedge-retailstats/internal/schema"
	"github.com/pgEdge/pgedge-retailstats/internal/source"
)

// WriteCSV writes one file per dataset into dir using the file names the
// csv source expects. Files start with a UTF-8 byte order mark so that
// spreadsheet tools detect the encoding.
func WriteCSV(dir string, tables map[schema.Kind]*schema.RawTable) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, kind := range schema.Kinds() {
		t, ok := tables[kind]
		if !ok {
			continue
		}
		path := filepath.Join(dir, source.DefaultCSVFiles[kind])
		if err := writeCSVFile(path, t); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

func writeCSVFile(path string, t *schema.RawTable) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return err
	}
	return f.Close()
}

// WriteXLSX writes one sheet per dataset using the sheet names the xlsx
// source expects.
func WriteXLSX(path string, tables map[schema.Kind]*schema.RawTable) error {
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for _, kind := range schema.Kinds() {
		t, ok := tables[kind]
		if !ok {
			continue
		}
		sheet := source.DefaultSheets[kind]
		if first {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return err
			}
			first = false
		} else if _, err := f.NewSheet(sheet); err != nil {
			return err
		}

		sw, err := f.NewStreamWriter(sheet)
		if err != nil {
			return err
		}
		if err := writeSheetRow(sw, 1, t.Columns); err != nil {
			return err
		}
		for i, row := range t.Rows {
			if err := writeSheetRow(sw, i+2, row); err != nil {
				return err
			}
		}
		if err := sw.Flush(); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func writeSheetRow(sw *excelize.StreamWriter, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	return sw.SetRow(cell, row)
}
