package source

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pgEdge/pgedge-retailstats/internal/dataset"
	"github.com/pgEdge/pgedge-retailstats/internal/schema"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func csvDir(t *testing.T) string {
	dir := t.TempDir()
	writeFile(t, dir, "cust.csv", "\xEF\xBB\xBFcustomerid,name,sex,age,area\n1,Sato,1,34,東京都\n2,Suzuki,2\n\n")
	writeFile(t, dir, "order.csv", "customerid,orderdate,orderno,orderitem,ordernum,orderprice\n1,2024/01/05,A1,X,2,1000\n")
	writeFile(t, dir, "itemstock.csv", "item,itemname,stock\nX,Widget,10\n")
	return dir
}

func TestCSVSource(t *testing.T) {
	src, err := New("csv", Options{Path: csvDir(t)})
	require.NoError(t, err)

	tables, err := LoadAll(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, tables, 3)

	cust := tables[schema.Customers]
	assert.Equal(t, "cust.csv", cust.Name)
	assert.Equal(t, "customerid", cust.Columns[0], "BOM is stripped")
	assert.Len(t, cust.Rows, 2, "blank lines are skipped")
	assert.Len(t, cust.Rows[1], 3, "short rows are kept as is")

	snap, err := dataset.Build(tables)
	require.NoError(t, err)
	assert.Len(t, snap.Customers, 2)
	assert.Equal(t, "", snap.Customers[1].Area)
}

func TestCSVSourceNameOverride(t *testing.T) {
	dir := csvDir(t)
	require.NoError(t, os.Rename(filepath.Join(dir, "order.csv"), filepath.Join(dir, "orders_2024.csv")))

	src, err := NewCSV(Options{Path: dir})
	require.NoError(t, err)
	_, err = LoadAll(context.Background(), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "orders")

	src, err = NewCSV(Options{Path: dir, Names: map[schema.Kind]string{schema.Orders: "orders_2024.csv"}})
	require.NoError(t, err)
	_, err = LoadAll(context.Background(), src)
	require.NoError(t, err)
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	require.Error(t, err)
}

func TestXLSXSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retail.xlsx")

	f := excelize.NewFile()
	sheets := map[string][][]any{
		"customers": {{"CustomerID", "Sex", "Age"}, {1, 1, 30}, {2, 2, 45}},
		"orders":    {{"CustomerID", "OrderDate", "OrderNo", "OrderItem", "OrderNum", "OrderPrice"}, {1, "2024-01-01", "O1", "A", 2, 100}},
		"itemstock": {{"Item", "Stock"}, {"A", 1}},
	}
	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	src, err := New("xlsx", Options{Path: path})
	require.NoError(t, err)
	tables, err := LoadAll(context.Background(), src)
	require.NoError(t, err)

	snap, err := dataset.Build(tables)
	require.NoError(t, err)
	assert.Len(t, snap.Customers, 2)
	require.Len(t, snap.Orders, 1)
	assert.Equal(t, 100.0, snap.Orders[0].Price)
}

func TestXLSXMissingSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	src, err := NewXLSX(Options{Path: path})
	require.NoError(t, err)
	_, err = src.Load(context.Background(), schema.Customers)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "customers")
}

func TestSQLiteSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retail.db")

	conn, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	for _, stmt := range []string{
		`CREATE TABLE customers (customerid INTEGER, sex TEXT, age INTEGER, area TEXT)`,
		`INSERT INTO customers VALUES (1, '1', 30, '北海道'), (2, '2', NULL, NULL)`,
		`CREATE TABLE orders (customerid INTEGER, orderdate TEXT, orderno TEXT, orderitem TEXT, ordernum REAL, orderprice REAL)`,
		`INSERT INTO orders VALUES (1, '2024-01-01', 'O1', 'A', 2, 99.5)`,
		`CREATE TABLE itemstock (item TEXT, stock INTEGER)`,
		`INSERT INTO itemstock VALUES ('A', 0)`,
	} {
		_, err := conn.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	require.NoError(t, conn.Close())

	src, err := New("sqlite", Options{Path: path})
	require.NoError(t, err)
	defer Close(src)

	tables, err := LoadAll(context.Background(), src)
	require.NoError(t, err)

	snap, err := dataset.Build(tables)
	require.NoError(t, err)
	require.Len(t, snap.Customers, 2)
	assert.Nil(t, snap.Customers[1].Age)
	assert.Equal(t, 99.5, snap.Orders[0].Price)
	require.NotNil(t, snap.Items[0].Stock)
	assert.Equal(t, 0.0, *snap.Items[0].Stock)
}

func TestSQLRejectsBadTableName(t *testing.T) {
	src, err := NewSQLite(Options{
		Path:  filepath.Join(t.TempDir(), "x.db"),
		Names: map[schema.Kind]string{schema.Customers: "customers; DROP TABLE orders"},
	})
	require.NoError(t, err)
	defer Close(src)

	_, err = src.Load(context.Background(), schema.Customers)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid table name")
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"csv", "mysql", "postgres", "sqlite", "xlsx"}, List())

	_, err := New("parquet", Options{})
	require.Error(t, err)

	for _, name := range List() {
		_, err := New(name, Options{})
		assert.Error(t, err, "%s without a location", name)
	}
}

type failingSource struct{}

func (failingSource) Name() string { return "failing" }

func (failingSource) Load(ctx context.Context, kind schema.Kind) (*schema.RawTable, error) {
	if kind == schema.Items {
		return nil, errors.New("boom")
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestLoadAllCancelsOnFailure(t *testing.T) {
	_, err := LoadAll(context.Background(), failingSource{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "", cellString(nil))
	assert.Equal(t, "12", cellString(int64(12)))
	assert.Equal(t, "1.5", cellString(1.5))
	assert.Equal(t, "abc", cellString([]byte("abc")))
}
