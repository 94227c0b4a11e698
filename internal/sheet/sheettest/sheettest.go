// Package sheettest builds workbook fixtures for tests.
package sheettest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a fixture; Rows[0] is the header row.
type Sheet struct {
	Name string
	Rows [][]any
}

// Write saves sheets, in order, as a workbook at path.
func Write(t testing.TB, path string, sheets ...Sheet) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", s.Name))
		} else {
			_, err := f.NewSheet(s.Name)
			require.NoError(t, err)
		}

		for r, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(s.Name, cell, &row))
		}
	}

	require.NoError(t, f.SaveAs(path))
}

// Workbook writes sheets to book.xlsx in a fresh temp dir and returns the path.
func Workbook(t testing.TB, sheets ...Sheet) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "book.xlsx")
	Write(t, path, sheets...)
	return path
}

// Empty returns a sheet with no cells.
func Empty(name string) Sheet {
	return Sheet{Name: name}
}

// QuoteSheetNames are the sheets of a quote workbook in ordinal order.
var QuoteSheetNames = []string{
	"Capabilities", "Addresses", "PriceLists", "Products", "Quotes", "Orders",
	"PaymentTerms", "PaymentTypes", "DeliveryTerms", "DeliveryTypes",
	"ProductCategories", "ProductFamilies", "ProductTypes",
}

// QuoteBook writes a full quote workbook. rows maps a sheet ordinal to its
// rows (header included); every other sheet is left empty.
func QuoteBook(t testing.TB, rows map[int][][]any) string {
	t.Helper()

	sheets := make([]Sheet, len(QuoteSheetNames))
	for i, name := range QuoteSheetNames {
		sheets[i] = Sheet{Name: name, Rows: rows[i]}
	}
	return Workbook(t, sheets...)
}
