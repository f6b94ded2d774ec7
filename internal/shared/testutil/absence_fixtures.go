package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// ExportHeader is the header row of an attendance export
var ExportHeader = []string{"Abwesenheitszeit", "Name", "Status", "Aktualisiert am"}

// SampleExportRows returns a small export covering all three absence shapes.
// Alice: 1 excused, 4 unexcused school-hours. Bob: 1 excused, 12 unexcused.
func SampleExportRows() [][]string {
	return [][]string{
		{"04.03.2024 (08:00 - 09:07)", "Alice", "entschuldigt", "04.03.2024 10:00"},
		{"01.03.2024 - 03.03.2024", "Bob", "Unentschuldigt", "04.03.2024 10:05"},
		{"ganztägig", "Alice", "offen", "05.03.2024 07:45"},
		{"Mo 08:00 Uhr - 09:07 Uhr)", "Bob", "ENTSCHULDIGT", "05.03.2024 08:00"},
	}
}

// ExportCSV renders rows below the standard header as ';' separated text
func ExportCSV(rows [][]string) string {
	var b strings.Builder
	b.WriteString(strings.Join(ExportHeader, ";"))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(strings.Join(r, ";"))
		b.WriteString("\n")
	}
	return b.String()
}

// WriteExport writes rows as export.csv into dir and returns its path
func WriteExport(t *testing.T, dir string, rows [][]string) string {
	t.Helper()
	path := filepath.Join(dir, "export.csv")
	if err := os.WriteFile(path, []byte(ExportCSV(rows)), 0644); err != nil {
		t.Fatalf("write export: %v", err)
	}
	return path
}

// WriteWorkbook writes rows below the standard header into the first sheet
// of export.xlsx in dir and returns its path
func WriteWorkbook(t *testing.T, dir string, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	all := append([][]string{ExportHeader}, rows...)
	for i, r := range all {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		values := make([]interface{}, len(r))
		for j, v := range r {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cellRef, &values); err != nil {
			t.Fatalf("set row %d: %v", i+1, err)
		}
	}

	path := filepath.Join(dir, "export.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}
