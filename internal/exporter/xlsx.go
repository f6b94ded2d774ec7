package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"absencecli/pkg/contracts/domain"
)

// SummarySheet is the worksheet name of the xlsx summary export
const SummarySheet = "Fehlzeiten"

// EncodeSummaryXLSX writes the summary table as a workbook with numeric
// total cells
func EncodeSummaryXLSX(out io.Writer, summaries []domain.PersonSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(SummaryHeaders))
	for i, h := range SummaryHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(SummarySheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, s := range summaries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{s.PersonName, s.ExcusedTotal, s.UnexcusedTotal, s.GrandTotal}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(SummarySheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to encode workbook: %w", err)
	}
	return nil
}
